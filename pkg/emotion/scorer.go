package emotion

import (
	"StorySignGolang/internal/entity"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// featureTerm is one weighted sub-feature contributing to an emotion score.
// The scaled value is clamped to [0,1] before averaging, so a single strong
// feature cannot push a score past full confidence.
type featureTerm struct {
	feature string
	weight  float64
}

// scoreTable holds the fixed per-emotion heuristics. These are design
// constants, not learned parameters. Negative weights fire on negative
// feature values (landmark y grows downward, so raised eyebrows produce a
// negative eyebrow_height). Disgusted carries no geometric heuristic in the
// current feature set and only ever receives jitter.
var scoreTable = map[entity.EmotionCategory][]featureTerm{
	entity.EmotionHappy:     {{FeatureMouthCurve, 10}},
	entity.EmotionSad:       {{FeatureMouthCurve, -10}},
	entity.EmotionSurprised: {{FeatureEyebrowHeight, -15}, {FeatureMouthOpenness, 8}},
	entity.EmotionAngry:     {{FeatureEyebrowHeight, 15}},
	entity.EmotionFearful:   {{FeatureEyebrowHeight, -12}, {FeatureEyeOpenness, 6}},
	entity.EmotionDisgusted: {},
}

const (
	jitterRange         = 0.1
	neutralActivityGain = 5.0
	neutralFallback     = 0.5
)

// Scorer classifies facial features into an emotion with a confidence score.
// The jitter source is injected so tests can run it deterministically while
// production keeps natural variance.
type Scorer struct {
	mu  sync.Mutex
	rng *rand.Rand
	log *logrus.Logger
}

// NewScorer builds a scorer around the given RNG. A nil rng gets a
// time-seeded source.
func NewScorer(rng *rand.Rand, log *logrus.Logger) *Scorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scorer{rng: rng, log: log}
}

// Classify scores every emotion against the feature map and returns the
// arg-max. Ties break by enumeration order. An empty feature map always
// yields neutral at 0.5 with no jitter, and any internal panic is downgraded
// to the same fallback rather than failing the frame.
func (s *Scorer) Classify(features Features) (result ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Errorf("Emotion classification panicked, falling back to neutral: %v", r)
			}
			result = neutralResult(features)
		}
	}()

	if len(features) == 0 {
		return neutralResult(features)
	}

	scores := make(map[entity.EmotionCategory]float64, len(entity.EmotionOrder))
	for _, category := range entity.EmotionOrder {
		var base float64
		if category == entity.EmotionNeutral {
			activity := 0.0
			for _, v := range features {
				activity += math.Abs(v)
			}
			base = math.Max(0, 1-neutralActivityGain*activity)
		} else {
			terms := scoreTable[category]
			sum, contributing := 0.0, 0
			for _, term := range terms {
				value, ok := features[term.feature]
				if !ok {
					continue
				}
				sum += clamp01(value * term.weight)
				contributing++
			}
			if contributing > 0 {
				base = sum / float64(contributing)
			}
		}

		scores[category] = clamp01(base + s.jitter())
	}

	best := entity.EmotionNeutral
	bestScore := -1.0
	for _, category := range entity.EmotionOrder {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}

	return ClassificationResult{
		DetectedEmotion: best,
		ConfidenceScore: clamp01(bestScore),
		AllScores:       scores,
		Features:        features,
	}
}

func (s *Scorer) jitter() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64()*2 - 1) * jitterRange
}

func neutralResult(features Features) ClassificationResult {
	scores := make(map[entity.EmotionCategory]float64, len(entity.EmotionOrder))
	for _, category := range entity.EmotionOrder {
		scores[category] = 0.0
	}
	scores[entity.EmotionNeutral] = neutralFallback

	return ClassificationResult{
		DetectedEmotion: entity.EmotionNeutral,
		ConfidenceScore: neutralFallback,
		AllScores:       scores,
		Features:        features,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
