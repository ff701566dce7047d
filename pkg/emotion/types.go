package emotion

import "StorySignGolang/internal/entity"

// Features maps a facial-geometry feature name to its signed value. A key
// that is absent means the feature could not be derived from the landmark
// set and carries no signal; callers must treat that as normal.
type Features map[string]float64

const (
	FeatureMouthCurve    = "mouth_curve"
	FeatureEyebrowHeight = "eyebrow_height"
	FeatureEyeOpenness   = "eye_openness"
	FeatureMouthOpenness = "mouth_openness"
)

// ClassificationResult is the output of one classification pass.
type ClassificationResult struct {
	DetectedEmotion entity.EmotionCategory             `json:"detected_emotion"`
	ConfidenceScore float64                            `json:"confidence_score"`
	AllScores       map[entity.EmotionCategory]float64 `json:"all_scores"`
	Features        Features                           `json:"features"`
}
