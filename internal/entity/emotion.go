package entity

// EmotionCategory is the closed set of emotions the Harmony classifier can
// report. EmotionOrder is the canonical enumeration order; ties in the
// classifier are broken by the first entry in that order.
type EmotionCategory string

const (
	EmotionHappy     EmotionCategory = "happy"
	EmotionSad       EmotionCategory = "sad"
	EmotionSurprised EmotionCategory = "surprised"
	EmotionAngry     EmotionCategory = "angry"
	EmotionFearful   EmotionCategory = "fearful"
	EmotionDisgusted EmotionCategory = "disgusted"
	EmotionNeutral   EmotionCategory = "neutral"
)

var EmotionOrder = []EmotionCategory{
	EmotionHappy,
	EmotionSad,
	EmotionSurprised,
	EmotionAngry,
	EmotionFearful,
	EmotionDisgusted,
	EmotionNeutral,
}

func (e EmotionCategory) String() string {
	return string(e)
}

func (e EmotionCategory) Valid() bool {
	for _, known := range EmotionOrder {
		if e == known {
			return true
		}
	}
	return false
}

func ParseEmotion(s string) (EmotionCategory, bool) {
	e := EmotionCategory(s)
	return e, e.Valid()
}

// LandmarkPoint is a normalized 3D facial landmark. X and Y are in the 0..1
// image range with Y growing downward; Z is relative depth.
type LandmarkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Landmarks []LandmarkPoint
