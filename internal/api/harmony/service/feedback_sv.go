package harmonyService

import (
	"StorySignGolang/internal/entity"
	"fmt"
)

const (
	excellentThreshold = 0.8
	goodThreshold      = 0.6
)

// generateFeedback maps one detection onto a coaching message. It is a pure
// function of its inputs; session state is read by the caller beforehand.
func (s *harmonyService) generateFeedback(detected entity.EmotionCategory, confidence float64, target entity.EmotionCategory, sessionKnown bool) string {
	if !sessionKnown {
		return "Keep practicing! Every attempt helps you improve."
	}

	if detected == target {
		switch {
		case confidence >= excellentThreshold:
			return fmt.Sprintf("Excellent! Your %s expression is clear and confident. Keep it up!", detected)
		case confidence >= goodThreshold:
			return fmt.Sprintf("Good job! I can see your %s expression, but it could be more distinct.", detected)
		default:
			return fmt.Sprintf("Nice try! Make your %s expression a bit more pronounced.", detected)
		}
	}

	return fmt.Sprintf("I detected %s, but you're practicing %s. Try again!", detected, target)
}
