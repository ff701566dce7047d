package entity

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyNormal DifficultyLevel = "normal"
	DifficultyHard   DifficultyLevel = "hard"
)

func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// Detection is the classification result of one submitted frame. Detections
// are append-only; once recorded they are never mutated or removed.
type Detection struct {
	Timestamp       time.Time       `json:"timestamp"`
	DetectedEmotion EmotionCategory `json:"detected_emotion"`
	ConfidenceScore float64         `json:"confidence_score"`
	IsTargetMatch   bool            `json:"is_target_match"`
}

// SessionStatistics are the running accumulators recomputed after every
// successful detection. ConfidenceSum carries the exact running sum so the
// average stays the true arithmetic mean without an O(n) rescan.
type SessionStatistics struct {
	TotalDetections   int     `json:"total_detections"`
	TargetMatches     int     `json:"target_matches"`
	AverageConfidence float64 `json:"average_confidence"`
	SessionScore      int     `json:"session_score"`
	ConfidenceSum     float64 `json:"-"`
}

// FinalStatistics is the terminal snapshot computed exactly once at
// completion from the caller-supplied aggregate lists. It is intentionally
// independent of the running SessionStatistics and the two may diverge.
type FinalStatistics struct {
	TotalDetections    int                     `json:"total_detections"`
	TargetMatches      int                     `json:"target_matches"`
	AccuracyPercentage float64                 `json:"accuracy_percentage"`
	AverageConfidence  float64                 `json:"average_confidence"`
	SessionScore       int                     `json:"session_score"`
	DurationMs         int64                   `json:"duration_ms"`
	EmotionBreakdown   map[EmotionCategory]int `json:"emotion_breakdown"`
	CompletedAt        time.Time               `json:"completed_at"`
}

// EmotionSession is one practice attempt at expressing a target emotion.
// Configuration fields are immutable after creation; Status only moves
// active -> completed. All mutation goes through the session store.
type EmotionSession struct {
	ID               string            `json:"session_id"`
	UserID           string            `json:"user_id,omitempty"`
	TargetEmotion    EmotionCategory   `json:"target_emotion"`
	DifficultyLevel  DifficultyLevel   `json:"difficulty_level"`
	ExpectedDuration int               `json:"expected_duration,omitempty"`
	Status           SessionStatus     `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActivity     time.Time         `json:"last_activity"`
	Detections       []Detection       `json:"detections"`
	LandmarksHistory []Landmarks       `json:"-"`
	Statistics       SessionStatistics `json:"statistics"`
	Final            *FinalStatistics  `json:"final_statistics,omitempty"`
}
