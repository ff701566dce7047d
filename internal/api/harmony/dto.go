package harmony

import (
	"StorySignGolang/internal/entity"
	"time"
)

type CreateSessionRequest struct {
	TargetEmotion    string `json:"target_emotion" validate:"required"`
	DifficultyLevel  string `json:"difficulty_level" validate:"required"`
	ExpectedDuration int    `json:"expected_duration,omitempty" validate:"omitempty,gte=0"`
	UserID           string `json:"user_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionID       string                 `json:"session_id"`
	TargetEmotion   entity.EmotionCategory `json:"target_emotion"`
	DifficultyLevel entity.DifficultyLevel `json:"difficulty_level"`
	Status          entity.SessionStatus   `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ProcessFrameRequest struct {
	FrameData string `json:"frame_data"`
}

// FrameResult is the per-frame response. Success must be checked before
// reading the emotion fields; a failed frame carries only Error.
type FrameResult struct {
	Success           bool                               `json:"success"`
	DetectedEmotion   entity.EmotionCategory             `json:"detected_emotion,omitempty"`
	ConfidenceScore   float64                            `json:"confidence_score,omitempty"`
	AllScores         map[entity.EmotionCategory]float64 `json:"all_scores,omitempty"`
	FacialLandmarks   entity.Landmarks                   `json:"facial_landmarks,omitempty"`
	FeedbackMessage   string                             `json:"feedback_message,omitempty"`
	SessionStatistics *entity.SessionStatistics          `json:"session_statistics,omitempty"`
	Error             string                             `json:"error,omitempty"`
}

type FinalizeSessionRequest struct {
	DetectedEmotions []string           `json:"detected_emotions" validate:"required"`
	ConfidenceScores []float64          `json:"confidence_scores" validate:"omitempty,dive,gte=0,lte=1"`
	LandmarksData    []entity.Landmarks `json:"landmarks_data,omitempty"`
	SessionDuration  int64              `json:"session_duration_ms" validate:"gte=0"`
}

type SessionSnapshot struct {
	SessionID       string                   `json:"session_id"`
	UserID          string                   `json:"user_id,omitempty"`
	TargetEmotion   entity.EmotionCategory   `json:"target_emotion"`
	DifficultyLevel entity.DifficultyLevel   `json:"difficulty_level"`
	Status          entity.SessionStatus     `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
	Statistics      entity.SessionStatistics `json:"statistics"`
	Final           *entity.FinalStatistics  `json:"final_statistics,omitempty"`
}

type DeleteSessionResponse struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

type RecentSession struct {
	SessionID          string                 `json:"session_id"`
	TargetEmotion      entity.EmotionCategory `json:"target_emotion"`
	AccuracyPercentage float64                `json:"accuracy_percentage"`
	SessionScore       int                    `json:"session_score"`
	CompletedAt        time.Time              `json:"completed_at"`
}

type PracticedEmotion struct {
	Emotion  entity.EmotionCategory `json:"emotion"`
	Sessions int                    `json:"sessions"`
}

type UserStatisticsResponse struct {
	UserID          string             `json:"user_id,omitempty"`
	TotalSessions   int                `json:"total_sessions"`
	AverageAccuracy float64            `json:"average_accuracy"`
	TopEmotions     []PracticedEmotion `json:"top_emotions"`
	RecentSessions  []RecentSession    `json:"recent_sessions"`
	ProgressTrend   []int              `json:"progress_trend"`
}

// WSFrameMessage is one message on the live practice stream.
type WSFrameMessage struct {
	SessionID string `json:"session_id"`
	FrameData string `json:"frame_data"`
}
