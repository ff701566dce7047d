package harmonyService

import (
	"StorySignGolang/internal/api/harmony"
	"StorySignGolang/internal/entity"
	contextPkg "StorySignGolang/pkg/context"
	s3Pkg "StorySignGolang/pkg/s3"
	"encoding/json"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	accuracyWeight   = 0.7
	confidenceWeight = 0.3

	snapshotTTL = 24 * time.Hour
)

func (s *harmonyService) CreateSession(ctx context.Context, req harmony.CreateSessionRequest) (harmony.CreateSessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	target, ok := entity.ParseEmotion(req.TargetEmotion)
	if !ok {
		return harmony.CreateSessionResponse{}, harmony.ErrInvalidTargetEmotion
	}

	difficulty := entity.DifficultyLevel(req.DifficultyLevel)
	if !difficulty.Valid() {
		return harmony.CreateSessionResponse{}, harmony.ErrInvalidDifficulty
	}

	sessionID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session ID")
		return harmony.CreateSessionResponse{}, err
	}

	now := time.Now()
	session := entity.EmotionSession{
		ID:               sessionID,
		UserID:           req.UserID,
		TargetEmotion:    target,
		DifficultyLevel:  difficulty,
		ExpectedDuration: req.ExpectedDuration,
		Status:           entity.SessionActive,
		CreatedAt:        now,
		LastActivity:     now,
	}

	if err := s.repo.Sessions.Create(ctx, session); err != nil {
		return harmony.CreateSessionResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"session_id":     sessionID,
		"target_emotion": target,
		"difficulty":     difficulty,
	}).Info("Created emotion practice session")

	return harmony.CreateSessionResponse{
		SessionID:       sessionID,
		TargetEmotion:   target,
		DifficultyLevel: difficulty,
		Status:          entity.SessionActive,
		CreatedAt:       now,
	}, nil
}

// FinalizeSession computes the terminal snapshot from the caller-supplied
// aggregate lists, independent of the running statistics, then marks the
// session completed. This is the only operation that fails hard on an
// unknown session.
func (s *harmonyService) FinalizeSession(ctx context.Context, sessionID string, req harmony.FinalizeSessionRequest) (harmony.SessionSnapshot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	session, ok := s.repo.Sessions.Get(ctx, sessionID)
	if !ok {
		return harmony.SessionSnapshot{}, harmony.ErrSessionNotFound
	}

	if len(req.ConfidenceScores) > 0 && len(req.ConfidenceScores) != len(req.DetectedEmotions) {
		return harmony.SessionSnapshot{}, harmony.ErrFinalizeMismatch
	}

	final := buildFinalStatistics(session.TargetEmotion, req)

	completed, err := s.repo.Sessions.Complete(ctx, sessionID, final)
	if err != nil {
		return harmony.SessionSnapshot{}, err
	}

	snapshot := toSnapshot(completed)

	s.log.WithFields(logrus.Fields{
		"request_id":          requestID,
		"session_id":          sessionID,
		"accuracy_percentage": final.AccuracyPercentage,
		"session_score":       final.SessionScore,
	}).Info("Finalized emotion practice session")

	s.exportCompletedSession(ctx, completed, req.LandmarksData, snapshot)

	return snapshot, nil
}

func buildFinalStatistics(target entity.EmotionCategory, req harmony.FinalizeSessionRequest) entity.FinalStatistics {
	total := len(req.DetectedEmotions)
	matches := 0
	breakdown := make(map[entity.EmotionCategory]int)
	for _, raw := range req.DetectedEmotions {
		detected, ok := entity.ParseEmotion(raw)
		if !ok {
			detected = entity.EmotionNeutral
		}
		breakdown[detected]++
		if detected == target {
			matches++
		}
	}

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(matches) / float64(total)
	}

	avgConfidence := 0.0
	if len(req.ConfidenceScores) > 0 {
		sum := 0.0
		for _, c := range req.ConfidenceScores {
			sum += clampConfidence(c)
		}
		avgConfidence = sum / float64(len(req.ConfidenceScores))
	}

	return entity.FinalStatistics{
		TotalDetections:    total,
		TargetMatches:      matches,
		AccuracyPercentage: math.Round(accuracy*1000) / 10,
		AverageConfidence:  avgConfidence,
		SessionScore:       int(math.Round(100 * (accuracyWeight*accuracy + confidenceWeight*avgConfidence))),
		DurationMs:         req.SessionDuration,
		EmotionBreakdown:   breakdown,
		CompletedAt:        time.Now(),
	}
}

// Confidence is a probability; a client reporting values outside [0,1] must
// not push average_confidence or session_score out of their ranges.
func clampConfidence(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// exportCompletedSession pushes the terminal snapshot to the snapshot cache,
// the archive database and the report bucket. All three are best-effort:
// a failed export never fails the finalize call.
func (s *harmonyService) exportCompletedSession(ctx context.Context, session entity.EmotionSession, landmarksData []entity.Landmarks, snapshot harmony.SessionSnapshot) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.redisServer != nil {
		if payload, err := json.Marshal(snapshot); err == nil {
			if err := s.redisServer.SetSessionSnapshot(ctx, session.ID, payload, snapshotTTL); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"session_id": session.ID,
					"error":      err.Error(),
				}).Warn("Failed to cache session snapshot")
			}
		}
	}

	if s.repo.Archive != nil {
		if err := s.repo.Archive.InsertCompletedSession(ctx, session); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": session.ID,
				"error":      err.Error(),
			}).Warn("Failed to archive completed session")
		}
	}

	if s.s3Client != nil {
		report := struct {
			harmony.SessionSnapshot
			LandmarksHistory []entity.Landmarks `json:"landmarks_history,omitempty"`
		}{snapshot, landmarksData}

		if payload, err := json.Marshal(report); err == nil {
			if _, err := s.s3Client.UploadSessionReport(session.ID, payload); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"session_id": session.ID,
					"error":      err.Error(),
				}).Warn("Failed to upload session report")
			}
		}
	}
}

func (s *harmonyService) DeleteSession(ctx context.Context, sessionID string) bool {
	deleted := s.repo.Sessions.Delete(ctx, sessionID)

	if deleted && s.redisServer != nil {
		if err := s.redisServer.DeleteSessionSnapshot(ctx, sessionID); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Failed to delete session snapshot")
		}
	}

	if deleted && s.s3Client != nil {
		if err := s.s3Client.DeleteReport(s3Pkg.ReportKey(sessionID)); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Failed to delete session report")
		}
	}

	return deleted
}

// GetSessionSnapshot serves live sessions from the in-memory store and falls
// back to the snapshot cache for sessions the sweep has already evicted.
func (s *harmonyService) GetSessionSnapshot(ctx context.Context, sessionID string) (harmony.SessionSnapshot, error) {
	if session, ok := s.repo.Sessions.Get(ctx, sessionID); ok {
		return toSnapshot(session), nil
	}

	if s.redisServer != nil {
		payload, err := s.redisServer.GetSessionSnapshot(ctx, sessionID)
		if err == nil {
			var snapshot harmony.SessionSnapshot
			if err := json.Unmarshal(payload, &snapshot); err == nil {
				return snapshot, nil
			}
		}
	}

	return harmony.SessionSnapshot{}, harmony.ErrSessionNotFound
}

func toSnapshot(session entity.EmotionSession) harmony.SessionSnapshot {
	return harmony.SessionSnapshot{
		SessionID:       session.ID,
		UserID:          session.UserID,
		TargetEmotion:   session.TargetEmotion,
		DifficultyLevel: session.DifficultyLevel,
		Status:          session.Status,
		CreatedAt:       session.CreatedAt,
		Statistics:      session.Statistics,
		Final:           session.Final,
	}
}
