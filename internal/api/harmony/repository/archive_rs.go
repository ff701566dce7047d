package harmonyRepository

import (
	"StorySignGolang/internal/entity"
	contextPkg "StorySignGolang/pkg/context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// archiveRepository exports completed-session snapshots to Postgres. It is
// write-only from the service's point of view; live reads always come from
// the in-memory store or the Redis snapshot cache.
type archiveRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *archiveRepository) InsertCompletedSession(ctx context.Context, session entity.EmotionSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	if session.Final == nil {
		return errors.New("session has no final statistics")
	}

	argsKV := map[string]interface{}{
		"id":                  session.ID,
		"user_id":             session.UserID,
		"target_emotion":      string(session.TargetEmotion),
		"difficulty_level":    string(session.DifficultyLevel),
		"total_detections":    session.Final.TotalDetections,
		"target_matches":      session.Final.TargetMatches,
		"accuracy_percentage": session.Final.AccuracyPercentage,
		"average_confidence":  session.Final.AverageConfidence,
		"session_score":       session.Final.SessionScore,
		"duration_ms":         session.Final.DurationMs,
		"completed_at":        session.Final.CompletedAt,
		"created_at":          session.CreatedAt,
	}

	query, args, err := sqlx.Named(queryInsertCompletedSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for InsertCompletedSession")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Database error when archiving completed session")
		return err
	}

	return nil
}
