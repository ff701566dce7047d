package harmonyRepository

import (
	"StorySignGolang/internal/entity"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

// Repository bundles the in-memory session store with the optional Postgres
// archive for completed sessions. Archive is nil when no database is
// configured; callers must treat it as best-effort.
type Repository struct {
	Sessions SessionStore
	Archive  ArchiveStore
	log      *logrus.Logger
}

type SessionStore interface {
	Create(ctx context.Context, session entity.EmotionSession) error
	Get(ctx context.Context, sessionID string) (entity.EmotionSession, bool)
	AppendDetection(ctx context.Context, sessionID string, detection entity.Detection, landmarks entity.Landmarks) (entity.SessionStatistics, bool)
	Complete(ctx context.Context, sessionID string, final entity.FinalStatistics) (entity.EmotionSession, error)
	Delete(ctx context.Context, sessionID string) bool
	Completed(ctx context.Context, userID string) []entity.EmotionSession
	Len() int
	Clear()
	Close()
}

type ArchiveStore interface {
	InsertCompletedSession(ctx context.Context, session entity.EmotionSession) error
}

type Config struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func New(db *sqlx.DB, log *logrus.Logger, cfg Config) *Repository {
	repo := &Repository{
		Sessions: newSessionStore(log, cfg),
		log:      log,
	}

	if db != nil {
		repo.Archive = &archiveRepository{q: db, log: log}
	}

	return repo
}

func (r *Repository) Close() {
	r.Sessions.Close()
}
