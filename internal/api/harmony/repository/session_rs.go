package harmonyRepository

import (
	"StorySignGolang/internal/api/harmony"
	"StorySignGolang/internal/entity"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute

	accuracyWeight   = 0.7
	confidenceWeight = 0.3
)

// sessionStore owns every live EmotionSession. All mutation is serialized
// behind the mutex, and callers only ever see copies, so nothing outside
// this store can touch a session's accumulators. Idle sessions are evicted
// by a background sweep so an abandoned session cannot pin memory forever.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.EmotionSession
	ttl      time.Duration
	log      *logrus.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

func newSessionStore(log *logrus.Logger, cfg Config) *sessionStore {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = defaultSweepInterval
	}

	s := &sessionStore{
		sessions: make(map[string]*entity.EmotionSession),
		ttl:      ttl,
		log:      log,
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop(sweep)

	return s
}

func (s *sessionStore) Create(_ context.Context, session entity.EmotionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return harmony.ErrBadRequest
	}

	stored := copySession(&session)
	s.sessions[session.ID] = &stored
	return nil
}

func (s *sessionStore) Get(_ context.Context, sessionID string) (entity.EmotionSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return entity.EmotionSession{}, false
	}
	return copySession(session), true
}

// AppendDetection records one detection and recomputes the running
// statistics. Only active sessions accept detections; a completed or unknown
// session leaves the store untouched and reports ok=false.
func (s *sessionStore) AppendDetection(_ context.Context, sessionID string, detection entity.Detection, landmarks entity.Landmarks) (entity.SessionStatistics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.Status != entity.SessionActive {
		return entity.SessionStatistics{}, false
	}

	session.Detections = append(session.Detections, detection)
	session.LandmarksHistory = append(session.LandmarksHistory, landmarks)
	session.LastActivity = time.Now()

	stats := &session.Statistics
	stats.TotalDetections = len(session.Detections)
	if detection.IsTargetMatch {
		stats.TargetMatches++
	}
	stats.ConfidenceSum += detection.ConfidenceScore
	stats.AverageConfidence = stats.ConfidenceSum / float64(stats.TotalDetections)

	accuracy := float64(stats.TargetMatches) / float64(stats.TotalDetections)
	stats.SessionScore = int(math.Round(100 * (accuracyWeight*accuracy + confidenceWeight*stats.AverageConfidence)))

	return *stats, true
}

// Complete transitions a session to completed and installs the terminal
// snapshot. Repeating the call on an already completed session just replaces
// the snapshot, which keeps finalize idempotent for identical inputs.
func (s *sessionStore) Complete(_ context.Context, sessionID string, final entity.FinalStatistics) (entity.EmotionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return entity.EmotionSession{}, harmony.ErrSessionNotFound
	}

	session.Status = entity.SessionCompleted
	session.LastActivity = time.Now()
	finalCopy := final
	session.Final = &finalCopy

	return copySession(session), nil
}

func (s *sessionStore) Delete(_ context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	return ok
}

func (s *sessionStore) Completed(_ context.Context, userID string) []entity.EmotionSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var completed []entity.EmotionSession
	for _, session := range s.sessions {
		if session.Status != entity.SessionCompleted {
			continue
		}
		if userID != "" && session.UserID != userID {
			continue
		}
		completed = append(completed, copySession(session))
	}
	return completed
}

func (s *sessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *sessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*entity.EmotionSession)
}

func (s *sessionStore) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *sessionStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *sessionStore) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var evicted int
	for id, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		s.log.WithFields(logrus.Fields{
			"evicted":   evicted,
			"remaining": remaining,
		}).Info("Swept idle emotion sessions")
	}
}

func copySession(session *entity.EmotionSession) entity.EmotionSession {
	out := *session

	out.Detections = make([]entity.Detection, len(session.Detections))
	copy(out.Detections, session.Detections)

	out.LandmarksHistory = make([]entity.Landmarks, len(session.LandmarksHistory))
	for i, lms := range session.LandmarksHistory {
		lmCopy := make(entity.Landmarks, len(lms))
		copy(lmCopy, lms)
		out.LandmarksHistory[i] = lmCopy
	}

	if session.Final != nil {
		finalCopy := *session.Final
		if session.Final.EmotionBreakdown != nil {
			finalCopy.EmotionBreakdown = make(map[entity.EmotionCategory]int, len(session.Final.EmotionBreakdown))
			for k, v := range session.Final.EmotionBreakdown {
				finalCopy.EmotionBreakdown[k] = v
			}
		}
		out.Final = &finalCopy
	}

	return out
}
