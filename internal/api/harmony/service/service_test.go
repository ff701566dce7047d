package harmonyService_test

import (
	"StorySignGolang/internal/api/harmony"
	harmonyRepository "StorySignGolang/internal/api/harmony/repository"
	harmonyService "StorySignGolang/internal/api/harmony/service"
	"StorySignGolang/internal/entity"
	"StorySignGolang/pkg/emotion"
	"StorySignGolang/pkg/landmark"
	"StorySignGolang/pkg/s3"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// ---- stub dependencies ----

type zeroJitterSource struct{}

func (zeroJitterSource) Int63() int64 { return 1 << 62 }
func (zeroJitterSource) Seed(int64)   {}

type stubDetector struct {
	landmarks entity.Landmarks
	err       error
}

func (d *stubDetector) Detect(_ context.Context, frame *landmark.Frame) (*landmark.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &landmark.Result{
		Landmarks:  d.landmarks,
		ImageShape: [2]int{frame.Height, frame.Width},
	}, nil
}

func (d *stubDetector) Close() error { return nil }

type stubRedis struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	setErr    error
	setCalls  int
	delCalls  int
}

func (r *stubRedis) SetSessionSnapshot(_ context.Context, sessionID string, payload []byte, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls++
	if r.setErr != nil {
		return r.setErr
	}
	r.snapshots[sessionID] = payload
	return nil
}

func (r *stubRedis) GetSessionSnapshot(_ context.Context, sessionID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.snapshots[sessionID]
	if !ok {
		return nil, errors.New("session snapshot not found")
	}
	return payload, nil
}

func (r *stubRedis) DeleteSessionSnapshot(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delCalls++
	delete(r.snapshots, sessionID)
	return nil
}

type stubArchive struct {
	mu       sync.Mutex
	inserted []entity.EmotionSession
	err      error
}

func (a *stubArchive) InsertCompletedSession(_ context.Context, session entity.EmotionSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.inserted = append(a.inserted, session)
	return nil
}

type stubS3 struct {
	mu          sync.Mutex
	uploads     map[string][]byte
	deletedKeys []string
	err         error
}

func (s *stubS3) UploadSessionReport(sessionID string, payload []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[sessionID] = payload
	return "https://bucket.local/" + sessionID, nil
}

func (s *stubS3) PresignReportUrl(key string) (string, error) { return key, nil }

func (s *stubS3) DeleteReport(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.deletedKeys = append(s.deletedKeys, key)
	return nil
}

type stubUtils struct {
	counter int
}

func (u *stubUtils) NewULIDFromTimestamp(time.Time) (string, error) {
	u.counter++
	return fmt.Sprintf("SESSION-%03d", u.counter), nil
}

func (u *stubUtils) ValidateImageFile(*multipart.FileHeader) error      { return nil }
func (u *stubUtils) ConvertFileToBase64(multipart.File) (string, error) { return "", nil }

// ---- fixture ----

type fixture struct {
	svc      harmonyService.IHarmonyService
	repo     *harmonyRepository.Repository
	detector *stubDetector
	redis    *stubRedis
	archive  *stubArchive
	s3       *stubS3
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := harmonyRepository.New(nil, log, harmonyRepository.Config{})
	t.Cleanup(repo.Close)

	archive := &stubArchive{}
	repo.Archive = archive

	detector := &stubDetector{landmarks: landmark.SyntheticFace()}
	redis := &stubRedis{snapshots: map[string][]byte{}}
	s3 := &stubS3{}

	scorer := emotion.NewScorer(rand.New(zeroJitterSource{}), log)

	return &fixture{
		svc:      harmonyService.New(log, repo, detector, scorer, redis, s3, &stubUtils{}),
		repo:     repo,
		detector: detector,
		redis:    redis,
		archive:  archive,
		s3:       s3,
	}
}

func (f *fixture) createSession(t *testing.T, target string) string {
	t.Helper()

	resp, err := f.svc.CreateSession(context.Background(), harmony.CreateSessionRequest{
		TargetEmotion:   target,
		DifficultyLevel: "normal",
		UserID:          "user-1",
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return resp.SessionID
}

func validFrame(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// happyFace shifts the synthetic mouth corners down, which reads as a smile
// in the landmark coordinate system (y grows downward).
func happyFace() entity.Landmarks {
	face := landmark.SyntheticFace()
	face[48].Y += 0.05
	face[54].Y += 0.05
	return face
}

// ---- session lifecycle ----

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, harmony.CreateSessionRequest{
		TargetEmotion:   "happy",
		DifficultyLevel: "normal",
		UserID:          "user-1",
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if resp.SessionID == "" {
		t.Error("empty session id")
	}
	if resp.Status != entity.SessionActive {
		t.Errorf("status = %v, want active", resp.Status)
	}
	if resp.TargetEmotion != entity.EmotionHappy || resp.DifficultyLevel != entity.DifficultyNormal {
		t.Errorf("config = %v/%v, want happy/normal", resp.TargetEmotion, resp.DifficultyLevel)
	}

	snapshot, err := f.svc.GetSessionSnapshot(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("GetSessionSnapshot() error = %v", err)
	}
	if snapshot.Status != entity.SessionActive {
		t.Errorf("stored status = %v, want active", snapshot.Status)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     harmony.CreateSessionRequest
		wantErr error
	}{
		{
			name:    "unknown target emotion",
			req:     harmony.CreateSessionRequest{TargetEmotion: "ecstatic", DifficultyLevel: "normal"},
			wantErr: harmony.ErrInvalidTargetEmotion,
		},
		{
			name:    "unknown difficulty",
			req:     harmony.CreateSessionRequest{TargetEmotion: "happy", DifficultyLevel: "impossible"},
			wantErr: harmony.ErrInvalidDifficulty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSession(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSession() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---- frame processing ----

func TestProcessFrame_HappyPath(t *testing.T) {
	f := newFixture(t)
	f.detector.landmarks = happyFace()
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	result := f.svc.ProcessFrame(ctx, sessionID, validFrame(t))

	if !result.Success {
		t.Fatalf("ProcessFrame() failed: %s", result.Error)
	}
	if result.DetectedEmotion != entity.EmotionHappy {
		t.Fatalf("detected = %v (scores %v), want happy", result.DetectedEmotion, result.AllScores)
	}
	if result.ConfidenceScore <= 0.6 || result.ConfidenceScore > 1 {
		t.Errorf("confidence = %v, want in (0.6, 1]", result.ConfidenceScore)
	}
	if len(result.AllScores) != len(entity.EmotionOrder) {
		t.Errorf("got %d scores, want %d", len(result.AllScores), len(entity.EmotionOrder))
	}
	if len(result.FacialLandmarks) != landmark.SyntheticLandmarkCount {
		t.Errorf("got %d landmarks, want %d", len(result.FacialLandmarks), landmark.SyntheticLandmarkCount)
	}
	if !strings.HasPrefix(result.FeedbackMessage, "Good job!") {
		t.Errorf("feedback = %q, want the mid-confidence tier", result.FeedbackMessage)
	}

	stats := result.SessionStatistics
	if stats == nil {
		t.Fatal("missing session statistics")
	}
	if stats.TotalDetections != 1 || stats.TargetMatches != 1 {
		t.Errorf("counts = %d/%d, want 1/1", stats.TotalDetections, stats.TargetMatches)
	}
	if math.Abs(stats.AverageConfidence-result.ConfidenceScore) > 1e-9 {
		t.Errorf("avg confidence = %v, want %v", stats.AverageConfidence, result.ConfidenceScore)
	}
	wantScore := int(math.Round(100 * (0.7 + 0.3*result.ConfidenceScore)))
	if stats.SessionScore != wantScore {
		t.Errorf("session score = %d, want %d", stats.SessionScore, wantScore)
	}

	second := f.svc.ProcessFrame(ctx, sessionID, validFrame(t))
	if second.SessionStatistics == nil || second.SessionStatistics.TotalDetections != 2 {
		t.Errorf("second frame statistics = %+v, want 2 detections", second.SessionStatistics)
	}
}

func TestProcessFrame_DecodeFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	result := f.svc.ProcessFrame(ctx, sessionID, "???not-an-image???")

	if result.Success {
		t.Fatal("ProcessFrame() succeeded on garbage input")
	}
	if result.Error != "Failed to decode image data" {
		t.Errorf("error = %q, want decode failure message", result.Error)
	}
	if result.SessionStatistics != nil {
		t.Error("failed frame carried statistics")
	}

	snapshot, _ := f.svc.GetSessionSnapshot(ctx, sessionID)
	if snapshot.Statistics.TotalDetections != 0 {
		t.Errorf("failed frame mutated statistics: %+v", snapshot.Statistics)
	}
}

func TestProcessFrame_NoFace(t *testing.T) {
	f := newFixture(t)
	f.detector.err = landmark.ErrNoFaceDetected
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	result := f.svc.ProcessFrame(ctx, sessionID, validFrame(t))

	if result.Success {
		t.Fatal("ProcessFrame() succeeded with no face")
	}
	if result.Error != "No face detected in image" {
		t.Errorf("error = %q, want no-face message", result.Error)
	}

	snapshot, _ := f.svc.GetSessionSnapshot(ctx, sessionID)
	if snapshot.Statistics.TotalDetections != 0 {
		t.Errorf("failed frame mutated statistics: %+v", snapshot.Statistics)
	}
}

func TestProcessFrame_DetectorFailure(t *testing.T) {
	f := newFixture(t)
	f.detector.err = errors.New("inference service unreachable")
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	result := f.svc.ProcessFrame(ctx, sessionID, validFrame(t))

	if result.Success {
		t.Fatal("ProcessFrame() succeeded despite detector failure")
	}
	if result.Error != "Failed to process frame" {
		t.Errorf("error = %q, want generic detection failure message", result.Error)
	}
}

func TestProcessFrame_UnknownSession(t *testing.T) {
	f := newFixture(t)
	f.detector.landmarks = happyFace()
	ctx := context.Background()

	result := f.svc.ProcessFrame(ctx, "no-such-session", validFrame(t))

	if !result.Success {
		t.Fatalf("ProcessFrame() failed: %s", result.Error)
	}
	if result.SessionStatistics != nil {
		t.Error("unknown session carried statistics")
	}
	if result.FeedbackMessage != "Keep practicing! Every attempt helps you improve." {
		t.Errorf("feedback = %q, want the generic encouragement", result.FeedbackMessage)
	}
}

func TestProcessFrame_CompletedSession(t *testing.T) {
	f := newFixture(t)
	f.detector.landmarks = happyFace()
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")
	if _, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy"},
		ConfidenceScores: []float64{0.9},
	}); err != nil {
		t.Fatalf("FinalizeSession() error = %v", err)
	}

	result := f.svc.ProcessFrame(ctx, sessionID, validFrame(t))

	// Detection still works against a completed session, it just can no
	// longer move the statistics.
	if !result.Success {
		t.Fatalf("ProcessFrame() failed: %s", result.Error)
	}
	if result.SessionStatistics != nil {
		t.Error("completed session carried updated statistics")
	}
	if !strings.Contains(result.FeedbackMessage, "happy") {
		t.Errorf("feedback = %q, want it to reference the target emotion", result.FeedbackMessage)
	}

	snapshot, _ := f.svc.GetSessionSnapshot(ctx, sessionID)
	if snapshot.Statistics.TotalDetections != 0 {
		t.Errorf("completed session statistics mutated: %+v", snapshot.Statistics)
	}
}

// ---- finalize ----

func TestFinalizeSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	snapshot, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy", "happy", "sad"},
		ConfidenceScores: []float64{0.9, 0.8, 0.7},
		SessionDuration:  30000,
	})
	if err != nil {
		t.Fatalf("FinalizeSession() error = %v", err)
	}

	if snapshot.Status != entity.SessionCompleted {
		t.Errorf("status = %v, want completed", snapshot.Status)
	}
	final := snapshot.Final
	if final == nil {
		t.Fatal("missing final statistics")
	}
	if final.TotalDetections != 3 || final.TargetMatches != 2 {
		t.Errorf("counts = %d/%d, want 3/2", final.TotalDetections, final.TargetMatches)
	}
	if math.Abs(final.AccuracyPercentage-66.7) > 1e-9 {
		t.Errorf("accuracy = %v, want 66.7", final.AccuracyPercentage)
	}
	if math.Abs(final.AverageConfidence-0.8) > 1e-9 {
		t.Errorf("avg confidence = %v, want 0.8", final.AverageConfidence)
	}
	if final.SessionScore != 71 {
		t.Errorf("session score = %d, want 71", final.SessionScore)
	}
	if final.DurationMs != 30000 {
		t.Errorf("duration = %d, want 30000", final.DurationMs)
	}
	if final.EmotionBreakdown[entity.EmotionHappy] != 2 || final.EmotionBreakdown[entity.EmotionSad] != 1 {
		t.Errorf("breakdown = %v, want happy:2 sad:1", final.EmotionBreakdown)
	}

	// completed sessions are exported everywhere
	if f.redis.setCalls != 1 {
		t.Errorf("snapshot cache writes = %d, want 1", f.redis.setCalls)
	}
	if len(f.archive.inserted) != 1 {
		t.Errorf("archive inserts = %d, want 1", len(f.archive.inserted))
	}
	if len(f.s3.uploads) != 1 {
		t.Errorf("report uploads = %d, want 1", len(f.s3.uploads))
	}
}

func TestFinalizeSession_UnknownEmotionCountsAsNeutral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	snapshot, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy", "banana"},
		ConfidenceScores: []float64{0.9, 0.5},
	})
	if err != nil {
		t.Fatalf("FinalizeSession() error = %v", err)
	}

	if snapshot.Final.EmotionBreakdown[entity.EmotionHappy] != 1 {
		t.Errorf("breakdown = %v, want happy:1", snapshot.Final.EmotionBreakdown)
	}
	if snapshot.Final.EmotionBreakdown[entity.EmotionNeutral] != 1 {
		t.Errorf("breakdown = %v, want the unknown label folded into neutral", snapshot.Final.EmotionBreakdown)
	}
	if snapshot.Final.TargetMatches != 1 {
		t.Errorf("matches = %d, want 1", snapshot.Final.TargetMatches)
	}
}

func TestFinalizeSession_LengthMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	_, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy", "sad"},
		ConfidenceScores: []float64{0.9},
	})
	if !errors.Is(err, harmony.ErrFinalizeMismatch) {
		t.Errorf("FinalizeSession() error = %v, want %v", err, harmony.ErrFinalizeMismatch)
	}

	snapshot, _ := f.svc.GetSessionSnapshot(ctx, sessionID)
	if snapshot.Status != entity.SessionActive {
		t.Errorf("status after rejected finalize = %v, want still active", snapshot.Status)
	}
}

func TestFinalizeSession_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.FinalizeSession(context.Background(), "no-such-session", harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy"},
		ConfidenceScores: []float64{0.9},
	})
	if !errors.Is(err, harmony.ErrSessionNotFound) {
		t.Errorf("FinalizeSession() error = %v, want %v", err, harmony.ErrSessionNotFound)
	}
}

func TestFinalizeSession_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")
	req := harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy", "sad"},
		ConfidenceScores: []float64{0.8, 0.6},
	}

	first, err := f.svc.FinalizeSession(ctx, sessionID, req)
	if err != nil {
		t.Fatalf("first FinalizeSession() error = %v", err)
	}
	second, err := f.svc.FinalizeSession(ctx, sessionID, req)
	if err != nil {
		t.Fatalf("second FinalizeSession() error = %v", err)
	}

	if first.Final.SessionScore != second.Final.SessionScore ||
		first.Final.AccuracyPercentage != second.Final.AccuracyPercentage {
		t.Errorf("repeated finalize diverged: %+v vs %+v", first.Final, second.Final)
	}
	if second.Status != entity.SessionCompleted {
		t.Errorf("status = %v, want completed", second.Status)
	}
}

func TestFinalizeSession_ClampsConfidenceScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	snapshot, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy", "sad"},
		ConfidenceScores: []float64{5.0, -1.0},
	})
	if err != nil {
		t.Fatalf("FinalizeSession() error = %v", err)
	}

	final := snapshot.Final
	if final.AverageConfidence < 0 || final.AverageConfidence > 1 {
		t.Errorf("average confidence = %v, want in [0,1]", final.AverageConfidence)
	}
	if final.SessionScore < 0 || final.SessionScore > 100 {
		t.Errorf("session score = %d, want in [0,100]", final.SessionScore)
	}
	// clamped to 1.0 and 0.0
	if math.Abs(final.AverageConfidence-0.5) > 1e-9 {
		t.Errorf("average confidence = %v, want 0.5", final.AverageConfidence)
	}
	// round(100 * (0.7*0.5 + 0.3*0.5)) = 50
	if final.SessionScore != 50 {
		t.Errorf("session score = %d, want 50", final.SessionScore)
	}
}

func TestFinalizeSession_ExportFailuresAreBestEffort(t *testing.T) {
	f := newFixture(t)
	f.redis.setErr = errors.New("redis down")
	f.archive.err = errors.New("db down")
	f.s3.err = errors.New("bucket down")
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	snapshot, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy"},
		ConfidenceScores: []float64{0.9},
	})
	if err != nil {
		t.Fatalf("FinalizeSession() error = %v, want success despite export failures", err)
	}
	if snapshot.Status != entity.SessionCompleted {
		t.Errorf("status = %v, want completed", snapshot.Status)
	}
}

// ---- delete and snapshot reads ----

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")

	if !f.svc.DeleteSession(ctx, sessionID) {
		t.Error("DeleteSession() = false for existing session")
	}
	if f.redis.delCalls != 1 {
		t.Errorf("snapshot cache deletes = %d, want 1", f.redis.delCalls)
	}
	if len(f.s3.deletedKeys) != 1 || f.s3.deletedKeys[0] != s3.ReportKey(sessionID) {
		t.Errorf("report deletes = %v, want [%s]", f.s3.deletedKeys, s3.ReportKey(sessionID))
	}
	if f.svc.DeleteSession(ctx, sessionID) {
		t.Error("second DeleteSession() = true")
	}
	if _, err := f.svc.GetSessionSnapshot(ctx, sessionID); !errors.Is(err, harmony.ErrSessionNotFound) {
		t.Errorf("GetSessionSnapshot() after delete error = %v, want %v", err, harmony.ErrSessionNotFound)
	}
}

func TestGetSessionSnapshot_FallsBackToCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessionID := f.createSession(t, "happy")
	if _, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
		DetectedEmotions: []string{"happy"},
		ConfidenceScores: []float64{0.9},
	}); err != nil {
		t.Fatalf("FinalizeSession() error = %v", err)
	}

	// Simulate the idle sweep evicting the completed session.
	f.repo.Sessions.Delete(ctx, sessionID)

	snapshot, err := f.svc.GetSessionSnapshot(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSessionSnapshot() error = %v, want cache hit", err)
	}
	if snapshot.Status != entity.SessionCompleted || snapshot.SessionID != sessionID {
		t.Errorf("cached snapshot = %+v, want the completed session", snapshot)
	}
}

// ---- user statistics ----

func TestGetUserStatistics_Empty(t *testing.T) {
	f := newFixture(t)

	resp := f.svc.GetUserStatistics(context.Background(), "user-1")

	if resp.TotalSessions != 0 || resp.AverageAccuracy != 0 {
		t.Errorf("empty stats = %+v, want zeroes", resp)
	}
	if resp.TopEmotions == nil || resp.RecentSessions == nil || resp.ProgressTrend == nil {
		t.Error("aggregate slices must be empty, not nil")
	}
}

func TestGetUserStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	finalize := func(target string, detected []string, confidences []float64) string {
		sessionID := f.createSession(t, target)
		if _, err := f.svc.FinalizeSession(ctx, sessionID, harmony.FinalizeSessionRequest{
			DetectedEmotions: detected,
			ConfidenceScores: confidences,
		}); err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}
		// keep CompletedAt strictly ordered
		time.Sleep(2 * time.Millisecond)
		return sessionID
	}

	finalize("happy", []string{"happy"}, []float64{1.0})     // 100%, score 100
	finalize("happy", []string{"sad"}, []float64{0.5})       // 0%, score 15
	last := finalize("sad", []string{"sad"}, []float64{0.5}) // 100%, score 85

	resp := f.svc.GetUserStatistics(ctx, "user-1")

	if resp.TotalSessions != 3 {
		t.Fatalf("total sessions = %d, want 3", resp.TotalSessions)
	}
	if math.Abs(resp.AverageAccuracy-66.7) > 1e-9 {
		t.Errorf("average accuracy = %v, want 66.7", resp.AverageAccuracy)
	}

	if len(resp.TopEmotions) != 2 {
		t.Fatalf("top emotions = %v, want 2 entries", resp.TopEmotions)
	}
	if resp.TopEmotions[0].Emotion != entity.EmotionHappy || resp.TopEmotions[0].Sessions != 2 {
		t.Errorf("top emotion = %+v, want happy with 2 sessions", resp.TopEmotions[0])
	}

	if len(resp.RecentSessions) != 3 {
		t.Fatalf("recent sessions = %d, want 3", len(resp.RecentSessions))
	}
	if resp.RecentSessions[0].SessionID != last {
		t.Errorf("most recent session = %s, want %s", resp.RecentSessions[0].SessionID, last)
	}

	if len(resp.ProgressTrend) != 3 {
		t.Fatalf("progress trend = %v, want 3 entries", resp.ProgressTrend)
	}
	if resp.ProgressTrend[0] != 100 || resp.ProgressTrend[2] != 85 {
		t.Errorf("progress trend = %v, want oldest-first [100 15 85]", resp.ProgressTrend)
	}

	if other := f.svc.GetUserStatistics(ctx, "someone-else"); other.TotalSessions != 0 {
		t.Errorf("other user sees %d sessions, want 0", other.TotalSessions)
	}
}
