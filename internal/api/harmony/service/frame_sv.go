package harmonyService

import (
	"StorySignGolang/internal/api/harmony"
	"StorySignGolang/internal/entity"
	contextPkg "StorySignGolang/pkg/context"
	"StorySignGolang/pkg/emotion"
	"StorySignGolang/pkg/landmark"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	msgDecodeFailed = "Failed to decode image data"
	msgNoFace       = "No face detected in image"
	msgDetectFailed = "Failed to process frame"
)

// ProcessFrame runs the full per-frame pipeline: decode, landmark
// extraction, feature derivation, classification, then statistics update and
// feedback. Decode and detection failures stop the frame and report a failed
// result; classification never fails. A frame against an unknown or already
// completed session still runs the pipeline and returns its result, it just
// leaves statistics untouched.
func (s *harmonyService) ProcessFrame(ctx context.Context, sessionID string, frameData string) harmony.FrameResult {
	requestID := contextPkg.GetRequestID(ctx)

	frame, err := landmark.DecodeFrame(frameData)
	if err != nil {
		return harmony.FrameResult{Success: false, Error: msgDecodeFailed}
	}

	result, err := s.detect(ctx, frame)
	if err != nil {
		if errors.Is(err, landmark.ErrNoFaceDetected) {
			return harmony.FrameResult{Success: false, Error: msgNoFace}
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Landmark detection failed")
		return harmony.FrameResult{Success: false, Error: msgDetectFailed}
	}

	features := emotion.ExtractFeatures(result.Landmarks)
	classification := s.scorer.Classify(features)

	session, sessionKnown := s.repo.Sessions.Get(ctx, sessionID)

	detection := entity.Detection{
		Timestamp:       time.Now(),
		DetectedEmotion: classification.DetectedEmotion,
		ConfidenceScore: classification.ConfidenceScore,
		IsTargetMatch:   sessionKnown && classification.DetectedEmotion == session.TargetEmotion,
	}

	var stats *entity.SessionStatistics
	if sessionKnown {
		if updated, ok := s.repo.Sessions.AppendDetection(ctx, sessionID, detection, result.Landmarks); ok {
			stats = &updated
		}
	}

	feedback := s.generateFeedback(classification.DetectedEmotion, classification.ConfidenceScore, session.TargetEmotion, sessionKnown)

	return harmony.FrameResult{
		Success:           true,
		DetectedEmotion:   classification.DetectedEmotion,
		ConfidenceScore:   classification.ConfidenceScore,
		AllScores:         classification.AllScores,
		FacialLandmarks:   result.Landmarks,
		FeedbackMessage:   feedback,
		SessionStatistics: stats,
	}
}

// detect runs the CPU-bound landmark stage through a bounded worker slot so
// a burst of concurrent frames cannot monopolize the process.
func (s *harmonyService) detect(ctx context.Context, frame *landmark.Frame) (*landmark.Result, error) {
	select {
	case s.detectSlots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.detectSlots }()

	return s.detector.Detect(ctx, frame)
}
