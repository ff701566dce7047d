package landmark

import (
	"StorySignGolang/internal/entity"
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var (
	ErrInvalidImageData = errors.New("failed to decode image data")
	ErrNoFaceDetected   = errors.New("no face detected in image")
	ErrDetectionFailed  = errors.New("landmark detection failed")
)

// Frame is one decoded camera frame: the raw encoded bytes as received plus
// the decoded raster. Remote detectors forward Data; local strategies work
// from Image.
type Frame struct {
	Data   []byte
	Image  image.Image
	Width  int
	Height int
}

// Result is the output of one landmark extraction. Both detector strategies
// return the same shape so downstream stages never know which one ran.
type Result struct {
	Landmarks  entity.Landmarks `json:"landmarks"`
	ImageShape [2]int           `json:"image_shape"`
}

// Detector extracts a normalized facial landmark set from a single frame.
// A detector handles at most one face per frame and never retries; a failed
// extraction fails that frame only.
type Detector interface {
	Detect(ctx context.Context, frame *Frame) (*Result, error)
	Close() error
}

const (
	detectorModeEnv = "HARMONY_DETECTOR"
	modeSynthetic   = "synthetic"
	modeRemote      = "remote"
)

// NewFromEnv selects the detector strategy once at process init. Remote
// requires a configured inference service; everything else gets the
// deterministic synthetic generator.
func NewFromEnv(log *logrus.Logger) (Detector, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(detectorModeEnv)))

	switch mode {
	case modeRemote:
		return NewRemoteDetector(log)
	case modeSynthetic, "":
		log.Info("Using synthetic landmark detector")
		return NewSyntheticDetector(), nil
	default:
		return nil, errors.New("unknown detector mode: " + mode)
	}
}

// DecodeFrame decodes a base64 or data-URL encoded JPEG/PNG frame. It is a
// pure function over the input string; any malformed payload yields
// ErrInvalidImageData, never a panic.
func DecodeFrame(frameData string) (*Frame, error) {
	if frameData == "" {
		return nil, ErrInvalidImageData
	}

	payload := frameData
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrInvalidImageData
		}
		meta := payload[:idx]
		if !strings.Contains(meta, "image/") || !strings.Contains(meta, ";base64") {
			return nil, ErrInvalidImageData
		}
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImageData
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	return &Frame{
		Data:   raw,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
