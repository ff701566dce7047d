package landmark

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFrame(t *testing.T) {
	raw := encodePNG(t, 64, 48)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		frameData  string
		wantErr    error
		wantWidth  int
		wantHeight int
	}{
		{
			name:      "empty input",
			frameData: "",
			wantErr:   ErrInvalidImageData,
		},
		{
			name:      "not base64",
			frameData: "!!!not-base64!!!",
			wantErr:   ErrInvalidImageData,
		},
		{
			name:      "base64 of non-image bytes",
			frameData: base64.StdEncoding.EncodeToString([]byte("just some text")),
			wantErr:   ErrInvalidImageData,
		},
		{
			name:      "data url without comma",
			frameData: "data:image/png;base64" + encoded,
			wantErr:   ErrInvalidImageData,
		},
		{
			name:      "data url with non-image mime",
			frameData: "data:text/plain;base64," + encoded,
			wantErr:   ErrInvalidImageData,
		},
		{
			name:       "bare base64 png",
			frameData:  encoded,
			wantWidth:  64,
			wantHeight: 48,
		},
		{
			name:       "data url png",
			frameData:  "data:image/png;base64," + encoded,
			wantWidth:  64,
			wantHeight: 48,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := DecodeFrame(tt.frameData)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("DecodeFrame() unexpected error: %v", err)
			}
			if frame.Width != tt.wantWidth || frame.Height != tt.wantHeight {
				t.Errorf("frame size = %dx%d, want %dx%d", frame.Width, frame.Height, tt.wantWidth, tt.wantHeight)
			}
			if frame.Image == nil {
				t.Error("frame.Image is nil")
			}
			if len(frame.Data) == 0 {
				t.Error("frame.Data is empty")
			}
		})
	}
}

func TestSyntheticFace_Topology(t *testing.T) {
	face := SyntheticFace()

	if len(face) != SyntheticLandmarkCount {
		t.Fatalf("got %d landmarks, want %d", len(face), SyntheticLandmarkCount)
	}

	for i, point := range face {
		if point.X < 0 || point.X > 1 || point.Y < 0 || point.Y > 1 {
			t.Errorf("landmark %d at (%v, %v) outside the unit square", i, point.X, point.Y)
		}
	}

	if !reflect.DeepEqual(face, SyntheticFace()) {
		t.Error("SyntheticFace is not deterministic")
	}
}

func TestSyntheticDetector_Detect(t *testing.T) {
	d := NewSyntheticDetector()
	defer d.Close()

	tests := []struct {
		name      string
		frame     *Frame
		wantShape [2]int
	}{
		{
			name:      "sized frame",
			frame:     &Frame{Width: 320, Height: 240},
			wantShape: [2]int{240, 320},
		},
		{
			name:      "zero-sized frame falls back to defaults",
			frame:     &Frame{},
			wantShape: [2]int{480, 640},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := d.Detect(context.Background(), tt.frame)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if result.ImageShape != tt.wantShape {
				t.Errorf("ImageShape = %v, want %v", result.ImageShape, tt.wantShape)
			}
			if len(result.Landmarks) != SyntheticLandmarkCount {
				t.Errorf("got %d landmarks, want %d", len(result.Landmarks), SyntheticLandmarkCount)
			}
		})
	}
}
