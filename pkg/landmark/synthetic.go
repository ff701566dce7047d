package landmark

import (
	"StorySignGolang/internal/entity"
	"math"

	"golang.org/x/net/context"
)

// syntheticDetector produces a deterministic 68-point face topology (jawline,
// eyebrows, nose, eyes, mouth) for environments without a real detector.
// The same frame dimensions always yield the same point set, and extraction
// never fails.
type syntheticDetector struct{}

func NewSyntheticDetector() Detector {
	return &syntheticDetector{}
}

const SyntheticLandmarkCount = 68

func (d *syntheticDetector) Detect(_ context.Context, frame *Frame) (*Result, error) {
	width, height := frame.Width, frame.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}

	return &Result{
		Landmarks:  SyntheticFace(),
		ImageShape: [2]int{height, width},
	}, nil
}

func (d *syntheticDetector) Close() error { return nil }

// SyntheticFace returns the fixed 68-point topology centered in the unit
// square. Indices follow the classic 68-landmark layout: 0-16 jawline,
// 17-26 eyebrows, 27-35 nose, 36-47 eyes, 48-67 mouth.
func SyntheticFace() entity.Landmarks {
	points := make(entity.Landmarks, 0, SyntheticLandmarkCount)

	// Jawline: lower half ellipse around the face center.
	for i := 0; i < 17; i++ {
		angle := math.Pi * float64(i) / 16.0
		points = append(points, entity.LandmarkPoint{
			X: 0.5 - 0.22*math.Cos(angle),
			Y: 0.52 + 0.26*math.Sin(angle),
			Z: 0.0,
		})
	}

	// Eyebrows: five points per brow.
	for i := 0; i < 5; i++ {
		points = append(points, entity.LandmarkPoint{
			X: 0.36 + 0.03*float64(i),
			Y: 0.41 - 0.008*math.Sin(math.Pi*float64(i)/4.0),
			Z: -0.01,
		})
	}
	for i := 0; i < 5; i++ {
		points = append(points, entity.LandmarkPoint{
			X: 0.52 + 0.03*float64(i),
			Y: 0.41 - 0.008*math.Sin(math.Pi*float64(i)/4.0),
			Z: -0.01,
		})
	}

	// Nose bridge and nostrils.
	for i := 0; i < 4; i++ {
		points = append(points, entity.LandmarkPoint{
			X: 0.5,
			Y: 0.42 + 0.025*float64(i),
			Z: -0.02,
		})
	}
	for i := 0; i < 5; i++ {
		points = append(points, entity.LandmarkPoint{
			X: 0.46 + 0.02*float64(i),
			Y: 0.52,
			Z: -0.015,
		})
	}

	// Eyes: six points per eye, upper lid slightly above lower lid.
	points = append(points, syntheticEye(0.41, 0.43)...)
	points = append(points, syntheticEye(0.59, 0.43)...)

	// Mouth: outer ring (48-59), then inner ring (60-67). Corners sit level
	// with the lip centers so the resting face reads neutral.
	for i := 0; i < 12; i++ {
		angle := 2 * math.Pi * float64(i) / 12.0
		points = append(points, entity.LandmarkPoint{
			X: 0.5 - 0.07*math.Cos(angle),
			Y: 0.62 - 0.025*math.Sin(angle),
			Z: -0.005,
		})
	}
	for i := 0; i < 8; i++ {
		angle := 2 * math.Pi * float64(i) / 8.0
		points = append(points, entity.LandmarkPoint{
			X: 0.5 - 0.045*math.Cos(angle),
			Y: 0.62 - 0.012*math.Sin(angle),
			Z: -0.005,
		})
	}

	return points
}

func syntheticEye(cx, cy float64) entity.Landmarks {
	return entity.Landmarks{
		{X: cx - 0.03, Y: cy, Z: -0.01},
		{X: cx - 0.015, Y: cy - 0.012, Z: -0.01},
		{X: cx + 0.015, Y: cy - 0.012, Z: -0.01},
		{X: cx + 0.03, Y: cy, Z: -0.01},
		{X: cx + 0.015, Y: cy + 0.012, Z: -0.01},
		{X: cx - 0.015, Y: cy + 0.012, Z: -0.01},
	}
}
