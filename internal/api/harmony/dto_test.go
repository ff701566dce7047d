package harmony_test

import (
	"StorySignGolang/internal/api/harmony"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestFinalizeSessionRequest_Validation(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		req     harmony.FinalizeSessionRequest
		wantErr bool
	}{
		{
			name: "matching lists",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy", "sad"},
				ConfidenceScores: []float64{0.9, 0.1},
			},
		},
		{
			name: "empty confidence list is allowed",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy"},
			},
		},
		{
			name: "boundary confidences are allowed",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy", "sad"},
				ConfidenceScores: []float64{0.0, 1.0},
			},
		},
		{
			name: "confidence above one",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy"},
				ConfidenceScores: []float64{5.0},
			},
			wantErr: true,
		},
		{
			name: "negative confidence",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy"},
				ConfidenceScores: []float64{-0.1},
			},
			wantErr: true,
		},
		{
			name:    "missing detected emotions",
			req:     harmony.FinalizeSessionRequest{},
			wantErr: true,
		},
		{
			name: "negative duration",
			req: harmony.FinalizeSessionRequest{
				DetectedEmotions: []string{"happy"},
				SessionDuration:  -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
