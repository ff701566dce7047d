package emotion

import (
	"StorySignGolang/internal/entity"
	"math"
)

// MinLandmarks is the smallest landmark set that carries enough signal for
// feature extraction. Below this the extractor returns an empty map, which
// classifies as neutral downstream.
const MinLandmarks = 50

// Landmark indices. Preferred indices follow the MediaPipe face-mesh
// numbering; the fallback is the classic 68-point layout used when the
// detector produces a smaller set.
type landmarkIndex struct {
	preferred int
	fallback  int
}

// meshMinLandmarks gates the mesh numbering on the size of the whole set.
// Indices like 13 or 61 also exist in a 68-point set but name different
// anatomy there, so the family must be chosen once per set, never per index.
const meshMinLandmarks = 400

var (
	idxMouthLeft  = landmarkIndex{61, 48}
	idxMouthRight = landmarkIndex{291, 54}
	idxUpperLip   = landmarkIndex{13, 62}
	idxLowerLip   = landmarkIndex{14, 66}
	idxBrowLeft   = landmarkIndex{105, 19}
	idxBrowRight  = landmarkIndex{334, 24}
	idxEyeLeft    = landmarkIndex{33, 36}
	idxEyeRight   = landmarkIndex{263, 45}
	idxEyeTop     = landmarkIndex{159, 37}
	idxEyeBottom  = landmarkIndex{145, 41}
)

func pick(landmarks entity.Landmarks, idx landmarkIndex) (entity.LandmarkPoint, bool) {
	if len(landmarks) >= meshMinLandmarks {
		if idx.preferred < len(landmarks) {
			return landmarks[idx.preferred], true
		}
		return entity.LandmarkPoint{}, false
	}
	if idx.fallback < len(landmarks) {
		return landmarks[idx.fallback], true
	}
	return entity.LandmarkPoint{}, false
}

// ExtractFeatures derives the scalar facial-geometry features from a
// landmark set. Each feature is computed independently; if the indices one
// feature needs are unavailable that feature is omitted and the rest are
// still returned. Landmark y grows downward, so a positive mouth_curve means
// the mouth corners sit below the upper-lip center.
func ExtractFeatures(landmarks entity.Landmarks) Features {
	features := Features{}
	if len(landmarks) < MinLandmarks {
		return features
	}

	if left, ok := pick(landmarks, idxMouthLeft); ok {
		if right, ok := pick(landmarks, idxMouthRight); ok {
			if center, ok := pick(landmarks, idxUpperLip); ok {
				features[FeatureMouthCurve] = (left.Y+right.Y)/2.0 - center.Y
			}
		}
	}

	if browL, ok := pick(landmarks, idxBrowLeft); ok {
		if browR, ok := pick(landmarks, idxBrowRight); ok {
			if eyeL, ok := pick(landmarks, idxEyeLeft); ok {
				if eyeR, ok := pick(landmarks, idxEyeRight); ok {
					features[FeatureEyebrowHeight] = (browL.Y+browR.Y)/2.0 - (eyeL.Y+eyeR.Y)/2.0
				}
			}
		}
	}

	if top, ok := pick(landmarks, idxEyeTop); ok {
		if bottom, ok := pick(landmarks, idxEyeBottom); ok {
			features[FeatureEyeOpenness] = math.Abs(top.Y - bottom.Y)
		}
	}

	if top, ok := pick(landmarks, idxUpperLip); ok {
		if bottom, ok := pick(landmarks, idxLowerLip); ok {
			features[FeatureMouthOpenness] = math.Abs(top.Y - bottom.Y)
		}
	}

	return features
}
