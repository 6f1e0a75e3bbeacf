package hffilter

// Scorer is the capability the engine requires from an inference
// backend: given an ordered feature vector of the model's fixed input
// shape, produce exactly three classification scores (background,
// prompt, non-prompt). Loading and versioning of the underlying model
// is the backend's concern; load failure is fatal to the run, while a
// Predict error is a per-candidate data-quality condition.
type Scorer interface {
	Predict(features []float32) ([3]float32, error)
}

// ScoreThresholds holds the per-class BDT cut values.
type ScoreThresholds struct {
	Background float32 `json:"bkg"`
	Prompt     float32 `json:"prompt"`
	NonPrompt  float32 `json:"nonprompt"`
}

// SentinelScores is the score triple reported for a failed inference.
// The background entry is negative so ClassifyScores rejects it for
// every threshold configuration, not only the usual [0,1] ones.
func SentinelScores() [3]float32 {
	return [3]float32{-1, 2, 2}
}

// ClassifyScores thresholds a score triple into origin bits. It fails
// closed: fewer than three scores, a sentinel triple, or a background
// score above threshold all return the empty bitmask. Background
// rejection short-circuits; otherwise the prompt and non-prompt bits
// are set independently and may coexist.
func ClassifyScores(scores []float32, thr ScoreThresholds) OriginBits {
	var origin OriginBits
	if len(scores) < 3 {
		return origin
	}
	if scores[0] < 0 {
		// failed-inference sentinel
		return origin
	}
	if scores[0] > thr.Background {
		return origin
	}
	if scores[1] > thr.Prompt {
		origin |= BitPrompt
	}
	if scores[2] > thr.NonPrompt {
		origin |= BitNonPrompt
	}
	return origin
}
