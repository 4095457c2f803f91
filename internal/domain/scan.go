package domain

import "image"

// RawScanResult is one decode attempt's output. It is ephemeral: produced
// by an engine, passed to the normalizer, never persisted.
type RawScanResult struct {
	Text   string
	Engine string
	// PatternErrors holds the decoder's per-pattern error estimates in
	// module units, when the engine can produce them (the linear engine
	// reports one entry per decoded digit).
	PatternErrors []float64
}

// MeanPatternError averages the per-pattern error estimates. Results
// without estimates report zero, which always passes the acceptance gate.
func (r *RawScanResult) MeanPatternError() float64 {
	if len(r.PatternErrors) == 0 {
		return 0
	}
	var sum float64
	for _, e := range r.PatternErrors {
		sum += e
	}
	return sum / float64(len(r.PatternErrors))
}

// ImageRegion is one candidate sub-image produced by the region
// decomposer, ordered by decreasing prior probability of containing a
// clean barcode.
type ImageRegion struct {
	ID          string
	Image       image.Image
	Rank        int
	Description string
}
