package domain

import (
	"math"
	"testing"
)

func TestMeanPatternError(t *testing.T) {
	tests := []struct {
		name   string
		errors []float64
		want   float64
	}{
		{"no estimates reports zero", nil, 0},
		{"empty estimates reports zero", []float64{}, 0},
		{"single estimate", []float64{0.2}, 0.2},
		{"averaged estimates", []float64{0.1, 0.2, 0.3}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RawScanResult{Text: "8801019606557", PatternErrors: tt.errors}
			if got := r.MeanPatternError(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MeanPatternError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProductRecordNotFound(t *testing.T) {
	found := &ProductRecord{Source: SourceLocalCatalog}
	if found.NotFound() {
		t.Error("NotFound() = true for a catalog record")
	}

	missing := &ProductRecord{Source: SourceNotFound}
	if !missing.NotFound() {
		t.Error("NotFound() = false for not-found provenance")
	}
}
