package engine

import (
	"context"
	"image"
	"math"
	"sync/atomic"

	"github.com/allerscan/backend/internal/domain"
)

// LinearEngine decodes EAN-13, UPC-A and EAN-8 symbols by sampling
// horizontal scanlines. Unlike the general engine it measures how far each
// decoded digit's bar widths deviate from the ideal pattern, so its results
// carry a per-digit error profile the arbiter can gate on.
type LinearEngine struct {
	stopped atomic.Bool
}

// NewLinearEngine creates the scanline engine.
func NewLinearEngine() *LinearEngine {
	return &LinearEngine{}
}

// Name identifies the engine in logs and scan results.
func (e *LinearEngine) Name() string { return "linear" }

// Scanline sampling positions as fractions of the image height, ordered so
// the most likely positions are tried first.
var scanlineFractions = []float64{
	0.5, 0.45, 0.55, 0.4, 0.6, 0.35, 0.65, 0.3, 0.7, 0.25, 0.75, 0.2, 0.8,
}

// Decode samples scanlines across the image and returns the first decode
// whose checksum validates. Both scan directions are tried; only the true
// orientation yields a valid parity sequence.
func (e *LinearEngine) Decode(ctx context.Context, img image.Image) (*domain.RawScanResult, error) {
	if e.stopped.Load() {
		return nil, domain.ErrEngineStopped
	}

	bounds := img.Bounds()
	if bounds.Dx() < 60 || bounds.Dy() < 2 {
		return nil, domain.ErrNoDecodeResult
	}

	for _, frac := range scanlineFractions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		y := bounds.Min.Y + int(float64(bounds.Dy())*frac)
		runs, ok := rowRuns(img, y)
		if !ok {
			continue
		}

		for _, candidate := range [][]run{runs, reverseRuns(runs)} {
			if text, errs, ok := decodeRow(candidate); ok {
				return &domain.RawScanResult{
					Text:          text,
					Engine:        e.Name(),
					PatternErrors: errs,
				}, nil
			}
		}
	}
	return nil, domain.ErrNoDecodeResult
}

// Stop marks the engine stopped. Idempotent.
func (e *LinearEngine) Stop() error {
	e.stopped.Store(true)
	return nil
}

// run is a maximal stretch of same-colored pixels on a scanline.
type run struct {
	width int
	black bool
}

// rowRuns binarizes one scanline with a midpoint threshold and collapses
// it into runs. Rows with too little contrast are rejected.
func rowRuns(img image.Image, y int) ([]run, bool) {
	bounds := img.Bounds()
	width := bounds.Dx()
	lum := make([]int, width)

	minLum, maxLum := 255, 0
	for i := 0; i < width; i++ {
		r, g, b, _ := img.At(bounds.Min.X+i, y).RGBA()
		l := int((r>>8 + g>>8 + b>>8) / 3)
		lum[i] = l
		if l < minLum {
			minLum = l
		}
		if l > maxLum {
			maxLum = l
		}
	}
	if maxLum-minLum < 32 {
		return nil, false
	}

	threshold := (minLum + maxLum) / 2
	runs := make([]run, 0, 64)
	current := run{width: 1, black: lum[0] < threshold}
	for i := 1; i < width; i++ {
		black := lum[i] < threshold
		if black == current.black {
			current.width++
			continue
		}
		runs = append(runs, current)
		current = run{width: 1, black: black}
	}
	runs = append(runs, current)
	return runs, true
}

func reverseRuns(runs []run) []run {
	out := make([]run, len(runs))
	for i, r := range runs {
		out[len(runs)-1-i] = r
	}
	return out
}

const (
	ean13Runs = 59 // 3 guard + 24 left + 5 guard + 24 right + 3 guard
	ean8Runs  = 43 // 3 guard + 16 left + 5 guard + 16 right + 3 guard

	// A digit whose best pattern match deviates more than this per module
	// is treated as noise rather than a decode.
	maxDigitError = 0.45
)

// decodeRow walks the run sequence looking for a start guard and attempts
// an EAN-13 decode, then EAN-8, from each anchor.
func decodeRow(runs []run) (string, []float64, bool) {
	for start := 0; start+ean8Runs <= len(runs); start++ {
		if !runs[start].black {
			continue
		}
		if !isGuard(runs[start : start+3]) {
			continue
		}
		if start+ean13Runs <= len(runs) {
			if text, errs, ok := decodeEAN13(runs[start : start+ean13Runs]); ok {
				return text, errs, true
			}
		}
		if text, errs, ok := decodeEAN8(runs[start : start+ean8Runs]); ok {
			return text, errs, true
		}
	}
	return "", nil, false
}

// isGuard reports whether three runs look like a 1-1-1 guard: similar
// widths, none degenerate.
func isGuard(g []run) bool {
	total := g[0].width + g[1].width + g[2].width
	if total < 3 {
		return false
	}
	module := float64(total) / 3
	for _, r := range g {
		if math.Abs(float64(r.width)-module) > module*0.5 {
			return false
		}
	}
	return true
}

// isMiddleGuard checks the five-run 1-1-1-1-1 separator.
func isMiddleGuard(g []run, module float64) bool {
	for _, r := range g {
		if math.Abs(float64(r.width)-module) > module*0.75 {
			return false
		}
	}
	return !g[0].black
}

func decodeEAN13(runs []run) (string, []float64, bool) {
	module := guardModule(runs)

	if !isMiddleGuard(runs[27:32], module) || !isGuard(runs[56:59]) {
		return "", nil, false
	}

	digits := make([]byte, 0, 13)
	errs := make([]float64, 0, 12)
	parity := 0

	for i := 0; i < 6; i++ {
		d, g, e, ok := matchLeftDigit(runs[3+i*4 : 7+i*4])
		if !ok {
			return "", nil, false
		}
		if g {
			parity |= 1 << (5 - i)
		}
		digits = append(digits, d)
		errs = append(errs, e)
	}

	first, ok := firstDigitFromParity(parity)
	if !ok {
		return "", nil, false
	}

	for i := 0; i < 6; i++ {
		d, e, ok := matchRightDigit(runs[32+i*4 : 36+i*4])
		if !ok {
			return "", nil, false
		}
		digits = append(digits, d)
		errs = append(errs, e)
	}

	all := append([]byte{first}, digits...)
	if !validChecksum(all) {
		return "", nil, false
	}
	return digitsToString(all), errs, true
}

func decodeEAN8(runs []run) (string, []float64, bool) {
	module := guardModule(runs)

	if !isMiddleGuard(runs[19:24], module) || !isGuard(runs[40:43]) {
		return "", nil, false
	}

	digits := make([]byte, 0, 8)
	errs := make([]float64, 0, 8)

	for i := 0; i < 4; i++ {
		d, g, e, ok := matchLeftDigit(runs[3+i*4 : 7+i*4])
		if !ok || g {
			// EAN-8 left digits are plain L-coded; a G match means this
			// is not an EAN-8 symbol.
			return "", nil, false
		}
		digits = append(digits, d)
		errs = append(errs, e)
	}
	for i := 0; i < 4; i++ {
		d, e, ok := matchRightDigit(runs[24+i*4 : 28+i*4])
		if !ok {
			return "", nil, false
		}
		digits = append(digits, d)
		errs = append(errs, e)
	}

	if !validChecksum(digits) {
		return "", nil, false
	}
	return digitsToString(digits), errs, true
}

func guardModule(runs []run) float64 {
	return float64(runs[0].width+runs[1].width+runs[2].width) / 3
}

// Run widths of the L-coded digits 0-9 (space, bar, space, bar).
var lPatterns = [10][4]float64{
	{3, 2, 1, 1},
	{2, 2, 2, 1},
	{2, 1, 2, 2},
	{1, 4, 1, 1},
	{1, 1, 3, 2},
	{1, 2, 3, 1},
	{1, 1, 1, 4},
	{1, 3, 1, 2},
	{1, 2, 1, 3},
	{3, 1, 1, 2},
}

// G-coded digits are the L runs read in reverse. R-coded digits have the
// same run widths as L with bar/space colors swapped, which run matching
// cannot tell apart, so the right half reuses lPatterns.
var gPatterns = func() [10][4]float64 {
	var out [10][4]float64
	for d, p := range lPatterns {
		out[d] = [4]float64{p[3], p[2], p[1], p[0]}
	}
	return out
}()

// First-digit encodings of the left-half parity sequence; bit 1<<(5-i)
// set means position i is G-coded.
var firstDigitParity = [10]int{
	0x00, 0x0B, 0x0D, 0x0E, 0x13, 0x19, 0x1C, 0x15, 0x16, 0x1A,
}

func firstDigitFromParity(parity int) (byte, bool) {
	for d, p := range firstDigitParity {
		if p == parity {
			return byte(d), true
		}
	}
	return 0, false
}

// patternError measures the mean per-module deviation between observed
// run widths and a reference pattern.
func patternError(runs []run, pattern [4]float64) float64 {
	total := 0
	for _, r := range runs {
		total += r.width
	}
	if total == 0 {
		return math.Inf(1)
	}
	module := float64(total) / 7

	sum := 0.0
	for i, r := range runs {
		sum += math.Abs(float64(r.width)/module - pattern[i])
	}
	return sum / 4
}

// matchLeftDigit matches four runs against the L and G tables. Left digits
// start on a space run.
func matchLeftDigit(runs []run) (digit byte, gCoded bool, bestErr float64, ok bool) {
	if runs[0].black {
		return 0, false, 0, false
	}
	bestErr = math.Inf(1)
	for d := 0; d < 10; d++ {
		if e := patternError(runs, lPatterns[d]); e < bestErr {
			bestErr, digit, gCoded = e, byte(d), false
		}
		if e := patternError(runs, gPatterns[d]); e < bestErr {
			bestErr, digit, gCoded = e, byte(d), true
		}
	}
	return digit, gCoded, bestErr, bestErr <= maxDigitError
}

// matchRightDigit matches four runs against the R table. Right digits
// start on a bar run.
func matchRightDigit(runs []run) (digit byte, bestErr float64, ok bool) {
	if !runs[0].black {
		return 0, 0, false
	}
	bestErr = math.Inf(1)
	for d := 0; d < 10; d++ {
		if e := patternError(runs, lPatterns[d]); e < bestErr {
			bestErr, digit = e, byte(d)
		}
	}
	return digit, bestErr, bestErr <= maxDigitError
}

// validChecksum verifies the standard modulo-10 check digit. Weights
// alternate 1 and 3 from the right, check digit included.
func validChecksum(digits []byte) bool {
	sum := 0
	weight := 1
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]) * weight
		if weight == 1 {
			weight = 3
		} else {
			weight = 1
		}
	}
	return sum%10 == 0
}

func digitsToString(digits []byte) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = '0' + d
	}
	return string(out)
}
