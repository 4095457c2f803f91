package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/allerscan/backend/internal/domain"
)

// appendModules appends n modules of the given color to a bit row.
func appendModules(row []bool, black bool, n int) []bool {
	for i := 0; i < n; i++ {
		row = append(row, black)
	}
	return row
}

// encodeSymbol renders an EAN-13 or EAN-8 number into its module
// sequence, quiet zones included.
func encodeSymbol(t *testing.T, number string) []bool {
	t.Helper()

	digits := make([]byte, len(number))
	for i := range number {
		digits[i] = number[i] - '0'
	}

	var left, right []byte
	var parity int
	switch len(number) {
	case 13:
		left, right = digits[1:7], digits[7:13]
		parity = firstDigitParity[digits[0]]
	case 8:
		left, right = digits[0:4], digits[4:8]
	default:
		t.Fatalf("encodeSymbol: unsupported length %d", len(number))
	}

	row := appendModules(nil, false, 10) // quiet zone
	row = append(row, true, false, true) // start guard

	for i, d := range left {
		pattern := lPatterns[d]
		if len(number) == 13 && parity&(1<<(5-i)) != 0 {
			pattern = gPatterns[d]
		}
		black := false // left digits start on a space
		for _, w := range pattern {
			row = appendModules(row, black, int(w))
			black = !black
		}
	}

	row = append(row, false, true, false, true, false) // middle guard

	for _, d := range right {
		pattern := lPatterns[d]
		black := true // right digits start on a bar
		for _, w := range pattern {
			row = appendModules(row, black, int(w))
			black = !black
		}
	}

	row = append(row, true, false, true) // end guard
	row = appendModules(row, false, 10)  // quiet zone
	return row
}

// renderSymbol draws the module sequence into a grayscale image with the
// given module width in pixels.
func renderSymbol(row []bool, moduleWidth, height int, mirrored bool) *image.Gray {
	width := len(row) * moduleWidth
	img := image.NewGray(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		module := x / moduleWidth
		if mirrored {
			module = len(row) - 1 - module
		}
		shade := color.Gray{Y: 255}
		if row[module] {
			shade = color.Gray{Y: 0}
		}
		for y := 0; y < height; y++ {
			img.SetGray(x, y, shade)
		}
	}
	return img
}

func TestLinearEngineDecodesEAN13(t *testing.T) {
	engine := NewLinearEngine()
	img := renderSymbol(encodeSymbol(t, "8801019606557"), 3, 40, false)

	result, err := engine.Decode(context.Background(), img)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.Text != "8801019606557" {
		t.Errorf("Text = %q, want 8801019606557", result.Text)
	}
	if result.Engine != "linear" {
		t.Errorf("Engine = %q, want linear", result.Engine)
	}
	if len(result.PatternErrors) != 12 {
		t.Fatalf("len(PatternErrors) = %d, want 12", len(result.PatternErrors))
	}
	if mean := result.MeanPatternError(); mean > 0.05 {
		t.Errorf("MeanPatternError() = %v on a clean render, want near zero", mean)
	}
}

func TestLinearEngineDecodesEAN8(t *testing.T) {
	engine := NewLinearEngine()
	img := renderSymbol(encodeSymbol(t, "96385074"), 3, 40, false)

	result, err := engine.Decode(context.Background(), img)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.Text != "96385074" {
		t.Errorf("Text = %q, want 96385074", result.Text)
	}
	if len(result.PatternErrors) != 8 {
		t.Errorf("len(PatternErrors) = %d, want 8", len(result.PatternErrors))
	}
}

func TestLinearEngineDecodesMirroredSymbol(t *testing.T) {
	engine := NewLinearEngine()
	img := renderSymbol(encodeSymbol(t, "8801043001274"), 3, 40, true)

	result, err := engine.Decode(context.Background(), img)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.Text != "8801043001274" {
		t.Errorf("Text = %q, want 8801043001274", result.Text)
	}
}

func TestLinearEngineRejectsBadChecksum(t *testing.T) {
	engine := NewLinearEngine()
	// Same symbol as 8801019606557 but with a corrupted check digit.
	row := encodeSymbol(t, "8801019606550")
	img := renderSymbol(row, 3, 40, false)

	_, err := engine.Decode(context.Background(), img)
	if !errors.Is(err, domain.ErrNoDecodeResult) {
		t.Errorf("Decode() error = %v, want ErrNoDecodeResult", err)
	}
}

func TestLinearEngineBlankImage(t *testing.T) {
	engine := NewLinearEngine()
	img := image.NewGray(image.Rect(0, 0, 400, 100))

	_, err := engine.Decode(context.Background(), img)
	if !errors.Is(err, domain.ErrNoDecodeResult) {
		t.Errorf("Decode() error = %v, want ErrNoDecodeResult", err)
	}
}

func TestLinearEngineStop(t *testing.T) {
	engine := NewLinearEngine()

	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v, want idempotent nil", err)
	}

	img := renderSymbol(encodeSymbol(t, "8801019606557"), 3, 40, false)
	_, err := engine.Decode(context.Background(), img)
	if !errors.Is(err, domain.ErrEngineStopped) {
		t.Errorf("Decode() after Stop error = %v, want ErrEngineStopped", err)
	}
}

func TestValidChecksum(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"8801019606557", true},
		{"8801043001274", true},
		{"96385074", true},
		{"8801019606550", false},
		{"96385070", false},
	}
	for _, tt := range tests {
		digits := make([]byte, len(tt.number))
		for i := range tt.number {
			digits[i] = tt.number[i] - '0'
		}
		if got := validChecksum(digits); got != tt.want {
			t.Errorf("validChecksum(%s) = %v, want %v", tt.number, got, tt.want)
		}
	}
}
