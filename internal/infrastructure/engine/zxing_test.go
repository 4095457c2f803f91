package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"

	"github.com/allerscan/backend/internal/domain"
)

// matrixImage rasterizes an encoded bit matrix into a grayscale image.
func matrixImage(t *testing.T, matrix *gozxing.BitMatrix) *image.Gray {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			shade := color.Gray{Y: 255}
			if matrix.Get(x, y) {
				shade = color.Gray{Y: 0}
			}
			img.SetGray(x, y, shade)
		}
	}
	return img
}

func TestGeneralEngineDecodesEAN13(t *testing.T) {
	matrix, err := oned.NewEAN13Writer().Encode(
		"8801019606557", gozxing.BarcodeFormat_EAN_13, 300, 100, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	engine := NewGeneralEngine()
	result, err := engine.Decode(context.Background(), matrixImage(t, matrix))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.Text != "8801019606557" {
		t.Errorf("Text = %q, want 8801019606557", result.Text)
	}
	if result.Engine != "general" {
		t.Errorf("Engine = %q, want general", result.Engine)
	}
	if len(result.PatternErrors) != 0 {
		t.Errorf("PatternErrors = %v, want none from the general engine", result.PatternErrors)
	}
}

func TestGeneralEngineBlankImage(t *testing.T) {
	engine := NewGeneralEngine()

	_, err := engine.Decode(context.Background(), image.NewGray(image.Rect(0, 0, 200, 100)))
	if !errors.Is(err, domain.ErrNoDecodeResult) {
		t.Errorf("Decode() error = %v, want ErrNoDecodeResult", err)
	}
}

func TestGeneralEngineStop(t *testing.T) {
	engine := NewGeneralEngine()

	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v, want idempotent nil", err)
	}

	_, err := engine.Decode(context.Background(), image.NewGray(image.Rect(0, 0, 200, 100)))
	if !errors.Is(err, domain.ErrEngineStopped) {
		t.Errorf("Decode() after Stop error = %v, want ErrEngineStopped", err)
	}
}
