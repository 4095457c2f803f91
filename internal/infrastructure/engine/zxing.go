package engine

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/allerscan/backend/internal/domain"
)

// GeneralEngine decodes any supported symbology (1D product codes and QR)
// from a still image. It does not estimate per-digit pattern error, so its
// results carry no error profile and bypass the quality gate.
type GeneralEngine struct {
	mutex   sync.Mutex
	oneD    gozxing.Reader
	qr      gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
	stopped atomic.Bool
}

// NewGeneralEngine creates the multi-format engine with aggressive decode
// hints enabled.
func NewGeneralEngine() *GeneralEngine {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	return &GeneralEngine{
		oneD:  oned.NewMultiFormatOneDReader(hints),
		qr:    qrcode.NewQRCodeReader(),
		hints: hints,
	}
}

// Name identifies the engine in logs and scan results.
func (e *GeneralEngine) Name() string { return "general" }

// Decode attempts a 1D decode first and falls back to QR. Returns
// ErrNoDecodeResult when neither reader finds a code, ErrEngineStopped
// after Stop has been called.
func (e *GeneralEngine) Decode(ctx context.Context, img image.Image) (*domain.RawScanResult, error) {
	if e.stopped.Load() {
		return nil, domain.ErrEngineStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, domain.ErrNoDecodeResult
	}

	// Readers keep internal decode state; serialize access.
	e.mutex.Lock()
	defer e.mutex.Unlock()

	for _, reader := range []gozxing.Reader{e.oneD, e.qr} {
		result, err := reader.Decode(bmp, e.hints)
		reader.Reset()
		if err != nil {
			continue
		}
		return &domain.RawScanResult{
			Text:   result.GetText(),
			Engine: e.Name(),
		}, nil
	}
	return nil, domain.ErrNoDecodeResult
}

// Stop marks the engine stopped. Idempotent.
func (e *GeneralEngine) Stop() error {
	e.stopped.Store(true)
	return nil
}
