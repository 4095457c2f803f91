package usecase

import (
	"context"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/allerscan/backend/internal/domain"
)

// ArbiterConfig tunes live-mode result acceptance.
type ArbiterConfig struct {
	// DebounceWindow suppresses duplicate triggers for the same physical
	// barcode reported again within the window.
	DebounceWindow time.Duration
	// MaxMeanPatternError gates linear-engine results: the mean per-pattern
	// error estimate must stay below this to be accepted.
	MaxMeanPatternError float64
}

// DefaultArbiterConfig returns the observed working tuning.
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		DebounceWindow:      500 * time.Millisecond,
		MaxMeanPatternError: 0.15,
	}
}

// ScanArbiter races two decode engines against a live frame source and
// hands exactly one normalized barcode to the caller. The general engine
// reads QR and common 1D symbologies; the linear engine is a specialized
// 1D reader whose error estimates feed the acceptance gate.
type ScanArbiter struct {
	general   domain.LiveEngine
	linear    domain.LiveEngine
	cfg       ArbiterConfig
	normalize func(string) (string, error)
}

// NewScanArbiter wires the two engines, defaulting zero config fields.
func NewScanArbiter(general, linear domain.LiveEngine, cfg ArbiterConfig) *ScanArbiter {
	def := DefaultArbiterConfig()
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = def.DebounceWindow
	}
	if cfg.MaxMeanPatternError <= 0 {
		cfg.MaxMeanPatternError = def.MaxMeanPatternError
	}
	return &ScanArbiter{
		general:   general,
		linear:    linear,
		cfg:       cfg,
		normalize: domain.NormalizeBarcode,
	}
}

// Live attaches both engines to the frame source and blocks until one of
// them produces a normalizable barcode or ctx ends. Whichever engine
// reports first wins; the found latch is set synchronously before the
// engines are stopped, so a late result from the second engine can never
// re-trigger. Engines are stopped on every exit path.
func (a *ScanArbiter) Live(ctx context.Context, src domain.FrameSource) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.stopEngines()

	generalFrames := make(chan image.Image, 1)
	linearFrames := make(chan image.Image, 1)
	go fanOutFrames(ctx, src.Frames(ctx), generalFrames, linearFrames)

	resultCh := make(chan string, 1)
	var deliverOnce sync.Once
	var found atomic.Bool
	var mu sync.Mutex
	var lastText string
	var lastSeen time.Time

	accept := func(res *domain.RawScanResult, gated bool) {
		if found.Load() {
			return
		}
		if gated && res.MeanPatternError() >= a.cfg.MaxMeanPatternError {
			log.Printf("[Arbiter] %s result %q discarded, mean pattern error %.3f",
				res.Engine, res.Text, res.MeanPatternError())
			return
		}

		mu.Lock()
		now := time.Now()
		if res.Text == lastText && now.Sub(lastSeen) < a.cfg.DebounceWindow {
			mu.Unlock()
			return
		}
		lastText, lastSeen = res.Text, now
		mu.Unlock()

		code, err := a.normalize(res.Text)
		if err != nil {
			log.Printf("[Arbiter] %s result %q rejected by normalizer: %v", res.Engine, res.Text, err)
			return
		}

		// Latch before stopping: result processing is disabled synchronously,
		// the engine teardown runs in the background.
		if found.CompareAndSwap(false, true) {
			log.Printf("[Arbiter] accepted %s from %s", code, res.Engine)
			deliverOnce.Do(func() { resultCh <- code })
			go a.stopEngines()
		}
	}

	go runLiveEngine(ctx, a.general, generalFrames, func(r *domain.RawScanResult) { accept(r, false) })
	go runLiveEngine(ctx, a.linear, linearFrames, func(r *domain.RawScanResult) { accept(r, true) })

	select {
	case code := <-resultCh:
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// fanOutFrames shares one frame stream between both engines. Frames are
// read-only; a busy engine just misses a frame instead of stalling the
// other one.
func fanOutFrames(ctx context.Context, in <-chan image.Image, outs ...chan image.Image) {
	defer func() {
		for _, out := range outs {
			close(out)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-in:
			if !ok {
				return
			}
			for _, out := range outs {
				select {
				case out <- frame:
				default:
				}
			}
		}
	}
}

// runLiveEngine feeds frames to one engine until its stream ends.
func runLiveEngine(ctx context.Context, eng domain.LiveEngine, frames <-chan image.Image, deliver func(*domain.RawScanResult)) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			res, err := eng.Decode(ctx, frame)
			if err != nil {
				continue
			}
			deliver(res)
		}
	}
}

// stopEngines shuts both engines down. Stopping is best effort: a failure
// is logged, never surfaced, and repeated stops are no-ops.
func (a *ScanArbiter) stopEngines() {
	for _, eng := range []domain.LiveEngine{a.general, a.linear} {
		if err := eng.Stop(); err != nil {
			log.Printf("[Arbiter] stopping %s engine: %v", eng.Name(), err)
		}
	}
}
