package usecase

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/allerscan/backend/internal/domain"
)

// loopSource replays the same frame until the context ends.
type loopSource struct {
	frame image.Image
}

func (s *loopSource) Frames(ctx context.Context) <-chan image.Image {
	ch := make(chan image.Image)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ch <- s.frame:
			}
		}
	}()
	return ch
}

// liveStub is a scripted LiveEngine.
type liveStub struct {
	name    string
	result  *domain.RawScanResult
	delay   time.Duration
	stopped atomic.Bool
	stops   atomic.Int32
	decodes atomic.Int32
}

func (e *liveStub) Name() string { return e.name }

func (e *liveStub) Decode(ctx context.Context, img image.Image) (*domain.RawScanResult, error) {
	if e.stopped.Load() {
		return nil, domain.ErrEngineStopped
	}
	e.decodes.Add(1)
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.result == nil {
		return nil, domain.ErrNoDecodeResult
	}
	res := *e.result
	return &res, nil
}

func (e *liveStub) Stop() error {
	e.stops.Add(1)
	e.stopped.Store(true)
	return nil
}

func frame() image.Image { return image.NewGray(image.Rect(0, 0, 4, 4)) }

func TestLiveDeliversExactlyOneResult(t *testing.T) {
	general := &liveStub{name: "general", result: &domain.RawScanResult{Text: "8801019606557", Engine: "general"}}
	linear := &liveStub{name: "linear", result: &domain.RawScanResult{Text: "8801019606557", Engine: "linear", PatternErrors: []float64{0.01}}}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if err != nil {
		t.Fatalf("Live() error = %v", err)
	}
	if code != "08801019606557" {
		t.Errorf("Live() = %q, want canonical 08801019606557", code)
	}

	// Both engines are stopped on exit regardless of who won.
	if general.stops.Load() == 0 {
		t.Error("general engine was never stopped")
	}
	if linear.stops.Load() == 0 {
		t.Error("linear engine was never stopped")
	}
}

func TestLiveGatesLinearResultsOnPatternError(t *testing.T) {
	// The linear engine keeps reporting a read whose mean error exceeds
	// the gate; the general engine never decodes. No result may surface.
	general := &liveStub{name: "general"}
	linear := &liveStub{name: "linear", result: &domain.RawScanResult{
		Text:          "8801019606557",
		Engine:        "linear",
		PatternErrors: []float64{0.3, 0.2, 0.1},
	}}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{MaxMeanPatternError: 0.15})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Live() error = %v, want deadline exceeded (gated result must not surface)", err)
	}
	if linear.decodes.Load() == 0 {
		t.Error("linear engine never saw a frame")
	}
}

func TestLiveAcceptsLinearResultBelowGate(t *testing.T) {
	general := &liveStub{name: "general"}
	linear := &liveStub{name: "linear", result: &domain.RawScanResult{
		Text:          "8801043001274",
		Engine:        "linear",
		PatternErrors: []float64{0.1, 0.12, 0.08},
	}}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if err != nil {
		t.Fatalf("Live() error = %v", err)
	}
	if code != "08801043001274" {
		t.Errorf("Live() = %q, want 08801043001274", code)
	}
}

func TestLiveGeneralEngineBypassesGate(t *testing.T) {
	// General-engine results carry no error profile and are not gated.
	general := &liveStub{name: "general", result: &domain.RawScanResult{Text: "96385074", Engine: "general"}}
	linear := &liveStub{name: "linear"}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if err != nil {
		t.Fatalf("Live() error = %v", err)
	}
	if code != "00000096385074" {
		t.Errorf("Live() = %q, want 00000096385074", code)
	}
}

func TestLiveRejectsUnusableText(t *testing.T) {
	// Decoded text the normalizer rejects must never surface.
	general := &liveStub{name: "general", result: &domain.RawScanResult{Text: "hello", Engine: "general"}}
	linear := &liveStub{name: "linear"}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Live() error = %v, want deadline exceeded", err)
	}
}

func TestLiveContextCancellationStopsEngines(t *testing.T) {
	general := &liveStub{name: "general"}
	linear := &liveStub{name: "linear"}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Live() error = %v, want context.Canceled", err)
	}
	if general.stops.Load() == 0 || linear.stops.Load() == 0 {
		t.Error("engines must be stopped when the context ends")
	}
}

func TestLiveDebouncesDuplicateReports(t *testing.T) {
	// Both engines keep reporting the same unusable text, so no result is
	// ever latched and every report has to pass the debounce window. Only
	// the first one may reach normalization.
	general := &liveStub{name: "general", result: &domain.RawScanResult{Text: "123", Engine: "general"}}
	linear := &liveStub{name: "linear", delay: 20 * time.Millisecond,
		result: &domain.RawScanResult{Text: "123", Engine: "linear", PatternErrors: []float64{0.01}}}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{DebounceWindow: time.Second})

	var normalizations atomic.Int32
	arbiter.normalize = func(text string) (string, error) {
		normalizations.Add(1)
		return domain.NormalizeBarcode(text)
	}

	// Well inside the debounce window, so every report after the first is
	// a suppressed duplicate.
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, err := arbiter.Live(ctx, &loopSource{frame: frame()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Live() error = %v, want context.DeadlineExceeded", err)
	}

	reports := general.decodes.Load() + linear.decodes.Load()
	if reports < 2 {
		t.Fatalf("decode reports = %d, want at least a duplicate", reports)
	}
	if got := normalizations.Load(); got != 1 {
		t.Errorf("normalization attempts = %d, want 1 for %d duplicate reports", got, reports)
	}
}

func TestStopEnginesIsIdempotent(t *testing.T) {
	general := &liveStub{name: "general"}
	linear := &liveStub{name: "linear"}
	arbiter := NewScanArbiter(general, linear, ArbiterConfig{})

	arbiter.stopEngines()
	arbiter.stopEngines()

	if got := general.stops.Load(); got != 2 {
		t.Errorf("general.stops = %d, want 2 calls both returning nil", got)
	}
	if !general.stopped.Load() || !linear.stopped.Load() {
		t.Error("engines not marked stopped")
	}
}
