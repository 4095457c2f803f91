package domain

import (
	"context"
	"image"
	"time"
)

// DecodeEngine decodes a barcode from a single still image.
type DecodeEngine interface {
	Name() string
	Decode(ctx context.Context, img image.Image) (*RawScanResult, error)
}

// LiveEngine is a DecodeEngine that can be attached to a frame stream and
// stopped. Stop must be idempotent: stopping an already-stopped engine is
// a no-op, not an error.
type LiveEngine interface {
	DecodeEngine
	Stop() error
}

// FrameSource delivers video frames from the camera. Frames are shared
// read-only between engines; consumers must not mutate them. The channel
// closes when the source ends or ctx is cancelled.
type FrameSource interface {
	Frames(ctx context.Context) <-chan image.Image
}

// ProductSource is one link of the lookup chain. Fetch returns
// ErrProductNotFound when the source has no data; any other error is
// likewise treated as "no data from this source" by the chain.
type ProductSource interface {
	Name() string
	Fetch(ctx context.Context, barcode string) (*ProductRecord, error)
}

// CacheRepository caches product records per canonical barcode.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*ProductRecord, error)
	Set(ctx context.Context, key string, record *ProductRecord, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
