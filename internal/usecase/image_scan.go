package usecase

import (
	"context"
	"image"
	"log"

	"github.com/allerscan/backend/internal/domain"
)

// ImageScanner decodes a barcode from a single uploaded photograph. The
// decomposed candidate regions are tried strictly in priority order, one
// decode at a time (one engine instance avoids resource contention), with
// the general-purpose engine on the whole image as a last resort.
type ImageScanner struct {
	decomposer *RegionDecomposer
	linear     domain.DecodeEngine
	general    domain.DecodeEngine
}

// NewImageScanner builds the image-mode pipeline.
func NewImageScanner(decomposer *RegionDecomposer, linear, general domain.DecodeEngine) *ImageScanner {
	return &ImageScanner{decomposer: decomposer, linear: linear, general: general}
}

// Scan returns the canonical barcode found in img, or ErrNoBarcodeFound
// when every region and both engines come up empty. Individual decode
// failures are silent, recoverable events; a result the normalizer
// rejects counts as a non-detection and scanning continues.
func (s *ImageScanner) Scan(ctx context.Context, img image.Image) (string, error) {
	regions := s.decomposer.Decompose(img)

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		res, err := s.linear.Decode(ctx, region.Image)
		if err != nil {
			continue
		}
		code, err := domain.NormalizeBarcode(res.Text)
		if err != nil {
			log.Printf("[ImageScan] %s decoded %q but normalization rejected it", region.ID, res.Text)
			continue
		}
		log.Printf("[ImageScan] barcode %s found in region %s (%s)", code, region.ID, region.Description)
		return code, nil
	}

	log.Printf("[ImageScan] all %d regions failed, retrying whole image with %s engine",
		len(regions), s.general.Name())
	res, err := s.general.Decode(ctx, img)
	if err == nil {
		if code, nerr := domain.NormalizeBarcode(res.Text); nerr == nil {
			log.Printf("[ImageScan] barcode %s found by %s fallback", code, s.general.Name())
			return code, nil
		}
	}

	return "", domain.ErrNoBarcodeFound
}
