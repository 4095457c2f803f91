package usecase

import (
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"

	"github.com/allerscan/backend/internal/domain"
)

// DecomposerConfig holds the region decomposition parameters. The
// thresholds are empirical; they are configuration rather than constants
// so field tuning does not need a rebuild.
type DecomposerConfig struct {
	RowStride         int     // vertical stride between scanned rows
	LuminanceJump     float64 // minimum jump (0-255) counted as a transition
	MinRowTransitions int     // transitions per row to qualify as barcode-like
	QuietLuminance    float64 // luminance above this is background
	BoundaryMargin    int     // pixels added around the detected box
	BandHeightRatio   float64 // barcode band height as a fraction of image height
	MaxBandHeight     int     // band height cap in pixels
	MinBoxWidth       int
	MinBoxHeight      int
	MinAspect         float64
	MaxAspect         float64
	ZoomFactor        float64 // upscale factor for the detected-crop copy
	ContrastBoost     float64 // contrast percentage applied before scanning
}

// DefaultDecomposerConfig returns the tuning observed to work on phone
// photos of product packaging.
func DefaultDecomposerConfig() DecomposerConfig {
	return DecomposerConfig{
		RowStride:         10,
		LuminanceJump:     50,
		MinRowTransitions: 30,
		QuietLuminance:    200,
		BoundaryMargin:    20,
		BandHeightRatio:   0.2,
		MaxBandHeight:     200,
		MinBoxWidth:       50,
		MinBoxHeight:      20,
		MinAspect:         1.5,
		MaxAspect:         10,
		ZoomFactor:        1.5,
		ContrastBoost:     25,
	}
}

// RegionDecomposer splits a still image into an ordered, finite sequence
// of candidate sub-regions to maximize the chance that at least one of
// them decodes. The sequence is pure data; decoding happens elsewhere.
type RegionDecomposer struct {
	cfg DecomposerConfig
}

// NewRegionDecomposer creates a decomposer, falling back to defaults for
// zero-valued config fields.
func NewRegionDecomposer(cfg DecomposerConfig) *RegionDecomposer {
	def := DefaultDecomposerConfig()
	if cfg.RowStride <= 0 {
		cfg.RowStride = def.RowStride
	}
	if cfg.LuminanceJump <= 0 {
		cfg.LuminanceJump = def.LuminanceJump
	}
	if cfg.MinRowTransitions <= 0 {
		cfg.MinRowTransitions = def.MinRowTransitions
	}
	if cfg.QuietLuminance <= 0 {
		cfg.QuietLuminance = def.QuietLuminance
	}
	if cfg.BoundaryMargin <= 0 {
		cfg.BoundaryMargin = def.BoundaryMargin
	}
	if cfg.BandHeightRatio <= 0 {
		cfg.BandHeightRatio = def.BandHeightRatio
	}
	if cfg.MaxBandHeight <= 0 {
		cfg.MaxBandHeight = def.MaxBandHeight
	}
	if cfg.MinBoxWidth <= 0 {
		cfg.MinBoxWidth = def.MinBoxWidth
	}
	if cfg.MinBoxHeight <= 0 {
		cfg.MinBoxHeight = def.MinBoxHeight
	}
	if cfg.MinAspect <= 0 {
		cfg.MinAspect = def.MinAspect
	}
	if cfg.MaxAspect <= 0 {
		cfg.MaxAspect = def.MaxAspect
	}
	if cfg.ZoomFactor <= 0 {
		cfg.ZoomFactor = def.ZoomFactor
	}
	return &RegionDecomposer{cfg: cfg}
}

// Decompose builds the candidate region sequence for one uploaded image:
// detected-barcode crop and its zoom when pattern detection succeeds,
// then the full image, a 3x3 grid, three horizontal strips and a center
// crop. Output is ordered by decreasing prior probability of a clean
// decode and contains 14 regions without a detection, 16 with one.
func (d *RegionDecomposer) Decompose(src image.Image) []domain.ImageRegion {
	img := d.preprocess(src)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	regions := make([]domain.ImageRegion, 0, 16)
	rank := 0
	add := func(id string, sub image.Image, desc string) {
		regions = append(regions, domain.ImageRegion{
			ID:          id,
			Image:       sub,
			Rank:        rank,
			Description: desc,
		})
		rank++
	}

	if box, ok := d.DetectBarcodeBox(img); ok {
		crop := imaging.Crop(img, box)
		add("detected_barcode", crop, "detected barcode crop")
		zoomW := int(float64(box.Dx()) * d.cfg.ZoomFactor)
		zoomH := int(float64(box.Dy()) * d.cfg.ZoomFactor)
		add("detected_barcode_zoom", imaging.Resize(crop, zoomW, zoomH, imaging.Lanczos),
			fmt.Sprintf("detected crop upscaled %.1fx", d.cfg.ZoomFactor))
	} else {
		log.Printf("[Decomposer] no barcode pattern detected, using generic regions only")
	}

	add("full", img, "full image")

	tileW, tileH := width/3, height/3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			tile := image.Rect(col*tileW, row*tileH, (col+1)*tileW, (row+1)*tileH)
			add(fmt.Sprintf("grid_%d_%d", row, col), imaging.Crop(img, tile),
				fmt.Sprintf("grid tile row %d col %d", row+1, col+1))
		}
	}

	stripH := height / 3
	for i, pos := range []string{"top", "middle", "bottom"} {
		strip := image.Rect(0, i*stripH, width, (i+1)*stripH)
		add("strip_"+pos, imaging.Crop(img, strip), pos+" horizontal strip")
	}

	center := image.Rect(width/4, height/4, width/4+width/2, height/4+height/2)
	add("center_zoom", imaging.Crop(img, center), "center 50% crop")

	log.Printf("[Decomposer] built %d candidate regions (%dx%d source)", len(regions), width, height)
	return regions
}

// preprocess boosts contrast before any pixel analysis; low-contrast
// phone photos are the dominant failure mode for 1D decoding.
func (d *RegionDecomposer) preprocess(src image.Image) image.Image {
	if d.cfg.ContrastBoost == 0 {
		// Clone anyway so downstream crops work in a zero-origin space.
		return imaging.Clone(src)
	}
	return imaging.AdjustContrast(src, d.cfg.ContrastBoost)
}

// DetectBarcodeBox locates a probable barcode area by counting luminance
// transitions along horizontal rows: a printed 1D code produces a dense
// run of dark/light flips that ordinary packaging art does not.
func (d *RegionDecomposer) DetectBarcodeBox(img image.Image) (image.Rectangle, bool) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return image.Rectangle{}, false
	}

	bestY, bestTransitions := -1, 0
	for y := 0; y < height; y += d.cfg.RowStride {
		transitions := d.rowTransitions(img, y)
		if transitions > d.cfg.MinRowTransitions && transitions > bestTransitions {
			bestY, bestTransitions = y, transitions
		}
	}
	if bestY < 0 {
		return image.Rectangle{}, false
	}

	bandHeight := int(float64(height) * d.cfg.BandHeightRatio)
	if bandHeight > d.cfg.MaxBandHeight {
		bandHeight = d.cfg.MaxBandHeight
	}
	top := max(0, bestY-bandHeight/2)
	bottom := min(height, bestY+bandHeight/2)

	left, right := d.horizontalBounds(img, (top+bottom)/2, width)

	box := image.Rect(left, top, right, bottom)
	w, h := box.Dx(), box.Dy()
	if w < d.cfg.MinBoxWidth || h < d.cfg.MinBoxHeight {
		log.Printf("[Decomposer] detected box too small (w=%d h=%d), discarding", w, h)
		return image.Rectangle{}, false
	}
	aspect := float64(w) / float64(h)
	if aspect < d.cfg.MinAspect || aspect > d.cfg.MaxAspect {
		log.Printf("[Decomposer] detected box aspect %.2f outside barcode range, discarding", aspect)
		return image.Rectangle{}, false
	}

	log.Printf("[Decomposer] barcode box at %v (transitions=%d aspect=%.2f)", box, bestTransitions, aspect)
	return box, true
}

// rowTransitions counts large luminance jumps across one row.
func (d *RegionDecomposer) rowTransitions(img image.Image, y int) int {
	bounds := img.Bounds()
	transitions := 0
	last := luminanceAt(img, bounds.Min.X, bounds.Min.Y+y)
	for x := bounds.Min.X + 1; x < bounds.Max.X; x++ {
		lum := luminanceAt(img, x, bounds.Min.Y+y)
		if abs(lum-last) > d.cfg.LuminanceJump {
			transitions++
		}
		last = lum
	}
	return transitions
}

// horizontalBounds walks the band midline inward from both edges to the
// first non-background pixel, with a fixed margin added on each side.
func (d *RegionDecomposer) horizontalBounds(img image.Image, y, width int) (int, int) {
	bounds := img.Bounds()
	left, right := 0, width
	for x := 0; x < width; x++ {
		if luminanceAt(img, bounds.Min.X+x, bounds.Min.Y+y) < d.cfg.QuietLuminance {
			left = max(0, x-d.cfg.BoundaryMargin)
			break
		}
	}
	for x := width - 1; x >= 0; x-- {
		if luminanceAt(img, bounds.Min.X+x, bounds.Min.Y+y) < d.cfg.QuietLuminance {
			right = min(width, x+d.cfg.BoundaryMargin)
			break
		}
	}
	return left, right
}

// luminanceAt returns the 0-255 mean-channel luminance of one pixel.
func luminanceAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return float64(r>>8+g>>8+b>>8) / 3
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
