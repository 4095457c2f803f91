package http

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allerscan/backend/internal/domain"
)

// ImageScanner extracts a canonical barcode from a photograph.
type ImageScanner interface {
	Scan(ctx context.Context, img image.Image) (string, error)
}

// ProductAnalyzer resolves a barcode and classifies it against an
// allergy profile.
type ProductAnalyzer interface {
	Analyze(ctx context.Context, barcode string, profile *domain.AllergyProfile) (*domain.AnalyzedProduct, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner  ImageScanner
	analyzer ProductAnalyzer
}

// NewHandler creates a new HTTP handler
func NewHandler(scanner ImageScanner, analyzer ProductAnalyzer) *Handler {
	return &Handler{scanner: scanner, analyzer: analyzer}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "allerscan-backend",
		"version": "1.0.0",
	})
}

// ScanImage accepts a multipart "image" upload and returns the barcode
// found in it. A photograph with no readable barcode is a 422 with
// user-facing guidance, not a server error.
func (h *Handler) ScanImage(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "image file is required (multipart field 'image')",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded image"})
		return
	}

	img, err := decodeImage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image format"})
		return
	}

	barcode, err := h.scanner.Scan(c.Request.Context(), img)
	if err != nil {
		if errors.Is(err, domain.ErrNoBarcodeFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    "no barcode found",
				"guidance": "바코드를 찾을 수 없습니다. 바코드가 선명하게 보이도록 다시 촬영해 주세요.",
			})
			return
		}
		log.Printf("[HTTP] image scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"barcode": barcode})
}

// analyzeRequest is the POST /products/analyze body.
type analyzeRequest struct {
	Barcode string                 `json:"barcode" binding:"required"`
	Profile *domain.AllergyProfile `json:"profile"`
}

// AnalyzeProduct resolves a barcode through the lookup chain and grades
// it against the caller's allergy profile. An unresolvable product is a
// 200 with not-found provenance; only an unusable barcode is rejected.
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.Barcode, req.Profile)
	if err != nil {
		if errors.Is(err, domain.ErrBarcodeTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "barcode must contain at least 8 digits",
			})
			return
		}
		log.Printf("[HTTP] product analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
