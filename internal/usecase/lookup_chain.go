package usecase

import (
	"context"
	"log"

	"github.com/allerscan/backend/internal/domain"
)

// LookupChain queries product sources in strict priority order and
// short-circuits on the first hit. It never fails: a barcode nobody knows
// yields an explicit NotFound record, not an error. Source failures of
// any kind (malformed response, transport error, zero items) mean "no
// data from this source" and control passes to the next one.
type LookupChain struct {
	sources []domain.ProductSource
}

// NewLookupChain builds a chain over the given sources, highest priority
// first.
func NewLookupChain(sources ...domain.ProductSource) *LookupChain {
	return &LookupChain{sources: sources}
}

// Lookup resolves a canonical barcode to a product record.
func (c *LookupChain) Lookup(ctx context.Context, barcode string) *domain.ProductRecord {
	for _, src := range c.sources {
		record, err := src.Fetch(ctx, barcode)
		if err != nil {
			log.Printf("[Lookup] %s: no data for %s: %v", src.Name(), barcode, err)
			continue
		}
		log.Printf("[Lookup] %s resolved %s to %q", src.Name(), barcode, record.Name)
		return record
	}
	log.Printf("[Lookup] no source has data for %s", barcode)
	return notFoundRecord(barcode)
}

// notFoundRecord is the synthetic end-of-chain result. The guidance
// strings are what the voice layer reads out to the user.
func notFoundRecord(barcode string) *domain.ProductRecord {
	const noInfo = "정보 없음"
	return &domain.ProductRecord{
		Barcode:     barcode,
		Name:        "알 수 없는 제품",
		Brand:       noInfo,
		Price:       noInfo,
		Ingredients: []string{"제품 정보를 확인할 수 없습니다"},
		Allergens:   []string{},
		Warnings:    "제품 정보를 확인할 수 없습니다. 제조사에 직접 문의하시거나 제품 포장의 표시사항을 확인하시기 바랍니다.",
		Nutrition: domain.Nutrition{
			Calories: noInfo, Sodium: noInfo, Carbs: noInfo,
			Sugars: noInfo, Fat: noInfo, Protein: noInfo,
		},
		Source: domain.SourceNotFound,
	}
}
