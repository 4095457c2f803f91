package registry

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/allerscan/backend/internal/domain"
)

const (
	primaryNumOfRows = 100
	primaryOperation = "/getFoodQrAllrgyInfo"
)

// PrimarySource queries the government allergen registry, the highest
// priority link of the lookup chain. Its response is one item per
// declared allergen for the product.
type PrimarySource struct {
	client   *Client
	endpoint string
}

// NewPrimarySource creates the allergen registry source for a service
// base URL; the operation path is fixed by the registry contract.
func NewPrimarySource(client *Client, baseURL string) *PrimarySource {
	return &PrimarySource{client: client, endpoint: strings.TrimRight(baseURL, "/") + primaryOperation}
}

// Name identifies the source in logs.
func (s *PrimarySource) Name() string { return "allergen registry" }

// Fetch looks one canonical barcode up, re-derived to the legacy length
// this registry expects.
func (s *PrimarySource) Fetch(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	code := domain.RegistryBarcode(barcode)
	log.Printf("[Registry] allergen lookup for %s (canonical %s)", code, barcode)

	doc, err := s.client.GetDocument(ctx, s.endpoint, primaryNumOfRows, code)
	if err != nil {
		return nil, err
	}
	if !doc.OK() {
		return nil, fmt.Errorf("%w: result code %s (%s)", domain.ErrProductNotFound, doc.ResultCode, doc.ResultMsg)
	}
	if len(doc.Items) == 0 {
		return nil, domain.ErrProductNotFound
	}

	productName := "알 수 없는 제품"
	var rawNames []string
	var allergens []string
	seen := map[string]bool{}

	for _, item := range doc.Items {
		if name := item.First(primaryFields.productName...); name != "" {
			productName = name
		}
		raw := item.First(primaryFields.allergenName...)
		if raw == "" {
			continue
		}
		rawNames = append(rawNames, raw)
		mapped := canonicalAllergen(raw)
		if !seen[mapped] {
			seen[mapped] = true
			allergens = append(allergens, mapped)
		}
	}

	log.Printf("[Registry] %q: %d allergen entries, %d categories", productName, len(rawNames), len(allergens))

	warnings := "알레르기 정보가 없습니다."
	if len(allergens) > 0 {
		warnings = fmt.Sprintf("이 제품에는 %s이(가) 포함되어 있습니다.", strings.Join(allergens, ", "))
	}

	const noInfo = "정보 없음"
	return &domain.ProductRecord{
		Barcode:     barcode,
		Name:        productName,
		Brand:       "식약처 데이터",
		Price:       noInfo,
		Ingredients: rawNames,
		Allergens:   allergens,
		Warnings:    warnings,
		Nutrition: domain.Nutrition{
			Calories: noInfo, Sodium: noInfo, Carbs: noInfo,
			Sugars: noInfo, Fat: noInfo, Protein: noInfo,
		},
		Source: domain.SourcePrimaryRegistry,
	}, nil
}
