package registry

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/allerscan/backend/internal/domain"
)

const (
	secondaryNumOfRows = 10
	secondaryOperation = "/getCertImgListService"
)

var ingredientSeparator = regexp.MustCompile(`[,、]`)

// SecondarySource queries the certification registry. It has no clean
// allergen field, so allergens are reconstructed by scanning the
// concatenation of several free-text fields for the 19 keyword groups.
type SecondarySource struct {
	client   *Client
	endpoint string
}

// NewSecondarySource creates the certification registry source for a
// service base URL.
func NewSecondarySource(client *Client, baseURL string) *SecondarySource {
	return &SecondarySource{client: client, endpoint: strings.TrimRight(baseURL, "/") + secondaryOperation}
}

// Name identifies the source in logs.
func (s *SecondarySource) Name() string { return "certification registry" }

// Fetch looks one canonical barcode up in the certification registry.
func (s *SecondarySource) Fetch(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	code := domain.RegistryBarcode(barcode)
	log.Printf("[Registry] certification lookup for %s (canonical %s)", code, barcode)

	doc, err := s.client.GetDocument(ctx, s.endpoint, secondaryNumOfRows, code)
	if err != nil {
		return nil, err
	}
	if !doc.OK() {
		return nil, fmt.Errorf("%w: result code %s (%s)", domain.ErrProductNotFound, doc.ResultCode, doc.ResultMsg)
	}
	if len(doc.Items) == 0 {
		return nil, domain.ErrProductNotFound
	}

	item := doc.Items[0]

	productName := item.First(secondaryFields.productName...)
	if productName == "" {
		productName = "알 수 없는 제품"
	}
	manufacturer := item.First(secondaryFields.manufacturer...)
	if manufacturer == "" {
		manufacturer = "정보 없음"
	}

	var texts []string
	for _, tag := range secondaryFields.allergenText {
		if v := item[tag]; v != "" {
			texts = append(texts, v)
		}
	}
	combined := strings.Join(texts, " ")
	allergens := extractAllergens(combined)
	if allergens == nil {
		allergens = []string{}
	}
	log.Printf("[Registry] %q: extracted %d allergen categories from free text", productName, len(allergens))

	var ingredients []string
	for _, part := range ingredientSeparator.Split(item.First(secondaryFields.rawMaterials...), -1) {
		if part = strings.TrimSpace(part); part != "" {
			ingredients = append(ingredients, part)
		}
	}

	warnings := "알레르기 정보를 확인할 수 없습니다. 제품 포장지를 직접 확인해주세요."
	if len(allergens) > 0 {
		warnings = fmt.Sprintf("이 제품에는 %s이(가) 포함되어 있을 수 있습니다.", strings.Join(allergens, ", "))
	}

	const noInfo = "정보 없음"
	return &domain.ProductRecord{
		Barcode:     barcode,
		Name:        productName,
		Brand:       manufacturer,
		Price:       noInfo,
		Ingredients: ingredients,
		Allergens:   allergens,
		Warnings:    warnings,
		Nutrition: domain.Nutrition{
			Calories: noInfo, Sodium: noInfo, Carbs: noInfo,
			Sugars: noInfo, Fat: noInfo, Protein: noInfo,
		},
		Source: domain.SourceSecondaryRegistry,
	}, nil
}
