package catalog

import (
	"context"

	"github.com/allerscan/backend/internal/domain"
)

// Catalog is the curated in-memory fallback used when both registries
// have no data, e.g. offline operation or unregistered products. Records
// are keyed by their printed 13-digit code.
type Catalog struct {
	records map[string]domain.ProductRecord
}

// New creates the catalog with the built-in record set.
func New() *Catalog {
	return &Catalog{records: builtinRecords}
}

// Name identifies the source in logs.
func (c *Catalog) Name() string { return "local catalog" }

// Fetch tries the canonical barcode as-is and then its length-corrected
// registry form.
func (c *Catalog) Fetch(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	for _, key := range []string{barcode, domain.RegistryBarcode(barcode)} {
		if rec, ok := c.records[key]; ok {
			// Copy: catalog entries must stay pristine across lookups.
			out := rec
			out.Barcode = barcode
			return &out, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

var builtinRecords = map[string]domain.ProductRecord{
	"8801019606557": {
		Name:        "새우깡",
		Brand:       "농심",
		Price:       "1,500원",
		Ingredients: []string{"밀가루", "새우", "식물성유지", "설탕", "소금", "조미료(L-글루타민산나트륨)", "카제인나트륨(우유)"},
		Allergens:   []string{"새우", "밀", "우유", "대두"},
		Warnings:    "같은 시설에서 계란, 게를 사용한 제품을 제조하고 있습니다.",
		Nutrition: domain.Nutrition{
			Calories: "480kcal", Sodium: "450mg", Carbs: "60g",
			Sugars: "5g", Fat: "22g", Protein: "8g",
		},
		Source: domain.SourceLocalCatalog,
	},
	"8801062638857": {
		Name:        "오리온 초코파이",
		Brand:       "오리온",
		Price:       "2,800원",
		Ingredients: []string{"밀가루", "설탕", "식물성유지", "계란", "코코아분말", "유당", "버터", "우유"},
		Allergens:   []string{"밀", "계란", "우유", "대두"},
		Warnings:    "같은 시설에서 땅콩, 견과류를 사용한 제품을 제조하고 있습니다.",
		Nutrition: domain.Nutrition{
			Calories: "168kcal", Sodium: "60mg", Carbs: "21g",
			Sugars: "12g", Fat: "8g", Protein: "2g",
		},
		Source: domain.SourceLocalCatalog,
	},
	"8801047012634": {
		Name:        "서울우유",
		Brand:       "서울우유협동조합",
		Price:       "3,000원",
		Ingredients: []string{"원유 100%"},
		Allergens:   []string{"우유"},
		Warnings:    "유당불내증이 있는 경우 주의하시기 바랍니다.",
		Nutrition: domain.Nutrition{
			Calories: "130kcal", Sodium: "100mg", Carbs: "11g",
			Sugars: "11g", Fat: "7.5g", Protein: "6.4g",
		},
		Source: domain.SourceLocalCatalog,
	},
	"8801019312007": {
		Name:        "계란과자",
		Brand:       "농심",
		Price:       "1,200원",
		Ingredients: []string{"밀가루", "계란", "설탕", "식물성유지", "버터", "우유"},
		Allergens:   []string{"밀", "계란", "우유", "대두"},
		Warnings:    "같은 시설에서 땅콩을 사용한 제품을 제조하고 있습니다.",
		Nutrition: domain.Nutrition{
			Calories: "520kcal", Sodium: "220mg", Carbs: "65g",
			Sugars: "18g", Fat: "24g", Protein: "9g",
		},
		Source: domain.SourceLocalCatalog,
	},
	"8801043001274": {
		Name:        "땅콩버터",
		Brand:       "청우식품",
		Price:       "4,500원",
		Ingredients: []string{"땅콩", "식물성유지", "설탕", "소금"},
		Allergens:   []string{"땅콩"},
		Warnings:    "심각한 땅콩 알레르기가 있는 경우 섭취하지 마세요. 아나필락시스 위험이 있습니다.",
		Nutrition: domain.Nutrition{
			Calories: "588kcal", Sodium: "280mg", Carbs: "20g",
			Sugars: "9g", Fat: "50g", Protein: "25g",
		},
		Source: domain.SourceLocalCatalog,
	},
	"8801007325224": {
		Name:        "비비고 왕교자",
		Brand:       "CJ제일제당",
		Price:       "6,500원",
		Ingredients: []string{"돼지고기", "양배추", "밀가루", "부추", "양파", "대두유", "간장(대두)", "참기름", "마늘", "생강"},
		Allergens:   []string{"돼지고기", "밀", "대두"},
		Warnings:    "같은 시설에서 우유, 계란, 새우를 사용한 제품을 제조하고 있습니다.",
		Nutrition: domain.Nutrition{
			Calories: "280kcal", Sodium: "520mg", Carbs: "28g",
			Sugars: "3g", Fat: "12g", Protein: "11g",
		},
		Source: domain.SourceLocalCatalog,
	},
}
