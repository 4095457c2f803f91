package domain

// SourceProvenance identifies which lookup source produced a ProductRecord
type SourceProvenance string

const (
	SourcePrimaryRegistry   SourceProvenance = "primary-registry"
	SourceSecondaryRegistry SourceProvenance = "secondary-registry"
	SourceLocalCatalog      SourceProvenance = "local-catalog"
	SourceNotFound          SourceProvenance = "not-found"
)

// Nutrition holds per-serving nutrition facts as display strings.
// Registry responses carry these as free text ("480kcal", "정보 없음"),
// so no numeric parsing is attempted.
type Nutrition struct {
	Calories string `json:"calories"`
	Sodium   string `json:"sodium"`
	Carbs    string `json:"carbs"`
	Sugars   string `json:"sugars"`
	Fat      string `json:"fat"`
	Protein  string `json:"protein"`
}

// ProductRecord is the canonical product shape every lookup source maps
// into. Records are constructed once per lookup and never mutated after
// construction; the risk evaluator returns an augmented copy instead.
type ProductRecord struct {
	Barcode     string           `json:"barcode"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand"`
	Price       string           `json:"price"`
	Ingredients []string         `json:"ingredients"`
	Allergens   []string         `json:"allergens"`
	Warnings    string           `json:"warnings"`
	Nutrition   Nutrition        `json:"nutrition"`
	Source      SourceProvenance `json:"sourceProvenance"`
}

// NotFound reports whether this record is the synthetic end-of-chain result.
func (p *ProductRecord) NotFound() bool {
	return p.Source == SourceNotFound
}

// AnalyzedProduct is a ProductRecord augmented with a risk verdict.
type AnalyzedProduct struct {
	ProductRecord
	RiskLevel   RiskLevel `json:"riskLevel"`
	RiskReasons []string  `json:"riskReasons"`
}
