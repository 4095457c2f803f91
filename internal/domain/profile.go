package domain

// AllergyProfile is the user's risk profile, produced by the intake flow
// and supplied read-only to the risk evaluator.
type AllergyProfile struct {
	Allergens []string          `json:"allergens"`
	Severity  map[string]string `json:"severityPerAllergen,omitempty"`
}

// RiskLevel is a three-level verdict plus "unknown" for missing profiles.
type RiskLevel string

const (
	RiskDanger  RiskLevel = "danger"
	RiskWarning RiskLevel = "warning"
	RiskSafe    RiskLevel = "safe"
	RiskUnknown RiskLevel = "unknown"
)

// RiskVerdict pairs a level with human-readable reasons. Danger strictly
// dominates warning, warning dominates safe.
type RiskVerdict struct {
	Level   RiskLevel `json:"level"`
	Reasons []string  `json:"reasons"`
}
