package usecase

import (
	"strings"

	"github.com/allerscan/backend/internal/domain"
)

// EvaluateRisk classifies a product against a user's allergy profile.
// First matching rule wins: direct allergen overlap is danger, a profile
// allergen appearing in the free-text warning is warning (possible
// cross-contamination), otherwise safe. A missing profile yields unknown.
func EvaluateRisk(product *domain.ProductRecord, profile *domain.AllergyProfile) domain.RiskVerdict {
	if profile == nil {
		return domain.RiskVerdict{Level: domain.RiskUnknown, Reasons: []string{}}
	}

	userAllergens := make([]string, 0, len(profile.Allergens))
	for _, a := range profile.Allergens {
		if a = strings.TrimSpace(a); a != "" {
			userAllergens = append(userAllergens, strings.ToLower(a))
		}
	}

	var reasons []string
	for _, productAllergen := range product.Allergens {
		lower := strings.ToLower(productAllergen)
		for _, user := range userAllergens {
			if strings.Contains(lower, user) {
				reasons = append(reasons, "risk ingredient found: "+productAllergen)
				break
			}
		}
	}
	if len(reasons) > 0 {
		return domain.RiskVerdict{Level: domain.RiskDanger, Reasons: reasons}
	}

	if product.Warnings != "" {
		warnings := strings.ToLower(product.Warnings)
		for _, user := range userAllergens {
			if strings.Contains(warnings, user) {
				return domain.RiskVerdict{
					Level:   domain.RiskWarning,
					Reasons: []string{"possible cross-contamination"},
				}
			}
		}
	}

	return domain.RiskVerdict{
		Level:   domain.RiskSafe,
		Reasons: []string{"no known allergens detected"},
	}
}
