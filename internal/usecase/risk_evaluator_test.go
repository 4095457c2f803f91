package usecase

import (
	"testing"

	"github.com/allerscan/backend/internal/domain"
)

func TestEvaluateRisk(t *testing.T) {
	tests := []struct {
		name       string
		product    *domain.ProductRecord
		profile    *domain.AllergyProfile
		wantLevel  domain.RiskLevel
		wantReason string
	}{
		{
			name: "direct allergen overlap is danger",
			product: &domain.ProductRecord{
				Name:      "새우깡",
				Allergens: []string{"새우", "밀", "대두"},
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"새우"}},
			wantLevel:  domain.RiskDanger,
			wantReason: "risk ingredient found: 새우",
		},
		{
			name: "allergen in warning text is cross-contamination warning",
			product: &domain.ProductRecord{
				Name:      "새우깡",
				Allergens: []string{"새우", "밀"},
				Warnings:  "같은 시설에서 계란, 게를 사용한 제품을 제조하고 있습니다.",
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"계란"}},
			wantLevel:  domain.RiskWarning,
			wantReason: "possible cross-contamination",
		},
		{
			name: "no overlap anywhere is safe",
			product: &domain.ProductRecord{
				Name:      "서울우유",
				Allergens: []string{"우유"},
				Warnings:  "유당불내증이 있는 경우 주의하시기 바랍니다.",
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"땅콩"}},
			wantLevel:  domain.RiskSafe,
			wantReason: "no known allergens detected",
		},
		{
			name: "nil profile is unknown",
			product: &domain.ProductRecord{
				Name:      "땅콩버터",
				Allergens: []string{"땅콩"},
			},
			profile:   nil,
			wantLevel: domain.RiskUnknown,
		},
		{
			name: "danger beats warning when both would match",
			product: &domain.ProductRecord{
				Name:      "계란과자",
				Allergens: []string{"밀", "계란", "우유"},
				Warnings:  "같은 시설에서 계란을 사용한 제품을 제조하고 있습니다.",
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"계란"}},
			wantLevel:  domain.RiskDanger,
			wantReason: "risk ingredient found: 계란",
		},
		{
			name: "substring match catches compound allergen names",
			product: &domain.ProductRecord{
				Allergens: []string{"조개류(굴)"},
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"조개류"}},
			wantLevel:  domain.RiskDanger,
			wantReason: "risk ingredient found: 조개류(굴)",
		},
		{
			name: "case-insensitive latin allergen match",
			product: &domain.ProductRecord{
				Allergens: []string{"Milk"},
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"milk"}},
			wantLevel:  domain.RiskDanger,
			wantReason: "risk ingredient found: Milk",
		},
		{
			name: "blank profile entries are ignored",
			product: &domain.ProductRecord{
				Allergens: []string{"밀"},
				Warnings:  "",
			},
			profile:    &domain.AllergyProfile{Allergens: []string{"  ", ""}},
			wantLevel:  domain.RiskSafe,
			wantReason: "no known allergens detected",
		},
		{
			name:       "empty profile against empty product is safe",
			product:    &domain.ProductRecord{},
			profile:    &domain.AllergyProfile{},
			wantLevel:  domain.RiskSafe,
			wantReason: "no known allergens detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := EvaluateRisk(tt.product, tt.profile)
			if verdict.Level != tt.wantLevel {
				t.Errorf("Level = %v, want %v", verdict.Level, tt.wantLevel)
			}
			if tt.wantReason != "" {
				found := false
				for _, r := range verdict.Reasons {
					if r == tt.wantReason {
						found = true
					}
				}
				if !found {
					t.Errorf("Reasons = %v, want to contain %q", verdict.Reasons, tt.wantReason)
				}
			}
			if verdict.Reasons == nil {
				t.Error("Reasons must never be nil")
			}
		})
	}
}

func TestEvaluateRiskMultipleMatches(t *testing.T) {
	product := &domain.ProductRecord{
		Name:      "비비고 왕교자",
		Allergens: []string{"돼지고기", "밀", "대두"},
	}
	profile := &domain.AllergyProfile{Allergens: []string{"밀", "대두"}}

	verdict := EvaluateRisk(product, profile)
	if verdict.Level != domain.RiskDanger {
		t.Fatalf("Level = %v, want danger", verdict.Level)
	}
	if len(verdict.Reasons) != 2 {
		t.Errorf("len(Reasons) = %d, want one reason per matched allergen", len(verdict.Reasons))
	}
}
