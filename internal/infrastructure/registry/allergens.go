package registry

import "strings"

// The 19 statutory allergen categories. Group order is fixed: free-text
// extraction reports categories in this order, first matching keyword
// per group wins.
type allergenGroup struct {
	name     string
	keywords []string
}

var allergenGroups = []allergenGroup{
	{"계란", []string{"난류", "계란", "달걀", "난", "에그", "egg"}},
	{"우유", []string{"우유", "유당", "유제품", "밀크", "milk", "치즈", "버터", "크림"}},
	{"메밀", []string{"메밀"}},
	{"땅콩", []string{"땅콩", "피넛", "peanut"}},
	{"대두", []string{"대두", "콩", "두유", "간장", "된장", "soy"}},
	{"밀", []string{"밀", "밀가루", "글루텐", "wheat"}},
	{"고등어", []string{"고등어", "갈치"}},
	{"게", []string{"게"}},
	{"새우", []string{"새우", "크릴"}},
	{"돼지고기", []string{"돼지고기", "돈육", "포크", "pork"}},
	{"복숭아", []string{"복숭아"}},
	{"토마토", []string{"토마토"}},
	{"아황산류", []string{"아황산", "이산화황", "아황산염"}},
	{"호두", []string{"호두", "월넛", "walnut"}},
	{"닭고기", []string{"닭고기", "계육", "치킨", "chicken"}},
	{"쇠고기", []string{"쇠고기", "소고기", "우육", "비프", "beef"}},
	{"오징어", []string{"오징어"}},
	{"조개류", []string{"조개", "홍합", "바지락", "굴", "전복", "조갯살"}},
	{"잣", []string{"잣"}},
}

// extractAllergens scans free text for the 19 allergen keyword groups.
// Matching is a case-insensitive substring check.
func extractAllergens(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var found []string
	for _, group := range allergenGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(lower, keyword) {
				found = append(found, group.name)
				break
			}
		}
	}
	return found
}

// allergenAliases maps the raw names the allergen registry reports onto
// the 19 canonical categories. Unmapped names pass through unchanged.
var allergenAliases = map[string]string{
	"난류":   "계란",
	"계란":   "계란",
	"우유":   "우유",
	"메밀":   "메밀",
	"땅콩":   "땅콩",
	"대두":   "대두",
	"콩":    "대두",
	"밀":    "밀",
	"고등어":  "고등어",
	"게":    "게",
	"새우":   "새우",
	"돼지고기": "돼지고기",
	"복숭아":  "복숭아",
	"토마토":  "토마토",
	"아황산류": "아황산류",
	"아황산염": "아황산류",
	"호두":   "호두",
	"닭고기":  "닭고기",
	"쇠고기":  "쇠고기",
	"소고기":  "쇠고기",
	"오징어":  "오징어",
	"조개류":  "조개류",
	"조개":   "조개류",
}

// canonicalAllergen resolves a raw registry allergen name.
func canonicalAllergen(raw string) string {
	if mapped, ok := allergenAliases[raw]; ok {
		return mapped
	}
	return raw
}
