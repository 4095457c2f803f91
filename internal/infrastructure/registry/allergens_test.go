package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAllergens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single keyword",
			text: "밀가루, 설탕, 팜유",
			want: []string{"밀"},
		},
		{
			name: "multiple groups in category order",
			text: "돼지고기, 양배추, 밀가루, 간장",
			want: []string{"대두", "밀", "돼지고기"},
		},
		{
			name: "alias keywords resolve to category name",
			text: "난류(계란), 우유 함유",
			want: []string{"계란", "우유"},
		},
		{
			name: "one category reported once despite several keywords",
			text: "우유, 버터, 치즈, 크림",
			want: []string{"우유"},
		},
		{
			name: "latin keywords match case-insensitively",
			text: "Contains WHEAT and Milk",
			want: []string{"우유", "밀"},
		},
		{
			name: "no allergen keywords",
			text: "정제수, 백설탕, 구연산",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractAllergens(tt.text))
		})
	}
}

func TestCanonicalAllergen(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"난류", "계란"},
		{"콩", "대두"},
		{"소고기", "쇠고기"},
		{"아황산염", "아황산류"},
		{"조개", "조개류"},
		{"땅콩", "땅콩"},
		{"신규성분", "신규성분"}, // unmapped names pass through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalAllergen(tt.raw), "canonicalAllergen(%s)", tt.raw)
	}
}
