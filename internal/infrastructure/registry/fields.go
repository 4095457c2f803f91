package registry

// Per-provider field tables: each logical attribute maps to an ordered
// list of candidate tag names, tried in order. The registries have
// shipped several schema revisions and older records still carry the
// old tags.

// Allergen registry (FoodQr allergen info service).
var primaryFields = struct {
	allergenName []string
	productName  []string
}{
	allergenName: []string{"ALG_CSG_MTR_NM"},
	productName:  []string{"PRDCT_NM"},
}

// Certification registry (HACCP certified product image service).
var secondaryFields = struct {
	productName  []string
	manufacturer []string
	allergenText []string
	rawMaterials []string
}{
	productName:  []string{"PRDLST_NM", "PRDCT_NM"},
	manufacturer: []string{"BSSH_NM", "ENTRPS_NM"},
	allergenText: []string{
		"ALLERGY_INFO",
		"ALLRGY_INFO",
		"ALLRGY_PRDLST_INFO",
		"RAWMTRL_NM",       // raw material list
		"PRDLST_DCNTS",     // product description
		"CSTDY_ASORT_MATR", // storage guidance
	},
	rawMaterials: []string{"RAWMTRL_NM"},
}
