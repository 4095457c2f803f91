package domain

import (
	"regexp"
	"strings"
)

// The pipeline standardizes on a 14-digit canonical barcode (GTIN-14
// style, leading-zero padded). Upstream registries predate that
// convention and expect the historical 13- or 12-digit lengths, so the
// canonical form is re-derived per source boundary.

const (
	canonicalLength = 14
	minDigits       = 8

	// Korean EAN-13 codes begin with the 880 country prefix.
	domesticPrefix = "880"
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// NormalizeBarcode folds any accepted raw decode (8, 12, 13 or 14 digits,
// with arbitrary non-digit noise) into the canonical 14-digit form.
//
// Inputs below 8 digits are rejected; everything else is accepted:
// unrecognized lengths above 14 degrade to a best-effort value rather
// than dropping the scan, so the lookup simply misses.
func NormalizeBarcode(raw string) (string, error) {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if len(digits) < minDigits {
		return "", ErrBarcodeTooShort
	}

	switch len(digits) {
	case canonicalLength:
		if digits[0] == '0' {
			return digits, nil
		}
	case 13:
		return "0" + digits, nil
	case 12:
		return "00" + digits, nil
	case minDigits:
		return "000000" + digits, nil
	}

	if len(digits) > canonicalLength {
		if recovered := recoverOverlong(digits); recovered != "" {
			return recovered, nil
		}
	}

	// Non-standard length: pass through unchanged and let the lookup miss.
	return digits, nil
}

// recoverOverlong salvages a misread that picked up extra digits.
func recoverOverlong(digits string) string {
	head := digits[:canonicalLength]
	if head[0] == '0' {
		return head
	}
	if first13 := digits[:13]; strings.HasPrefix(first13, domesticPrefix) {
		return "0" + first13
	}
	if last13 := digits[len(digits)-13:]; strings.HasPrefix(last13, domesticPrefix) {
		return "0" + last13
	}
	return ""
}

// RegistryBarcode converts a canonical barcode back to the length the
// upstream registries historically expect: the leading pad zero is
// stripped to 13 digits, and a stray zero left on a non-domestic code is
// stripped again down to the 12-digit UPC-A form.
func RegistryBarcode(canonical string) string {
	code := canonical
	if len(code) == canonicalLength && code[0] == '0' {
		code = code[1:]
	}
	if len(code) == 13 && code[0] == '0' && !strings.HasPrefix(code, "088") {
		code = code[1:]
	}
	return code
}
