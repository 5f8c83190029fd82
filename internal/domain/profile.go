package domain

import (
	"strconv"
	"strings"
)

// Profile is a free-form record of named fields. Known field names are
// exported as constants; arbitrary extension fields are allowed.
type Profile map[string]any

// Well-known profile field names.
const (
	FieldName                = "name"
	FieldCompany             = "company"
	FieldBio                 = "bio"
	FieldInstagram           = "instagram"
	FieldLinkedin            = "linkedin"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldLocation            = "location"
	FieldIndustry            = "industry"
	FieldNegociosFechados    = "negociosFechados"
	FieldValorTotalAcumulado = "valorTotalAcumulado"
)

// NumericFields are the free-text entry fields that must be coerced to
// numbers before classification.
var NumericFields = map[string]bool{
	FieldNegociosFechados:    true,
	FieldValorTotalAcumulado: true,
}

// Clone returns a shallow copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the field as a trimmed string ("" when absent).
func (p Profile) String(field string) string {
	v, ok := p[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// CoerceNumeric parses a free-text numeric entry. Empty input coerces to
// zero; anything non-numeric is a validation error surfaced to the user,
// never sent onward.
func CoerceNumeric(field, input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, &ErrValidation{Field: field, Message: "valor numérico inválido"}
	}
	if n < 0 {
		return 0, &ErrValidation{Field: field, Message: "valor deve ser não-negativo"}
	}
	return n, nil
}

// NumericValue normalises a stored field value to float64 for comparison.
// Supports the representations that survive JSON round-trips.
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case nil:
		return 0, true
	}
	return 0, false
}
