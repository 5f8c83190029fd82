// Package profile implements the change classifier for profile edits:
// given the committed snapshot and the edited values, it decides which
// fields changed and whether the change set must route through the
// administrative approval workflow.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clubbook/members-book-go/internal/domain"
)

// ApprovalRequired is the fixed allow-list of sensitive fields. A change
// to any of them always routes through the approval workflow.
var ApprovalRequired = map[string]bool{
	domain.FieldCompany:             true,
	domain.FieldIndustry:            true,
	domain.FieldLocation:            true,
	domain.FieldBio:                 true,
	domain.FieldNegociosFechados:    true,
	domain.FieldValorTotalAcumulado: true,
}

// FieldChange records the before/after pair for one changed field.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Classification is the result of diffing an edited profile against its
// committed snapshot.
type Classification struct {
	ChangedFields    []string               `json:"changedFields"`
	RequiresApproval bool                   `json:"requiresApproval"`
	Manifest         map[string]FieldChange `json:"changeManifest"`
}

// Classify diffs edited against original. Pure and stateless: the diff
// is computed fresh against the immutable original on every call, so a
// field edited and then reverted drops out of the change set.
//
// Numeric entry fields are assumed already coerced (domain.CoerceNumeric);
// they compare numerically. Everything else compares as normalised text.
func Classify(original, edited domain.Profile) Classification {
	c := Classification{Manifest: make(map[string]FieldChange)}

	for field, newVal := range edited {
		oldVal := original[field]
		if equalValues(field, oldVal, newVal) {
			continue
		}
		c.ChangedFields = append(c.ChangedFields, field)
		c.Manifest[field] = FieldChange{From: oldVal, To: newVal}
		if ApprovalRequired[field] {
			c.RequiresApproval = true
		}
	}

	sort.Strings(c.ChangedFields)
	return c
}

// ChangeSet reduces a classification to the sparse requested/current
// value maps an approval request carries. Only differing fields appear.
func (c Classification) ChangeSet() (requested, current domain.Profile) {
	requested = make(domain.Profile, len(c.Manifest))
	current = make(domain.Profile, len(c.Manifest))
	for field, ch := range c.Manifest {
		requested[field] = ch.To
		current[field] = ch.From
	}
	return requested, current
}

// SensitiveChangeSet is ChangeSet restricted to the approval-required
// fields.
func (c Classification) SensitiveChangeSet() (requested, current domain.Profile) {
	requested = make(domain.Profile)
	current = make(domain.Profile)
	for field, ch := range c.Manifest {
		if !ApprovalRequired[field] {
			continue
		}
		requested[field] = ch.To
		current[field] = ch.From
	}
	return requested, current
}

// DirectChanges returns the changed fields that skip the approval
// workflow and may be written immediately.
func (c Classification) DirectChanges() domain.Profile {
	direct := make(domain.Profile)
	for field, ch := range c.Manifest {
		if ApprovalRequired[field] {
			continue
		}
		direct[field] = ch.To
	}
	return direct
}

func equalValues(field string, a, b any) bool {
	if domain.NumericFields[field] {
		na, okA := domain.NumericValue(a)
		nb, okB := domain.NumericValue(b)
		if okA && okB {
			return na == nb
		}
		// Unparseable numerics fall through to text comparison.
	}

	// Numeric-looking values in arbitrary fields still compare
	// numerically so 30 == 30.0 across JSON round-trips.
	if na, ok := numeric(a); ok {
		if nb, ok := numeric(b); ok {
			return na == nb
		}
		return false
	}

	return normalize(a) == normalize(b)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func normalize(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%v", v)
}
