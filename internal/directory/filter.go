// Package directory filters and searches in-memory member collections.
// Filtering preserves input order; it never sorts.
package directory

import (
	"strings"

	"github.com/clubbook/members-book-go/internal/domain"
)

// FilterAll disables hierarchy filtering. An empty hierarchy means the
// same thing.
const FilterAll = "all"

// Query combines a free-text search with a categorical hierarchy filter.
// Both predicates are ANDed.
type Query struct {
	Search    string
	Hierarchy string
}

// Filter returns the members matching q, in their original relative
// order. The search term is matched case-insensitively as a substring
// against name, title, company and every expertise entry; a member
// matches if any of those contains it.
func Filter(members []domain.Member, q Query) []domain.Member {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	byHierarchy := q.Hierarchy != "" && q.Hierarchy != FilterAll

	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if byHierarchy && string(m.Hierarchy) != q.Hierarchy {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesSearch(m domain.Member, search string) bool {
	if strings.Contains(strings.ToLower(m.Name), search) ||
		strings.Contains(strings.ToLower(m.Title), search) ||
		strings.Contains(strings.ToLower(m.Company), search) {
		return true
	}
	for _, e := range m.Expertise {
		if strings.Contains(strings.ToLower(e), search) {
			return true
		}
	}
	return false
}

// UserQuery filters the admin user list by text and account status.
type UserQuery struct {
	Search string
	Status string
}

// FilterUsers returns the admin users matching q, preserving order.
// The search term matches name or email.
func FilterUsers(users []domain.AdminUser, q UserQuery) []domain.AdminUser {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	byStatus := q.Status != "" && q.Status != FilterAll

	out := make([]domain.AdminUser, 0, len(users))
	for _, u := range users {
		if byStatus && string(u.Status) != q.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}
