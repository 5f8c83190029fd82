// Package domain holds the core data model of the Members Book:
// identities, member records, approval requests and the error types
// shared by every layer.
package domain

import "time"

// UserType classifies an authenticated identity. Immutable per session;
// assigned at login.
type UserType string

const (
	UserTypeAdmin  UserType = "admin"
	UserTypeMember UserType = "member"
	UserTypeGuest  UserType = "guest"
)

// Valid reports whether t is one of the three known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeMember, UserTypeGuest:
		return true
	}
	return false
}

// DisplayName returns the Portuguese label shown in the UI.
func (t UserType) DisplayName() string {
	switch t {
	case UserTypeAdmin:
		return "Administrador"
	case UserTypeMember:
		return "Membro"
	case UserTypeGuest:
		return "Convidado"
	}
	return "Usuário"
}

// MemberHierarchy is the membership tier, ordered socios > infinity > disruption.
type MemberHierarchy string

const (
	HierarchySocios     MemberHierarchy = "socios"
	HierarchyInfinity   MemberHierarchy = "infinity"
	HierarchyDisruption MemberHierarchy = "disruption"
)

// Valid reports whether h is one of the three known tiers.
func (h MemberHierarchy) Valid() bool {
	switch h {
	case HierarchySocios, HierarchyInfinity, HierarchyDisruption:
		return true
	}
	return false
}

// DisplayName returns the badge label for the tier.
func (h MemberHierarchy) DisplayName() string {
	switch h {
	case HierarchySocios:
		return "Sócios"
	case HierarchyInfinity:
		return "Infinity"
	case HierarchyDisruption:
		return "Disruption"
	}
	return "Membro"
}

// UserStatus is the administrative state of a user account.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusPending   UserStatus = "pending"
	StatusSuspended UserStatus = "suspended"
)

// Session is the authenticated identity restored at app start and
// destroyed on logout.
type Session struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	UserType  UserType        `json:"user_type"`
	Hierarchy MemberHierarchy `json:"hierarchy,omitempty"`
	Token     string          `json:"token"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsGuest reports whether the session belongs to a guest entry.
func (s *Session) IsGuest() bool { return s != nil && s.UserType == UserTypeGuest }

// Member is a directory item. Immutable from the directory's point of
// view; only admin actions mutate it.
type Member struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Company     string          `json:"company"`
	Sector      string          `json:"sector"`
	Hierarchy   MemberHierarchy `json:"hierarchy"`
	Expertise   []string        `json:"expertise,omitempty"`
	Connections int             `json:"connections"`
	IsOnline    bool            `json:"isOnline"`
	Email       string          `json:"email,omitempty"`
}

// AdminUser is the user-management view of an account.
type AdminUser struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Tier           MemberHierarchy `json:"tier"`
	Status         UserStatus      `json:"status"`
	JoinDate       time.Time       `json:"joinDate"`
	LastActive     time.Time       `json:"lastActive"`
	EventsAttended int             `json:"eventsAttended"`
	Connections    int             `json:"connections"`
}

// TrendType is the direction arrow on a dashboard metric.
type TrendType string

const (
	TrendUp     TrendType = "up"
	TrendDown   TrendType = "down"
	TrendStable TrendType = "stable"
)

// SystemMetric is a display-only dashboard aggregate. Change is a signed
// percentage string, e.g. "+12%".
type SystemMetric struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Value  string    `json:"value"`
	Change string    `json:"change"`
	Trend  TrendType `json:"trend"`
	Icon   string    `json:"icon"`
}

// Credential is a stored login secret for the mock auth backend.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	UserType     UserType
	Hierarchy    MemberHierarchy
	Name         string
}

// LoginResponse is the auth endpoint payload: POST /auth/login.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	UserType    UserType `json:"user_type"`
}
