// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain and
// service layer from concrete implementations: the REST backend on one
// side, the seeded in-memory mock store on the other.
package port

import (
	"context"

	"github.com/clubbook/members-book-go/internal/domain"
)

// MemberStore reads and mutates the member directory.
type MemberStore interface {
	ListMembers(ctx context.Context) ([]domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	// ConnectMember records a connection with the given member.
	ConnectMember(ctx context.Context, id string) error

	// GetProfile returns the committed profile snapshot for a user.
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	// ApplyProfileChanges overwrites the given fields on the live
	// profile, last-write-wins.
	ApplyProfileChanges(ctx context.Context, userID string, changes domain.Profile) error
}

// ApprovalStore persists approval requests.
type ApprovalStore interface {
	CreateApproval(ctx context.Context, req *domain.ApprovalRequest) error
	GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	// ListApprovals returns requests with the given status ("" for all),
	// ordered by creation time ascending: the review queue is FIFO.
	ListApprovals(ctx context.Context, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error)
	// DecideApproval transitions a pending request to a terminal status.
	// A request that is no longer pending yields domain.ErrConflict and
	// stays untouched.
	DecideApproval(ctx context.Context, id string, decision domain.ApprovalStatus, reviewerID, comments string) (*domain.ApprovalRequest, error)
}

// UserStore is the admin view over accounts.
type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.AdminUser, error)
	UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) error
	DeleteUser(ctx context.Context, id string) error
}

// MetricsSource produces the dashboard aggregates.
type MetricsSource interface {
	SystemMetrics(ctx context.Context) ([]domain.SystemMetric, error)
}

// ChatStore holds the mocked chat history.
type ChatStore interface {
	ListRooms(ctx context.Context) ([]domain.ChatRoom, error)
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, error)
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
}

// AuthAPI is the remote authentication surface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResponse, error)
	GuestLogin(ctx context.Context) (*domain.LoginResponse, error)
	Logout(ctx context.Context) error
	// Validate checks the stored token and returns the session it
	// represents.
	Validate(ctx context.Context) (*domain.Session, error)
}

// CredentialStore resolves login secrets for the mock auth backend.
type CredentialStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

// KV is a persistent key-value store surviving process restarts; the
// session layer keeps its token and user record here.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
