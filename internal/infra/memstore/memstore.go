// Package memstore is the in-memory data backend used when no REST API
// is reachable (and as the data store behind the local mock API). It is
// seeded with the same dataset the mobile app ships for offline mode.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubbook/members-book-go/internal/domain"
)

// Store is a thread-safe in-memory implementation of the member,
// approval, user, metrics, chat and credential ports.
type Store struct {
	mu          sync.RWMutex
	members     []domain.Member
	profiles    map[string]domain.Profile
	approvals   map[string]*domain.ApprovalRequest
	users       []domain.AdminUser
	metrics     []domain.SystemMetric
	rooms       []domain.ChatRoom
	messages    map[string][]domain.ChatMessage
	credentials map[string]*domain.Credential

	now func() time.Time
}

// New creates an empty store. Most callers want NewSeeded.
func New() *Store {
	return &Store{
		profiles:    make(map[string]domain.Profile),
		approvals:   make(map[string]*domain.ApprovalRequest),
		messages:    make(map[string][]domain.ChatMessage),
		credentials: make(map[string]*domain.Credential),
		now:         time.Now,
	}
}

// ============================================================
// MemberStore
// ============================================================

func (s *Store) ListMembers(_ context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

func (s *Store) GetMember(_ context.Context, id string) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.members {
		if s.members[i].ID == id {
			m := s.members[i]
			return &m, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "member", ID: id}
}

func (s *Store) ConnectMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == id {
			s.members[i].Connections++
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "member", ID: id}
}

func (s *Store) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return p.Clone(), nil
}

func (s *Store) ApplyProfileChanges(_ context.Context, userID string, changes domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	for field, value := range changes {
		p[field] = value
	}
	return nil
}

// ============================================================
// ApprovalStore
// ============================================================

func (s *Store) CreateApproval(_ context.Context, req *domain.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}
	stored := *req
	s.approvals[req.ID] = &stored
	return nil
}

func (s *Store) GetApproval(_ context.Context, id string) (*domain.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.approvals[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "approval request", ID: id}
	}
	out := *req
	return &out, nil
}

func (s *Store) ListApprovals(_ context.Context, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ApprovalRequest, 0, len(s.approvals))
	for _, req := range s.approvals {
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	// Oldest first: the review queue is FIFO.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DecideApproval(_ context.Context, id string, decision domain.ApprovalStatus, reviewerID, comments string) (*domain.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.approvals[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "approval request", ID: id}
	}
	if req.Status != domain.ApprovalPending {
		return nil, &domain.ErrConflict{Message: "solicitação já foi processada"}
	}
	reviewedAt := s.now()
	req.Status = decision
	req.ReviewedAt = &reviewedAt
	req.ReviewedBy = reviewerID
	req.ReviewComments = comments
	out := *req
	return &out, nil
}

// ============================================================
// UserStore
// ============================================================

func (s *Store) ListUsers(_ context.Context) ([]domain.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AdminUser, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) UpdateUserStatus(_ context.Context, id string, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Status = status
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "user", ID: id}
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "user", ID: id}
}

// ============================================================
// MetricsSource
// ============================================================

func (s *Store) SystemMetrics(_ context.Context) ([]domain.SystemMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SystemMetric, len(s.metrics))
	copy(out, s.metrics)
	return out, nil
}

// ============================================================
// ChatStore
// ============================================================

func (s *Store) ListRooms(_ context.Context) ([]domain.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatRoom, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *Store) ListMessages(_ context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[roomID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(msgs) {
		return []domain.ChatMessage{}, nil
	}
	end := len(msgs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]domain.ChatMessage, end-offset)
	copy(out, msgs[offset:end])
	return out, nil
}

func (s *Store) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	for i := range s.rooms {
		if s.rooms[i].ID == msg.RoomID {
			s.rooms[i].LastMessage = msg.Text
			s.rooms[i].LastMessageTime = msg.Timestamp
		}
	}
	return nil
}

// ============================================================
// CredentialStore
// ============================================================

func (s *Store) GetCredentialByEmail(_ context.Context, email string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[email]
	if !ok {
		return nil, nil
	}
	out := *cred
	return &out, nil
}
