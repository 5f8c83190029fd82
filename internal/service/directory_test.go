package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/cache"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/port"
)

func guestSession() *domain.Session {
	return &domain.Session{
		UserID:   "guest_001",
		Email:    "guest@test.com",
		Name:     "Visitante",
		UserType: domain.UserTypeGuest,
	}
}

// brokenMemberStore fails every call the way an unreachable backend
// does.
type brokenMemberStore struct{}

func (brokenMemberStore) ListMembers(context.Context) ([]domain.Member, error) {
	return nil, &domain.ErrNetwork{Op: "ListMembers", Err: errors.New("connection refused")}
}

func (brokenMemberStore) GetMember(context.Context, string) (*domain.Member, error) {
	return nil, &domain.ErrNetwork{Op: "GetMember", Err: errors.New("connection refused")}
}

func (brokenMemberStore) ConnectMember(context.Context, string) error {
	return &domain.ErrNetwork{Op: "ConnectMember", Err: errors.New("connection refused")}
}

func (brokenMemberStore) GetProfile(context.Context, string) (domain.Profile, error) {
	return nil, &domain.ErrNetwork{Op: "GetProfile", Err: errors.New("connection refused")}
}

func (brokenMemberStore) ApplyProfileChanges(context.Context, string, domain.Profile) error {
	return &domain.ErrNetwork{Op: "ApplyProfileChanges", Err: errors.New("connection refused")}
}

// countingMemberStore counts list calls to observe caching.
type countingMemberStore struct {
	*memstore.Store
	listCalls int
}

func (c *countingMemberStore) ListMembers(ctx context.Context) ([]domain.Member, error) {
	c.listCalls++
	return c.Store.ListMembers(ctx)
}

func newDirectoryService(api port.MemberStore) *DirectoryService {
	return NewDirectoryService(api, memstore.NewSeeded(), cache.New[[]domain.Member](time.Minute), observability.NewMetrics(), zap.NewNop())
}

func TestMembersServedFromAPI(t *testing.T) {
	svc := newDirectoryService(memstore.NewSeeded())

	res, err := svc.Members(context.Background(), memberSession(), directory.Query{})
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if res.Source != SourceAPI {
		t.Errorf("source = %s, want api", res.Source)
	}
	if len(res.Members) != 4 {
		t.Errorf("got %d members, want 4", len(res.Members))
	}
}

func TestMembersFallsBackWhenAPIUnreachable(t *testing.T) {
	svc := newDirectoryService(brokenMemberStore{})

	res, err := svc.Members(context.Background(), memberSession(), directory.Query{Hierarchy: "socios"})
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if res.Source != SourceMock {
		t.Errorf("source = %s, want mock", res.Source)
	}
	if len(res.Members) != 2 {
		t.Errorf("got %d socios members, want 2", len(res.Members))
	}
}

func TestMembersSecondCallHitsCache(t *testing.T) {
	api := &countingMemberStore{Store: memstore.NewSeeded()}
	svc := newDirectoryService(api)
	ctx := context.Background()

	if _, err := svc.Members(ctx, memberSession(), directory.Query{}); err != nil {
		t.Fatalf("first Members: %v", err)
	}
	if _, err := svc.Members(ctx, memberSession(), directory.Query{Search: "ana"}); err != nil {
		t.Fatalf("second Members: %v", err)
	}
	if api.listCalls != 1 {
		t.Errorf("api list calls = %d, want 1", api.listCalls)
	}
}

func TestMembersMasksContactInfoForGuests(t *testing.T) {
	svc := newDirectoryService(memstore.NewSeeded())

	res, err := svc.Members(context.Background(), guestSession(), directory.Query{})
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	for _, m := range res.Members {
		if m.Email != "" {
			t.Errorf("member %s exposes email %q to guest", m.ID, m.Email)
		}
	}
}

func TestMemberKeepsContactInfoForMembers(t *testing.T) {
	svc := newDirectoryService(memstore.NewSeeded())

	m, source, err := svc.Member(context.Background(), memberSession(), "1")
	if err != nil {
		t.Fatalf("Member: %v", err)
	}
	if source != SourceAPI {
		t.Errorf("source = %s, want api", source)
	}
	if m.Email == "" {
		t.Error("member session should see contact info")
	}
}

func TestConnectForbiddenForGuests(t *testing.T) {
	svc := newDirectoryService(memstore.NewSeeded())

	err := svc.Connect(context.Background(), guestSession(), "3")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestConnectRespectsHierarchy(t *testing.T) {
	store := memstore.NewSeeded()
	svc := newDirectoryService(store)
	ctx := context.Background()

	// Infinity member reaching up to a Sócios member is refused.
	err := svc.Connect(ctx, memberSession(), "1")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("connect up: err = %v, want ErrForbidden", err)
	}

	// Same tier is fine.
	if err := svc.Connect(ctx, memberSession(), "2"); err != nil {
		t.Fatalf("connect same tier: %v", err)
	}
	m, err := store.GetMember(ctx, "2")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if m.Connections != 90 {
		t.Errorf("connections = %d, want 90", m.Connections)
	}
}

func TestConnectHasNoMockFallback(t *testing.T) {
	svc := newDirectoryService(brokenMemberStore{})

	err := svc.Connect(context.Background(), adminSession(), "3")
	if err == nil {
		t.Fatal("expected error when backend unreachable")
	}
	if !domain.Recoverable(err) {
		t.Fatalf("err = %v, want a recoverable transport error", err)
	}
}

func TestMemberUnknownIDNotFound(t *testing.T) {
	svc := newDirectoryService(memstore.NewSeeded())

	_, _, err := svc.Member(context.Background(), memberSession(), "999")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
