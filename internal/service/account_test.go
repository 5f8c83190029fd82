package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/session"
)

// fakeAuthAPI scripts the remote auth surface per test.
type fakeAuthAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.LoginResponse, error)
	guestFn    func(ctx context.Context) (*domain.LoginResponse, error)
	logoutFn   func(ctx context.Context) error
	validateFn func(ctx context.Context) (*domain.Session, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuthAPI) GuestLogin(ctx context.Context) (*domain.LoginResponse, error) {
	return f.guestFn(ctx)
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakeAuthAPI) Validate(ctx context.Context) (*domain.Session, error) {
	return f.validateFn(ctx)
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV { return &memoryKV{data: make(map[string][]byte)} }

func (m *memoryKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryKV) Close() error { return nil }

type countingFlusher struct{ calls int }

func (c *countingFlusher) Flush() { c.calls++ }

func newAccountFixture(api *fakeAuthAPI) (*AccountService, *session.Manager, *countingFlusher) {
	local := newAuthService()
	sessions := session.NewManager(newMemoryKV(), zap.NewNop())
	flusher := &countingFlusher{}
	svc := NewAccountService(api, local, sessions, observability.NewMetrics(), zap.NewNop(), flusher)
	return svc, sessions, flusher
}

func TestAccountLoginPersistsSession(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
			return local.Login(ctx, email, password)
		},
	}
	svc, sessions, flusher := newAccountFixture(api)

	sess, err := svc.Login(context.Background(), "Member@Test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.UserID != "user_001" || sess.UserType != domain.UserTypeMember {
		t.Errorf("session = %+v", sess)
	}
	if sess.Hierarchy != domain.HierarchyInfinity {
		t.Errorf("hierarchy = %s, want infinity", sess.Hierarchy)
	}

	restored, err := sessions.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored == nil || restored.UserID != "user_001" || restored.Token != sess.Token {
		t.Errorf("persisted session = %+v", restored)
	}
	if flusher.calls == 0 {
		t.Error("caches not flushed on login")
	}
}

func TestAccountLoginFallsBackToLocalBackend(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*domain.LoginResponse, error) {
			return nil, &domain.ErrNetwork{Op: "Login", Err: errors.New("connection refused")}
		},
	}
	svc, _, _ := newAccountFixture(api)

	sess, err := svc.Login(context.Background(), "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("offline login: %v", err)
	}
	if sess.UserType != domain.UserTypeAdmin {
		t.Errorf("user_type = %s, want admin", sess.UserType)
	}
}

func TestAccountLoginDoesNotFallBackOnBadCredentials(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*domain.LoginResponse, error) {
			return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
		},
	}
	svc, _, _ := newAccountFixture(api)

	_, err := svc.Login(context.Background(), "admin@test.com", "wrong")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized passed through", err)
	}
}

func TestAccountGuestLogin(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		guestFn: func(ctx context.Context) (*domain.LoginResponse, error) {
			return local.GuestLogin(ctx)
		},
	}
	svc, sessions, _ := newAccountFixture(api)

	sess, err := svc.GuestLogin(context.Background())
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if !sess.IsGuest() {
		t.Errorf("session = %+v, want guest", sess)
	}
	restored, _ := sessions.Restore()
	if restored == nil || !restored.IsGuest() {
		t.Errorf("persisted session = %+v", restored)
	}
}

func TestAccountLogoutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
			return local.Login(ctx, email, password)
		},
		logoutFn: func(context.Context) error {
			return &domain.ErrNetwork{Op: "Logout", Err: errors.New("connection refused")}
		},
	}
	svc, sessions, flusher := newAccountFixture(api)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "admin@test.com", memstore.DemoPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	flushesAfterLogin := flusher.calls

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	restored, err := sessions.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != nil {
		t.Errorf("session survived logout: %+v", restored)
	}
	if flusher.calls <= flushesAfterLogin {
		t.Error("caches not flushed on logout")
	}
}

func TestAccountRestoreRevalidatesToken(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
			return local.Login(ctx, email, password)
		},
		validateFn: func(context.Context) (*domain.Session, error) {
			return &domain.Session{
				UserID:   "admin_001",
				Email:    "admin@test.com",
				Name:     "Administrador",
				UserType: domain.UserTypeAdmin,
			}, nil
		},
	}
	svc, _, _ := newAccountFixture(api)
	ctx := context.Background()

	logged, err := svc.Login(ctx, "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	sess, err := svc.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess == nil || sess.UserID != "admin_001" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Token != logged.Token {
		t.Error("restored session lost its token")
	}
}

func TestAccountRestoreClearsExpiredSession(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
			return local.Login(ctx, email, password)
		},
		validateFn: func(context.Context) (*domain.Session, error) {
			return nil, &domain.ErrSessionExpired{}
		},
	}
	svc, sessions, _ := newAccountFixture(api)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "admin@test.com", memstore.DemoPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	sess, err := svc.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess != nil {
		t.Errorf("expired session returned: %+v", sess)
	}
	stored, _ := sessions.Restore()
	if stored != nil {
		t.Errorf("expired session still persisted: %+v", stored)
	}
}

func TestAccountRestoreKeepsSessionWhenBackendUnreachable(t *testing.T) {
	local := newAuthService()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
			return local.Login(ctx, email, password)
		},
		validateFn: func(context.Context) (*domain.Session, error) {
			return nil, &domain.ErrTimeout{Operation: "Validate"}
		},
	}
	svc, _, _ := newAccountFixture(api)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "member@test.com", memstore.DemoPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	sess, err := svc.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess == nil || sess.UserID != "user_001" {
		t.Errorf("offline restore lost the session: %+v", sess)
	}
}

func TestAccountRestoreEmptyStore(t *testing.T) {
	api := &fakeAuthAPI{
		validateFn: func(context.Context) (*domain.Session, error) {
			t.Fatal("validate should not be called without a stored session")
			return nil, nil
		},
	}
	svc, _, _ := newAccountFixture(api)

	sess, err := svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil", sess)
	}
}
