package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/handler"
	"github.com/clubbook/members-book-go/internal/infra/cache"
	"github.com/clubbook/members-book-go/internal/infra/client"
	"github.com/clubbook/members-book-go/internal/infra/kvstore"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/infra/resilience"
	"github.com/clubbook/members-book-go/internal/service"
	"github.com/clubbook/members-book-go/internal/session"
)

const jwtSecret = "integration-secret"

func startServer(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()

	store := memstore.NewSeeded()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	auth := service.NewAuthService(store, jwtSecret, time.Hour, logger)
	dir := service.NewDirectoryService(store, store, cache.New[[]domain.Member](time.Minute), metrics, logger)
	appr := service.NewApprovalService(store, store, metrics, logger)
	admin := service.NewAdminService(store, store, store, store, metrics, logger)
	chat := service.NewChatService(store, store, metrics, logger)

	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		Auth:        auth,
		Directory:   dir,
		Approvals:   appr,
		Admin:       admin,
		Chat:        chat,
		ApprovalDB:  store,
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

// appSide is the client stack the way the app wires it: bolt-backed
// session, API client, and the client-side services on top.
type appSide struct {
	account   *service.AccountService
	directory *service.DirectoryService
	approvals *service.ApprovalService
	chat      *service.ChatService
	sessions  *session.Manager
	api       *client.APIClient
}

func startApp(t *testing.T, serverURL, name string) *appSide {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), name+".db"), "")
	if err != nil {
		t.Fatalf("open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	sessions := session.NewManager(kv, logger)

	api := client.New(&http.Client{Timeout: 5 * time.Second}, serverURL+"/api", sessions, resilience.Config{
		MaxRetries:     1,
		InitialBackoff: 10 * time.Millisecond,
	}, logger)

	local := service.NewAuthService(memstore.NewSeeded(), jwtSecret, time.Hour, logger)
	memberCache := cache.New[[]domain.Member](time.Minute)

	return &appSide{
		account:   service.NewAccountService(api, local, sessions, metrics, logger, memberCache),
		directory: service.NewDirectoryService(api, memstore.NewSeeded(), memberCache, metrics, logger),
		approvals: service.NewApprovalService(api, api, metrics, logger),
		chat:      service.NewChatService(api, memstore.NewSeeded(), metrics, logger),
		sessions:  sessions,
		api:       api,
	}
}

func TestFullMemberFlow(t *testing.T) {
	srv, store := startServer(t)
	ctx := context.Background()

	member := startApp(t, srv.URL, "member")
	sess, err := member.account.Login(ctx, "member@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("member login: %v", err)
	}
	if sess.UserType != domain.UserTypeMember || sess.Hierarchy != domain.HierarchyInfinity {
		t.Fatalf("session = %+v", sess)
	}

	// Directory comes from the server, filtered locally.
	res, err := member.directory.Members(ctx, sess, directory.Query{Hierarchy: "socios"})
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if res.Source != service.SourceAPI || len(res.Members) != 2 {
		t.Fatalf("members = %+v (source %s)", res.Members, res.Source)
	}

	// Editing a sensitive field files an approval request server side.
	original, _, err := member.directory.Profile(ctx, sess, sess.UserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	edited := original.Clone()
	edited[domain.FieldNegociosFechados] = 52.0
	edited[domain.FieldPhone] = "+55 11 98888-7777"

	submit, err := member.approvals.SubmitProfileUpdate(ctx, sess, original, edited, "Três contratos novos fechados este mês.")
	if err != nil {
		t.Fatalf("SubmitProfileUpdate: %v", err)
	}
	if submit.Request == nil {
		t.Fatal("expected a pending request for the sensitive field")
	}
	if len(submit.AppliedFields) != 1 || submit.AppliedFields[0] != domain.FieldPhone {
		t.Fatalf("applied fields = %v", submit.AppliedFields)
	}

	serverProfile, err := store.GetProfile(ctx, sess.UserID)
	if err != nil {
		t.Fatalf("server GetProfile: %v", err)
	}
	if serverProfile[domain.FieldPhone] != "+55 11 98888-7777" {
		t.Errorf("direct change not applied: %v", serverProfile[domain.FieldPhone])
	}
	if got, _ := domain.NumericValue(serverProfile[domain.FieldNegociosFechados]); got != 30 {
		t.Errorf("sensitive field changed before approval: %v", got)
	}

	// Admin reviews and approves from a second app instance.
	admin := startApp(t, srv.URL, "admin")
	adminSess, err := admin.account.Login(ctx, "admin@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	pending, err := admin.approvals.PendingApprovals(ctx, adminSess)
	if err != nil {
		t.Fatalf("PendingApprovals: %v", err)
	}
	found := false
	for _, req := range pending {
		if req.ID == submit.Request.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("submitted request %s not in review queue (%d pending)", submit.Request.ID, len(pending))
	}

	if _, err := admin.approvals.Approve(ctx, adminSess, submit.Request.ID, "Números conferidos."); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	serverProfile, _ = store.GetProfile(ctx, sess.UserID)
	if got, _ := domain.NumericValue(serverProfile[domain.FieldNegociosFechados]); got != 52 {
		t.Errorf("negociosFechados = %v, want 52 after approval", got)
	}

	// Chat round trip.
	msg, err := member.chat.Send(ctx, sess, "1", "Alguém vai ao evento?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgs, source, err := member.chat.Messages(ctx, sess, "1", 0, 0)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if source != service.SourceAPI || msgs[len(msgs)-1].ID != msg.ID {
		t.Errorf("history source=%s last=%+v", source, msgs[len(msgs)-1])
	}

	// Logout clears the persisted session.
	if err := member.account.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	restored, err := member.account.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != nil {
		t.Errorf("session survived logout: %+v", restored)
	}
}

func TestSessionRestoreAcrossRestart(t *testing.T) {
	srv, _ := startServer(t)
	ctx := context.Background()

	logger := zap.NewNop()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	kv, err := kvstore.Open(path, "")
	if err != nil {
		t.Fatalf("open kv store: %v", err)
	}
	sessions := session.NewManager(kv, logger)
	api := client.New(&http.Client{Timeout: 5 * time.Second}, srv.URL+"/api", sessions, resilience.Config{}, logger)
	local := service.NewAuthService(memstore.NewSeeded(), jwtSecret, time.Hour, logger)
	account := service.NewAccountService(api, local, sessions, observability.NewMetrics(), logger)

	if _, err := account.Login(ctx, "admin@test.com", memstore.DemoPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close kv: %v", err)
	}

	// Reopen the store, as a fresh process start would.
	kv2, err := kvstore.Open(path, "")
	if err != nil {
		t.Fatalf("reopen kv store: %v", err)
	}
	defer kv2.Close()
	sessions2 := session.NewManager(kv2, logger)
	api2 := client.New(&http.Client{Timeout: 5 * time.Second}, srv.URL+"/api", sessions2, resilience.Config{}, logger)
	account2 := service.NewAccountService(api2, local, sessions2, observability.NewMetrics(), logger)

	restored, err := account2.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored == nil || restored.UserID != "admin_001" {
		t.Fatalf("restored session = %+v", restored)
	}

	// The restored token authenticates API calls.
	members, err := api2.ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers with restored token: %v", err)
	}
	if len(members) != 4 {
		t.Errorf("got %d members, want 4", len(members))
	}
}

func TestOfflineFallbackEndToEnd(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	// Point the client at a dead server.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "session.db"), "")
	if err != nil {
		t.Fatalf("open kv store: %v", err)
	}
	defer kv.Close()
	sessions := session.NewManager(kv, logger)
	api := client.New(&http.Client{Timeout: time.Second}, dead.URL+"/api", sessions, resilience.Config{}, logger)

	local := service.NewAuthService(memstore.NewSeeded(), jwtSecret, time.Hour, logger)
	account := service.NewAccountService(api, local, sessions, metrics, logger)

	// Demo credentials still work offline.
	sess, err := account.Login(ctx, "member@test.com", memstore.DemoPassword)
	if err != nil {
		t.Fatalf("offline login: %v", err)
	}

	// Reads serve the seeded dataset.
	dirSvc := service.NewDirectoryService(api, memstore.NewSeeded(), cache.New[[]domain.Member](time.Minute), metrics, logger)
	res, err := dirSvc.Members(ctx, sess, directory.Query{})
	if err != nil {
		t.Fatalf("offline Members: %v", err)
	}
	if res.Source != service.SourceMock || len(res.Members) != 4 {
		t.Errorf("offline members source=%s count=%d", res.Source, len(res.Members))
	}

	// Writes fail instead of degrading.
	chat := service.NewChatService(api, memstore.NewSeeded(), metrics, logger)
	if _, err := chat.Send(ctx, sess, "1", "oi"); err == nil {
		t.Error("offline send should fail")
	}
}
