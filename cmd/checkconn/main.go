package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clubbook/members-book-go/internal/config"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/client"
	"github.com/clubbook/members-book-go/internal/infra/kvstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/infra/resilience"
	"github.com/clubbook/members-book-go/internal/session"

	"go.uber.org/zap"
)

// checkconn probes a members book backend the way the app would use it:
// health endpoint, CORS preflight, guest login and the main read
// endpoints. Exits non-zero when any probe fails.
func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	baseURL := flag.String("base", cfg.APIBaseURL, "API base URL, including the /api prefix")
	origin := flag.String("origin", "http://localhost:19006", "Origin header for the CORS preflight probe")
	timeout := flag.Duration("timeout", cfg.HTTPTimeout, "per-probe timeout")
	flag.Parse()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 3*(*timeout))
	defer cancel()

	httpClient := &http.Client{Timeout: *timeout}

	kv, err := kvstore.Open(cfg.SessionStorePath, "")
	if err != nil {
		logger.Fatal("open session store", zap.String("path", cfg.SessionStorePath), zap.Error(err))
	}
	defer kv.Close()
	sessions := session.NewManager(kv, logger)

	api := client.New(httpClient, *baseURL, sessions, resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)

	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("  ✗ %-22s %v\n", name, err)
			return
		}
		fmt.Printf("  ✓ %s\n", name)
	}

	fmt.Printf("Verificando conectividade com %s\n", *baseURL)

	report("health", checkHealth(ctx, httpClient, *baseURL))
	report("cors preflight", checkPreflight(ctx, httpClient, *baseURL, *origin))

	loginErr := checkGuestLogin(ctx, api, sessions)
	report("guest login", loginErr)

	if loginErr == nil {
		g, gctx := errgroup.WithContext(ctx)
		var memberCount, roomCount int
		g.Go(func() error {
			members, err := api.ListMembers(gctx)
			memberCount = len(members)
			return err
		})
		g.Go(func() error {
			rooms, err := api.ListRooms(gctx)
			roomCount = len(rooms)
			return err
		})
		if err := g.Wait(); err != nil {
			report("directory and chat", err)
		} else {
			report(fmt.Sprintf("directory and chat    %d membros, %d salas", memberCount, roomCount), nil)
		}
	}

	if failed {
		fmt.Println("Falha na verificação de conectividade.")
		os.Exit(1)
	}
	fmt.Println("Conectividade OK.")
}

func checkHealth(ctx context.Context, httpClient *http.Client, baseURL string) error {
	url := strings.TrimSuffix(baseURL, "/api") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return nil
}

func checkPreflight(ctx context.Context, httpClient *http.Client, baseURL, origin string) error {
	url := baseURL + "/members"
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-access-token")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("OPTIONS %s: status %d", url, resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		return fmt.Errorf("OPTIONS %s: missing Access-Control-Allow-Origin", url)
	}
	return nil
}

func checkGuestLogin(ctx context.Context, api *client.APIClient, sessions *session.Manager) error {
	resp, err := api.GuestLogin(ctx)
	if err != nil {
		return err
	}
	// Persist the token so the follow-up probes authenticate.
	return sessions.Save(&domain.Session{
		UserID:    "guest_checkconn",
		Name:      "Visitante",
		UserType:  domain.UserTypeGuest,
		Token:     resp.AccessToken,
		CreatedAt: time.Now(),
	})
}
