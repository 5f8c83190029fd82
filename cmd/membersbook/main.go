package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubbook/members-book-go/internal/config"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/handler"
	"github.com/clubbook/members-book-go/internal/infra/cache"
	"github.com/clubbook/members-book-go/internal/infra/client"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/infra/resilience"
	"github.com/clubbook/members-book-go/internal/port"
	"github.com/clubbook/members-book-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("mock_mode", cfg.MockMode),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "members-book-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Data ---
	// The seeded store holds the demo dataset, credentials and the
	// review queue. In mock mode it also answers every read; otherwise
	// reads are proxied to the upstream API and the store stays as the
	// offline fallback.
	store := memstore.NewSeeded()

	memberAPI := port.MemberStore(store)
	userAPI := port.UserStore(store)
	metricsAPI := port.MetricsSource(store)
	chatAPI := port.ChatStore(store)
	if !cfg.MockMode {
		upstream := client.New(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.APIBaseURL,
			client.NoToken{},
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			logger,
		)
		memberAPI = upstream
		userAPI = upstream
		metricsAPI = upstream
		chatAPI = upstream
		logger.Info("proxying reads to upstream API", zap.String("base_url", cfg.APIBaseURL))
	}

	// --- Cache ---
	memberCache := cache.New[[]domain.Member](cfg.CacheTTL)

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	dirSvc := service.NewDirectoryService(memberAPI, store, memberCache, metrics, logger)
	apprSvc := service.NewApprovalService(store, memberAPI, metrics, logger)
	adminSvc := service.NewAdminService(userAPI, store, metricsAPI, store, metrics, logger)
	chatSvc := service.NewChatService(chatAPI, store, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Auth:        authSvc,
		Directory:   dirSvc,
		Approvals:   apprSvc,
		Admin:       adminSvc,
		Chat:        chatSvc,
		ApprovalDB:  store,
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigins: cfg.AllowedOrigins,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
