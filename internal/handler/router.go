package handler

import (
	"net/http"

	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/port"
	"github.com/clubbook/members-book-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router needs.
type Deps struct {
	Auth        *service.AuthService
	Directory   *service.DirectoryService
	Approvals   *service.ApprovalService
	Admin       *service.AdminService
	Chat        *service.ChatService
	ApprovalDB  port.ApprovalStore
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
// Every route under /api except the login endpoints requires a valid
// x-access-token header.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.MetricsMiddleware(d.Metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", AccessTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/health", healthHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authLoginHandler(d.Auth, d.Logger))
		r.Post("/auth/guest-login", authGuestLoginHandler(d.Auth, d.Logger))

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(TokenAuthMiddleware(d.Auth, d.Logger))

			r.Post("/auth/logout", authLogoutHandler(d.Logger))
			r.Post("/auth/validate", authValidateHandler(d.Logger))

			r.Route("/members", func(r chi.Router) {
				r.Get("/", listMembersHandler(d.Directory, d.Logger))
				r.Get("/{id}", getMemberHandler(d.Directory, d.Logger))
				r.Post("/{id}/connect", connectMemberHandler(d.Directory, d.Logger))
				r.Get("/{id}/profile", getProfileHandler(d.Directory, d.Logger))
				r.Put("/{id}/profile", updateProfileHandler(d.Directory, d.Logger))
				r.Post("/{id}/profile/update-request", submitProfileUpdateHandler(d.Directory, d.Approvals, d.Logger))
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/rooms", listRoomsHandler(d.Chat, d.Logger))
				r.Get("/rooms/{id}/messages", listMessagesHandler(d.Chat, d.Logger))
				r.Post("/rooms/{id}/messages", sendMessageHandler(d.Chat, d.Logger))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", listUsersHandler(d.Admin, d.Logger))
				r.Patch("/users/{id}/status", updateUserStatusHandler(d.Admin, d.Logger))
				r.Delete("/users/{id}", deleteUserHandler(d.Admin, d.Logger))
				r.Get("/metrics", systemMetricsHandler(d.Admin, d.Logger))

				r.Route("/approvals", func(r chi.Router) {
					r.Get("/", listApprovalsHandler(d.Approvals, d.Logger))
					r.Post("/", createApprovalHandler(d.ApprovalDB, d.Logger))
					r.Get("/pending", pendingApprovalsHandler(d.Approvals, d.Logger))
					r.Get("/{id}", getApprovalHandler(d.ApprovalDB, d.Logger))
					r.Post("/{id}/approve", approveRequestHandler(d.Approvals, d.Logger))
					r.Post("/{id}/reject", rejectRequestHandler(d.Approvals, d.Logger))
				})
			})
		})
	})

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
