package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/port"
	"github.com/clubbook/members-book-go/internal/session"
)

var accountTracer = otel.Tracer("service/account")

// Flusher drops cached data. The account service flushes every cache on
// login and logout so data never crosses sessions.
type Flusher interface {
	Flush()
}

// AccountService owns the client-side session lifecycle: login, guest
// login, logout and restoring a persisted session at startup.
//
// Login degrades to the local seeded backend when the API is
// unreachable, so the demo credentials keep working offline.
type AccountService struct {
	api      port.AuthAPI
	local    *AuthService
	sessions *session.Manager
	caches   []Flusher
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewAccountService(api port.AuthAPI, local *AuthService, sessions *session.Manager, metrics *observability.Metrics, logger *zap.Logger, caches ...Flusher) *AccountService {
	return &AccountService{
		api:      api,
		local:    local,
		sessions: sessions,
		caches:   caches,
		metrics:  metrics,
		logger:   logger,
	}
}

// Login authenticates and persists the resulting session.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Login")
	defer span.End()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email e senha são obrigatórios"}
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil && domain.Recoverable(err) {
		s.logger.Warn("login degraded to local backend", zap.Error(err))
		s.metrics.IncrFallback("login")
		resp, err = s.local.Login(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user_type", string(resp.UserType)))

	sess, err := s.sessionFromToken(resp)
	if err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	s.logger.Info("login completed", zap.String("user_id", sess.UserID), zap.String("user_type", string(sess.UserType)))
	return sess, nil
}

// GuestLogin enters read-only browsing without credentials.
func (s *AccountService) GuestLogin(ctx context.Context) (*domain.Session, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.GuestLogin")
	defer span.End()

	resp, err := s.api.GuestLogin(ctx)
	if err != nil && domain.Recoverable(err) {
		s.logger.Warn("guest login degraded to local backend", zap.Error(err))
		s.metrics.IncrFallback("guest_login")
		resp, err = s.local.GuestLogin(ctx)
	}
	if err != nil {
		return nil, err
	}

	sess, err := s.sessionFromToken(resp)
	if err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout tells the backend best-effort and always clears local state.
func (s *AccountService) Logout(ctx context.Context) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.Logout")
	defer span.End()

	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed, clearing local session anyway", zap.Error(err))
	}
	s.flush()
	return s.sessions.Clear()
}

// Restore loads the persisted session at startup and revalidates the
// token against the backend. An expired token clears the session; an
// unreachable backend keeps the local session so the app opens offline.
func (s *AccountService) Restore(ctx context.Context) (*domain.Session, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Restore")
	defer span.End()

	sess, err := s.sessions.Restore()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Token == "" {
		return nil, nil
	}

	remote, err := s.api.Validate(ctx)
	if err != nil {
		var expired *domain.ErrSessionExpired
		var unauthorized *domain.ErrUnauthorized
		if errors.As(err, &expired) || errors.As(err, &unauthorized) {
			s.logger.Info("stored session no longer valid", zap.String("user_id", sess.UserID))
			s.flush()
			if clearErr := s.sessions.Clear(); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		if domain.Recoverable(err) {
			s.logger.Warn("session validation skipped, backend unreachable", zap.Error(err))
			s.metrics.IncrFallback("validate_session")
			return sess, nil
		}
		return nil, err
	}

	remote.Token = sess.Token
	if remote.CreatedAt.IsZero() {
		remote.CreatedAt = sess.CreatedAt
	}
	if err := s.sessions.Save(remote); err != nil {
		return nil, err
	}
	return remote, nil
}

func (s *AccountService) sessionFromToken(resp *domain.LoginResponse) (*domain.Session, error) {
	claims, err := s.local.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		return nil, err
	}
	sess := s.local.SessionFromClaims(claims, resp.AccessToken)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	return sess, nil
}

func (s *AccountService) persist(sess *domain.Session) error {
	s.flush()
	return s.sessions.Save(sess)
}

func (s *AccountService) flush() {
	for _, c := range s.caches {
		c.Flush()
	}
}
