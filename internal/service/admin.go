package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/permission"
	"github.com/clubbook/members-book-go/internal/port"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService backs the management dashboard: user administration and
// system metrics. Every operation is admin-gated.
type AdminService struct {
	users       port.UserStore
	usersMock   port.UserStore
	metricsAPI  port.MetricsSource
	metricsMock port.MetricsSource
	observ      *observability.Metrics
	logger      *zap.Logger
}

func NewAdminService(users, usersMock port.UserStore, metricsAPI, metricsMock port.MetricsSource, observ *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:       users,
		usersMock:   usersMock,
		metricsAPI:  metricsAPI,
		metricsMock: metricsMock,
		observ:      observ,
		logger:      logger,
	}
}

// Dashboard aggregates everything the management screen renders.
type Dashboard struct {
	Users   []domain.AdminUser
	Metrics []domain.SystemMetric
	Source  Source
}

// Dashboard fetches users and metrics concurrently. Either read may
// degrade to mock data independently; Source is mock when any part did.
func (s *AdminService) Dashboard(ctx context.Context, sess *domain.Session) (*Dashboard, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Dashboard")
	defer span.End()

	if err := s.requireAdmin(sess, "acessar o painel administrativo"); err != nil {
		return nil, err
	}

	var (
		users         []domain.AdminUser
		metrics       []domain.SystemMetric
		usersSource   Source
		metricsSource Source
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, usersSource, err = s.loadUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, metricsSource, err = s.loadMetrics(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	source := SourceAPI
	if usersSource == SourceMock || metricsSource == SourceMock {
		source = SourceMock
	}
	// Live usage counters render next to the backend metrics cards.
	metrics = append(metrics, s.observ.UsageSnapshot()...)
	span.SetAttributes(attribute.String("source", string(source)), attribute.Int("users", len(users)))

	return &Dashboard{Users: users, Metrics: metrics, Source: source}, nil
}

// Users lists accounts filtered by q.
func (s *AdminService) Users(ctx context.Context, sess *domain.Session, q directory.UserQuery) ([]domain.AdminUser, Source, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Users")
	defer span.End()

	if err := s.requireAdmin(sess, "gerenciar usuários"); err != nil {
		return nil, "", err
	}

	users, source, err := s.loadUsers(ctx)
	if err != nil {
		return nil, "", err
	}
	return directory.FilterUsers(users, q), source, nil
}

// SetUserStatus activates or suspends an account. Status must be a
// known value; writes never fall back to mock data.
func (s *AdminService) SetUserStatus(ctx context.Context, sess *domain.Session, id string, status domain.UserStatus) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.SetUserStatus")
	defer span.End()

	if err := s.requireAdmin(sess, "gerenciar usuários"); err != nil {
		return err
	}
	switch status {
	case domain.StatusActive, domain.StatusSuspended:
	default:
		return &domain.ErrValidation{Field: "status", Message: "status deve ser active ou suspended"}
	}

	if err := s.users.UpdateUserStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info("user status updated",
		zap.String("admin_id", sess.UserID),
		zap.String("user_id", id),
		zap.String("status", string(status)),
	)
	return nil
}

// DeleteUser removes an account permanently.
func (s *AdminService) DeleteUser(ctx context.Context, sess *domain.Session, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteUser")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.DeleteMembers) {
		return &domain.ErrForbidden{Action: "excluir usuários"}
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted",
		zap.String("admin_id", sess.UserID),
		zap.String("user_id", id),
	)
	return nil
}

func (s *AdminService) requireAdmin(sess *domain.Session, action string) error {
	if sess == nil || !permission.HasPermission(sess.UserType, permission.ManageMembers) {
		return &domain.ErrForbidden{Action: action}
	}
	return nil
}

func (s *AdminService) loadUsers(ctx context.Context) ([]domain.AdminUser, Source, error) {
	users, err := s.users.ListUsers(ctx)
	if err == nil {
		return users, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}
	s.logger.Warn("user list degraded to mock data", zap.Error(err))
	s.observ.IncrFallback("list_users")
	users, ferr := s.usersMock.ListUsers(ctx)
	if ferr != nil {
		return nil, "", ferr
	}
	return users, SourceMock, nil
}

func (s *AdminService) loadMetrics(ctx context.Context) ([]domain.SystemMetric, Source, error) {
	metrics, err := s.metricsAPI.SystemMetrics(ctx)
	if err == nil {
		return metrics, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}
	s.logger.Warn("system metrics degraded to mock data", zap.Error(err))
	s.observ.IncrFallback("system_metrics")
	metrics, ferr := s.metricsMock.SystemMetrics(ctx)
	if ferr != nil {
		return nil, "", ferr
	}
	return metrics, SourceMock, nil
}
