package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/cache"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/permission"
	"github.com/clubbook/members-book-go/internal/port"
)

var directoryTracer = otel.Tracer("service/directory")

// Source tells the caller where a read was answered from, so the UI can
// show an offline banner when data came from the local fallback.
type Source string

const (
	SourceAPI  Source = "api"
	SourceMock Source = "mock"
)

const membersCacheKey = "members"

// DirectoryService serves the member directory. Reads go to the API
// first and degrade to the seeded mock store on recoverable failures;
// writes never degrade.
type DirectoryService struct {
	api      port.MemberStore
	fallback port.MemberStore
	cache    *cache.InMemory[[]domain.Member]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewDirectoryService(api, fallback port.MemberStore, c *cache.InMemory[[]domain.Member], metrics *observability.Metrics, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{api: api, fallback: fallback, cache: c, metrics: metrics, logger: logger}
}

// MembersResult carries the filtered directory plus its provenance.
type MembersResult struct {
	Members []domain.Member
	Source  Source
}

// Members lists the directory filtered by q. Filtering happens locally
// so the cached full list serves every search keystroke. Contact info
// is masked for sessions without the view-contact permission.
func (s *DirectoryService) Members(ctx context.Context, sess *domain.Session, q directory.Query) (*MembersResult, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Members")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.ViewProfiles) {
		return nil, &domain.ErrForbidden{Action: "visualizar membros"}
	}

	start := time.Now()
	members, source, err := s.loadMembers(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRequestDuration("list_members", time.Since(start))
	span.SetAttributes(attribute.String("source", string(source)), attribute.Int("total", len(members)))

	filtered := directory.Filter(members, q)
	if !permission.HasPermission(sess.UserType, permission.ViewContactInfo) {
		for i := range filtered {
			filtered[i].Email = ""
		}
	}
	return &MembersResult{Members: filtered, Source: source}, nil
}

// Member fetches a single profile card. Same fallback rules as Members.
func (s *DirectoryService) Member(ctx context.Context, sess *domain.Session, id string) (*domain.Member, Source, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Member")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.ViewProfiles) {
		return nil, "", &domain.ErrForbidden{Action: "visualizar membros"}
	}
	if id == "" {
		return nil, "", &domain.ErrValidation{Field: "id", Message: "identificador do membro é obrigatório"}
	}

	m, err := s.api.GetMember(ctx, id)
	if err == nil {
		if !permission.HasPermission(sess.UserType, permission.ViewContactInfo) {
			m.Email = ""
		}
		return m, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}

	s.logger.Warn("member read degraded to mock data", zap.String("member_id", id), zap.Error(err))
	s.metrics.IncrFallback("get_member")
	m, ferr := s.fallback.GetMember(ctx, id)
	if ferr != nil {
		return nil, "", ferr
	}
	if !permission.HasPermission(sess.UserType, permission.ViewContactInfo) {
		m.Email = ""
	}
	return m, SourceMock, nil
}

// Connect records a connection with the target member. Guests can never
// connect; members only reach same-or-lower tiers. Writes go to the API
// only, no mock fallback.
func (s *DirectoryService) Connect(ctx context.Context, sess *domain.Session, targetID string) error {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Connect")
	defer span.End()

	if sess == nil {
		return &domain.ErrForbidden{Action: "conectar com membros"}
	}

	target, _, err := s.Member(ctx, sess, targetID)
	if err != nil {
		return err
	}
	if !permission.CanContactMember(sess.UserType, sess.Hierarchy, target.Hierarchy) {
		return &domain.ErrForbidden{Action: "conectar com este membro"}
	}

	if err := s.api.ConnectMember(ctx, targetID); err != nil {
		return err
	}

	s.cache.Delete(membersCacheKey)
	s.logger.Info("member connection recorded",
		zap.String("user_id", sess.UserID),
		zap.String("target_id", targetID),
	)
	return nil
}

// Profile returns the committed profile snapshot. Members see their own
// profile; admins see anyone's.
func (s *DirectoryService) Profile(ctx context.Context, sess *domain.Session, userID string) (domain.Profile, Source, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Profile")
	defer span.End()

	if err := s.requireProfileAccess(sess, userID); err != nil {
		return nil, "", err
	}

	p, err := s.api.GetProfile(ctx, userID)
	if err == nil {
		return p, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}

	s.logger.Warn("profile read degraded to mock data", zap.String("user_id", userID), zap.Error(err))
	s.metrics.IncrFallback("get_profile")
	p, ferr := s.fallback.GetProfile(ctx, userID)
	if ferr != nil {
		return nil, "", ferr
	}
	return p, SourceMock, nil
}

// UpdateProfile overwrites the given fields on the live profile. The
// caller is expected to send only fields that changed and that need no
// approval; sensitive fields go through the approval workflow instead.
func (s *DirectoryService) UpdateProfile(ctx context.Context, sess *domain.Session, userID string, changes domain.Profile) error {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.UpdateProfile")
	defer span.End()

	if err := s.requireProfileAccess(sess, userID); err != nil {
		return err
	}
	if sess.UserType == domain.UserTypeGuest {
		return &domain.ErrForbidden{Action: "editar perfil"}
	}
	if len(changes) == 0 {
		return &domain.ErrValidation{Field: "profile", Message: "nenhuma alteração enviada"}
	}
	changes, err := coerceNumericEntries(changes)
	if err != nil {
		return err
	}
	return s.api.ApplyProfileChanges(ctx, userID, changes)
}

func (s *DirectoryService) requireProfileAccess(sess *domain.Session, userID string) error {
	if sess == nil || !permission.HasPermission(sess.UserType, permission.ViewProfiles) {
		return &domain.ErrForbidden{Action: "visualizar perfil"}
	}
	if userID == "" {
		return &domain.ErrValidation{Field: "user_id", Message: "identificador do usuário é obrigatório"}
	}
	if sess.UserID != userID && !permission.HasPermission(sess.UserType, permission.EditAnyProfile) {
		return &domain.ErrForbidden{Action: "acessar perfil de outro usuário"}
	}
	return nil
}

func (s *DirectoryService) loadMembers(ctx context.Context) ([]domain.Member, Source, error) {
	if members, ok := s.cache.Get(membersCacheKey); ok {
		s.metrics.IncrCacheHit("members")
		return members, SourceAPI, nil
	}
	s.metrics.IncrCacheMiss("members")

	members, err := s.api.ListMembers(ctx)
	if err == nil {
		s.cache.Set(membersCacheKey, members)
		return members, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}

	s.logger.Warn("directory read degraded to mock data", zap.Error(err))
	s.metrics.IncrFallback("list_members")
	members, ferr := s.fallback.ListMembers(ctx)
	if ferr != nil {
		return nil, "", ferr
	}
	return members, SourceMock, nil
}
