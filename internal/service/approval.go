package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/observability"
	"github.com/clubbook/members-book-go/internal/permission"
	"github.com/clubbook/members-book-go/internal/port"
	"github.com/clubbook/members-book-go/internal/profile"
)

var approvalTracer = otel.Tracer("service/approval")

// ApprovalService runs the profile-update approval workflow: members
// submit change requests for sensitive fields, admins review them, and
// approved changes are written back to the profile.
type ApprovalService struct {
	approvals port.ApprovalStore
	members   port.MemberStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewApprovalService(approvals port.ApprovalStore, members port.MemberStore, metrics *observability.Metrics, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{approvals: approvals, members: members, metrics: metrics, logger: logger}
}

// SubmitResult reports what happened to an edited profile: which fields
// were written immediately and which went into a pending request.
type SubmitResult struct {
	Request       *domain.ApprovalRequest
	AppliedFields []string
}

// SubmitProfileUpdate diffs the edited profile against its committed
// snapshot. Non-sensitive changes are applied at once; sensitive ones
// become a pending approval request. A field edited back to its
// original value is not part of either set.
func (s *ApprovalService) SubmitProfileUpdate(ctx context.Context, sess *domain.Session, original, edited domain.Profile, justification string) (*SubmitResult, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.SubmitProfileUpdate")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.EditOwnProfile) {
		return nil, &domain.ErrForbidden{Action: "editar perfil"}
	}

	edited, err := coerceNumericEntries(edited)
	if err != nil {
		return nil, err
	}

	c := profile.Classify(original, edited)
	if len(c.ChangedFields) == 0 {
		return nil, &domain.ErrValidation{Field: "profile", Message: "nenhuma alteração detectada"}
	}
	span.SetAttributes(attribute.Int("changed_fields", len(c.ChangedFields)), attribute.Bool("requires_approval", c.RequiresApproval))

	result := &SubmitResult{}

	direct := c.DirectChanges()
	if len(direct) > 0 {
		if err := s.members.ApplyProfileChanges(ctx, sess.UserID, direct); err != nil {
			return nil, err
		}
		for field := range direct {
			result.AppliedFields = append(result.AppliedFields, field)
		}
	}

	if c.RequiresApproval {
		if strings.TrimSpace(justification) == "" {
			return nil, &domain.ErrValidation{Field: "justification", Message: "justificativa é obrigatória para alterações que exigem aprovação"}
		}
		requested, current := c.SensitiveChangeSet()
		req := &domain.ApprovalRequest{
			ID:               uuid.New().String(),
			UserID:           sess.UserID,
			UserName:         sess.Name,
			UserEmail:        sess.Email,
			RequestType:      domain.RequestTypeProfileUpdate,
			RequestedChanges: requested,
			CurrentValues:    current,
			Justification:    justification,
			Status:           domain.ApprovalPending,
			CreatedAt:        time.Now(),
		}
		if err := s.approvals.CreateApproval(ctx, req); err != nil {
			s.logger.Error("failed to create approval request",
				zap.String("user_id", sess.UserID),
				zap.Error(err),
			)
			return nil, err
		}
		result.Request = req
		s.metrics.IncrApproval("submitted")
		s.logger.Info("approval request submitted",
			zap.String("request_id", req.ID),
			zap.String("user_id", sess.UserID),
			zap.Strings("fields", c.ChangedFields),
		)
	}

	return result, nil
}

// PendingApprovals lists the review queue, oldest first.
func (s *ApprovalService) PendingApprovals(ctx context.Context, sess *domain.Session) ([]domain.ApprovalRequest, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.PendingApprovals")
	defer span.End()

	if err := requireReviewer(sess); err != nil {
		return nil, err
	}
	return s.approvals.ListApprovals(ctx, domain.ApprovalPending)
}

// AllApprovals lists every request regardless of status, oldest first.
func (s *ApprovalService) AllApprovals(ctx context.Context, sess *domain.Session) ([]domain.ApprovalRequest, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.AllApprovals")
	defer span.End()

	if err := requireReviewer(sess); err != nil {
		return nil, err
	}
	return s.approvals.ListApprovals(ctx, "")
}

// Approvals lists requests with the given status, "" for all.
func (s *ApprovalService) Approvals(ctx context.Context, sess *domain.Session, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.Approvals")
	defer span.End()

	if err := requireReviewer(sess); err != nil {
		return nil, err
	}
	switch status {
	case "", domain.ApprovalPending, domain.ApprovalApproved, domain.ApprovalRejected:
	default:
		return nil, &domain.ErrValidation{Field: "status", Message: "status de aprovação desconhecido"}
	}
	return s.approvals.ListApprovals(ctx, status)
}

// Approve marks the request approved and applies its requested changes
// to the member's profile. When duplicate requests touch the same
// field, whichever is approved last wins. The profile write happens
// before the status transition: a failed write leaves the request
// pending and retryable.
func (s *ApprovalService) Approve(ctx context.Context, sess *domain.Session, requestID, comments string) (*domain.ApprovalRequest, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	if err := requireReviewer(sess); err != nil {
		return nil, err
	}

	req, err := s.approvals.GetApproval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ApprovalPending {
		return nil, &domain.ErrConflict{Message: "solicitação já foi processada"}
	}

	if err := s.members.ApplyProfileChanges(ctx, req.UserID, req.RequestedChanges); err != nil {
		s.logger.Error("approved changes could not be applied",
			zap.String("request_id", requestID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	req, err = s.approvals.DecideApproval(ctx, requestID, domain.ApprovalApproved, sess.UserID, comments)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrApproval("approved")
	s.logger.Info("approval request approved",
		zap.String("request_id", requestID),
		zap.String("reviewer_id", sess.UserID),
	)
	return req, nil
}

// Reject marks the request rejected. Review comments are mandatory so
// the member learns why; the check runs before any store call.
func (s *ApprovalService) Reject(ctx context.Context, sess *domain.Session, requestID, comments string) (*domain.ApprovalRequest, error) {
	ctx, span := approvalTracer.Start(ctx, "ApprovalService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	if err := requireReviewer(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(comments) == "" {
		return nil, &domain.ErrValidation{Field: "comments", Message: "comentário é obrigatório ao rejeitar"}
	}

	req, err := s.approvals.DecideApproval(ctx, requestID, domain.ApprovalRejected, sess.UserID, comments)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrApproval("rejected")
	s.logger.Info("approval request rejected",
		zap.String("request_id", requestID),
		zap.String("reviewer_id", sess.UserID),
	)
	return req, nil
}

// coerceNumericEntries parses free-text numeric fields before they are
// classified or stored. Non-numeric input is rejected, never forwarded.
func coerceNumericEntries(p domain.Profile) (domain.Profile, error) {
	out := p.Clone()
	for field := range domain.NumericFields {
		raw, ok := out[field].(string)
		if !ok {
			continue
		}
		n, err := domain.CoerceNumeric(field, raw)
		if err != nil {
			return nil, err
		}
		out[field] = n
	}
	return out, nil
}

func requireReviewer(sess *domain.Session) error {
	if sess == nil || !permission.HasPermission(sess.UserType, permission.EditAnyProfile) {
		return &domain.ErrForbidden{Action: "revisar solicitações de aprovação"}
	}
	return nil
}
