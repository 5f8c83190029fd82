package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/permission"
	"github.com/clubbook/members-book-go/internal/port"
	"github.com/clubbook/members-book-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type approvalListResponse struct {
	Requests []domain.ApprovalRequest `json:"requests"`
}

type approvalActionResponse struct {
	Request *domain.ApprovalRequest `json:"request"`
}

type decisionRequest struct {
	Comments string `json:"comments"`
}

type statusRequest struct {
	Status domain.UserStatus `json:"status"`
}

func listUsersHandler(adminSvc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/admin/users")
		defer span.End()

		q := directory.UserQuery{
			Search: r.URL.Query().Get("search"),
			Status: r.URL.Query().Get("status"),
		}
		users, _, err := adminSvc.Users(ctx, SessionFromContext(ctx), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func updateUserStatusHandler(adminSvc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/admin/users/{id}/status")
		defer span.End()

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := adminSvc.SetUserStatus(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), req.Status); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteUserHandler(adminSvc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/admin/users/{id}")
		defer span.End()

		if err := adminSvc.DeleteUser(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func systemMetricsHandler(adminSvc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/admin/metrics")
		defer span.End()

		dash, err := adminSvc.Dashboard(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash.Metrics)
	}
}

func listApprovalsHandler(apprSvc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/admin/approvals")
		defer span.End()

		status := domain.ApprovalStatus(r.URL.Query().Get("status"))
		reqs, err := apprSvc.Approvals(ctx, SessionFromContext(ctx), status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, approvalListResponse{Requests: reqs})
	}
}

func pendingApprovalsHandler(apprSvc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/admin/approvals/pending")
		defer span.End()

		reqs, err := apprSvc.PendingApprovals(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, approvalListResponse{Requests: reqs})
	}
}

// createApprovalHandler accepts a pre-built request from a client that
// already classified the change set locally. The request is always
// filed under the authenticated user.
func createApprovalHandler(approvals port.ApprovalStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/admin/approvals")
		defer span.End()

		sess := SessionFromContext(ctx)
		if sess == nil || !permission.HasPermission(sess.UserType, permission.EditOwnProfile) {
			writeError(w, http.StatusForbidden, "forbidden: solicitar aprovação")
			return
		}

		var req domain.ApprovalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.RequestedChanges) == 0 {
			writeError(w, http.StatusBadRequest, "requestedChanges não pode ser vazio")
			return
		}

		if req.RequestType == "" {
			req.RequestType = domain.RequestTypeProfileUpdate
		}
		req.ID = uuid.New().String()
		req.UserID = sess.UserID
		req.UserName = sess.Name
		req.UserEmail = sess.Email
		req.Status = domain.ApprovalPending
		req.CreatedAt = time.Now()
		req.ReviewedAt = nil
		req.ReviewedBy = ""
		req.ReviewComments = ""

		if err := approvals.CreateApproval(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, approvalActionResponse{Request: &req})
	}
}

func getApprovalHandler(approvals port.ApprovalStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/admin/approvals/{id}")
		defer span.End()

		sess := SessionFromContext(ctx)
		req, err := approvals.GetApproval(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if sess == nil || (req.UserID != sess.UserID && !permission.HasPermission(sess.UserType, permission.EditAnyProfile)) {
			writeError(w, http.StatusForbidden, "forbidden: visualizar solicitação de outro usuário")
			return
		}
		writeJSON(w, http.StatusOK, approvalActionResponse{Request: req})
	}
}

func approveRequestHandler(apprSvc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/admin/approvals/{id}/approve")
		defer span.End()

		var req decisionRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		approved, err := apprSvc.Approve(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), req.Comments)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, approvalActionResponse{Request: approved})
	}
}

func rejectRequestHandler(apprSvc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/admin/approvals/{id}/reject")
		defer span.End()

		var req decisionRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		rejected, err := apprSvc.Reject(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), req.Comments)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, approvalActionResponse{Request: rejected})
	}
}
