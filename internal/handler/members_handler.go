package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clubbook/members-book-go/internal/directory"
	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func listMembersHandler(dirSvc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/members")
		defer span.End()

		q := directory.Query{
			Search:    r.URL.Query().Get("search"),
			Hierarchy: r.URL.Query().Get("hierarchy"),
		}
		res, err := dirSvc.Members(ctx, SessionFromContext(ctx), q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res.Members)
	}
}

func getMemberHandler(dirSvc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/members/{id}")
		defer span.End()

		m, _, err := dirSvc.Member(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func connectMemberHandler(dirSvc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/members/{id}/connect")
		defer span.End()

		if err := dirSvc.Connect(ctx, SessionFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getProfileHandler(dirSvc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/members/{id}/profile")
		defer span.End()

		p, _, err := dirSvc.Profile(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func updateProfileHandler(dirSvc *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/members/{id}/profile")
		defer span.End()

		var changes domain.Profile
		if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := dirSvc.UpdateProfile(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), changes); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type profileUpdateRequest struct {
	Profile       domain.Profile `json:"profile"`
	Justification string         `json:"justification"`
}

// submitProfileUpdateHandler runs the full update workflow: direct
// fields apply at once, sensitive ones become an approval request.
func submitProfileUpdateHandler(dirSvc *service.DirectoryService, apprSvc *service.ApprovalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/members/{id}/profile/update-request")
		defer span.End()

		sess := SessionFromContext(ctx)
		userID := chi.URLParam(r, "id")

		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		original, _, err := dirSvc.Profile(ctx, sess, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := apprSvc.SubmitProfileUpdate(ctx, sess, original, req.Profile, req.Justification)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		status := http.StatusOK
		if res.Request != nil {
			status = http.StatusAccepted
		}
		writeJSON(w, status, res)
	}
}
