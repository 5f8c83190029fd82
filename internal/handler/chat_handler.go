package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clubbook/members-book-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

func listRoomsHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/chat/rooms")
		defer span.End()

		rooms, _, err := chatSvc.Rooms(ctx, SessionFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

func listMessagesHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/chat/rooms/{id}/messages")
		defer span.End()

		limit, offset := parsePagination(r)
		msgs, _, err := chatSvc.Messages(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), limit, offset)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func sendMessageHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/chat/rooms/{id}/messages")
		defer span.End()

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		msg, err := chatSvc.Send(ctx, SessionFromContext(ctx), chi.URLParam(r, "id"), req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}
