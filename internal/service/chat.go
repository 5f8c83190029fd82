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
)

var chatTracer = otel.Tracer("service/chat")

// ChatService serves rooms and message history. Reads degrade to the
// seeded mock store; sending never does.
type ChatService struct {
	api      port.ChatStore
	fallback port.ChatStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewChatService(api, fallback port.ChatStore, metrics *observability.Metrics, logger *zap.Logger) *ChatService {
	return &ChatService{api: api, fallback: fallback, metrics: metrics, logger: logger}
}

// Rooms lists the chat rooms visible to the session.
func (s *ChatService) Rooms(ctx context.Context, sess *domain.Session) ([]domain.ChatRoom, Source, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Rooms")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.ViewProfiles) {
		return nil, "", &domain.ErrForbidden{Action: "visualizar salas de chat"}
	}

	rooms, err := s.api.ListRooms(ctx)
	if err == nil {
		return rooms, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}

	s.logger.Warn("room list degraded to mock data", zap.Error(err))
	s.metrics.IncrFallback("list_rooms")
	rooms, ferr := s.fallback.ListRooms(ctx)
	if ferr != nil {
		return nil, "", ferr
	}
	return rooms, SourceMock, nil
}

// Messages pages through a room's history, oldest first. A limit of
// zero means the store default.
func (s *ChatService) Messages(ctx context.Context, sess *domain.Session, roomID string, limit, offset int) ([]domain.ChatMessage, Source, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Messages")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.ViewProfiles) {
		return nil, "", &domain.ErrForbidden{Action: "visualizar mensagens"}
	}
	if roomID == "" {
		return nil, "", &domain.ErrValidation{Field: "room_id", Message: "identificador da sala é obrigatório"}
	}
	if limit < 0 || offset < 0 {
		return nil, "", &domain.ErrValidation{Field: "limit", Message: "paginação não pode ser negativa"}
	}
	span.SetAttributes(attribute.String("room_id", roomID), attribute.Int("limit", limit))

	msgs, err := s.api.ListMessages(ctx, roomID, limit, offset)
	if err == nil {
		return msgs, SourceAPI, nil
	}
	if !domain.Recoverable(err) {
		return nil, "", err
	}

	s.logger.Warn("message history degraded to mock data", zap.String("room_id", roomID), zap.Error(err))
	s.metrics.IncrFallback("list_messages")
	msgs, ferr := s.fallback.ListMessages(ctx, roomID, limit, offset)
	if ferr != nil {
		return nil, "", ferr
	}
	return msgs, SourceMock, nil
}

// Send posts a text message to a room. Guests are read-only; empty
// messages are rejected before reaching the network.
func (s *ChatService) Send(ctx context.Context, sess *domain.Session, roomID, text string) (*domain.ChatMessage, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Send")
	defer span.End()

	if sess == nil || !permission.HasPermission(sess.UserType, permission.SendMessages) {
		return nil, &domain.ErrForbidden{Action: "enviar mensagens"}
	}
	if roomID == "" {
		return nil, &domain.ErrValidation{Field: "room_id", Message: "identificador da sala é obrigatório"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "mensagem não pode ser vazia"}
	}

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		SenderID:   sess.UserID,
		SenderName: sess.Name,
		Text:       text,
		Timestamp:  time.Now(),
		Type:       domain.MessageText,
	}
	if err := s.api.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		zap.String("room_id", roomID),
		zap.String("sender_id", sess.UserID),
	)
	return msg, nil
}
