package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/memstore"
	"github.com/clubbook/members-book-go/internal/infra/observability"
)

type brokenChatStore struct{}

func (brokenChatStore) ListRooms(context.Context) ([]domain.ChatRoom, error) {
	return nil, &domain.ErrNetwork{Op: "ListRooms", Err: errors.New("connection refused")}
}

func (brokenChatStore) ListMessages(context.Context, string, int, int) ([]domain.ChatMessage, error) {
	return nil, &domain.ErrNetwork{Op: "ListMessages", Err: errors.New("connection refused")}
}

func (brokenChatStore) AppendMessage(context.Context, *domain.ChatMessage) error {
	return &domain.ErrNetwork{Op: "AppendMessage", Err: errors.New("connection refused")}
}

func newChatService(api, fallback *memstore.Store) *ChatService {
	if api == nil {
		api = memstore.NewSeeded()
	}
	if fallback == nil {
		fallback = memstore.NewSeeded()
	}
	return NewChatService(api, fallback, observability.NewMetrics(), zap.NewNop())
}

func TestRoomsListsSeededRooms(t *testing.T) {
	svc := newChatService(nil, nil)

	rooms, source, err := svc.Rooms(context.Background(), memberSession())
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	if source != SourceAPI {
		t.Errorf("source = %s, want api", source)
	}
	if len(rooms) != 3 || rooms[0].Name != "Geral" {
		t.Errorf("rooms = %v", rooms)
	}
}

func TestRoomsFallsBackWhenAPIUnreachable(t *testing.T) {
	svc := NewChatService(brokenChatStore{}, memstore.NewSeeded(), observability.NewMetrics(), zap.NewNop())

	rooms, source, err := svc.Rooms(context.Background(), guestSession())
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	if source != SourceMock {
		t.Errorf("source = %s, want mock", source)
	}
	if len(rooms) != 3 {
		t.Errorf("got %d rooms, want 3", len(rooms))
	}
}

func TestMessagesPaginates(t *testing.T) {
	svc := newChatService(nil, nil)
	ctx := context.Background()

	msgs, _, err := svc.Messages(ctx, memberSession(), "1", 2, 1)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "2" || msgs[1].ID != "3" {
		t.Errorf("page = %s,%s, want 2,3", msgs[0].ID, msgs[1].ID)
	}

	_, _, err = svc.Messages(ctx, memberSession(), "1", -1, 0)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("negative limit: err = %v, want ErrValidation", err)
	}
}

func TestSendAppendsAndUpdatesRoomPreview(t *testing.T) {
	api := memstore.NewSeeded()
	svc := newChatService(api, nil)
	ctx := context.Background()

	msg, err := svc.Send(ctx, memberSession(), "1", "  Chegando em 10 minutos.  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Text != "Chegando em 10 minutos." {
		t.Errorf("text not trimmed: %q", msg.Text)
	}
	if msg.Type != domain.MessageText || msg.SenderID != "user_001" {
		t.Errorf("message = %+v", msg)
	}

	rooms, _ := api.ListRooms(ctx)
	if rooms[0].LastMessage != "Chegando em 10 minutos." {
		t.Errorf("room preview = %q", rooms[0].LastMessage)
	}
}

func TestSendForbiddenForGuests(t *testing.T) {
	svc := newChatService(nil, nil)

	_, err := svc.Send(context.Background(), guestSession(), "1", "oi")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc := newChatService(nil, nil)

	_, err := svc.Send(context.Background(), memberSession(), "1", "   ")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestSendHasNoMockFallback(t *testing.T) {
	svc := NewChatService(brokenChatStore{}, memstore.NewSeeded(), observability.NewMetrics(), zap.NewNop())

	_, err := svc.Send(context.Background(), memberSession(), "1", "oi")
	if err == nil {
		t.Fatal("expected error when backend unreachable")
	}
	if !domain.Recoverable(err) {
		t.Fatalf("err = %v, want transport error passed through", err)
	}
}
