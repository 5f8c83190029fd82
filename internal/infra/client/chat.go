package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clubbook/members-book-go/internal/domain"
)

func (c *APIClient) ListRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	var rooms []domain.ChatRoom
	if err := c.do(ctx, "ListRooms", http.MethodGet, "/chat/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *APIClient) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]domain.ChatMessage, error) {
	path := fmt.Sprintf("/chat/rooms/%s/messages?limit=%d&offset=%d", url.PathEscape(roomID), limit, offset)
	var msgs []domain.ChatMessage
	if err := c.do(ctx, "ListMessages", http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *APIClient) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	body := map[string]string{"message": msg.Text}
	path := "/chat/rooms/" + url.PathEscape(msg.RoomID) + "/messages"
	var out domain.ChatMessage
	if err := c.do(ctx, "AppendMessage", http.MethodPost, path, body, &out); err != nil {
		return err
	}
	if out.ID != "" {
		*msg = out
	}
	return nil
}
