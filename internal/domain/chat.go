package domain

import "time"

// ChatRoom is a conversation channel. The chat is mocked: no delivery
// guarantees, no read receipts beyond the unread counter.
type ChatRoom struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
	Participants    int       `json:"participants"`
	IsActive        bool      `json:"isActive"`
}

// ChatMessageType distinguishes user text from system notices.
type ChatMessageType string

const (
	MessageText   ChatMessageType = "text"
	MessageSystem ChatMessageType = "system"
)

// ChatMessage is a single entry in a room's history.
type ChatMessage struct {
	ID         string          `json:"id"`
	RoomID     string          `json:"roomId"`
	Text       string          `json:"text"`
	Timestamp  time.Time       `json:"timestamp"`
	SenderID   string          `json:"senderId"`
	SenderName string          `json:"senderName"`
	Type       ChatMessageType `json:"type"`
}
