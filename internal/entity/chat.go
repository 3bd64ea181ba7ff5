package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in a conversation session's history. Ordering is
// strictly by append order; the timestamp is informational only.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChatMessage(content string, isUser bool) ChatMessage {
	return ChatMessage{
		ID:        uuid.New(),
		Content:   content,
		IsUser:    isUser,
		Timestamp: time.Now().UTC(),
	}
}
