// File: internal/domain/message.go
package domain

import "time"

// Message sender values. A chat turn always writes one of each, user first.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message represents a single message within a conversation. Messages are
// append-only: there is no update or delete path.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index;not null"`
	Content        string    `json:"content" gorm:"not null"`
	Sender         string    `json:"sender" gorm:"not null"` // "user" or "ai"
	CreatedAt      time.Time `json:"timestamp"`
}
