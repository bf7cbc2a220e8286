// File: internal/domain/conversation.go
package domain

import "time"

// Conversation represents a single chat thread owned by a user.
type Conversation struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
