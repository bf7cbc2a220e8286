// File: internal/domain/knowledge.go
package domain

import "time"

// KnowledgeDocument is user-supplied text extracted from an uploaded file.
// Content is always plain text regardless of the original file format.
type KnowledgeDocument struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FileType  string    `json:"file_type"`
	FilePath  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
