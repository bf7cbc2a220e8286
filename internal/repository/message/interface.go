package message

import (
	"context"

	"github.com/companionhq/companion/internal/domain"
)

// MessageRepository handles message data operations. Messages are append-only.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error)
	CountByConversationID(ctx context.Context, conversationID string) (int64, error)
}
