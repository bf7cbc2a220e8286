package conversation

import (
	"context"

	"github.com/companionhq/companion/internal/domain"
)

// ConversationRepository handles conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Conversation, error)
}
