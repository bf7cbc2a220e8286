package knowledge

import (
	"context"

	"github.com/companionhq/companion/internal/domain"
)

// KnowledgeRepository handles knowledge-base document data operations.
type KnowledgeRepository interface {
	Create(ctx context.Context, doc *domain.KnowledgeDocument) (*domain.KnowledgeDocument, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.KnowledgeDocument, error)
	FindContentByUserID(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
