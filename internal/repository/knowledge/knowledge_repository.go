package knowledge

import (
	"context"
	"errors"

	"github.com/companionhq/companion/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("knowledge document not found")

type gormKnowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &gormKnowledgeRepository{db: db}
}

func (r *gormKnowledgeRepository) Create(ctx context.Context, doc *domain.KnowledgeDocument) (*domain.KnowledgeDocument, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *gormKnowledgeRepository) FindByUserID(ctx context.Context, userID string) ([]domain.KnowledgeDocument, error) {
	var docs []domain.KnowledgeDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// FindContentByUserID returns the extracted text of every document the user
// owns, oldest first. The chat pipeline includes all of it verbatim.
func (r *gormKnowledgeRepository) FindContentByUserID(ctx context.Context, userID string) ([]string, error) {
	var contents []string
	err := r.db.WithContext(ctx).Model(&domain.KnowledgeDocument{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("content", &contents).Error
	return contents, err
}

func (r *gormKnowledgeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.KnowledgeDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
