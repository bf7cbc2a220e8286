package message

import (
	"context"
	"errors"

	"github.com/companionhq/companion/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.ConversationID == "" {
		return nil, errors.New("message requires a conversation ID")
	}
	if message.Sender != domain.SenderUser && message.Sender != domain.SenderAI {
		return nil, errors.New("message sender must be \"user\" or \"ai\"")
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	// rowid keeps write order stable when two messages land on the same
	// timestamp, which happens for the paired writes of a chat turn.
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, rowid ASC").
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) CountByConversationID(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
