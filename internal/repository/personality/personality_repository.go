package personality

import (
	"context"
	"errors"

	"github.com/companionhq/companion/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPersonalityNotFound = errors.New("personality not found")

type gormPersonalityRepository struct {
	db *gorm.DB
}

func NewPersonalityRepository(db *gorm.DB) PersonalityRepository {
	return &gormPersonalityRepository{db: db}
}

func (r *gormPersonalityRepository) Create(ctx context.Context, personality *domain.Personality) (*domain.Personality, error) {
	if personality.ID == "" {
		personality.ID = uuid.NewString()
	}
	if personality.Traits == nil {
		personality.Traits = domain.TraitList{}
	}
	if err := r.db.WithContext(ctx).Create(personality).Error; err != nil {
		return nil, err
	}
	return personality, nil
}

func (r *gormPersonalityRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Personality, error) {
	var personalities []domain.Personality
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&personalities).Error
	return personalities, err
}

// FindByIDAndUserID scopes the lookup to the owner so one user's chat call
// can never borrow another user's persona.
func (r *gormPersonalityRepository) FindByIDAndUserID(ctx context.Context, id, userID string) (*domain.Personality, error) {
	var personality domain.Personality
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&personality).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonalityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &personality, nil
}

func (r *gormPersonalityRepository) Update(ctx context.Context, id, name, description string, traits domain.TraitList) (*domain.Personality, error) {
	if traits == nil {
		traits = domain.TraitList{}
	}
	result := r.db.WithContext(ctx).Model(&domain.Personality{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
			"traits":      traits,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPersonalityNotFound
	}

	var personality domain.Personality
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&personality).Error; err != nil {
		return nil, err
	}
	return &personality, nil
}

func (r *gormPersonalityRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Personality{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPersonalityNotFound
	}
	return nil
}
