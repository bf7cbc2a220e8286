package services

import (
	"context"
	"strings"

	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/repository/personality"
)

// PersonalityService manages personality profiles. Traits are structured
// lists end to end; the storage layer owns their serialization.
type PersonalityService struct {
	repo   personality.PersonalityRepository
	logger Logger
}

func NewPersonalityService(repo personality.PersonalityRepository, logger Logger) *PersonalityService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &PersonalityService{repo: repo, logger: logger}
}

func (s *PersonalityService) Create(ctx context.Context, userID, name, description string, traits []string) (*domain.Personality, error) {
	if strings.TrimSpace(name) == "" {
		name = "Unnamed"
	}
	return s.repo.Create(ctx, &domain.Personality{
		UserID:      userID,
		Name:        name,
		Description: description,
		Traits:      domain.TraitList(traits),
	})
}

func (s *PersonalityService) ListByUser(ctx context.Context, userID string) ([]domain.Personality, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *PersonalityService) Update(ctx context.Context, id, name, description string, traits []string) (*domain.Personality, error) {
	return s.repo.Update(ctx, id, name, description, domain.TraitList(traits))
}

func (s *PersonalityService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
