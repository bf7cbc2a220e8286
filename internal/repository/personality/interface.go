package personality

import (
	"context"

	"github.com/companionhq/companion/internal/domain"
)

// PersonalityRepository handles personality profile data operations. Traits
// cross this boundary as a structured list; serialization is internal.
type PersonalityRepository interface {
	Create(ctx context.Context, personality *domain.Personality) (*domain.Personality, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Personality, error)
	FindByIDAndUserID(ctx context.Context, id, userID string) (*domain.Personality, error)
	Update(ctx context.Context, id, name, description string, traits domain.TraitList) (*domain.Personality, error)
	Delete(ctx context.Context, id string) error
}
