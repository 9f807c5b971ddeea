package memory

import (
	"context"
	"sync"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
)

// ProfileRepository is a seeded stand-in for the external role/profile
// store.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]entity.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[uuid.UUID]entity.Profile)}
}

var _ domainRepo.ProfileRepository = (*ProfileRepository)(nil)

// Put registers or replaces the profile of its owner.
func (r *ProfileRepository) Put(profile entity.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.OwnerID()] = profile
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}
