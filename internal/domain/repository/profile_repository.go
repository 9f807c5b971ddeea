package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileRepository reads role-specific profiles from the external
// role/profile store.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (entity.Profile, error)
}
