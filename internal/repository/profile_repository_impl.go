package repository

import (
	"context"
	"errors"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// profileRepository reads the users/roles tables and the three profile
// tables owned by the identity service.
type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) domainRepo.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (entity.Profile, error) {
	db := r.db.WithContext(ctx)

	var user entity.User
	err := db.Preload("Role").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	role := user.Role.RoleName
	if !role.Valid() {
		var ok bool
		if role, ok = entity.RoleFromID(user.RoleID); !ok {
			return nil, nil
		}
	}

	switch role {
	case entity.RoleAdmin:
		return findProfile[entity.AdminProfile](db, userID, user)
	case entity.RoleDoctor:
		return findProfile[entity.DoctorProfile](db, userID, user)
	default:
		return findProfile[entity.PatientProfile](db, userID, user)
	}
}

type profileRow interface {
	entity.AdminProfile | entity.DoctorProfile | entity.PatientProfile
}

func findProfile[T profileRow](db *gorm.DB, userID uuid.UUID, user entity.User) (entity.Profile, error) {
	var row T
	err := db.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	switch p := any(&row).(type) {
	case *entity.AdminProfile:
		p.User = user
		return p, nil
	case *entity.DoctorProfile:
		p.User = user
		return p, nil
	case *entity.PatientProfile:
		p.User = user
		return p, nil
	}
	return nil, nil
}
