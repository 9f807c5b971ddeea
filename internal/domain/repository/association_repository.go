package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AssociationRepository stores at most one association per
// (doctor, hospital) pair.
type AssociationRepository interface {
	// Upsert inserts the association or replaces specialization, fee and
	// active flag of the existing one.
	Upsert(ctx context.Context, association *entity.Association) error
	Find(ctx context.Context, doctorID, hospitalID uuid.UUID) (*entity.Association, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Association, error)
	FindByHospitalID(ctx context.Context, hospitalID uuid.UUID, activeOnly bool) ([]entity.Association, error)
	SetActive(ctx context.Context, doctorID, hospitalID uuid.UUID, active bool) (int64, error)
}
