package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// HospitalRepository stores hospitals. Find methods return (nil, nil) when
// the record does not exist.
type HospitalRepository interface {
	Create(ctx context.Context, hospital *entity.Hospital) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error)
	FindAll(ctx context.Context) ([]entity.Hospital, error)
	FindByAdminID(ctx context.Context, adminID uuid.UUID) ([]entity.Hospital, error)
	Update(ctx context.Context, hospital *entity.Hospital) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// DepartmentRepository stores departments. Create returns
// entity.ErrDuplicateDepartment when (name, hospital) already exists.
type DepartmentRepository interface {
	Create(ctx context.Context, department *entity.Department) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Department, error)
	FindByHospitalID(ctx context.Context, hospitalID uuid.UUID) ([]entity.Department, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
