package repository

import (
	"context"
	"errors"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type associationRepository struct {
	db *gorm.DB
}

func NewAssociationRepository(db *gorm.DB) domainRepo.AssociationRepository {
	return &associationRepository{db: db}
}

func (r *associationRepository) Upsert(ctx context.Context, association *entity.Association) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "hospital_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"specialization", "fee", "active", "updated_at"}),
	}).Create(association).Error
}

func (r *associationRepository) Find(ctx context.Context, doctorID, hospitalID uuid.UUID) (*entity.Association, error) {
	var association entity.Association
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND hospital_id = ?", doctorID, hospitalID).
		First(&association).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &association, nil
}

func (r *associationRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Association, error) {
	var associations []entity.Association
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("hospital_id ASC").Find(&associations).Error
	if err != nil {
		return nil, err
	}
	return associations, nil
}

func (r *associationRepository) FindByHospitalID(ctx context.Context, hospitalID uuid.UUID, activeOnly bool) ([]entity.Association, error) {
	var associations []entity.Association
	query := r.db.WithContext(ctx).Where("hospital_id = ?", hospitalID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("doctor_id ASC").Find(&associations).Error
	if err != nil {
		return nil, err
	}
	return associations, nil
}

func (r *associationRepository) SetActive(ctx context.Context, doctorID, hospitalID uuid.UUID, active bool) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Association{}).
		Where("doctor_id = ? AND hospital_id = ?", doctorID, hospitalID).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}
