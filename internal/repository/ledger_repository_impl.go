package repository

import (
	"context"
	"errors"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *entity.RevenueLedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrAlreadyAllocated
	}
	return err
}

func (r *ledgerRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RevenueLedgerEntry, error) {
	var entry entity.RevenueLedgerEntry
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

const summaryColumns = "COUNT(*) AS entries, " +
	"COALESCE(SUM(fee_charged), 0) AS total_fees, " +
	"COALESCE(SUM(doctor_share), 0) AS doctor_total, " +
	"COALESCE(SUM(hospital_share), 0) AS hospital_total, " +
	"COALESCE(SUM(platform_share), 0) AS platform_total"

func (r *ledgerRepository) Summarize(ctx context.Context, filter entity.LedgerFilter) (*entity.LedgerSummary, error) {
	var summary entity.LedgerSummary
	err := ledgerQuery(r.db.WithContext(ctx), filter).
		Select(summaryColumns).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *ledgerRepository) SummarizeByHospital(ctx context.Context, filter entity.LedgerFilter) ([]entity.HospitalRevenue, error) {
	var rows []entity.HospitalRevenue
	err := ledgerQuery(r.db.WithContext(ctx), filter).
		Select("hospital_id, " + summaryColumns).
		Group("hospital_id").
		Order("hospital_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func ledgerQuery(db *gorm.DB, filter entity.LedgerFilter) *gorm.DB {
	query := db.Model(&entity.RevenueLedgerEntry{})
	if filter.HospitalID != uuid.Nil {
		query = query.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.DoctorID != uuid.Nil {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	return query
}
