package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Association is a doctor's standing engagement with a hospital. The fee is
// captured into every slot opened under it; later changes only affect slots
// opened afterwards.
type Association struct {
	DoctorID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	HospitalID     uuid.UUID       `gorm:"type:uuid;primaryKey;index" json:"hospital_id"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Fee            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`
	Active         bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Association) TableName() string {
	return "doctor_hospital_associations"
}

// ValidateFee checks that fee is a positive amount expressible in cents.
func ValidateFee(fee decimal.Decimal) error {
	if !fee.IsPositive() || !fee.Equal(fee.Truncate(2)) {
		return ErrInvalidFee
	}
	return nil
}
