package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpsertAssociationRequest sets the doctor's specialization and consultation
// fee at one hospital. Fee accepts a JSON number or string.
type UpsertAssociationRequest struct {
	Specialization string          `json:"specialization" validate:"required,min=2,max=100"`
	Fee            decimal.Decimal `json:"fee"`
}

// Response DTOs

type AssociationResponse struct {
	DoctorID       uuid.UUID       `json:"doctor_id"`
	HospitalID     uuid.UUID       `json:"hospital_id"`
	Specialization string          `json:"specialization"`
	Fee            decimal.Decimal `json:"fee"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type AssociationListResponse struct {
	Associations []AssociationResponse `json:"associations"`
	Total        int                   `json:"total"`
}

type FeeResponse struct {
	DoctorID   uuid.UUID       `json:"doctor_id"`
	HospitalID uuid.UUID       `json:"hospital_id"`
	Fee        decimal.Decimal `json:"fee"`
}
