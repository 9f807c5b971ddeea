package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type OpenSlotRequest struct {
	HospitalID uuid.UUID `json:"hospital_id" validate:"required"`
	Date       string    `json:"date" validate:"required,date"`  // Format: YYYY-MM-DD
	Time       string    `json:"time" validate:"required,clock"` // Format: HH:MM
}

// SlotQuery is the parsed form of the open slot listing query string.
type SlotQuery struct {
	HospitalID     uuid.UUID
	DoctorID       uuid.UUID
	Specialization string
	From           string
	To             string
	Limit          int
	Offset         int
}

// Response DTOs

type SlotResponse struct {
	ID             uuid.UUID       `json:"id"`
	DoctorID       uuid.UUID       `json:"doctor_id"`
	HospitalID     uuid.UUID       `json:"hospital_id"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	StartsAt       time.Time       `json:"starts_at"`
	Specialization string          `json:"specialization"`
	Fee            decimal.Decimal `json:"fee"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SlotListResponse struct {
	Slots  []SlotResponse `json:"slots"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
