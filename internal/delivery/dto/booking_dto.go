package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	SlotID uuid.UUID `json:"slot_id" validate:"required"`
}

// Response DTOs

type BookingResponse struct {
	ID          uuid.UUID       `json:"id"`
	SlotID      uuid.UUID       `json:"slot_id"`
	PatientID   uuid.UUID       `json:"patient_id"`
	DoctorID    uuid.UUID       `json:"doctor_id"`
	HospitalID  uuid.UUID       `json:"hospital_id"`
	BookingCode string          `json:"booking_code"`
	FeeCharged  decimal.Decimal `json:"fee_charged"`
	Status      string          `json:"status"`
	CancelledBy *uuid.UUID      `json:"cancelled_by,omitempty"`
	Slot        *SlotResponse   `json:"slot,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// CancellationResponse reports the slot after a cancel and the booking it
// carried, if any.
type CancellationResponse struct {
	Slot    SlotResponse     `json:"slot"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

type CompletionResponse struct {
	Booking BookingResponse      `json:"booking"`
	Ledger  *LedgerEntryResponse `json:"ledger,omitempty"`
}
