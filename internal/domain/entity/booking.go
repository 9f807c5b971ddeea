package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking. It mirrors the owning
// slot's status once the slot has been booked.
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CompletionPolicy decides who may complete a booked consultation.
type CompletionPolicy string

const (
	// CompletionPolicyDoctor lets only the slot's doctor complete a booking.
	CompletionPolicyDoctor CompletionPolicy = "doctor"
	// CompletionPolicyDoctorOrElapsed additionally completes bookings whose
	// start time passed more than the grace period ago.
	CompletionPolicyDoctorOrElapsed CompletionPolicy = "doctor_or_elapsed"
)

func (p CompletionPolicy) Valid() bool {
	return p == CompletionPolicyDoctor || p == CompletionPolicyDoctorOrElapsed
}

// Booking represents a patient's successful reservation of a slot
type Booking struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SlotID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"slot_id"`
	PatientID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	HospitalID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"hospital_id"`
	BookingCode string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	FeeCharged  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee_charged"`
	Status      BookingStatus   `gorm:"type:varchar(16);not null;default:'booked';index" json:"status"`
	CancelledBy *uuid.UUID      `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsBooked checks if booking is awaiting consultation
func (b *Booking) IsBooked() bool {
	return b.Status == BookingStatusBooked
}

// IsCompleted checks if booking is completed
func (b *Booking) IsCompleted() bool {
	return b.Status == BookingStatusCompleted
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// SlotStatus returns the slot status this booking mirrors.
func (b *Booking) SlotStatus() SlotStatus {
	return SlotStatus(b.Status)
}

// BookingStatusFor returns the booking status mirroring a slot status.
func BookingStatusFor(s SlotStatus) BookingStatus {
	return BookingStatus(s)
}

// BookingFilter narrows booking listings. Zero values mean "any".
type BookingFilter struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    BookingStatus
}

// Matches reports whether b passes the filter.
func (f BookingFilter) Matches(b *Booking) bool {
	if f.PatientID != uuid.Nil && b.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != uuid.Nil && b.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
