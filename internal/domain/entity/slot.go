package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlotStatus is the lifecycle state of a slot.
type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "open"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Date and time-of-day layouts used on the wire and in storage.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// IsTerminal reports whether no further transition is allowed.
func (s SlotStatus) IsTerminal() bool {
	return s == SlotStatusCompleted || s == SlotStatusCancelled
}

// HoldsKey reports whether a slot in this status reserves its
// (doctor, date, time) key. Only cancelled slots release it.
func (s SlotStatus) HoldsKey() bool {
	return s != SlotStatusCancelled
}

// CanTransitionTo encodes the slot state machine:
//
//	open -> booked -> completed
//	open -> cancelled, booked -> cancelled
func (s SlotStatus) CanTransitionTo(to SlotStatus) bool {
	switch s {
	case SlotStatusOpen:
		return to == SlotStatusBooked || to == SlotStatusCancelled
	case SlotStatusBooked:
		return to == SlotStatusCompleted || to == SlotStatusCancelled
	}
	return false
}

// Slot is a single bookable (doctor, hospital, date, time) unit with a
// captured price. Fee and specialization are copied from the association
// at creation and never change afterwards.
type Slot struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	HospitalID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"hospital_id"`
	SlotDate       time.Time       `gorm:"type:date;not null;index" json:"slot_date"`
	StartTime      string          `gorm:"type:char(5);not null" json:"start_time"`
	StartsAt       time.Time       `gorm:"not null;index" json:"starts_at"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Fee            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`
	Status         SlotStatus      `gorm:"type:varchar(16);not null;default:'open';index" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Slot) TableName() string {
	return "slots"
}

// SlotKey identifies a doctor's time position independent of hospital.
type SlotKey struct {
	DoctorID  uuid.UUID
	Date      string
	StartTime string
}

// Key returns the live-uniqueness key of the slot.
func (s *Slot) Key() SlotKey {
	return SlotKey{DoctorID: s.DoctorID, Date: s.SlotDate.Format(DateLayout), StartTime: s.StartTime}
}

// IsOpen checks if slot can still be booked
func (s *Slot) IsOpen() bool {
	return s.Status == SlotStatusOpen
}

// Less orders slots by date, then time of day, then doctor id.
func (s *Slot) Less(o *Slot) bool {
	if !s.SlotDate.Equal(o.SlotDate) {
		return s.SlotDate.Before(o.SlotDate)
	}
	if s.StartTime != o.StartTime {
		return s.StartTime < o.StartTime
	}
	return s.DoctorID.String() < o.DoctorID.String()
}

// SlotFilter is a domain-level filter for querying open slots.
// Zero values mean "any".
type SlotFilter struct {
	HospitalID     uuid.UUID
	DoctorID       uuid.UUID
	From           time.Time // inclusive, date granularity
	To             time.Time // inclusive, date granularity
	Specialization string
	Offset         int
	Limit          int
}

// Matches reports whether slot passes every set criterion of the filter.
func (f SlotFilter) Matches(s *Slot) bool {
	if f.HospitalID != uuid.Nil && s.HospitalID != f.HospitalID {
		return false
	}
	if f.DoctorID != uuid.Nil && s.DoctorID != f.DoctorID {
		return false
	}
	if !f.From.IsZero() && s.SlotDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && s.SlotDate.After(f.To) {
		return false
	}
	if f.Specialization != "" && !equalFold(s.Specialization, f.Specialization) {
		return false
	}
	return true
}
