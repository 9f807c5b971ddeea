package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueRates is one consistent rate set. The platform receives whatever
// the doctor and hospital shares leave over.
type RevenueRates struct {
	DoctorRate   decimal.Decimal `json:"doctor_rate"`
	HospitalRate decimal.Decimal `json:"hospital_rate"`
}

// RateScale is the number of decimal places a rate may carry.
const RateScale = 4

// Validate checks both rates are in [0,1] with at most RateScale decimal
// places and their sum does not exceed 1.
func (r RevenueRates) Validate() error {
	one := decimal.NewFromInt(1)
	if r.DoctorRate.IsNegative() || r.HospitalRate.IsNegative() {
		return ErrInvalidRates
	}
	if !r.DoctorRate.Equal(r.DoctorRate.Truncate(RateScale)) || !r.HospitalRate.Equal(r.HospitalRate.Truncate(RateScale)) {
		return ErrInvalidRates
	}
	if r.DoctorRate.Add(r.HospitalRate).GreaterThan(one) {
		return ErrInvalidRates
	}
	return nil
}

// PlatformRate is the nominal platform rate before rounding.
func (r RevenueRates) PlatformRate() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(r.DoctorRate).Sub(r.HospitalRate)
}

// RevenueLedgerEntry is the immutable record of how a completed booking's
// fee was split. Exactly one exists per completed booking.
type RevenueLedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	DoctorID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	HospitalID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"hospital_id"`
	FeeCharged    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee_charged"`
	DoctorShare   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"doctor_share"`
	HospitalShare decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"hospital_share"`
	PlatformShare decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"platform_share"`
	DoctorRate    decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"doctor_rate"`
	HospitalRate  decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"hospital_rate"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
}

func (RevenueLedgerEntry) TableName() string {
	return "revenue_ledger_entries"
}

// Balanced reports whether the three shares add up to the fee exactly.
func (e *RevenueLedgerEntry) Balanced() bool {
	return e.DoctorShare.Add(e.HospitalShare).Add(e.PlatformShare).Equal(e.FeeCharged)
}

// LedgerFilter narrows ledger summaries. Zero values mean "any".
// From is inclusive, To is exclusive.
type LedgerFilter struct {
	HospitalID uuid.UUID
	DoctorID   uuid.UUID
	From       time.Time
	To         time.Time
}

// Matches reports whether e passes the filter.
func (f LedgerFilter) Matches(e *RevenueLedgerEntry) bool {
	if f.HospitalID != uuid.Nil && e.HospitalID != f.HospitalID {
		return false
	}
	if f.DoctorID != uuid.Nil && e.DoctorID != f.DoctorID {
		return false
	}
	if !f.From.IsZero() && e.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

// LedgerSummary aggregates ledger entries.
type LedgerSummary struct {
	Entries       int64           `json:"entries"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	DoctorTotal   decimal.Decimal `json:"doctor_total"`
	HospitalTotal decimal.Decimal `json:"hospital_total"`
	PlatformTotal decimal.Decimal `json:"platform_total"`
}

// Add folds one entry into the summary.
func (s *LedgerSummary) Add(e *RevenueLedgerEntry) {
	s.Entries++
	s.TotalFees = s.TotalFees.Add(e.FeeCharged)
	s.DoctorTotal = s.DoctorTotal.Add(e.DoctorShare)
	s.HospitalTotal = s.HospitalTotal.Add(e.HospitalShare)
	s.PlatformTotal = s.PlatformTotal.Add(e.PlatformShare)
}

// HospitalRevenue is a per-hospital slice of a ledger summary.
type HospitalRevenue struct {
	HospitalID uuid.UUID `json:"hospital_id"`
	LedgerSummary
}
