package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueQuery carries the optional YYYY-MM-DD bounds of a summary. To is
// inclusive.
type RevenueQuery struct {
	From string
	To   string
}

type LedgerEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	FeeCharged    decimal.Decimal `json:"fee_charged"`
	DoctorShare   decimal.Decimal `json:"doctor_share"`
	HospitalShare decimal.Decimal `json:"hospital_share"`
	PlatformShare decimal.Decimal `json:"platform_share"`
	DoctorRate    decimal.Decimal `json:"doctor_rate"`
	HospitalRate  decimal.Decimal `json:"hospital_rate"`
	CreatedAt     time.Time       `json:"created_at"`
}

type RevenueTotals struct {
	Entries       int64           `json:"entries"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	DoctorTotal   decimal.Decimal `json:"doctor_total"`
	HospitalTotal decimal.Decimal `json:"hospital_total"`
	PlatformTotal decimal.Decimal `json:"platform_total"`
}

type HospitalRevenueResponse struct {
	HospitalID uuid.UUID `json:"hospital_id"`
	RevenueTotals
}

type RevenueSummaryResponse struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	RevenueTotals
	Hospitals []HospitalRevenueResponse `json:"hospitals,omitempty"`
}
