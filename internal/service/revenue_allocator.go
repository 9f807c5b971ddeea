package service

import (
	"context"
	"fmt"
	"time"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Split divides fee into doctor, hospital and platform shares. The doctor
// and hospital shares are truncated to whole cents; the platform takes the
// remainder, so the three always add up to fee exactly.
func Split(fee decimal.Decimal, rates entity.RevenueRates) (doctor, hospital, platform decimal.Decimal) {
	doctor = fee.Mul(rates.DoctorRate).Truncate(2)
	hospital = fee.Mul(rates.HospitalRate).Truncate(2)
	platform = fee.Sub(doctor).Sub(hospital)
	return doctor, hospital, platform
}

// RevenueAllocator turns completed bookings into ledger entries using a
// default rate set and optional per-hospital overrides.
type RevenueAllocator struct {
	defaults  entity.RevenueRates
	overrides map[uuid.UUID]entity.RevenueRates
	now       func() time.Time
}

func NewRevenueAllocator(defaults entity.RevenueRates, overrides map[uuid.UUID]entity.RevenueRates) (*RevenueAllocator, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default rates: %w", err)
	}
	copied := make(map[uuid.UUID]entity.RevenueRates, len(overrides))
	for id, rates := range overrides {
		if err := rates.Validate(); err != nil {
			return nil, fmt.Errorf("rates for hospital %s: %w", id, err)
		}
		copied[id] = rates
	}
	return &RevenueAllocator{
		defaults:  defaults,
		overrides: copied,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// RatesFor returns the rate set applied to bookings at hospitalID.
func (a *RevenueAllocator) RatesFor(hospitalID uuid.UUID) entity.RevenueRates {
	if rates, ok := a.overrides[hospitalID]; ok {
		return rates
	}
	return a.defaults
}

// Entry builds the ledger entry for a booking without storing it.
func (a *RevenueAllocator) Entry(booking *entity.Booking) *entity.RevenueLedgerEntry {
	rates := a.RatesFor(booking.HospitalID)
	doctor, hospital, platform := Split(booking.FeeCharged, rates)
	return &entity.RevenueLedgerEntry{
		ID:            uuid.New(),
		BookingID:     booking.ID,
		DoctorID:      booking.DoctorID,
		HospitalID:    booking.HospitalID,
		FeeCharged:    booking.FeeCharged,
		DoctorShare:   doctor,
		HospitalShare: hospital,
		PlatformShare: platform,
		DoctorRate:    rates.DoctorRate,
		HospitalRate:  rates.HospitalRate,
		CreatedAt:     a.now(),
	}
}

// Allocate appends the booking's entry to ledger. It fails with
// entity.ErrAlreadyAllocated when the booking already has one.
func (a *RevenueAllocator) Allocate(ctx context.Context, ledger repository.LedgerRepository, booking *entity.Booking) (*entity.RevenueLedgerEntry, error) {
	entry := a.Entry(booking)
	if err := ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
