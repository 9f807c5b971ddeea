package memory

import (
	"context"
	"testing"
	"time"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerEntry(hospitalID uuid.UUID, fee int64, at time.Time) *entity.RevenueLedgerEntry {
	f := decimal.NewFromInt(fee)
	d := f.Mul(decimal.RequireFromString("0.6"))
	h := f.Mul(decimal.RequireFromString("0.3"))
	return &entity.RevenueLedgerEntry{
		BookingID:     uuid.New(),
		DoctorID:      uuid.New(),
		HospitalID:    hospitalID,
		FeeCharged:    f,
		DoctorShare:   d,
		HospitalShare: h,
		PlatformShare: f.Sub(d).Sub(h),
		CreatedAt:     at,
	}
}

func TestLedgerAppendIsUniquePerBooking(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	entry := ledgerEntry(uuid.New(), 200, time.Now())

	require.NoError(t, repo.Append(ctx, entry))
	dup := *entry
	dup.ID = uuid.Nil
	assert.ErrorIs(t, repo.Append(ctx, &dup), entity.ErrAlreadyAllocated)
}

func TestLedgerSummaries(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	a, b := uuid.New(), uuid.New()
	jan := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2030, 2, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, ledgerEntry(a, 200, jan)))
	require.NoError(t, repo.Append(ctx, ledgerEntry(a, 100, feb)))
	require.NoError(t, repo.Append(ctx, ledgerEntry(b, 50, jan)))

	sum, err := repo.Summarize(ctx, entity.LedgerFilter{HospitalID: a})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Entries)
	assert.True(t, decimal.NewFromInt(300).Equal(sum.TotalFees))
	assert.True(t, decimal.NewFromInt(90).Equal(sum.HospitalTotal))

	janOnly, err := repo.Summarize(ctx, entity.LedgerFilter{From: jan, To: feb})
	require.NoError(t, err)
	assert.Equal(t, int64(2), janOnly.Entries)

	perHospital, err := repo.SummarizeByHospital(ctx, entity.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, perHospital, 2)
}
