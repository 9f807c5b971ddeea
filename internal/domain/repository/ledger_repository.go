package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// LedgerRepository is the append-only revenue ledger.
type LedgerRepository interface {
	// Append stores a new entry; entity.ErrAlreadyAllocated if the booking
	// already has one.
	Append(ctx context.Context, entry *entity.RevenueLedgerEntry) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RevenueLedgerEntry, error)
	Summarize(ctx context.Context, filter entity.LedgerFilter) (*entity.LedgerSummary, error)
	SummarizeByHospital(ctx context.Context, filter entity.LedgerFilter) ([]entity.HospitalRevenue, error)
}
