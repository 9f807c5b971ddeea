package memory

import (
	"context"
	"sort"
	"sync"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
)

type LedgerRepository struct {
	mu        sync.RWMutex
	entries   []entity.RevenueLedgerEntry
	byBooking map[uuid.UUID]int
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{byBooking: make(map[uuid.UUID]int)}
}

var _ domainRepo.LedgerRepository = (*LedgerRepository)(nil)

func (r *LedgerRepository) Append(ctx context.Context, entry *entity.RevenueLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byBooking[entry.BookingID]; exists {
		return entity.ErrAlreadyAllocated
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.byBooking[entry.BookingID] = len(r.entries)
	r.entries = append(r.entries, *entry)
	return nil
}

// appendLocked commits staged entries. The caller holds r.mu.
func (r *LedgerRepository) appendLocked(entries []entity.RevenueLedgerEntry) error {
	for i := range entries {
		if _, exists := r.byBooking[entries[i].BookingID]; exists {
			return entity.ErrAlreadyAllocated
		}
	}
	for i := range entries {
		r.byBooking[entries[i].BookingID] = len(r.entries)
		r.entries = append(r.entries, entries[i])
	}
	return nil
}

// stagedLedger is the ledger view handed to a completion. Appends are
// buffered until the slot store commits; reads see committed entries only.
type stagedLedger struct {
	*LedgerRepository
	pending []entity.RevenueLedgerEntry
}

func (l *stagedLedger) Append(ctx context.Context, entry *entity.RevenueLedgerEntry) error {
	existing, err := l.LedgerRepository.FindByBookingID(ctx, entry.BookingID)
	if err != nil {
		return err
	}
	if existing != nil {
		return entity.ErrAlreadyAllocated
	}
	for i := range l.pending {
		if l.pending[i].BookingID == entry.BookingID {
			return entity.ErrAlreadyAllocated
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	l.pending = append(l.pending, *entry)
	return nil
}

func (r *LedgerRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RevenueLedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byBooking[bookingID]
	if !ok {
		return nil, nil
	}
	out := r.entries[idx]
	return &out, nil
}

func (r *LedgerRepository) Summarize(ctx context.Context, filter entity.LedgerFilter) (*entity.LedgerSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary := &entity.LedgerSummary{}
	for i := range r.entries {
		if filter.Matches(&r.entries[i]) {
			summary.Add(&r.entries[i])
		}
	}
	return summary, nil
}

func (r *LedgerRepository) SummarizeByHospital(ctx context.Context, filter entity.LedgerFilter) ([]entity.HospitalRevenue, error) {
	r.mu.RLock()
	byHospital := make(map[uuid.UUID]*entity.HospitalRevenue)
	for i := range r.entries {
		e := &r.entries[i]
		if !filter.Matches(e) {
			continue
		}
		hr, ok := byHospital[e.HospitalID]
		if !ok {
			hr = &entity.HospitalRevenue{HospitalID: e.HospitalID}
			byHospital[e.HospitalID] = hr
		}
		hr.Add(e)
	}
	r.mu.RUnlock()

	out := make([]entity.HospitalRevenue, 0, len(byHospital))
	for _, hr := range byHospital {
		out = append(out, *hr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HospitalID.String() < out[j].HospitalID.String() })
	return out, nil
}
