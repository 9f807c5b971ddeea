// Package memory holds in-process implementations of the domain
// repositories. The slot store is an arena of records keyed by id; records
// are replaced, never mutated in place, so readers can copy them under a
// short read lock while transitions serialize on a per-slot key lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
)

type SlotStore struct {
	mu            sync.RWMutex
	slots         map[uuid.UUID]*entity.Slot
	bookings      map[uuid.UUID]*entity.Booking
	bookingBySlot map[uuid.UUID]uuid.UUID
	liveKeys      map[entity.SlotKey]uuid.UUID

	locks  *keyLock
	ledger *LedgerRepository
	now    func() time.Time
}

func NewSlotStore(ledger *LedgerRepository) *SlotStore {
	return &SlotStore{
		slots:         make(map[uuid.UUID]*entity.Slot),
		bookings:      make(map[uuid.UUID]*entity.Booking),
		bookingBySlot: make(map[uuid.UUID]uuid.UUID),
		liveKeys:      make(map[entity.SlotKey]uuid.UUID),
		locks:         newKeyLock(),
		ledger:        ledger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ domainRepo.SlotStore = (*SlotStore)(nil)

func slotLockKey(id uuid.UUID) string {
	return "slot:" + id.String()
}

func liveLockKey(k entity.SlotKey) string {
	return "live:" + k.DoctorID.String() + ":" + k.Date + ":" + k.StartTime
}

func (s *SlotStore) CreateSlot(ctx context.Context, slot *entity.Slot) error {
	key := slot.Key()
	release := s.locks.Lock(liveLockKey(key))
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := s.now()
	slot.CreatedAt, slot.UpdatedAt = now, now
	if slot.Status == "" {
		slot.Status = entity.SlotStatusOpen
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.liveKeys[key]; taken {
		return entity.ErrSlotConflict
	}
	record := *slot
	s.slots[slot.ID] = &record
	s.liveKeys[key] = slot.ID
	return nil
}

func (s *SlotStore) FindSlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	out := *slot
	return &out, nil
}

func (s *SlotStore) ListOpenSlots(ctx context.Context, filter entity.SlotFilter) ([]entity.Slot, error) {
	s.mu.RLock()
	matched := make([]entity.Slot, 0)
	for _, slot := range s.slots {
		if slot.Status == entity.SlotStatusOpen && filter.Matches(slot) {
			matched = append(matched, *slot)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Less(&matched[j]) })
	return paginate(matched, filter.Offset, filter.Limit), nil
}

func (s *SlotStore) ReserveSlot(ctx context.Context, slotID uuid.UUID, booking *entity.Booking) (*entity.Slot, error) {
	release := s.locks.Lock(slotLockKey(slotID))
	defer release()

	current, err := s.FindSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, entity.ErrSlotNotFound
	}
	// Nothing has been written yet: a cancelled caller leaves the slot open.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !current.IsOpen() {
		return nil, entity.ErrSlotUnavailable
	}

	now := s.now()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.SlotID = current.ID
	booking.DoctorID = current.DoctorID
	booking.HospitalID = current.HospitalID
	booking.FeeCharged = current.Fee
	booking.Status = entity.BookingStatusBooked
	booking.CreatedAt, booking.UpdatedAt = now, now

	current.Status = entity.SlotStatusBooked
	current.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookingBySlot[slotID]; exists {
		return nil, entity.ErrSlotUnavailable
	}
	slotRecord := *current
	bookingRecord := *booking
	s.slots[slotID] = &slotRecord
	s.bookings[booking.ID] = &bookingRecord
	s.bookingBySlot[slotID] = booking.ID
	return current, nil
}

func (s *SlotStore) CancelSlot(ctx context.Context, slotID uuid.UUID, expected entity.SlotStatus, cancelledBy uuid.UUID) (*entity.Slot, *entity.Booking, error) {
	release := s.locks.Lock(slotLockKey(slotID))
	defer release()

	current, err := s.FindSlotByID(ctx, slotID)
	if err != nil {
		return nil, nil, err
	}
	if current == nil {
		return nil, nil, entity.ErrSlotNotFound
	}
	if current.Status != expected {
		return nil, nil, entity.ErrConcurrentUpdate
	}
	if !expected.CanTransitionTo(entity.SlotStatusCancelled) {
		return nil, nil, &entity.TransitionError{From: expected, To: entity.SlotStatusCancelled}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	current.Status = entity.SlotStatusCancelled
	current.UpdatedAt = now
	slotRecord := *current
	s.slots[slotID] = &slotRecord
	if owner, ok := s.liveKeys[current.Key()]; ok && owner == slotID {
		delete(s.liveKeys, current.Key())
	}

	var cancelled *entity.Booking
	if bookingID, ok := s.bookingBySlot[slotID]; ok {
		b := *s.bookings[bookingID]
		if b.IsBooked() {
			by := cancelledBy
			b.Status = entity.BookingStatusCancelled
			b.CancelledBy = &by
			b.UpdatedAt = now
			record := b
			s.bookings[bookingID] = &record
		}
		cancelled = &b
	}
	return current, cancelled, nil
}

func (s *SlotStore) CompleteBooking(ctx context.Context, bookingID uuid.UUID, allocate domainRepo.AllocateFunc) (*entity.Booking, error) {
	found, err := s.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, entity.ErrBookingNotFound
	}

	release := s.locks.Lock(slotLockKey(found.SlotID))
	defer release()

	s.mu.RLock()
	booking := *s.bookings[bookingID]
	slot := *s.slots[booking.SlotID]
	s.mu.RUnlock()

	if !booking.IsBooked() || slot.Status != entity.SlotStatusBooked {
		return nil, &entity.TransitionError{From: booking.SlotStatus(), To: entity.SlotStatusCompleted}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	booking.Status = entity.BookingStatusCompleted
	booking.UpdatedAt = now
	staged := &stagedLedger{LedgerRepository: s.ledger}
	if err := allocate(ctx, &booking, staged); err != nil {
		return nil, err
	}

	slot.Status = entity.SlotStatusCompleted
	slot.UpdatedAt = now

	// Ledger entries and both status swaps become visible together.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	if err := s.ledger.appendLocked(staged.pending); err != nil {
		return nil, err
	}
	bookingRecord := booking
	slotRecord := slot
	s.bookings[bookingID] = &bookingRecord
	s.slots[slot.ID] = &slotRecord
	return &booking, nil
}

func (s *SlotStore) FindBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (s *SlotStore) FindBookingBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bookingBySlot[slotID]
	if !ok {
		return nil, nil
	}
	out := *s.bookings[id]
	return &out, nil
}

func (s *SlotStore) ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error) {
	s.mu.RLock()
	out := make([]entity.Booking, 0)
	for _, b := range s.bookings {
		if filter.Matches(b) {
			out = append(out, *b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *SlotStore) ListDueBookings(ctx context.Context, before time.Time, limit int) ([]entity.Booking, error) {
	type due struct {
		booking  entity.Booking
		startsAt time.Time
	}

	s.mu.RLock()
	candidates := make([]due, 0)
	for _, b := range s.bookings {
		if !b.IsBooked() {
			continue
		}
		slot := s.slots[b.SlotID]
		if slot.StartsAt.Before(before) {
			candidates = append(candidates, due{booking: *b, startsAt: slot.StartsAt})
		}
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].startsAt.Before(candidates[j].startsAt) })
	out := make([]entity.Booking, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.booking)
	}
	return paginate(out, 0, limit), nil
}

func (s *SlotStore) ListClaimedSlots(ctx context.Context, since time.Time, offset, limit int) ([]entity.Slot, error) {
	s.mu.RLock()
	out := make([]entity.Slot, 0)
	for _, slot := range s.slots {
		if slot.Status != entity.SlotStatusOpen && !slot.StartsAt.Before(since) {
			out = append(out, *slot)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return paginate(out, offset, limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
