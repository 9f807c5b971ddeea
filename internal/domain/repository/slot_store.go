package repository

import (
	"context"
	"time"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AllocateFunc runs inside the completion unit of work. The ledger it
// receives is bound to the same unit; a returned error aborts the whole
// completion.
type AllocateFunc func(ctx context.Context, booking *entity.Booking, ledger LedgerRepository) error

// SlotStore is the single owned resource holding slot and booking state.
// Every status change goes through one of its atomic primitives, scoped to
// the slot's identity.
type SlotStore interface {
	// CreateSlot stores an open slot. It returns entity.ErrSlotConflict when
	// another non-cancelled slot holds the same (doctor, date, time) key at
	// any hospital.
	CreateSlot(ctx context.Context, slot *entity.Slot) error
	FindSlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	// ListOpenSlots returns one page of open slots ordered by date, time and
	// doctor id.
	ListOpenSlots(ctx context.Context, filter entity.SlotFilter) ([]entity.Slot, error)

	// ReserveSlot atomically moves the slot from open to booked and stores
	// the booking, copying the slot fee into it. Losers get
	// entity.ErrSlotUnavailable.
	ReserveSlot(ctx context.Context, slotID uuid.UUID, booking *entity.Booking) (*entity.Slot, error)
	// CancelSlot moves the slot (and its booking, if any) to cancelled only
	// if its status still equals expected; otherwise it returns
	// entity.ErrConcurrentUpdate.
	CancelSlot(ctx context.Context, slotID uuid.UUID, expected entity.SlotStatus, cancelledBy uuid.UUID) (*entity.Slot, *entity.Booking, error)
	// CompleteBooking moves a booked booking and its slot to completed and
	// runs allocate in the same unit of work.
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, allocate AllocateFunc) (*entity.Booking, error)

	FindBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindBookingBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.Booking, error)
	ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error)
	// ListDueBookings returns booked bookings whose slot started before the
	// given instant, oldest first.
	ListDueBookings(ctx context.Context, before time.Time, limit int) ([]entity.Booking, error)
	// ListClaimedSlots returns non-open slots starting at or after since,
	// in id order, for rebuilding the booking gate.
	ListClaimedSlots(ctx context.Context, since time.Time, offset, limit int) ([]entity.Slot, error)
}
