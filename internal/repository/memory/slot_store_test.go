package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlot(doctorID, hospitalID uuid.UUID, date, clock string) *entity.Slot {
	d, _ := time.Parse(entity.DateLayout, date)
	startsAt, _ := time.Parse(entity.DateLayout+" "+entity.ClockLayout, date+" "+clock)
	return &entity.Slot{
		DoctorID:       doctorID,
		HospitalID:     hospitalID,
		SlotDate:       d,
		StartTime:      clock,
		StartsAt:       startsAt,
		Specialization: "Cardiology",
		Fee:            decimal.NewFromInt(200),
	}
}

func TestCreateSlotRejectsLiveKeyAcrossHospitals(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	doctor := uuid.New()

	require.NoError(t, store.CreateSlot(ctx, newSlot(doctor, uuid.New(), "2030-06-01", "09:00")))

	err := store.CreateSlot(ctx, newSlot(doctor, uuid.New(), "2030-06-01", "09:00"))
	assert.ErrorIs(t, err, entity.ErrSlotConflict)

	// A different doctor may use the same time.
	assert.NoError(t, store.CreateSlot(ctx, newSlot(uuid.New(), uuid.New(), "2030-06-01", "09:00")))
}

func TestCancelledSlotReleasesKey(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	doctor, hospital := uuid.New(), uuid.New()

	first := newSlot(doctor, hospital, "2030-06-01", "10:00")
	require.NoError(t, store.CreateSlot(ctx, first))

	_, _, err := store.CancelSlot(ctx, first.ID, entity.SlotStatusOpen, doctor)
	require.NoError(t, err)

	reopened := newSlot(doctor, hospital, "2030-06-01", "10:00")
	require.NoError(t, store.CreateSlot(ctx, reopened))
	assert.NotEqual(t, first.ID, reopened.ID)
}

func TestReserveSlotExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-02", "11:00")
	require.NoError(t, store.CreateSlot(ctx, slot))

	const attempts = 64
	var (
		wg          sync.WaitGroup
		wins        atomic.Int32
		unavailable atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ReserveSlot(ctx, slot.ID, &entity.Booking{PatientID: uuid.New(), BookingCode: uuid.NewString()})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, entity.ErrSlotUnavailable):
				unavailable.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(attempts-1), unavailable.Load())

	stored, err := store.FindSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SlotStatusBooked, stored.Status)

	bookings, err := store.ListBookings(ctx, entity.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestReserveSlotCopiesFee(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-03", "08:30")
	require.NoError(t, store.CreateSlot(ctx, slot))

	booking := &entity.Booking{PatientID: uuid.New(), BookingCode: "BK-1"}
	_, err := store.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(booking.FeeCharged))
	assert.Equal(t, slot.DoctorID, booking.DoctorID)
	assert.Equal(t, entity.BookingStatusBooked, booking.Status)
}

func TestReserveSlotWithCancelledContextLeavesSlotOpen(t *testing.T) {
	store := NewSlotStore(NewLedgerRepository())
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-03", "09:30")
	require.NoError(t, store.CreateSlot(context.Background(), slot))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.ReserveSlot(ctx, slot.ID, &entity.Booking{PatientID: uuid.New()})
	assert.ErrorIs(t, err, context.Canceled)

	stored, _ := store.FindSlotByID(context.Background(), slot.ID)
	assert.Equal(t, entity.SlotStatusOpen, stored.Status)
}

func TestCancelSlotComparesObservedStatus(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	patient := uuid.New()
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-04", "13:00")
	require.NoError(t, store.CreateSlot(ctx, slot))
	_, err := store.ReserveSlot(ctx, slot.ID, &entity.Booking{PatientID: patient})
	require.NoError(t, err)

	_, _, err = store.CancelSlot(ctx, slot.ID, entity.SlotStatusOpen, patient)
	assert.ErrorIs(t, err, entity.ErrConcurrentUpdate)

	cancelled, booking, err := store.CancelSlot(ctx, slot.ID, entity.SlotStatusBooked, patient)
	require.NoError(t, err)
	assert.Equal(t, entity.SlotStatusCancelled, cancelled.Status)
	require.NotNil(t, booking)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)
	assert.Equal(t, patient, *booking.CancelledBy)

	_, _, err = store.CancelSlot(ctx, slot.ID, entity.SlotStatusCancelled, patient)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestCompleteBookingAppendsLedgerInSameUnit(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerRepository()
	store := NewSlotStore(ledger)
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-05", "14:00")
	require.NoError(t, store.CreateSlot(ctx, slot))
	booking := &entity.Booking{PatientID: uuid.New()}
	_, err := store.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	allocate := func(ctx context.Context, b *entity.Booking, l domainRepo.LedgerRepository) error {
		return l.Append(ctx, &entity.RevenueLedgerEntry{
			BookingID:     b.ID,
			DoctorID:      b.DoctorID,
			HospitalID:    b.HospitalID,
			FeeCharged:    b.FeeCharged,
			DoctorShare:   decimal.NewFromInt(120),
			HospitalShare: decimal.NewFromInt(60),
			PlatformShare: decimal.NewFromInt(20),
			CreatedAt:     time.Now(),
		})
	}

	completed, err := store.CompleteBooking(ctx, booking.ID, allocate)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, completed.Status)

	stored, _ := store.FindSlotByID(ctx, slot.ID)
	assert.Equal(t, entity.SlotStatusCompleted, stored.Status)

	entry, err := ledger.FindByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Balanced())

	_, err = store.CompleteBooking(ctx, booking.ID, allocate)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestCompleteBookingRollsBackOnAllocateFailure(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-05", "15:00")
	require.NoError(t, store.CreateSlot(ctx, slot))
	booking := &entity.Booking{PatientID: uuid.New()}
	_, err := store.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.CompleteBooking(ctx, booking.ID, func(ctx context.Context, b *entity.Booking, l domainRepo.LedgerRepository) error {
		if err := l.Append(ctx, &entity.RevenueLedgerEntry{BookingID: b.ID, FeeCharged: b.FeeCharged}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := store.FindBookingByID(ctx, booking.ID)
	assert.Equal(t, entity.BookingStatusBooked, stored.Status)
	entry, err := store.ledger.FindByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCompleteBookingPublishesLedgerWithStatuses(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedgerRepository()
	store := NewSlotStore(ledger)
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-05", "16:00")
	require.NoError(t, store.CreateSlot(ctx, slot))
	booking := &entity.Booking{PatientID: uuid.New()}
	_, err := store.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	var sawEarlyEntry atomic.Bool
	var inconsistent atomic.Int32
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// Ledger first: once an entry is visible the slot must already
			// read as completed.
			entry, _ := ledger.FindByBookingID(ctx, booking.ID)
			current, _ := store.FindSlotByID(ctx, slot.ID)
			if entry != nil && current.Status != entity.SlotStatusCompleted {
				inconsistent.Add(1)
			}
		}
	}()

	_, err = store.CompleteBooking(ctx, booking.ID, func(ctx context.Context, b *entity.Booking, l domainRepo.LedgerRepository) error {
		if err := l.Append(ctx, &entity.RevenueLedgerEntry{BookingID: b.ID, FeeCharged: b.FeeCharged}); err != nil {
			return err
		}
		if entry, _ := ledger.FindByBookingID(ctx, b.ID); entry != nil {
			sawEarlyEntry.Store(true)
		}
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	close(stop)
	wg.Wait()

	assert.False(t, sawEarlyEntry.Load())
	assert.Zero(t, inconsistent.Load())
	entry, err := ledger.FindByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotEqual(t, uuid.Nil, entry.ID)
}

func TestCompleteBookingStagedLedgerRejectsSecondAppend(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	slot := newSlot(uuid.New(), uuid.New(), "2030-06-05", "17:00")
	require.NoError(t, store.CreateSlot(ctx, slot))
	booking := &entity.Booking{PatientID: uuid.New()}
	_, err := store.ReserveSlot(ctx, slot.ID, booking)
	require.NoError(t, err)

	_, err = store.CompleteBooking(ctx, booking.ID, func(ctx context.Context, b *entity.Booking, l domainRepo.LedgerRepository) error {
		require.NoError(t, l.Append(ctx, &entity.RevenueLedgerEntry{BookingID: b.ID}))
		return l.Append(ctx, &entity.RevenueLedgerEntry{BookingID: b.ID})
	})
	assert.ErrorIs(t, err, entity.ErrAlreadyAllocated)

	stored, _ := store.FindSlotByID(ctx, slot.ID)
	assert.Equal(t, entity.SlotStatusBooked, stored.Status)
}

func TestListOpenSlotsOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	hospital := uuid.New()
	doctor := uuid.New()

	require.NoError(t, store.CreateSlot(ctx, newSlot(doctor, hospital, "2030-06-02", "09:00")))
	require.NoError(t, store.CreateSlot(ctx, newSlot(doctor, hospital, "2030-06-01", "10:00")))
	require.NoError(t, store.CreateSlot(ctx, newSlot(doctor, hospital, "2030-06-01", "09:00")))
	booked := newSlot(doctor, hospital, "2030-06-01", "08:00")
	require.NoError(t, store.CreateSlot(ctx, booked))
	_, err := store.ReserveSlot(ctx, booked.ID, &entity.Booking{PatientID: uuid.New()})
	require.NoError(t, err)

	all, err := store.ListOpenSlots(ctx, entity.SlotFilter{HospitalID: hospital})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "09:00", all[0].StartTime)
	assert.Equal(t, "10:00", all[1].StartTime)
	assert.Equal(t, "2030-06-02", all[2].SlotDate.Format(entity.DateLayout))

	page, err := store.ListOpenSlots(ctx, entity.SlotFilter{HospitalID: hospital, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	none, err := store.ListOpenSlots(ctx, entity.SlotFilter{Specialization: "dermatology"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListDueBookings(t *testing.T) {
	ctx := context.Background()
	store := NewSlotStore(NewLedgerRepository())
	early := newSlot(uuid.New(), uuid.New(), "2030-01-01", "09:00")
	late := newSlot(uuid.New(), uuid.New(), "2030-12-01", "09:00")
	for _, s := range []*entity.Slot{early, late} {
		require.NoError(t, store.CreateSlot(ctx, s))
		_, err := store.ReserveSlot(ctx, s.ID, &entity.Booking{PatientID: uuid.New()})
		require.NoError(t, err)
	}

	due, err := store.ListDueBookings(ctx, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, early.ID, due[0].SlotID)
}
