package usecase

import (
	"context"
	"testing"
	"time"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSlotRejectsSameTimeAtAnotherHospital(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalA := f.newHospital(t, "RS A")
	hospitalB := f.newHospital(t, "RS B")
	f.associate(t, hospitalA, "200")
	f.associate(t, hospitalB, "300")

	first := f.openSlot(t, hospitalA, "2030-01-20", "10:00")

	_, err := f.availability.OpenSlot(f.asDoctor(), &dto.OpenSlotRequest{HospitalID: hospitalB, Date: "2030-01-20", Time: "10:00"})
	assert.ErrorIs(t, err, entity.ErrSlotConflict)

	// Once cancelled, the time may be offered again.
	_, err = f.availability.CancelOpenSlot(f.asDoctor(), first.ID)
	require.NoError(t, err)

	reopened, err := f.availability.OpenSlot(f.asDoctor(), &dto.OpenSlotRequest{HospitalID: hospitalB, Date: "2030-01-20", Time: "10:00"})
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(reopened.Fee))
}

func TestOpenSlotNormalizesClock(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalA := f.newHospital(t, "RS A")
	hospitalB := f.newHospital(t, "RS B")
	f.associate(t, hospitalA, "200")
	f.associate(t, hospitalB, "300")

	f.openSlot(t, hospitalA, "2030-01-20", "09:00")

	// A single-digit hour names the same start time.
	_, err := f.availability.OpenSlot(f.asDoctor(), &dto.OpenSlotRequest{HospitalID: hospitalB, Date: "2030-01-20", Time: "9:00"})
	assert.ErrorIs(t, err, entity.ErrSlotConflict)

	later := f.openSlot(t, hospitalB, "2030-01-20", "9:30")
	assert.Equal(t, "09:30", later.Time)

	tenOClock := f.openSlot(t, hospitalA, "2030-01-20", "10:00")
	var order []uuid.UUID
	for slot, err := range f.availability.OpenSlots(context.Background(), entity.SlotFilter{DoctorID: f.doctor}) {
		require.NoError(t, err)
		order = append(order, slot.ID)
	}
	require.Len(t, order, 3)
	assert.Equal(t, later.ID, order[1])
	assert.Equal(t, tenOClock.ID, order[2])
}

func TestOpenSlotCapturesAssociationTerms(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "150.50")

	slot := f.openSlot(t, hospitalID, "2030-01-15", "10:00")
	assert.Equal(t, f.doctor, slot.DoctorID)
	assert.Equal(t, "Cardiology", slot.Specialization)
	assert.True(t, dec("150.50").Equal(slot.Fee))
	assert.Equal(t, "2030-01-15", slot.Date)
	assert.Equal(t, "10:00", slot.Time)
	assert.True(t, time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC).Equal(slot.StartsAt))
	assert.Equal(t, string(entity.SlotStatusOpen), slot.Status)
}

func TestOpenSlotUsesConfiguredTimezone(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	jakarta := time.FixedZone("WIB", 7*60*60)
	log := newTestLogger()
	f.availability = NewAvailabilityUsecase(log, f.store, f.associations, service.NewAuditService(log, f.audits), service.NewNoopEventPublisher(), nil, jakarta)

	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")

	slot := f.openSlot(t, hospitalID, "2030-01-15", "10:00")
	assert.True(t, time.Date(2030, 1, 15, 3, 0, 0, 0, time.UTC).Equal(slot.StartsAt))
	assert.Equal(t, "2030-01-15", slot.Date)
}

func TestOpenSlotValidation(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")
	unassociated := f.newHospital(t, "RS Lain")

	tests := []struct {
		name    string
		ctx     context.Context
		req     dto.OpenSlotRequest
		wantErr error
	}{
		{
			name:    "patient",
			ctx:     f.asPatient(),
			req:     dto.OpenSlotRequest{HospitalID: hospitalID, Date: "2030-01-15", Time: "10:00"},
			wantErr: entity.ErrUnauthorized,
		},
		{
			name:    "not associated",
			ctx:     f.asDoctor(),
			req:     dto.OpenSlotRequest{HospitalID: unassociated, Date: "2030-01-15", Time: "10:00"},
			wantErr: entity.ErrNotAssociated,
		},
		{
			name:    "in the past",
			ctx:     f.asDoctor(),
			req:     dto.OpenSlotRequest{HospitalID: hospitalID, Date: "2020-01-15", Time: "10:00"},
			wantErr: entity.ErrSlotInPast,
		},
		{
			name:    "bad date",
			ctx:     f.asDoctor(),
			req:     dto.OpenSlotRequest{HospitalID: hospitalID, Date: "15-01-2030", Time: "10:00"},
			wantErr: entity.ErrInvalidDate,
		},
		{
			name:    "bad time",
			ctx:     f.asDoctor(),
			req:     dto.OpenSlotRequest{HospitalID: hospitalID, Date: "2030-01-15", Time: "25:00"},
			wantErr: entity.ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availability.OpenSlot(tt.ctx, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpenSlotRequiresActiveAssociation(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")
	require.NoError(t, f.association.Deactivate(f.asDoctor(), hospitalID))

	_, err := f.availability.OpenSlot(f.asDoctor(), &dto.OpenSlotRequest{HospitalID: hospitalID, Date: "2030-01-15", Time: "10:00"})
	assert.ErrorIs(t, err, entity.ErrNotAssociated)
}

func TestCancelOpenSlot(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")
	open := f.openSlot(t, hospitalID, "2030-01-15", "10:00")
	booked := f.openSlot(t, hospitalID, "2030-01-15", "11:00")
	f.book(t, booked.ID)

	_, err := f.availability.CancelOpenSlot(as(entity.RoleDoctor, uuid.New()), open.ID)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	cancelled, err := f.availability.CancelOpenSlot(f.asDoctor(), open.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SlotStatusCancelled), cancelled.Status)

	again, err := f.availability.CancelOpenSlot(f.asDoctor(), open.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SlotStatusCancelled), again.Status)

	_, err = f.availability.CancelOpenSlot(f.asDoctor(), booked.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	_, err = f.availability.CancelOpenSlot(f.asDoctor(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrSlotNotFound)
}

func TestListOpenSlots(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")
	late := f.openSlot(t, hospitalID, "2030-01-16", "09:00")
	early := f.openSlot(t, hospitalID, "2030-01-15", "11:00")
	earliest := f.openSlot(t, hospitalID, "2030-01-15", "08:00")
	f.book(t, f.openSlot(t, hospitalID, "2030-01-15", "09:00").ID)

	all, err := f.availability.ListOpenSlots(context.Background(), &dto.SlotQuery{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)
	assert.Equal(t, []uuid.UUID{earliest.ID, early.ID, late.ID}, []uuid.UUID{all.Slots[0].ID, all.Slots[1].ID, all.Slots[2].ID})
	assert.Equal(t, defaultPageSize, all.Limit)

	day, err := f.availability.ListOpenSlots(context.Background(), &dto.SlotQuery{From: "2030-01-16", To: "2030-01-16"})
	require.NoError(t, err)
	require.Equal(t, 1, day.Total)
	assert.Equal(t, late.ID, day.Slots[0].ID)

	page, err := f.availability.ListOpenSlots(context.Background(), &dto.SlotQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, early.ID, page.Slots[0].ID)

	_, err = f.availability.ListOpenSlots(context.Background(), &dto.SlotQuery{From: "tomorrow"})
	assert.ErrorIs(t, err, entity.ErrInvalidDate)

	_, err = f.availability.ListOpenSlots(context.Background(), &dto.SlotQuery{From: "2030-01-16", To: "2030-01-15"})
	assert.ErrorIs(t, err, entity.ErrInvalidDateRange)
}

func TestOpenSlotsWalksEveryPageAndRestarts(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")
	f.associate(t, hospitalID, "200")

	// More than one store page.
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	want := storePageSize + 5
	for i := 0; i < want; i++ {
		day := start.AddDate(0, 0, i/4).Format(entity.DateLayout)
		clock := []string{"08:00", "09:00", "10:00", "11:00"}[i%4]
		f.openSlot(t, hospitalID, day, clock)
	}

	collect := func() []entity.Slot {
		var out []entity.Slot
		for slot, err := range f.availability.OpenSlots(context.Background(), entity.SlotFilter{HospitalID: hospitalID}) {
			require.NoError(t, err)
			out = append(out, slot)
		}
		return out
	}

	first := collect()
	require.Len(t, first, want)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Less(&first[i]), "slots out of order at %d", i)
	}
	assert.Equal(t, first, collect())

	taken := 0
	for range f.availability.OpenSlots(context.Background(), entity.SlotFilter{}) {
		taken++
		if taken == 3 {
			break
		}
	}
	assert.Equal(t, 3, taken)
}
