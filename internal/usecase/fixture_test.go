package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/repository/memory"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store        *memory.SlotStore
	ledger       *memory.LedgerRepository
	associations *memory.AssociationRepository
	hospitals    *memory.HospitalRepository
	departments  *memory.DepartmentRepository
	audits       *memory.AuditLogRepository
	profiles     *memory.ProfileRepository

	availability AvailabilityUsecase
	booking      BookingUsecase
	association  AssociationUsecase
	hospital     HospitalUsecase
	revenue      RevenueUsecase
	auditLog     AuditLogUsecase

	admin   uuid.UUID
	doctor  uuid.UUID
	patient uuid.UUID
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T, policy BookingPolicy, gate service.SlotGate) *fixture {
	t.Helper()
	log := newTestLogger()

	f := &fixture{
		ledger:       memory.NewLedgerRepository(),
		associations: memory.NewAssociationRepository(),
		hospitals:    memory.NewHospitalRepository(),
		departments:  memory.NewDepartmentRepository(),
		audits:       memory.NewAuditLogRepository(),
		profiles:     memory.NewProfileRepository(),
		admin:        uuid.New(),
		doctor:       uuid.New(),
		patient:      uuid.New(),
	}
	f.store = memory.NewSlotStore(f.ledger)

	allocator, err := service.NewRevenueAllocator(entity.RevenueRates{
		DoctorRate:   decimal.RequireFromString("0.60"),
		HospitalRate: decimal.RequireFromString("0.30"),
	}, nil)
	require.NoError(t, err)

	if gate == nil {
		gate = service.NewNoopSlotGate()
	}
	audit := service.NewAuditService(log, f.audits)
	events := service.NewNoopEventPublisher()

	f.availability = NewAvailabilityUsecase(log, f.store, f.associations, audit, events, nil, time.UTC)
	f.booking = NewBookingUsecase(log, f.store, allocator, gate, audit, events, nil, policy)
	f.association = NewAssociationUsecase(log, f.associations, f.hospitals, audit)
	f.hospital = NewHospitalUsecase(log, f.hospitals, f.departments, f.associations, audit)
	f.revenue = NewRevenueUsecase(log, f.ledger, f.hospitals, time.UTC)
	f.auditLog = NewAuditLogUsecase(log, f.audits)
	return f
}

func as(role entity.Role, userID uuid.UUID) context.Context {
	return entity.WithPrincipal(context.Background(), entity.Principal{UserID: userID, Role: role})
}

func (f *fixture) asAdmin() context.Context   { return as(entity.RoleAdmin, f.admin) }
func (f *fixture) asDoctor() context.Context  { return as(entity.RoleDoctor, f.doctor) }
func (f *fixture) asPatient() context.Context { return as(entity.RolePatient, f.patient) }

// newHospital creates a hospital owned by the fixture admin.
func (f *fixture) newHospital(t *testing.T, name string) uuid.UUID {
	t.Helper()
	h, err := f.hospital.CreateHospital(f.asAdmin(), &dto.CreateHospitalRequest{Name: name, Location: "Jakarta"})
	require.NoError(t, err)
	return h.ID
}

// associate links the fixture doctor to hospitalID at fee.
func (f *fixture) associate(t *testing.T, hospitalID uuid.UUID, fee string) {
	t.Helper()
	_, err := f.association.Upsert(f.asDoctor(), hospitalID, &dto.UpsertAssociationRequest{
		Specialization: "Cardiology",
		Fee:            decimal.RequireFromString(fee),
	})
	require.NoError(t, err)
}

func (f *fixture) openSlot(t *testing.T, hospitalID uuid.UUID, date, clock string) *dto.SlotResponse {
	t.Helper()
	slot, err := f.availability.OpenSlot(f.asDoctor(), &dto.OpenSlotRequest{HospitalID: hospitalID, Date: date, Time: clock})
	require.NoError(t, err)
	return slot
}

func (f *fixture) book(t *testing.T, slotID uuid.UUID) *dto.BookingResponse {
	t.Helper()
	booking, err := f.booking.Book(f.asPatient(), &dto.CreateBookingRequest{SlotID: slotID})
	require.NoError(t, err)
	return booking
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
