package usecase

import (
	"context"
	"testing"
	"time"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueSummaries(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalA := f.newHospital(t, "RS A")
	hospitalB := f.newHospital(t, "RS B")
	f.associate(t, hospitalA, "200")
	f.associate(t, hospitalB, "100")

	for _, slot := range []*dto.SlotResponse{
		f.openSlot(t, hospitalA, "2030-01-15", "10:00"),
		f.openSlot(t, hospitalA, "2030-01-15", "11:00"),
		f.openSlot(t, hospitalB, "2030-01-16", "10:00"),
	} {
		booking := f.book(t, slot.ID)
		_, err := f.booking.Complete(f.asDoctor(), booking.ID)
		require.NoError(t, err)
	}
	// Booked but never completed, so nothing is allocated.
	f.book(t, f.openSlot(t, hospitalA, "2030-01-17", "10:00").ID)

	hospital, err := f.revenue.HospitalSummary(f.asAdmin(), hospitalA, &dto.RevenueQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), hospital.Entries)
	assert.True(t, dec("400").Equal(hospital.TotalFees))
	assert.True(t, dec("120").Equal(hospital.HospitalTotal))
	assert.True(t, dec("240").Equal(hospital.DoctorTotal))
	assert.True(t, dec("40").Equal(hospital.PlatformTotal))

	doctor, err := f.revenue.DoctorSummary(f.asDoctor(), &dto.RevenueQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), doctor.Entries)
	assert.True(t, dec("300").Equal(doctor.DoctorTotal))
	require.Len(t, doctor.Hospitals, 2)
	perHospital := map[uuid.UUID]dto.HospitalRevenueResponse{}
	for _, h := range doctor.Hospitals {
		perHospital[h.HospitalID] = h
	}
	assert.True(t, dec("240").Equal(perHospital[hospitalA].DoctorTotal))
	assert.True(t, dec("60").Equal(perHospital[hospitalB].DoctorTotal))

	// Ledger entries are dated when the consultation completes.
	now := time.Now().UTC()
	window := &dto.RevenueQuery{
		From: now.AddDate(0, 0, -1).Format(entity.DateLayout),
		To:   now.AddDate(0, 0, 1).Format(entity.DateLayout),
	}
	inWindow, err := f.revenue.DoctorSummary(f.asDoctor(), window)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inWindow.Entries)
	assert.Equal(t, window.From, inWindow.From)

	past, err := f.revenue.DoctorSummary(f.asDoctor(), &dto.RevenueQuery{From: "2020-01-01", To: "2020-12-31"})
	require.NoError(t, err)
	assert.Zero(t, past.Entries)
	assert.True(t, past.DoctorTotal.IsZero())
}

func TestRevenueWindowUsesServiceTimezone(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	jakarta := time.FixedZone("WIB", 7*60*60)
	f.revenue = NewRevenueUsecase(newTestLogger(), f.ledger, f.hospitals, jakarta)
	hospitalID := f.newHospital(t, "RS Harapan")

	// 01:00 on the 15th in Jakarta is still the 14th in UTC.
	require.NoError(t, f.ledger.Append(context.Background(), &entity.RevenueLedgerEntry{
		BookingID:     uuid.New(),
		HospitalID:    hospitalID,
		DoctorID:      f.doctor,
		FeeCharged:    dec("100"),
		DoctorShare:   dec("60"),
		HospitalShare: dec("30"),
		PlatformShare: dec("10"),
		CreatedAt:     time.Date(2024, 1, 15, 1, 0, 0, 0, jakarta),
	}))

	day, err := f.revenue.DoctorSummary(f.asDoctor(), &dto.RevenueQuery{From: "2024-01-15", To: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), day.Entries)

	dayBefore, err := f.revenue.DoctorSummary(f.asDoctor(), &dto.RevenueQuery{From: "2024-01-14", To: "2024-01-14"})
	require.NoError(t, err)
	assert.Zero(t, dayBefore.Entries)
}

func TestRevenueSummaryAccess(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	hospitalID := f.newHospital(t, "RS Harapan")

	_, err := f.revenue.HospitalSummary(as(entity.RoleAdmin, uuid.New()), hospitalID, &dto.RevenueQuery{})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = f.revenue.HospitalSummary(f.asDoctor(), hospitalID, &dto.RevenueQuery{})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = f.revenue.HospitalSummary(f.asAdmin(), uuid.New(), &dto.RevenueQuery{})
	assert.ErrorIs(t, err, entity.ErrHospitalNotFound)

	_, err = f.revenue.DoctorSummary(f.asPatient(), &dto.RevenueQuery{})
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = f.revenue.DoctorSummary(f.asDoctor(), &dto.RevenueQuery{From: "2030-02-01", To: "2030-01-01"})
	assert.ErrorIs(t, err, entity.ErrInvalidDateRange)

	_, err = f.revenue.HospitalSummary(f.asAdmin(), hospitalID, &dto.RevenueQuery{To: "01/02/2030"})
	assert.ErrorIs(t, err, entity.ErrInvalidDate)
}

func TestAuthUsecase(t *testing.T) {
	f := newFixture(t, BookingPolicy{}, nil)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	auth := NewAuthUsecase(newTestLogger(), f.profiles, jwtService)

	inactive := false
	retired := uuid.New()
	f.profiles.Put(&entity.DoctorProfile{UserID: f.doctor, STRNumber: "STR-1", User: entity.User{ID: f.doctor, FullName: "dr. Sari"}})
	f.profiles.Put(&entity.DoctorProfile{UserID: retired, STRNumber: "STR-2", User: entity.User{ID: retired, IsActive: &inactive}})

	me, err := auth.GetCurrentUser(f.asDoctor())
	require.NoError(t, err)
	assert.Equal(t, string(entity.RoleDoctor), me.Role)
	require.NotNil(t, me.Doctor)
	assert.Nil(t, me.Patient)

	// A token claiming another role than the stored profile.
	_, err = auth.GetCurrentUser(as(entity.RolePatient, f.doctor))
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = auth.GetCurrentUser(f.asPatient())
	assert.ErrorIs(t, err, entity.ErrProfileNotFound)

	_, err = auth.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	token, err := auth.IssueToken(context.Background(), f.doctor)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims, err := jwtService.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.doctor, claims.UserID)
	assert.Equal(t, string(entity.RoleDoctor), claims.Role)

	_, err = auth.IssueToken(context.Background(), retired)
	assert.ErrorIs(t, err, ErrUserInactive)

	_, err = auth.IssueToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrProfileNotFound)
}
