package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/observability/metrics"
	"hospital-scheduling/internal/repository/memory"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/jwt"
	"hospital-scheduling/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	server   *httptest.Server
	jwt      *jwt.JWTService
	profiles *memory.ProfileRepository
}

func newTestServer(t *testing.T, rateLimit bool) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	ledger := memory.NewLedgerRepository()
	store := memory.NewSlotStore(ledger)
	associations := memory.NewAssociationRepository()
	hospitals := memory.NewHospitalRepository()
	departments := memory.NewDepartmentRepository()
	audits := memory.NewAuditLogRepository()
	profiles := memory.NewProfileRepository()

	registry := prometheus.NewRegistry()
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)
	allocator, err := service.NewRevenueAllocator(entity.RevenueRates{
		DoctorRate:   decimal.RequireFromString("0.60"),
		HospitalRate: decimal.RequireFromString("0.30"),
	}, nil)
	require.NoError(t, err)

	audit := service.NewAuditService(log, audits)
	events := service.NewNoopEventPublisher()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	v := validator.NewValidator()

	availability := usecase.NewAvailabilityUsecase(log, store, associations, audit, events, schedulingMetrics, time.UTC)
	booking := usecase.NewBookingUsecase(log, store, allocator, service.NewNoopSlotGate(), audit, events, schedulingMetrics, usecase.BookingPolicy{})
	association := usecase.NewAssociationUsecase(log, associations, hospitals, audit)

	var limiter *middleware.RateLimitMiddleware
	if rateLimit {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		limiter = middleware.NewRateLimitMiddleware(client, log, config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 1})
	}

	router := NewRouter(
		handler.NewAuthHandler(usecase.NewAuthUsecase(log, profiles, jwtService)),
		handler.NewHospitalHandler(usecase.NewHospitalUsecase(log, hospitals, departments, associations, audit), association, v),
		handler.NewAssociationHandler(association, v),
		handler.NewSlotHandler(availability, v),
		handler.NewBookingHandler(booking, v),
		handler.NewRevenueHandler(usecase.NewRevenueUsecase(log, ledger, hospitals, time.UTC)),
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, audits)),
		middleware.NewAuthMiddleware(jwtService),
		middleware.NewCORSMiddleware(),
		limiter,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return &testServer{server: server, jwt: jwtService, profiles: profiles}
}

func (s *testServer) token(t *testing.T, role entity.Role) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	token, _, err := s.jwt.GenerateAccessToken(userID, string(role))
	require.NoError(t, err)
	return userID, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, false)
	_, admin := s.token(t, entity.RoleAdmin)
	doctorID, doctor := s.token(t, entity.RoleDoctor)
	_, patient := s.token(t, entity.RolePatient)
	_, otherPatient := s.token(t, entity.RolePatient)

	status, env := s.do(t, http.MethodPost, "/api/v1/admin/hospitals", admin, dto.CreateHospitalRequest{Name: "RS Harapan", Location: "Jakarta"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	hospital := decode[dto.HospitalResponse](t, env)

	status, env = s.do(t, http.MethodPut, "/api/v1/doctor/associations/"+hospital.ID.String(), doctor,
		map[string]string{"specialization": "Cardiology", "fee": "200.00"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodGet, "/api/v1/hospitals/"+hospital.ID.String()+"/doctors/"+doctorID.String()+"/fee", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.RequireFromString("200").Equal(decode[dto.FeeResponse](t, env).Fee))

	status, env = s.do(t, http.MethodPost, "/api/v1/doctor/slots", doctor, dto.OpenSlotRequest{HospitalID: hospital.ID, Date: "2030-01-15", Time: "10:00"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	slot := decode[dto.SlotResponse](t, env)

	status, env = s.do(t, http.MethodGet, "/api/v1/slots?hospital_id="+hospital.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[dto.SlotListResponse](t, env).Total)

	status, env = s.do(t, http.MethodPost, "/api/v1/patient/bookings", patient, dto.CreateBookingRequest{SlotID: slot.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	booking := decode[dto.BookingResponse](t, env)

	status, env = s.do(t, http.MethodPost, "/api/v1/patient/bookings", otherPatient, dto.CreateBookingRequest{SlotID: slot.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "This time is no longer available, please choose another", env.Message)

	status, env = s.do(t, http.MethodGet, "/api/v1/bookings/"+booking.ID.String(), otherPatient, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/doctor/bookings/"+booking.ID.String()+"/complete", doctor, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	completion := decode[dto.CompletionResponse](t, env)
	require.NotNil(t, completion.Ledger)
	assert.True(t, decimal.RequireFromString("120").Equal(completion.Ledger.DoctorShare))

	status, env = s.do(t, http.MethodPost, "/api/v1/bookings/"+booking.ID.String()+"/cancel", patient, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(env.Error), `"from":"completed"`)

	status, env = s.do(t, http.MethodGet, "/api/v1/admin/hospitals/"+hospital.ID.String()+"/revenue", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.RequireFromString("60").Equal(decode[dto.RevenueSummaryResponse](t, env).HospitalTotal))

	status, env = s.do(t, http.MethodGet, "/api/v1/doctor/revenue", doctor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.RequireFromString("120").Equal(decode[dto.RevenueSummaryResponse](t, env).DoctorTotal))

	resp, err := s.server.Client().Get(s.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `scheduling_booking_attempts_total{outcome="booked"} 1`)
	assert.Contains(t, string(body), `scheduling_booking_attempts_total{outcome="unavailable"} 1`)
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t, false)
	_, doctor := s.token(t, entity.RoleDoctor)
	_, patient := s.token(t, entity.RolePatient)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/me", want: http.StatusUnauthorized},
		{name: "patient on admin route", method: http.MethodGet, path: "/api/v1/admin/audit-logs", token: patient, want: http.StatusForbidden},
		{name: "doctor booking", method: http.MethodPost, path: "/api/v1/patient/bookings", token: doctor, body: dto.CreateBookingRequest{SlotID: uuid.New()}, want: http.StatusForbidden},
		{name: "unknown slot", method: http.MethodPost, path: "/api/v1/patient/bookings", token: patient, body: dto.CreateBookingRequest{SlotID: uuid.New()}, want: http.StatusNotFound},
		{name: "missing slot id", method: http.MethodPost, path: "/api/v1/patient/bookings", token: patient, body: map[string]string{}, want: http.StatusBadRequest},
		{name: "bad slot time", method: http.MethodPost, path: "/api/v1/doctor/slots", token: doctor, body: map[string]string{"hospital_id": uuid.NewString(), "date": "2030-01-15", "time": "9am"}, want: http.StatusBadRequest},
		{name: "not associated", method: http.MethodPost, path: "/api/v1/doctor/slots", token: doctor, body: dto.OpenSlotRequest{HospitalID: uuid.New(), Date: "2030-01-15", Time: "09:00"}, want: http.StatusUnprocessableEntity},
		{name: "bad booking id", method: http.MethodPost, path: "/api/v1/bookings/not-a-uuid/cancel", token: patient, want: http.StatusBadRequest},
		{name: "unknown booking", method: http.MethodPost, path: "/api/v1/bookings/" + uuid.NewString() + "/cancel", token: patient, want: http.StatusNotFound},
		{name: "bad status filter", method: http.MethodGet, path: "/api/v1/doctor/bookings?status=lost", token: doctor, want: http.StatusBadRequest},
		{name: "bad date range", method: http.MethodGet, path: "/api/v1/slots?from=2030-02-01&to=2030-01-01", want: http.StatusBadRequest},
		{name: "bad paging", method: http.MethodGet, path: "/api/v1/slots?limit=-1", want: http.StatusBadRequest},
		{name: "slot lookup bad id", method: http.MethodGet, path: "/api/v1/slots/42", want: http.StatusBadRequest},
		{name: "slot lookup unknown", method: http.MethodGet, path: "/api/v1/slots/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "health", method: http.MethodGet, path: "/api/v1/health", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestCurrentUserProfile(t *testing.T) {
	s := newTestServer(t, false)
	patientID, patient := s.token(t, entity.RolePatient)
	s.profiles.Put(&entity.PatientProfile{
		UserID:      patientID,
		NIK:         "3171234567890001",
		DateOfBirth: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderFemale,
		User:        entity.User{ID: patientID, FullName: "Siti"},
	})

	status, env := s.do(t, http.MethodGet, "/api/v1/me", patient, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	profile := decode[dto.ProfileResponse](t, env)
	assert.Equal(t, "patient", profile.Role)
	require.NotNil(t, profile.Patient)
	assert.Equal(t, "1990-05-01", profile.Patient.DateOfBirth)

	_, stranger := s.token(t, entity.RoleDoctor)
	status, _ = s.do(t, http.MethodGet, "/api/v1/me", stranger, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBookingCommandsAreRateLimited(t *testing.T) {
	s := newTestServer(t, true)
	_, patient := s.token(t, entity.RolePatient)

	status, _ := s.do(t, http.MethodPost, "/api/v1/patient/bookings", patient, dto.CreateBookingRequest{SlotID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/patient/bookings", patient, dto.CreateBookingRequest{SlotID: uuid.New()})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.True(t, strings.HasPrefix(env.Message, "Too many requests"))

	// Reads are not throttled.
	status, _ = s.do(t, http.MethodGet, "/api/v1/patient/bookings", patient, nil)
	assert.Equal(t, http.StatusOK, status)
}
