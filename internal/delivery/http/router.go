package http

import (
	"net/http"

	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	hospitalHandler    *handler.HospitalHandler
	associationHandler *handler.AssociationHandler
	slotHandler        *handler.SlotHandler
	bookingHandler     *handler.BookingHandler
	revenueHandler     *handler.RevenueHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	rateLimiter        *middleware.RateLimitMiddleware
	metricsHandler     http.Handler
}

// NewRouter wires the handlers. rateLimiter and metricsHandler may be nil to
// disable booking throttling and the /metrics endpoint.
func NewRouter(
	authHandler *handler.AuthHandler,
	hospitalHandler *handler.HospitalHandler,
	associationHandler *handler.AssociationHandler,
	slotHandler *handler.SlotHandler,
	bookingHandler *handler.BookingHandler,
	revenueHandler *handler.RevenueHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimitMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		hospitalHandler:    hospitalHandler,
		associationHandler: associationHandler,
		slotHandler:        slotHandler,
		bookingHandler:     bookingHandler,
		revenueHandler:     revenueHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		rateLimiter:        rateLimiter,
		metricsHandler:     metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public catalogue
	api.HandleFunc("/hospitals", r.hospitalHandler.GetAllHospitals).Methods(http.MethodGet)
	api.HandleFunc("/hospitals/{id}/departments", r.hospitalHandler.GetDepartments).Methods(http.MethodGet)
	api.HandleFunc("/hospitals/{id}/doctors", r.hospitalHandler.GetDoctors).Methods(http.MethodGet)
	api.HandleFunc("/hospitals/{id}/doctors/{doctorId}/fee", r.hospitalHandler.GetDoctorFee).Methods(http.MethodGet)
	api.HandleFunc("/slots", r.slotHandler.ListOpenSlots).Methods(http.MethodGet)
	api.HandleFunc("/slots/{id}", r.slotHandler.GetSlot).Methods(http.MethodGet)

	// Any authenticated user
	api.Handle("/me", r.authMiddleware.Authenticate(http.HandlerFunc(r.authHandler.GetCurrentUser))).Methods(http.MethodGet)

	// Shared by both sides of a booking
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Use(middleware.RequireDoctorOrPatient)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.Handle("/{id}/cancel", r.throttle(r.bookingHandler.CancelBooking)).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/hospitals", r.hospitalHandler.CreateHospital).Methods(http.MethodPost)
	admin.HandleFunc("/hospitals", r.hospitalHandler.GetMyHospitals).Methods(http.MethodGet)
	admin.HandleFunc("/hospitals/{id}", r.hospitalHandler.UpdateHospital).Methods(http.MethodPut)
	admin.HandleFunc("/hospitals/{id}", r.hospitalHandler.DeleteHospital).Methods(http.MethodDelete)
	admin.HandleFunc("/hospitals/{id}/departments", r.hospitalHandler.CreateDepartment).Methods(http.MethodPost)
	admin.HandleFunc("/hospitals/{id}/departments", r.hospitalHandler.GetDepartments).Methods(http.MethodGet)
	admin.HandleFunc("/departments/{id}", r.hospitalHandler.DeleteDepartment).Methods(http.MethodDelete)
	admin.HandleFunc("/hospitals/{id}/revenue", r.revenueHandler.GetHospitalRevenue).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/associations", r.associationHandler.GetMyAssociations).Methods(http.MethodGet)
	doctor.HandleFunc("/associations/{hospitalId}", r.associationHandler.UpsertAssociation).Methods(http.MethodPut)
	doctor.HandleFunc("/associations/{hospitalId}", r.associationHandler.DeactivateAssociation).Methods(http.MethodDelete)
	doctor.HandleFunc("/slots", r.slotHandler.OpenSlot).Methods(http.MethodPost)
	doctor.HandleFunc("/slots/{id}", r.slotHandler.CancelSlot).Methods(http.MethodDelete)
	doctor.HandleFunc("/bookings", r.bookingHandler.GetDoctorBookings).Methods(http.MethodGet)
	doctor.Handle("/bookings/{id}/complete", r.throttle(r.bookingHandler.CompleteBooking)).Methods(http.MethodPost)
	doctor.HandleFunc("/revenue", r.revenueHandler.GetDoctorRevenue).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.Handle("/bookings", r.throttle(r.bookingHandler.CreateBooking)).Methods(http.MethodPost)
	patient.HandleFunc("/bookings", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

// throttle applies the booking rate limit when one is configured.
func (r *Router) throttle(h http.HandlerFunc) http.Handler {
	if r.rateLimiter == nil {
		return h
	}
	return r.rateLimiter.Handle(h)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
