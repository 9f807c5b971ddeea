package handler

import (
	"net/http"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.ListMyBookings(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetDoctorBookings(w http.ResponseWriter, r *http.Request) {
	status := entity.BookingStatus(r.URL.Query().Get("status"))
	switch status {
	case "", entity.BookingStatusBooked, entity.BookingStatusCompleted, entity.BookingStatusCancelled:
	default:
		response.BadRequest(w, "status must be one of: booked completed cancelled")
		return
	}

	bookings, err := h.bookingUsecase.ListDoctorBookings(r.Context(), status)
	if err != nil {
		respondError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), bookingID)
	if err != nil {
		respondError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

// CreateBooking books an open slot for the calling patient
// @Summary Book a slot
// @Tags Patient
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /patient/bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	booking, err := h.bookingUsecase.Book(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

// CancelBooking accepts a booking id or a slot id.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	cancellation, err := h.bookingUsecase.Cancel(r.Context(), id)
	if err != nil {
		respondError(w, err, "Failed to cancel booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", cancellation)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	completion, err := h.bookingUsecase.Complete(r.Context(), bookingID)
	if err != nil {
		respondError(w, err, "Failed to complete booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking completed successfully", completion)
}
