package handler

import (
	"net/http"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"
)

type SlotHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewSlotHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// OpenSlot publishes a bookable time for the calling doctor
// @Summary Open a slot
// @Tags Doctor
// @Accept json
// @Produce json
// @Param request body dto.OpenSlotRequest true "Slot"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /doctor/slots [post]
func (h *SlotHandler) OpenSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSlotRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	slot, err := h.availabilityUsecase.OpenSlot(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Failed to open slot")
		return
	}

	response.Success(w, http.StatusCreated, "Slot opened successfully", slot)
}

func (h *SlotHandler) CancelSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathUUID(w, r, "id", "slot")
	if !ok {
		return
	}

	slot, err := h.availabilityUsecase.CancelOpenSlot(r.Context(), slotID)
	if err != nil {
		respondError(w, err, "Failed to cancel slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot cancelled successfully", slot)
}

func (h *SlotHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathUUID(w, r, "id", "slot")
	if !ok {
		return
	}

	slot, err := h.availabilityUsecase.GetSlot(r.Context(), slotID)
	if err != nil {
		respondError(w, err, "Failed to get slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot retrieved successfully", slot)
}

// ListOpenSlots answers the public availability search.
func (h *SlotHandler) ListOpenSlots(w http.ResponseWriter, r *http.Request) {
	query, err := slotQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	slots, err := h.availabilityUsecase.ListOpenSlots(r.Context(), query)
	if err != nil {
		respondError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func slotQuery(r *http.Request) (*dto.SlotQuery, error) {
	q := r.URL.Query()
	hospitalID, err := queryUUID(r, "hospital_id")
	if err != nil {
		return nil, errInvalidQuery("hospital_id")
	}
	doctorID, err := queryUUID(r, "doctor_id")
	if err != nil {
		return nil, errInvalidQuery("doctor_id")
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return nil, err
	}

	return &dto.SlotQuery{
		HospitalID:     hospitalID,
		DoctorID:       doctorID,
		Specialization: q.Get("specialization"),
		From:           q.Get("from"),
		To:             q.Get("to"),
		Limit:          limit,
		Offset:         offset,
	}, nil
}
