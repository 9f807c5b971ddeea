package handler

import (
	"net/http"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"
)

// AssociationHandler serves a doctor's own hospital associations.
type AssociationHandler struct {
	associationUsecase usecase.AssociationUsecase
	validator          *validator.CustomValidator
}

func NewAssociationHandler(associationUsecase usecase.AssociationUsecase, validator *validator.CustomValidator) *AssociationHandler {
	return &AssociationHandler{
		associationUsecase: associationUsecase,
		validator:          validator,
	}
}

func (h *AssociationHandler) GetMyAssociations(w http.ResponseWriter, r *http.Request) {
	associations, err := h.associationUsecase.ListMine(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get associations")
		return
	}

	response.Success(w, http.StatusOK, "Associations retrieved successfully", associations)
}

// UpsertAssociation joins a hospital or changes the fee there. Slots already
// opened keep the fee they were opened with.
func (h *AssociationHandler) UpsertAssociation(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "hospitalId", "hospital")
	if !ok {
		return
	}

	var req dto.UpsertAssociationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	association, err := h.associationUsecase.Upsert(r.Context(), hospitalID, &req)
	if err != nil {
		respondError(w, err, "Failed to save association")
		return
	}

	response.Success(w, http.StatusOK, "Association saved successfully", association)
}

func (h *AssociationHandler) DeactivateAssociation(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "hospitalId", "hospital")
	if !ok {
		return
	}

	if err := h.associationUsecase.Deactivate(r.Context(), hospitalID); err != nil {
		respondError(w, err, "Failed to deactivate association")
		return
	}

	response.Success(w, http.StatusOK, "Association deactivated successfully", nil)
}
