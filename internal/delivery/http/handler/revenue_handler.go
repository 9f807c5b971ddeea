package handler

import (
	"net/http"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
)

type RevenueHandler struct {
	revenueUsecase usecase.RevenueUsecase
}

func NewRevenueHandler(revenueUsecase usecase.RevenueUsecase) *RevenueHandler {
	return &RevenueHandler{
		revenueUsecase: revenueUsecase,
	}
}

func (h *RevenueHandler) GetHospitalRevenue(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	summary, err := h.revenueUsecase.HospitalSummary(r.Context(), hospitalID, revenueQuery(r))
	if err != nil {
		respondError(w, err, "Failed to get revenue")
		return
	}

	response.Success(w, http.StatusOK, "Revenue retrieved successfully", summary)
}

func (h *RevenueHandler) GetDoctorRevenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.revenueUsecase.DoctorSummary(r.Context(), revenueQuery(r))
	if err != nil {
		respondError(w, err, "Failed to get revenue")
		return
	}

	response.Success(w, http.StatusOK, "Revenue retrieved successfully", summary)
}

func revenueQuery(r *http.Request) *dto.RevenueQuery {
	q := r.URL.Query()
	return &dto.RevenueQuery{From: q.Get("from"), To: q.Get("to")}
}
