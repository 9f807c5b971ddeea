package handler

import (
	"net/http"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"
)

type HospitalHandler struct {
	hospitalUsecase    usecase.HospitalUsecase
	associationUsecase usecase.AssociationUsecase
	validator          *validator.CustomValidator
}

func NewHospitalHandler(
	hospitalUsecase usecase.HospitalUsecase,
	associationUsecase usecase.AssociationUsecase,
	validator *validator.CustomValidator,
) *HospitalHandler {
	return &HospitalHandler{
		hospitalUsecase:    hospitalUsecase,
		associationUsecase: associationUsecase,
		validator:          validator,
	}
}

func (h *HospitalHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHospitalRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	hospital, err := h.hospitalUsecase.CreateHospital(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Failed to create hospital")
		return
	}

	response.Success(w, http.StatusCreated, "Hospital created successfully", hospital)
}

func (h *HospitalHandler) GetAllHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.hospitalUsecase.GetAllHospitals(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get hospitals")
		return
	}

	response.Success(w, http.StatusOK, "Hospitals retrieved successfully", hospitals)
}

func (h *HospitalHandler) GetMyHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.hospitalUsecase.GetMyHospitals(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get hospitals")
		return
	}

	response.Success(w, http.StatusOK, "Hospitals retrieved successfully", hospitals)
}

func (h *HospitalHandler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	var req dto.UpdateHospitalRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	hospital, err := h.hospitalUsecase.UpdateHospital(r.Context(), hospitalID, &req)
	if err != nil {
		respondError(w, err, "Failed to update hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital updated successfully", hospital)
}

func (h *HospitalHandler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	if err := h.hospitalUsecase.DeleteHospital(r.Context(), hospitalID); err != nil {
		respondError(w, err, "Failed to delete hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital deleted successfully", nil)
}

func (h *HospitalHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	department, err := h.hospitalUsecase.CreateDepartment(r.Context(), hospitalID, &req)
	if err != nil {
		respondError(w, err, "Failed to create department")
		return
	}

	response.Success(w, http.StatusCreated, "Department created successfully", department)
}

func (h *HospitalHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	departments, err := h.hospitalUsecase.GetDepartments(r.Context(), hospitalID)
	if err != nil {
		respondError(w, err, "Failed to get departments")
		return
	}

	response.Success(w, http.StatusOK, "Departments retrieved successfully", departments)
}

func (h *HospitalHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathUUID(w, r, "id", "department")
	if !ok {
		return
	}

	if err := h.hospitalUsecase.DeleteDepartment(r.Context(), departmentID); err != nil {
		respondError(w, err, "Failed to delete department")
		return
	}

	response.Success(w, http.StatusOK, "Department deleted successfully", nil)
}

// GetDoctors lists the doctors currently practising at a hospital.
func (h *HospitalHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}

	doctors, err := h.associationUsecase.ListByHospital(r.Context(), hospitalID)
	if err != nil {
		respondError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *HospitalHandler) GetDoctorFee(w http.ResponseWriter, r *http.Request) {
	hospitalID, ok := pathUUID(w, r, "id", "hospital")
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "doctorId", "doctor")
	if !ok {
		return
	}

	fee, err := h.associationUsecase.GetFee(r.Context(), doctorID, hospitalID)
	if err != nil {
		respondError(w, err, "Failed to get consultation fee")
		return
	}

	response.Success(w, http.StatusOK, "Consultation fee retrieved successfully", fee)
}
