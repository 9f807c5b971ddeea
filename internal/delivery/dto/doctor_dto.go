package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DoctorProfileResponse struct {
	STRNumber         string `json:"str_number"`
	Qualifications    string `json:"qualifications,omitempty"`
	YearsOfExperience int    `json:"years_of_experience"`
	Biography         string `json:"biography,omitempty"`
}

// HospitalDoctorResponse lists a doctor practising at a hospital.
type HospitalDoctorResponse struct {
	DoctorID       uuid.UUID       `json:"doctor_id"`
	Specialization string          `json:"specialization"`
	Fee            decimal.Decimal `json:"fee"`
}

type HospitalDoctorListResponse struct {
	Doctors []HospitalDoctorResponse `json:"doctors"`
	Total   int                      `json:"total"`
}
