package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateHospitalRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Location string `json:"location" validate:"required,min=2,max=255"`
}

type UpdateHospitalRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
	Location string `json:"location" validate:"omitempty,min=2,max=255"`
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// Response DTOs

type HospitalResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	AdminID   uuid.UUID `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HospitalListResponse struct {
	Hospitals []HospitalResponse `json:"hospitals"`
	Total     int                `json:"total"`
}

type DepartmentResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HospitalID uuid.UUID `json:"hospital_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}
