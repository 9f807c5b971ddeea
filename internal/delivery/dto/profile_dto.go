package dto

import "github.com/google/uuid"

type AdminProfileResponse struct {
	Organization string `json:"organization,omitempty"`
}

// ProfileResponse carries exactly one of the role-specific sections,
// matching Role.
type ProfileResponse struct {
	UserID   uuid.UUID               `json:"user_id"`
	Role     string                  `json:"role"`
	Email    string                  `json:"email,omitempty"`
	FullName string                  `json:"full_name,omitempty"`
	Admin    *AdminProfileResponse   `json:"admin,omitempty"`
	Doctor   *DoctorProfileResponse  `json:"doctor,omitempty"`
	Patient  *PatientProfileResponse `json:"patient,omitempty"`
}
