package dto

// PatientProfileResponse is the patient part of GET /me.
type PatientProfileResponse struct {
	NIK         string `json:"nik"`
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Address     string `json:"address,omitempty"`
}
