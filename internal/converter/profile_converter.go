package converter

import (
	"time"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

// ProfileToResponse renders the role-specific variant of a profile.
func ProfileToResponse(profile entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	account := profile.Account()
	response := &dto.ProfileResponse{
		UserID:   profile.OwnerID(),
		Role:     string(profile.ProfileRole()),
		Email:    account.Email,
		FullName: account.FullName,
	}

	switch p := profile.(type) {
	case *entity.AdminProfile:
		response.Admin = &dto.AdminProfileResponse{Organization: p.Organization}
	case *entity.DoctorProfile:
		response.Doctor = &dto.DoctorProfileResponse{
			STRNumber:         p.STRNumber,
			Qualifications:    p.Qualifications,
			YearsOfExperience: p.YearsOfExperience,
			Biography:         p.Biography,
		}
	case *entity.PatientProfile:
		response.Patient = &dto.PatientProfileResponse{
			NIK:         p.NIK,
			PhoneNumber: p.PhoneNumber,
			DateOfBirth: p.DateOfBirth.Format(entity.DateLayout),
			Gender:      string(p.Gender),
			Age:         p.Age(time.Now()),
			Address:     p.Address,
		}
	}

	return response
}
