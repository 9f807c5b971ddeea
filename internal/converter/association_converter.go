package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

// AssociationToResponse converts an Association entity to AssociationResponse DTO
func AssociationToResponse(association *entity.Association) *dto.AssociationResponse {
	if association == nil {
		return nil
	}

	return &dto.AssociationResponse{
		DoctorID:       association.DoctorID,
		HospitalID:     association.HospitalID,
		Specialization: association.Specialization,
		Fee:            association.Fee,
		Active:         association.Active,
		CreatedAt:      association.CreatedAt,
		UpdatedAt:      association.UpdatedAt,
	}
}

func AssociationsToResponses(associations []entity.Association) []dto.AssociationResponse {
	responses := make([]dto.AssociationResponse, len(associations))
	for i := range associations {
		responses[i] = *AssociationToResponse(&associations[i])
	}
	return responses
}

// AssociationsToHospitalDoctors lists the doctors behind hospital associations.
func AssociationsToHospitalDoctors(associations []entity.Association) []dto.HospitalDoctorResponse {
	responses := make([]dto.HospitalDoctorResponse, len(associations))
	for i, a := range associations {
		responses[i] = dto.HospitalDoctorResponse{
			DoctorID:       a.DoctorID,
			Specialization: a.Specialization,
			Fee:            a.Fee,
		}
	}
	return responses
}
