package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

// SlotToResponse converts a Slot entity to SlotResponse DTO
func SlotToResponse(slot *entity.Slot) *dto.SlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.SlotResponse{
		ID:             slot.ID,
		DoctorID:       slot.DoctorID,
		HospitalID:     slot.HospitalID,
		Date:           slot.SlotDate.Format(entity.DateLayout),
		Time:           slot.StartTime,
		StartsAt:       slot.StartsAt,
		Specialization: slot.Specialization,
		Fee:            slot.Fee,
		Status:         string(slot.Status),
		CreatedAt:      slot.CreatedAt,
		UpdatedAt:      slot.UpdatedAt,
	}
}

// SlotsToResponses converts a slice of Slot entities to slice of SlotResponse DTOs
func SlotsToResponses(slots []entity.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i := range slots {
		responses[i] = *SlotToResponse(&slots[i])
	}
	return responses
}
