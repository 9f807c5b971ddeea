package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO.
// slot may be nil.
func BookingToResponse(booking *entity.Booking, slot *entity.Slot) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:          booking.ID,
		SlotID:      booking.SlotID,
		PatientID:   booking.PatientID,
		DoctorID:    booking.DoctorID,
		HospitalID:  booking.HospitalID,
		BookingCode: booking.BookingCode,
		FeeCharged:  booking.FeeCharged,
		Status:      string(booking.Status),
		CancelledBy: booking.CancelledBy,
		Slot:        SlotToResponse(slot),
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i], nil)
	}
	return responses
}
