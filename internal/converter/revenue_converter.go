package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

func LedgerEntryToResponse(entry *entity.RevenueLedgerEntry) *dto.LedgerEntryResponse {
	if entry == nil {
		return nil
	}

	return &dto.LedgerEntryResponse{
		ID:            entry.ID,
		BookingID:     entry.BookingID,
		FeeCharged:    entry.FeeCharged,
		DoctorShare:   entry.DoctorShare,
		HospitalShare: entry.HospitalShare,
		PlatformShare: entry.PlatformShare,
		DoctorRate:    entry.DoctorRate,
		HospitalRate:  entry.HospitalRate,
		CreatedAt:     entry.CreatedAt,
	}
}

func LedgerSummaryToTotals(summary *entity.LedgerSummary) dto.RevenueTotals {
	if summary == nil {
		return dto.RevenueTotals{}
	}

	return dto.RevenueTotals{
		Entries:       summary.Entries,
		TotalFees:     summary.TotalFees,
		DoctorTotal:   summary.DoctorTotal,
		HospitalTotal: summary.HospitalTotal,
		PlatformTotal: summary.PlatformTotal,
	}
}

func HospitalRevenuesToResponses(rows []entity.HospitalRevenue) []dto.HospitalRevenueResponse {
	responses := make([]dto.HospitalRevenueResponse, len(rows))
	for i := range rows {
		responses[i] = dto.HospitalRevenueResponse{
			HospitalID:    rows[i].HospitalID,
			RevenueTotals: LedgerSummaryToTotals(&rows[i].LedgerSummary),
		}
	}
	return responses
}
