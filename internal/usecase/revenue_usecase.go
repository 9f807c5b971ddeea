package usecase

import (
	"context"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RevenueUsecase interface {
	// HospitalSummary totals the ledger of one hospital for its admin.
	HospitalSummary(ctx context.Context, hospitalID uuid.UUID, query *dto.RevenueQuery) (*dto.RevenueSummaryResponse, error)
	// DoctorSummary totals the current doctor's earnings, broken down per
	// hospital.
	DoctorSummary(ctx context.Context, query *dto.RevenueQuery) (*dto.RevenueSummaryResponse, error)
}

type revenueUsecase struct {
	log          *logrus.Logger
	ledgerRepo   repository.LedgerRepository
	hospitalRepo repository.HospitalRepository
	location     *time.Location
}

func NewRevenueUsecase(
	log *logrus.Logger,
	ledgerRepo repository.LedgerRepository,
	hospitalRepo repository.HospitalRepository,
	location *time.Location,
) RevenueUsecase {
	if location == nil {
		location = time.UTC
	}
	return &revenueUsecase{
		log:          log,
		ledgerRepo:   ledgerRepo,
		hospitalRepo: hospitalRepo,
		location:     location,
	}
}

func (u *revenueUsecase) HospitalSummary(ctx context.Context, hospitalID uuid.UUID, query *dto.RevenueQuery) (*dto.RevenueSummaryResponse, error) {
	principal, err := requireRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, entity.ErrHospitalNotFound
	}
	if !hospital.OwnedBy(principal.UserID) {
		return nil, entity.ErrUnauthorized
	}

	filter, err := u.ledgerFilter(query)
	if err != nil {
		return nil, err
	}
	filter.HospitalID = hospitalID

	summary, err := u.ledgerRepo.Summarize(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to summarize ledger for hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	return &dto.RevenueSummaryResponse{
		From:          query.From,
		To:            query.To,
		RevenueTotals: converter.LedgerSummaryToTotals(summary),
	}, nil
}

func (u *revenueUsecase) DoctorSummary(ctx context.Context, query *dto.RevenueQuery) (*dto.RevenueSummaryResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	filter, err := u.ledgerFilter(query)
	if err != nil {
		return nil, err
	}
	filter.DoctorID = principal.UserID

	summary, err := u.ledgerRepo.Summarize(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to summarize ledger for doctor %s: %+v", principal.UserID, err)
		return nil, err
	}
	perHospital, err := u.ledgerRepo.SummarizeByHospital(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to summarize ledger per hospital for doctor %s: %+v", principal.UserID, err)
		return nil, err
	}

	return &dto.RevenueSummaryResponse{
		From:          query.From,
		To:            query.To,
		RevenueTotals: converter.LedgerSummaryToTotals(summary),
		Hospitals:     converter.HospitalRevenuesToResponses(perHospital),
	}, nil
}

// ledgerFilter turns inclusive calendar dates into the ledger's half-open
// time range. Days are counted in the service timezone, the same one slots
// are opened in.
func (u *revenueUsecase) ledgerFilter(query *dto.RevenueQuery) (entity.LedgerFilter, error) {
	from, to, err := parseDateRange(query.From, query.To)
	if err != nil {
		return entity.LedgerFilter{}, err
	}
	var filter entity.LedgerFilter
	if !from.IsZero() {
		filter.From = startOfDay(from, u.location)
	}
	if !to.IsZero() {
		filter.To = startOfDay(to, u.location).AddDate(0, 0, 1)
	}
	return filter, nil
}
