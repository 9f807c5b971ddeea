package usecase

import (
	"context"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AssociationUsecase interface {
	Upsert(ctx context.Context, hospitalID uuid.UUID, req *dto.UpsertAssociationRequest) (*dto.AssociationResponse, error)
	Deactivate(ctx context.Context, hospitalID uuid.UUID) error
	GetFee(ctx context.Context, doctorID, hospitalID uuid.UUID) (*dto.FeeResponse, error)
	ListMine(ctx context.Context) (*dto.AssociationListResponse, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID) (*dto.HospitalDoctorListResponse, error)
}

type associationUsecase struct {
	log             *logrus.Logger
	associationRepo repository.AssociationRepository
	hospitalRepo    repository.HospitalRepository
	auditService    service.AuditService
}

func NewAssociationUsecase(
	log *logrus.Logger,
	associationRepo repository.AssociationRepository,
	hospitalRepo repository.HospitalRepository,
	auditService service.AuditService,
) AssociationUsecase {
	return &associationUsecase{
		log:             log,
		associationRepo: associationRepo,
		hospitalRepo:    hospitalRepo,
		auditService:    auditService,
	}
}

// Upsert creates or replaces the current doctor's engagement with a
// hospital. Slots already opened keep the fee they captured.
func (u *associationUsecase) Upsert(ctx context.Context, hospitalID uuid.UUID, req *dto.UpsertAssociationRequest) (*dto.AssociationResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateFee(req.Fee); err != nil {
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

	previous, err := u.associationRepo.Find(ctx, principal.UserID, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find association: %+v", err)
		return nil, err
	}

	association := &entity.Association{
		DoctorID:       principal.UserID,
		HospitalID:     hospitalID,
		Specialization: req.Specialization,
		Fee:            req.Fee,
		Active:         true,
	}
	if err := u.associationRepo.Upsert(ctx, association); err != nil {
		u.log.Warnf("Failed to upsert association: %+v", err)
		return nil, err
	}

	response := converter.AssociationToResponse(association)
	_ = u.auditService.LogUpdate(ctx, principal.UserID, entity.AuditActionAssociationUpsert, "association", hospitalID.String(), converter.AssociationToResponse(previous), response)

	u.log.Infof("Association upserted: doctor=%s, hospital=%s, fee=%s", principal.UserID, hospitalID, req.Fee)
	return response, nil
}

// Deactivate ends the current doctor's engagement with a hospital. Slots
// already opened there are left alone.
func (u *associationUsecase) Deactivate(ctx context.Context, hospitalID uuid.UUID) error {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return err
	}

	affected, err := u.associationRepo.SetActive(ctx, principal.UserID, hospitalID, false)
	if err != nil {
		u.log.Warnf("Failed to deactivate association: %+v", err)
		return err
	}
	if affected == 0 {
		return entity.ErrNotAssociated
	}

	_ = u.auditService.LogDelete(ctx, principal.UserID, entity.AuditActionAssociationEnd, "association", hospitalID.String(), map[string]string{
		"doctor_id":   principal.UserID.String(),
		"hospital_id": hospitalID.String(),
	})
	u.log.Infof("Association deactivated: doctor=%s, hospital=%s", principal.UserID, hospitalID)
	return nil
}

func (u *associationUsecase) GetFee(ctx context.Context, doctorID, hospitalID uuid.UUID) (*dto.FeeResponse, error) {
	association, err := u.associationRepo.Find(ctx, doctorID, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find association: %+v", err)
		return nil, err
	}
	if association == nil || !association.Active {
		return nil, entity.ErrNotAssociated
	}
	return &dto.FeeResponse{DoctorID: doctorID, HospitalID: hospitalID, Fee: association.Fee}, nil
}

func (u *associationUsecase) ListMine(ctx context.Context) (*dto.AssociationListResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	associations, err := u.associationRepo.FindByDoctorID(ctx, principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find associations for doctor %s: %+v", principal.UserID, err)
		return nil, err
	}
	return &dto.AssociationListResponse{
		Associations: converter.AssociationsToResponses(associations),
		Total:        len(associations),
	}, nil
}

// ListByHospital returns the doctors currently practising at a hospital.
func (u *associationUsecase) ListByHospital(ctx context.Context, hospitalID uuid.UUID) (*dto.HospitalDoctorListResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, entity.ErrHospitalNotFound
	}

	associations, err := u.associationRepo.FindByHospitalID(ctx, hospitalID, true)
	if err != nil {
		u.log.Warnf("Failed to find associations for hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	return &dto.HospitalDoctorListResponse{
		Doctors: converter.AssociationsToHospitalDoctors(associations),
		Total:   len(associations),
	}, nil
}
