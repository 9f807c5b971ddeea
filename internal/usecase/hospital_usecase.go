package usecase

import (
	"context"
	"errors"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type HospitalUsecase interface {
	CreateHospital(ctx context.Context, req *dto.CreateHospitalRequest) (*dto.HospitalResponse, error)
	GetAllHospitals(ctx context.Context) (*dto.HospitalListResponse, error)
	GetMyHospitals(ctx context.Context) (*dto.HospitalListResponse, error)
	UpdateHospital(ctx context.Context, hospitalID uuid.UUID, req *dto.UpdateHospitalRequest) (*dto.HospitalResponse, error)
	DeleteHospital(ctx context.Context, hospitalID uuid.UUID) error

	CreateDepartment(ctx context.Context, hospitalID uuid.UUID, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	GetDepartments(ctx context.Context, hospitalID uuid.UUID) (*dto.DepartmentListResponse, error)
	DeleteDepartment(ctx context.Context, departmentID uuid.UUID) error
}

type hospitalUsecase struct {
	log             *logrus.Logger
	hospitalRepo    repository.HospitalRepository
	departmentRepo  repository.DepartmentRepository
	associationRepo repository.AssociationRepository
	auditService    service.AuditService
}

func NewHospitalUsecase(
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	departmentRepo repository.DepartmentRepository,
	associationRepo repository.AssociationRepository,
	auditService service.AuditService,
) HospitalUsecase {
	return &hospitalUsecase{
		log:             log,
		hospitalRepo:    hospitalRepo,
		departmentRepo:  departmentRepo,
		associationRepo: associationRepo,
		auditService:    auditService,
	}
}

func (u *hospitalUsecase) CreateHospital(ctx context.Context, req *dto.CreateHospitalRequest) (*dto.HospitalResponse, error) {
	principal, err := requireRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	hospital := &entity.Hospital{
		ID:       uuid.New(),
		Name:     req.Name,
		Location: req.Location,
		AdminID:  principal.UserID,
	}
	if err := u.hospitalRepo.Create(ctx, hospital); err != nil {
		u.log.Warnf("Failed to create hospital: %+v", err)
		return nil, err
	}

	response := converter.HospitalToResponse(hospital)
	_ = u.auditService.LogCreate(ctx, principal.UserID, entity.AuditActionHospitalCreate, "hospital", hospital.ID.String(), response)

	u.log.Infof("Hospital created: id=%s, admin=%s", hospital.ID, principal.UserID)
	return response, nil
}

func (u *hospitalUsecase) GetAllHospitals(ctx context.Context) (*dto.HospitalListResponse, error) {
	hospitals, err := u.hospitalRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all hospitals: %+v", err)
		return nil, err
	}
	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *hospitalUsecase) GetMyHospitals(ctx context.Context) (*dto.HospitalListResponse, error) {
	principal, err := requireRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	hospitals, err := u.hospitalRepo.FindByAdminID(ctx, principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find hospitals for admin %s: %+v", principal.UserID, err)
		return nil, err
	}
	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *hospitalUsecase) UpdateHospital(ctx context.Context, hospitalID uuid.UUID, req *dto.UpdateHospitalRequest) (*dto.HospitalResponse, error) {
	principal, hospital, err := u.ownedHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	oldValue := converter.HospitalToResponse(hospital)
	if req.Name != "" {
		hospital.Name = req.Name
	}
	if req.Location != "" {
		hospital.Location = req.Location
	}
	if err := u.hospitalRepo.Update(ctx, hospital); err != nil {
		u.log.Warnf("Failed to update hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	response := converter.HospitalToResponse(hospital)
	_ = u.auditService.LogUpdate(ctx, principal.UserID, entity.AuditActionHospitalUpdate, "hospital", hospitalID.String(), oldValue, response)
	return response, nil
}

// DeleteHospital removes a hospital nobody practises at. Associations,
// active or not, keep the hospital alive because slots and ledger entries
// refer to it.
func (u *hospitalUsecase) DeleteHospital(ctx context.Context, hospitalID uuid.UUID) error {
	principal, hospital, err := u.ownedHospital(ctx, hospitalID)
	if err != nil {
		return err
	}

	associations, err := u.associationRepo.FindByHospitalID(ctx, hospitalID, false)
	if err != nil {
		u.log.Warnf("Failed to find associations for hospital %s: %+v", hospitalID, err)
		return err
	}
	if len(associations) > 0 {
		return entity.ErrHospitalInUse
	}

	affected, err := u.hospitalRepo.Delete(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to delete hospital %s: %+v", hospitalID, err)
		return err
	}
	if affected == 0 {
		return entity.ErrHospitalNotFound
	}

	_ = u.auditService.LogDelete(ctx, principal.UserID, entity.AuditActionHospitalDelete, "hospital", hospitalID.String(), converter.HospitalToResponse(hospital))
	u.log.Infof("Hospital deleted: id=%s", hospitalID)
	return nil
}

func (u *hospitalUsecase) CreateDepartment(ctx context.Context, hospitalID uuid.UUID, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	principal, _, err := u.ownedHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	department := &entity.Department{
		ID:         uuid.New(),
		Name:       req.Name,
		HospitalID: hospitalID,
	}
	if err := u.departmentRepo.Create(ctx, department); err != nil {
		if errors.Is(err, entity.ErrDuplicateDepartment) {
			return nil, err
		}
		u.log.Warnf("Failed to create department: %+v", err)
		return nil, err
	}

	response := converter.DepartmentToResponse(department)
	_ = u.auditService.LogCreate(ctx, principal.UserID, entity.AuditActionDepartmentCreate, "department", department.ID.String(), response)
	return response, nil
}

func (u *hospitalUsecase) GetDepartments(ctx context.Context, hospitalID uuid.UUID) (*dto.DepartmentListResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, entity.ErrHospitalNotFound
	}

	departments, err := u.departmentRepo.FindByHospitalID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find departments for hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	return &dto.DepartmentListResponse{
		Departments: converter.DepartmentsToResponses(departments),
		Total:       len(departments),
	}, nil
}

func (u *hospitalUsecase) DeleteDepartment(ctx context.Context, departmentID uuid.UUID) error {
	department, err := u.departmentRepo.FindByID(ctx, departmentID)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", departmentID, err)
		return err
	}
	if department == nil {
		return entity.ErrDepartmentNotFound
	}

	principal, _, err := u.ownedHospital(ctx, department.HospitalID)
	if err != nil {
		return err
	}

	if _, err := u.departmentRepo.Delete(ctx, departmentID); err != nil {
		u.log.Warnf("Failed to delete department %s: %+v", departmentID, err)
		return err
	}

	_ = u.auditService.LogDelete(ctx, principal.UserID, entity.AuditActionDepartmentDelete, "department", departmentID.String(), converter.DepartmentToResponse(department))
	return nil
}

// ownedHospital loads a hospital that the current admin owns.
func (u *hospitalUsecase) ownedHospital(ctx context.Context, hospitalID uuid.UUID) (entity.Principal, *entity.Hospital, error) {
	principal, err := requireRole(ctx, entity.RoleAdmin)
	if err != nil {
		return entity.Principal{}, nil, err
	}

	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return entity.Principal{}, nil, err
	}
	if hospital == nil {
		return entity.Principal{}, nil, entity.ErrHospitalNotFound
	}
	if !hospital.OwnedBy(principal.UserID) {
		return entity.Principal{}, nil, entity.ErrUnauthorized
	}
	return principal, hospital, nil
}
