package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
)

type HospitalRepository struct {
	mu        sync.RWMutex
	hospitals map[uuid.UUID]entity.Hospital
}

func NewHospitalRepository() *HospitalRepository {
	return &HospitalRepository{hospitals: make(map[uuid.UUID]entity.Hospital)}
}

var _ domainRepo.HospitalRepository = (*HospitalRepository)(nil)

func (r *HospitalRepository) Create(ctx context.Context, hospital *entity.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hospital.ID == uuid.Nil {
		hospital.ID = uuid.New()
	}
	now := time.Now().UTC()
	hospital.CreatedAt, hospital.UpdatedAt = now, now
	r.hospitals[hospital.ID] = *hospital
	return nil
}

func (r *HospitalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hospitals[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *HospitalRepository) FindAll(ctx context.Context) ([]entity.Hospital, error) {
	return r.collect(func(entity.Hospital) bool { return true }), nil
}

func (r *HospitalRepository) FindByAdminID(ctx context.Context, adminID uuid.UUID) ([]entity.Hospital, error) {
	return r.collect(func(h entity.Hospital) bool { return h.AdminID == adminID }), nil
}

func (r *HospitalRepository) Update(ctx context.Context, hospital *entity.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hospitals[hospital.ID]; !ok {
		return entity.ErrHospitalNotFound
	}
	hospital.UpdatedAt = time.Now().UTC()
	r.hospitals[hospital.ID] = *hospital
	return nil
}

func (r *HospitalRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hospitals[id]; !ok {
		return 0, nil
	}
	delete(r.hospitals, id)
	return 1, nil
}

func (r *HospitalRepository) collect(keep func(entity.Hospital) bool) []entity.Hospital {
	r.mu.RLock()
	out := make([]entity.Hospital, 0, len(r.hospitals))
	for _, h := range r.hospitals {
		if keep(h) {
			out = append(out, h)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type DepartmentRepository struct {
	mu          sync.RWMutex
	departments map[uuid.UUID]entity.Department
}

func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{departments: make(map[uuid.UUID]entity.Department)}
}

var _ domainRepo.DepartmentRepository = (*DepartmentRepository)(nil)

func (r *DepartmentRepository) Create(ctx context.Context, department *entity.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.departments {
		if d.HospitalID == department.HospitalID && strings.EqualFold(d.Name, department.Name) {
			return entity.ErrDuplicateDepartment
		}
	}
	if department.ID == uuid.Nil {
		department.ID = uuid.New()
	}
	now := time.Now().UTC()
	department.CreatedAt, department.UpdatedAt = now, now
	r.departments[department.ID] = *department
	return nil
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.departments[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *DepartmentRepository) FindByHospitalID(ctx context.Context, hospitalID uuid.UUID) ([]entity.Department, error) {
	r.mu.RLock()
	out := make([]entity.Department, 0)
	for _, d := range r.departments {
		if d.HospitalID == hospitalID {
			out = append(out, d)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[id]; !ok {
		return 0, nil
	}
	delete(r.departments, id)
	return 1, nil
}
