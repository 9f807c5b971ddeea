package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
)

type associationKey struct {
	doctorID   uuid.UUID
	hospitalID uuid.UUID
}

type AssociationRepository struct {
	mu           sync.RWMutex
	associations map[associationKey]entity.Association
}

func NewAssociationRepository() *AssociationRepository {
	return &AssociationRepository{associations: make(map[associationKey]entity.Association)}
}

var _ domainRepo.AssociationRepository = (*AssociationRepository)(nil)

func (r *AssociationRepository) Upsert(ctx context.Context, association *entity.Association) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := associationKey{association.DoctorID, association.HospitalID}
	now := time.Now().UTC()
	if existing, ok := r.associations[key]; ok {
		association.CreatedAt = existing.CreatedAt
	} else {
		association.CreatedAt = now
	}
	association.UpdatedAt = now
	r.associations[key] = *association
	return nil
}

func (r *AssociationRepository) Find(ctx context.Context, doctorID, hospitalID uuid.UUID) (*entity.Association, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.associations[associationKey{doctorID, hospitalID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AssociationRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Association, error) {
	return r.collect(func(a entity.Association) bool { return a.DoctorID == doctorID }), nil
}

func (r *AssociationRepository) FindByHospitalID(ctx context.Context, hospitalID uuid.UUID, activeOnly bool) ([]entity.Association, error) {
	return r.collect(func(a entity.Association) bool {
		return a.HospitalID == hospitalID && (a.Active || !activeOnly)
	}), nil
}

func (r *AssociationRepository) SetActive(ctx context.Context, doctorID, hospitalID uuid.UUID, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := associationKey{doctorID, hospitalID}
	a, ok := r.associations[key]
	if !ok {
		return 0, nil
	}
	a.Active = active
	a.UpdatedAt = time.Now().UTC()
	r.associations[key] = a
	return 1, nil
}

func (r *AssociationRepository) collect(keep func(entity.Association) bool) []entity.Association {
	r.mu.RLock()
	out := make([]entity.Association, 0)
	for _, a := range r.associations {
		if keep(a) {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].HospitalID != out[j].HospitalID {
			return out[i].HospitalID.String() < out[j].HospitalID.String()
		}
		return out[i].DoctorID.String() < out[j].DoctorID.String()
	})
	return out
}
