package memory

import (
	"context"
	"testing"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentNameIsSoftUniquePerHospital(t *testing.T) {
	ctx := context.Background()
	repo := NewDepartmentRepository()
	hospital := uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.Department{Name: "Cardiology", HospitalID: hospital}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Department{Name: "cardiology", HospitalID: hospital}), entity.ErrDuplicateDepartment)
	assert.NoError(t, repo.Create(ctx, &entity.Department{Name: "Cardiology", HospitalID: uuid.New()}))
}

func TestAssociationUpsertReplacesFee(t *testing.T) {
	ctx := context.Background()
	repo := NewAssociationRepository()
	doctor, hospital := uuid.New(), uuid.New()

	require.NoError(t, repo.Upsert(ctx, &entity.Association{DoctorID: doctor, HospitalID: hospital, Specialization: "Cardiology", Fee: decimal.NewFromInt(200), Active: true}))
	require.NoError(t, repo.Upsert(ctx, &entity.Association{DoctorID: doctor, HospitalID: hospital, Specialization: "Cardiology", Fee: decimal.NewFromInt(250), Active: true}))

	got, err := repo.Find(ctx, doctor, hospital)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(got.Fee))

	n, err := repo.SetActive(ctx, doctor, hospital, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, _ := repo.FindByHospitalID(ctx, hospital, true)
	assert.Empty(t, active)
	all, _ := repo.FindByHospitalID(ctx, hospital, false)
	assert.Len(t, all, 1)
}

func TestProfileRepositoryReturnsTaggedVariant(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()
	doctor := uuid.New()
	repo.Put(&entity.DoctorProfile{UserID: doctor, STRNumber: "STR-1"})

	p, err := repo.FindByUserID(ctx, doctor)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, entity.RoleDoctor, p.ProfileRole())
	_, ok := p.(*entity.DoctorProfile)
	assert.True(t, ok)

	missing, err := repo.FindByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
