package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

func basicPackageInput(key string, price float64) PackageInput {
	return PackageInput{
		PackageID:    key,
		Name:         " Basic " + key + " ",
		Price:        price,
		DataLimitGB:  domain.Limited(10),
		VoiceMinutes: domain.Unlimited(),
		SMSCount:     domain.Limited(100),
		IsActive:     true,
	}
}

func TestCatalogService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	pkg, err := svc.Create(f.ctx, basicPackageInput("PKG-10", 120))
	require.NoError(t, err)
	assert.NotZero(t, pkg.ID)
	assert.Equal(t, "Basic PKG-10", pkg.Name)
	assert.NotNil(t, pkg.Features)
	assert.True(t, pkg.VoiceMinutes.IsUnlimited())

	byKey, err := svc.GetByKey(f.ctx, "PKG-10")
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, byKey.ID)
}

func TestCatalogService_Create_DuplicateKey(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	_, err := svc.Create(f.ctx, basicPackageInput("PKG-10", 120))
	require.NoError(t, err)

	_, err = svc.Create(f.ctx, basicPackageInput("PKG-10", 90))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidState))
}

func TestCatalogService_Create_Invalid(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	_, err := svc.Create(f.ctx, PackageInput{Price: -1})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Contains(t, domainErr.Details, "package_id")
	assert.Contains(t, domainErr.Details, "name")
	assert.Contains(t, domainErr.Details, "price")
}

func TestCatalogService_Update_KeepsKey(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	pkg, err := svc.Create(f.ctx, basicPackageInput("PKG-10", 120))
	require.NoError(t, err)

	input := basicPackageInput("OTHER", 150)
	input.Name = "Plus"
	updated, err := svc.Update(f.ctx, pkg.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "PKG-10", updated.PackageID)
	assert.Equal(t, "Plus", updated.Name)
	assert.Equal(t, 150.0, updated.Price)

	_, err = svc.Update(f.ctx, pkg.ID+100, input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCatalogService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	pkg, err := svc.Create(f.ctx, basicPackageInput("PKG-10", 120))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.ctx, pkg.ID))

	_, err = svc.Get(f.ctx, pkg.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	err = svc.Delete(f.ctx, pkg.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCatalogService_List_ActiveFilter(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Packages(), f.rt)

	_, err := svc.Create(f.ctx, basicPackageInput("PKG-20", 200))
	require.NoError(t, err)
	inactive := basicPackageInput("PKG-OLD", 50)
	inactive.IsActive = false
	_, err = svc.Create(f.ctx, inactive)
	require.NoError(t, err)

	all, err := svc.List(f.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := true
	onlyActive, err := svc.List(f.ctx, &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "PKG-20", onlyActive[0].PackageID)
}
