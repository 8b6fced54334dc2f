package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// CatalogService manages service packages.
type CatalogService struct {
	packages repository.PackageRepository
	rt       Runtime
}

// NewCatalogService constructs the service.
func NewCatalogService(packages repository.PackageRepository, rt Runtime) *CatalogService {
	return &CatalogService{packages: packages, rt: rt.withDefaults()}
}

// PackageInput carries the writable package fields.
type PackageInput struct {
	PackageID    string
	Name         string
	Price        float64
	DataLimitGB  domain.Quantity
	VoiceMinutes domain.Quantity
	SMSCount     domain.Quantity
	Features     map[string]any
	IsActive     bool
}

// Create adds a package to the catalog.
func (s *CatalogService) Create(ctx context.Context, input PackageInput) (*domain.Package, error) {
	if err := validatePackage(input, true); err != nil {
		return nil, err
	}
	pkg := packageFromInput(input)
	if _, err := s.packages.GetByPackageID(ctx, pkg.PackageID); err == nil {
		return nil, apperrors.NewInvalidState("Package ID already exists", map[string]any{"package_id": pkg.PackageID})
	}
	if err := s.packages.Create(ctx, &pkg); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.rt.Logger.Info("package created", zap.String("package_id", pkg.PackageID))
	return &pkg, nil
}

// Get returns a package by primary key.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "package", map[string]any{"id": id})
	}
	return pkg, nil
}

// GetByKey returns a package by its business key.
func (s *CatalogService) GetByKey(ctx context.Context, packageID string) (*domain.Package, error) {
	pkg, err := s.packages.GetByPackageID(ctx, packageID)
	if err != nil {
		return nil, lookupError(err, "package", map[string]any{"package_id": packageID})
	}
	return pkg, nil
}

// List returns packages cheapest first.
func (s *CatalogService) List(ctx context.Context, active *bool) ([]domain.Package, error) {
	pkgs, err := s.packages.List(ctx, repository.PackageFilter{Active: active})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return pkgs, nil
}

// Update replaces the writable fields of a package. The business key is immutable.
func (s *CatalogService) Update(ctx context.Context, id int64, input PackageInput) (*domain.Package, error) {
	existing, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "package", map[string]any{"id": id})
	}
	if err := validatePackage(input, false); err != nil {
		return nil, err
	}
	pkg := packageFromInput(input)
	pkg.ID = existing.ID
	pkg.PackageID = existing.PackageID
	if err := s.packages.Update(ctx, &pkg); err != nil {
		return nil, lookupError(err, "package", map[string]any{"id": id})
	}
	return &pkg, nil
}

// Delete removes a package.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.packages.Delete(ctx, id); err != nil {
		return lookupError(err, "package", map[string]any{"id": id})
	}
	s.rt.Logger.Info("package deleted", zap.Int64("id", id))
	return nil
}

func packageFromInput(input PackageInput) domain.Package {
	features := input.Features
	if features == nil {
		features = map[string]any{}
	}
	return domain.Package{
		PackageID:    strings.TrimSpace(input.PackageID),
		Name:         strings.TrimSpace(input.Name),
		Price:        input.Price,
		DataLimitGB:  input.DataLimitGB,
		VoiceMinutes: input.VoiceMinutes,
		SMSCount:     input.SMSCount,
		Features:     features,
		IsActive:     input.IsActive,
	}
}

func validatePackage(input PackageInput, requireKey bool) error {
	details := map[string]any{}
	if requireKey && strings.TrimSpace(input.PackageID) == "" {
		details["package_id"] = "required"
	}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if input.Price < 0 {
		details["price"] = "must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid package", details)
	}
	return nil
}
