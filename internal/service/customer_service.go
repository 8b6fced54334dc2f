package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// CustomerService manages subscriber accounts.
type CustomerService struct {
	users    repository.UserRepository
	packages repository.PackageRepository
	rt       Runtime
}

// NewCustomerService constructs the service.
func NewCustomerService(users repository.UserRepository, packages repository.PackageRepository, rt Runtime) *CustomerService {
	return &CustomerService{users: users, packages: packages, rt: rt.withDefaults()}
}

// CustomerInput describes a new subscriber.
type CustomerInput struct {
	CustomerID       string
	PhoneNumber      string
	FirstName        string
	LastName         string
	Email            string
	NationalID       string
	BirthDate        time.Time
	CurrentPackageID *string
	PaymentStatus    domain.PaymentStatus
	Address          string
	City             string
}

// CustomerPatch carries the mutable subscriber fields; nil leaves a field unchanged.
type CustomerPatch struct {
	PhoneNumber       *string
	FirstName         *string
	LastName          *string
	Email             *string
	CurrentPackageID  *string
	PaymentStatus     *domain.PaymentStatus
	Balance           *float64
	DataUsageGB       *float64
	VoiceUsageMinutes *int64
	Address           *string
	City              *string
}

// CustomerListFilter narrows the customer listing.
type CustomerListFilter struct {
	PaymentStatus *domain.PaymentStatus
	PackageID     *string
	Limit         int
	Offset        int
}

// Create provisions a subscriber.
func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*domain.User, error) {
	user := &domain.User{
		CustomerID:       strings.TrimSpace(input.CustomerID),
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		NationalID:       strings.TrimSpace(input.NationalID),
		BirthDate:        input.BirthDate,
		CurrentPackageID: input.CurrentPackageID,
		PaymentStatus:    input.PaymentStatus,
		Address:          input.Address,
		City:             input.City,
	}
	if user.CustomerID == "" {
		user.CustomerID = generateKey(customerKeyPrefix)
	}
	if user.PaymentStatus == "" {
		user.PaymentStatus = domain.PaymentStatusPaid
	}
	if !user.PaymentStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid payment status", map[string]any{"payment_status": user.PaymentStatus})
	}
	if err := s.ensurePackage(ctx, user.CurrentPackageID); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.rt.Logger.Info("customer created", zap.String("customer_id", user.CustomerID), zap.Int64("id", user.ID))
	return user, nil
}

// Get returns one subscriber.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": id})
	}
	return user, nil
}

// List pages through subscribers.
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{
		PaymentStatus: filter.PaymentStatus,
		PackageID:     filter.PackageID,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// Update applies a patch to a subscriber.
func (s *CustomerService) Update(ctx context.Context, id int64, patch CustomerPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": id})
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.CurrentPackageID != nil {
		if err := s.ensurePackage(ctx, patch.CurrentPackageID); err != nil {
			return nil, err
		}
		user.CurrentPackageID = patch.CurrentPackageID
	}
	if patch.PaymentStatus != nil {
		if !patch.PaymentStatus.Valid() {
			return nil, apperrors.NewValidationError("invalid payment status", map[string]any{"payment_status": *patch.PaymentStatus})
		}
		user.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Balance != nil {
		user.Balance = *patch.Balance
	}
	if patch.DataUsageGB != nil {
		user.DataUsageGB = *patch.DataUsageGB
	}
	if patch.VoiceUsageMinutes != nil {
		user.VoiceUsageMinutes = *patch.VoiceUsageMinutes
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.City != nil {
		user.City = *patch.City
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": id})
	}
	return user, nil
}

// ensurePackage rejects references to packages that do not exist.
func (s *CustomerService) ensurePackage(ctx context.Context, packageID *string) error {
	if packageID == nil || *packageID == "" {
		return nil
	}
	if _, err := s.packages.GetByPackageID(ctx, *packageID); err != nil {
		return lookupError(err, "package", map[string]any{"package_id": *packageID})
	}
	return nil
}
