package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// BillingService manages bills and their payment transitions.
type BillingService struct {
	bills repository.BillRepository
	users repository.UserRepository
	rt    Runtime
}

// NewBillingService constructs the service.
func NewBillingService(bills repository.BillRepository, users repository.UserRepository, rt Runtime) *BillingService {
	return &BillingService{bills: bills, users: users, rt: rt.withDefaults()}
}

// BillInput describes a new bill.
type BillInput struct {
	BillID             string
	UserID             int64
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
	DueDate            time.Time
	TotalAmount        float64
	DataUsedGB         float64
	VoiceUsedMinutes   int64
}

// BillListFilter narrows the bill listing.
type BillListFilter struct {
	UserID        *int64
	PaymentStatus *domain.PaymentStatus
	Limit         int
	Offset        int
}

// Create issues a pending bill for a user.
func (s *BillingService) Create(ctx context.Context, input BillInput) (*domain.Bill, error) {
	details := map[string]any{}
	if input.TotalAmount < 0 {
		details["total_amount"] = "must not be negative"
	}
	if input.BillingPeriodEnd.Before(input.BillingPeriodStart) {
		details["billing_period_end"] = "must not precede billing_period_start"
	}
	if input.DueDate.IsZero() {
		details["due_date"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid bill", details)
	}
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": input.UserID})
	}

	bill := &domain.Bill{
		BillID:             input.BillID,
		UserID:             input.UserID,
		BillingPeriodStart: input.BillingPeriodStart,
		BillingPeriodEnd:   input.BillingPeriodEnd,
		DueDate:            input.DueDate,
		TotalAmount:        input.TotalAmount,
		PaymentStatus:      domain.PaymentStatusPending,
		DataUsedGB:         input.DataUsedGB,
		VoiceUsedMinutes:   input.VoiceUsedMinutes,
	}
	if bill.BillID == "" {
		bill.BillID = generateKey(billKeyPrefix)
	}
	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return bill, nil
}

// Get returns one bill.
func (s *BillingService) Get(ctx context.Context, id int64) (*domain.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "bill", map[string]any{"bill_id": id})
	}
	return bill, nil
}

// List pages through bills, newest first.
func (s *BillingService) List(ctx context.Context, filter BillListFilter) ([]domain.Bill, error) {
	bills, err := s.bills.List(ctx, repository.BillFilter{
		UserID:        filter.UserID,
		PaymentStatus: filter.PaymentStatus,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return bills, nil
}

// Pay marks an outstanding bill as paid now.
func (s *BillingService) Pay(ctx context.Context, id int64) (*domain.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "bill", map[string]any{"bill_id": id})
	}
	if !bill.CanPay() {
		return nil, apperrors.NewInvalidState("Bill is already paid", map[string]any{"bill_id": bill.BillID})
	}

	now := s.rt.Clock.Now()
	bill.PaymentStatus = domain.PaymentStatusPaid
	bill.PaymentDate = &now
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, lookupError(err, "bill", map[string]any{"bill_id": id})
	}

	s.rt.Logger.Info("bill paid", zap.String("bill_id", bill.BillID), zap.Float64("amount", bill.TotalAmount))
	s.rt.publish(ctx, events.Event{
		Type:    events.EventBillPaid,
		Subject: bill.BillID,
		UserID:  int64Ptr(bill.UserID),
		Payload: events.BillPaidPayload{Amount: bill.TotalAmount, PaymentDate: now},
	})
	return bill, nil
}
