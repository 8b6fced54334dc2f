package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

func TestBillingService_Pay(t *testing.T) {
	f := newFixture(t)
	dispatcher := events.NewInMemoryDispatcher(nil)
	var published []events.Event
	dispatcher.Subscribe(events.EventBillPaid, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	f.rt.Dispatcher = dispatcher
	svc := NewBillingService(f.store.Bills(), f.store.Users(), f.rt)

	user := f.addUser(nil)
	bill := f.addBill(user.ID, domain.PaymentStatusOverdue, 42, testNow.AddDate(0, 0, -3))

	paid, err := svc.Pay(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, testNow, *paid.PaymentDate)

	require.Len(t, published, 1)
	assert.Equal(t, bill.BillID, published[0].Subject)

	_, err = svc.Pay(f.ctx, bill.ID)
	assert.True(t, apperrors.IsInvalidState(err))

	_, err = svc.Pay(f.ctx, 999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBillingService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewBillingService(f.store.Bills(), f.store.Users(), f.rt)
	user := f.addUser(nil)

	bill, err := svc.Create(f.ctx, BillInput{
		UserID:             user.ID,
		BillingPeriodStart: testNow.AddDate(0, -1, 0),
		BillingPeriodEnd:   testNow,
		DueDate:            testNow.AddDate(0, 0, 14),
		TotalAmount:        59.9,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, bill.PaymentStatus)
	assert.Regexp(t, `^BIL-[0-9A-F]{8}$`, bill.BillID)

	_, err = svc.Create(f.ctx, BillInput{UserID: 999, DueDate: testNow})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Create(f.ctx, BillInput{UserID: user.ID, TotalAmount: -1})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}
