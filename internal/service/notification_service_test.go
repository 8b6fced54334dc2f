package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
)

func TestNotificationService_AuditsDomainEvents(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core), nil, config.NotificationConfig{
		EmailFrom: "billing@operator.test",
	}).RegisterHandlers()
	f.rt.Dispatcher = dispatcher

	user := f.addUser(nil)
	bill := f.addBill(user.ID, domain.PaymentStatusPending, 80, testNow.AddDate(0, 0, 5))
	_, err := NewBillingService(f.store.Bills(), f.store.Users(), f.rt).Pay(f.ctx, bill.ID)
	require.NoError(t, err)

	ticket := f.addTicket(user.ID, domain.TicketStatusOpen, domain.TicketPriorityHigh, testNow.AddDate(0, 0, -2))
	_, err = NewSupportService(f.store.Tickets(), f.store.Users(), f.rt).Resolve(f.ctx, ticket.ID, "Tower reset")
	require.NoError(t, err)

	paid := logs.FilterMessage("BillPaid").All()
	require.Len(t, paid, 1)
	assert.Equal(t, bill.BillID, paid[0].ContextMap()["subject"])
	assert.Equal(t, user.ID, paid[0].ContextMap()["user_id"])

	assert.Equal(t, 1, logs.FilterMessage("TicketResolved").Len())
	notices := logs.FilterMessage("notification recorded")
	assert.Equal(t, 2, notices.FilterField(zap.String("channel", ChannelEmail)).Len())
	assert.Zero(t, notices.FilterField(zap.String("channel", ChannelWebhook)).Len())
}

func TestNotificationService_Channels(t *testing.T) {
	none := NewNotificationService(nil, nil, nil, config.NotificationConfig{EmailFrom: "  "})
	assert.Empty(t, none.Channels())

	both := NewNotificationService(nil, nil, nil, config.NotificationConfig{
		EmailFrom:  "billing@operator.test",
		WebhookURL: "https://hooks.operator.test/events",
	})
	assert.Equal(t, []string{ChannelEmail, ChannelWebhook}, both.Channels())
	assert.Len(t, both.Subscriptions(), 4)
}

func TestNotificationService_NilDispatcherIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNotificationService(nil, nil, nil, config.NotificationConfig{}).RegisterHandlers()
	})
}
