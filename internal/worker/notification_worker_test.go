package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

func TestStartNotificationWorker_SubscribesAndRecords(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)

	notifications := StartNotificationWorker(dispatcher, zap.New(core), nil, config.NotificationConfig{
		WebhookURL: "https://hooks.operator.test/events",
	})
	require.NotNil(t, notifications)

	started := logs.FilterMessage("notification worker started").All()
	require.Len(t, started, 1)
	assert.Equal(t, []interface{}{service.ChannelWebhook}, started[0].ContextMap()["channels"])

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "evt-1",
		Type:    events.EventCampaignsExpired,
		Subject: "expiry-sweep",
		Payload: events.CampaignsExpiredPayload{ExpiredCount: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("CampaignsExpired").Len())
	webhook := logs.FilterMessage("notification recorded").FilterField(zap.String("channel", service.ChannelWebhook))
	assert.Equal(t, 1, webhook.Len())
}

func TestStartNotificationWorker_NilDispatcher(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(nil, nil, nil, config.NotificationConfig{}))
}
