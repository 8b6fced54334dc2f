package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/observability"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// StartNotificationWorker subscribes the notification service to dispatcher.
// It returns nil when there is no dispatcher to listen on.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	notifications := service.NewNotificationService(dispatcher, logger.Named("notifications"), metrics, cfg)
	notifications.RegisterHandlers()

	subscribed := make([]string, 0, len(notifications.Subscriptions()))
	for _, eventType := range notifications.Subscriptions() {
		subscribed = append(subscribed, string(eventType))
	}
	logger.Info("notification worker started",
		zap.Strings("events", subscribed),
		zap.Strings("channels", notifications.Channels()))
	return notifications
}
