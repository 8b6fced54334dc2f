package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/observability"
)

// NotificationService turns domain events into audit lines and metrics.
// Customer-facing email and webhook delivery is not performed; when a channel is configured
// the notice that would be sent is recorded as a "notification recorded" audit entry.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Notice channels recorded by the service.
const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// Subscriptions lists the event types the service handles.
func (n *NotificationService) Subscriptions() []events.EventType {
	return []events.EventType{
		events.EventCampaignApplied,
		events.EventCampaignsExpired,
		events.EventBillPaid,
		events.EventTicketResolved,
	}
}

// Channels returns the notice channels enabled by configuration.
func (n *NotificationService) Channels() []string {
	var channels []string
	if strings.TrimSpace(n.cfg.EmailFrom) != "" {
		channels = append(channels, ChannelEmail)
	}
	if strings.TrimSpace(n.cfg.WebhookURL) != "" {
		channels = append(channels, ChannelWebhook)
	}
	return channels
}

// RegisterHandlers subscribes to every type in Subscriptions.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	handlers := map[events.EventType]events.EventHandler{
		events.EventCampaignApplied:  n.handleCampaignApplied,
		events.EventCampaignsExpired: n.handleCampaignsExpired,
		events.EventBillPaid:         n.handleBillPaid,
		events.EventTicketResolved:   n.handleTicketResolved,
	}
	for _, eventType := range n.Subscriptions() {
		n.dispatcher.Subscribe(eventType, handlers[eventType])
	}
}

func (n *NotificationService) handleCampaignApplied(_ context.Context, event events.Event) error {
	n.audit("CampaignApplied", event)
	n.recordEmailNotice(event)
	n.recordWebhookNotice(event)
	return nil
}

func (n *NotificationService) handleCampaignsExpired(_ context.Context, event events.Event) error {
	n.audit("CampaignsExpired", event)
	n.recordWebhookNotice(event)
	return nil
}

func (n *NotificationService) handleBillPaid(_ context.Context, event events.Event) error {
	n.audit("BillPaid", event)
	if payload, ok := event.Payload.(events.BillPaidPayload); ok {
		n.metrics.RecordBillPaid(payload.Amount)
	}
	n.recordEmailNotice(event)
	return nil
}

func (n *NotificationService) handleTicketResolved(_ context.Context, event events.Event) error {
	n.audit("TicketResolved", event)
	if payload, ok := event.Payload.(events.TicketResolvedPayload); ok {
		n.metrics.RecordTicketResolved(string(payload.Priority))
	}
	n.recordEmailNotice(event)
	n.recordWebhookNotice(event)
	return nil
}

func (n *NotificationService) audit(msg string, event events.Event) {
	n.metrics.RecordEvent(string(event.Type))
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("subject", event.Subject),
		zap.Any("payload", event.Payload),
	}
	if event.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *event.UserID))
	}
	n.logger.Info(msg, fields...)
}

func (n *NotificationService) recordEmailNotice(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || event.UserID == nil {
		return
	}
	n.logger.Info("notification recorded",
		zap.String("channel", ChannelEmail),
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("user_id", *event.UserID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject))
}

func (n *NotificationService) recordWebhookNotice(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Info("notification recorded",
		zap.String("channel", ChannelWebhook),
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject))
}
