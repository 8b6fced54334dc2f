package events

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCampaignApplied  EventType = "campaign.applied"
	EventCampaignsExpired EventType = "campaign.expired"
	EventBillPaid         EventType = "bill.paid"
	EventTicketResolved   EventType = "ticket.resolved"
)

// Event represents a domain event emitted by services.
// Subject is the business key of the aggregate the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	UserID    *int64      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CampaignAppliedPayload payload.
type CampaignAppliedPayload struct {
	UserCampaignID    int64     `json:"user_campaign_id"`
	CampaignID        int64     `json:"campaign_id"`
	DiscountApplied   float64   `json:"discount_applied"`
	DataBonusGB       int64     `json:"data_bonus_gb"`
	VoiceBonusMinutes int64     `json:"voice_bonus_minutes"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// CampaignsExpiredPayload payload.
type CampaignsExpiredPayload struct {
	ExpiredCount int64 `json:"expired_count"`
}

// BillPaidPayload payload.
type BillPaidPayload struct {
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Priority   domain.TicketPriority `json:"priority"`
	OldStatus  domain.TicketStatus   `json:"old_status"`
	Resolution string                `json:"resolution"`
}
