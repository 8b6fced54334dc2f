package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// CreateBillRequest payload.
type CreateBillRequest struct {
	BillID             string    `json:"bill_id" validate:"omitempty,max=20"`
	UserID             int64     `json:"user_id" validate:"required,gt=0"`
	BillingPeriodStart time.Time `json:"billing_period_start" validate:"required"`
	BillingPeriodEnd   time.Time `json:"billing_period_end" validate:"required"`
	DueDate            time.Time `json:"due_date" validate:"required"`
	TotalAmount        float64   `json:"total_amount" validate:"gte=0"`
	DataUsedGB         float64   `json:"data_used_gb" validate:"gte=0"`
	VoiceUsedMinutes   int64     `json:"voice_used_minutes" validate:"gte=0"`
}

// BillingPeriod is the [start, end] span a bill covers.
type BillingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BillUsage is the usage snapshot recorded on a bill.
type BillUsage struct {
	DataUsedGB       float64 `json:"data_used_gb"`
	VoiceUsedMinutes int64   `json:"voice_used_minutes"`
}

// BillResponse renders one bill.
type BillResponse struct {
	ID            int64                `json:"id"`
	BillID        string               `json:"bill_id"`
	UserID        int64                `json:"user_id"`
	BillingPeriod BillingPeriod        `json:"billing_period"`
	DueDate       time.Time            `json:"due_date"`
	TotalAmount   float64              `json:"total_amount"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	PaymentDate   *time.Time           `json:"payment_date"`
	Usage         BillUsage            `json:"usage"`
	IsOverdue     *bool                `json:"is_overdue,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// NewBillResponse maps a domain bill.
func NewBillResponse(b *domain.Bill) BillResponse {
	return BillResponse{
		ID:     b.ID,
		BillID: b.BillID,
		UserID: b.UserID,
		BillingPeriod: BillingPeriod{
			Start: b.BillingPeriodStart,
			End:   b.BillingPeriodEnd,
		},
		DueDate:       b.DueDate,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: b.PaymentStatus,
		PaymentDate:   b.PaymentDate,
		Usage: BillUsage{
			DataUsedGB:       b.DataUsedGB,
			VoiceUsedMinutes: b.VoiceUsedMinutes,
		},
		CreatedAt: b.CreatedAt,
	}
}
