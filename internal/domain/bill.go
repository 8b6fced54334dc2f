package domain

import "time"

// Bill is one billing cycle for a user.
type Bill struct {
	ID                 int64
	BillID             string
	UserID             int64
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
	DueDate            time.Time
	TotalAmount        float64
	PaymentStatus      PaymentStatus
	PaymentDate        *time.Time
	DataUsedGB         float64
	VoiceUsedMinutes   int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOverdue reports whether the bill is marked overdue or pending past its due date.
func (b *Bill) IsOverdue(now time.Time) bool {
	if b.PaymentStatus == PaymentStatusOverdue {
		return true
	}
	return b.PaymentStatus == PaymentStatusPending && b.DueDate.Before(now)
}

// IsOutstanding reports whether the bill still counts toward the amount owed.
func (b *Bill) IsOutstanding() bool {
	return b.PaymentStatus == PaymentStatusPending || b.PaymentStatus == PaymentStatusOverdue
}

// CanPay reports whether the bill may transition to paid.
func (b *Bill) CanPay() bool {
	return b.IsOutstanding()
}
