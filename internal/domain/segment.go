package domain

import "time"

// Segment is a derived audience tag used to target campaigns.
type Segment string

const (
	SegmentAll          Segment = "all"
	SegmentPremiumUsers Segment = "premium_users"
	SegmentNewUsers     Segment = "new_users"
	SegmentOverdueUsers Segment = "overdue_users"
)

// NewUserWindow is how long after sign-up a user counts as new.
const NewUserWindow = 30 * 24 * time.Hour

// Valid reports whether the segment is known.
func (s Segment) Valid() bool {
	switch s {
	case SegmentAll, SegmentPremiumUsers, SegmentNewUsers, SegmentOverdueUsers:
		return true
	}
	return false
}

// ComputeUserSegment classifies a user. First match wins:
// overdue payment, then premium package price, then recent sign-up.
func ComputeUserSegment(user *User, pkg *Package, now time.Time) Segment {
	switch {
	case user.PaymentStatus == PaymentStatusOverdue:
		return SegmentOverdueUsers
	case pkg != nil && pkg.Price >= PremiumPriceThreshold:
		return SegmentPremiumUsers
	case user.CreatedAt.After(now.Add(-NewUserWindow)):
		return SegmentNewUsers
	default:
		return SegmentAll
	}
}
