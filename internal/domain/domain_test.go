package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestComputeUserSegment_Priority(t *testing.T) {
	premium := &Package{Price: 250}
	cheap := &Package{Price: 20}
	recent := now.Add(-24 * time.Hour)
	old := now.AddDate(-2, 0, 0)

	tests := []struct {
		name string
		user User
		pkg  *Package
		want Segment
	}{
		{"overdue premium new", User{PaymentStatus: PaymentStatusOverdue, CreatedAt: recent}, premium, SegmentOverdueUsers},
		{"overdue without package", User{PaymentStatus: PaymentStatusOverdue, CreatedAt: old}, nil, SegmentOverdueUsers},
		{"premium beats new", User{PaymentStatus: PaymentStatusPaid, CreatedAt: recent}, premium, SegmentPremiumUsers},
		{"price threshold inclusive", User{PaymentStatus: PaymentStatusPending, CreatedAt: old}, &Package{Price: 200}, SegmentPremiumUsers},
		{"new user", User{PaymentStatus: PaymentStatusPaid, CreatedAt: recent}, cheap, SegmentNewUsers},
		{"everyone else", User{PaymentStatus: PaymentStatusPaid, CreatedAt: old}, cheap, SegmentAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeUserSegment(&tt.user, tt.pkg, now))
		})
	}
}

func TestCampaign_ComputeBenefits(t *testing.T) {
	pkg := &Package{Price: 100}

	amount := Campaign{DiscountAmount: 50, DiscountPercentage: 20, FreeDataGB: 2}
	b, ok := amount.ComputeBenefits(pkg)
	require.True(t, ok)
	assert.Equal(t, Benefits{DiscountApplied: 50, DataBonusGB: 2}, b)

	percent := Campaign{DiscountPercentage: 20}
	b, ok = percent.ComputeBenefits(&Package{Price: 199.99})
	require.True(t, ok)
	assert.InDelta(t, 39.998, b.DiscountApplied, 1e-9)

	_, ok = percent.ComputeBenefits(nil)
	assert.False(t, ok)

	bonusOnly := Campaign{FreeVoiceMinutes: 60}
	b, ok = bonusOnly.ComputeBenefits(nil)
	require.True(t, ok)
	assert.Equal(t, Benefits{VoiceBonusMinutes: 60}, b)
}

func TestCampaign_WindowIsInclusive(t *testing.T) {
	c := Campaign{IsActive: true, StartDate: now, EndDate: now.Add(time.Hour)}
	assert.True(t, c.IsRunning(now))
	assert.True(t, c.IsRunning(now.Add(time.Hour)))
	assert.False(t, c.IsRunning(now.Add(time.Hour+time.Nanosecond)))
	c.IsActive = false
	assert.False(t, c.IsRunning(now))
}

func TestCampaign_Targets(t *testing.T) {
	premium := SegmentPremiumUsers
	all := SegmentAll
	assert.True(t, (&Campaign{}).Targets(SegmentNewUsers))
	assert.True(t, (&Campaign{TargetAudience: &all}).Targets(SegmentNewUsers))
	assert.True(t, (&Campaign{TargetAudience: &premium}).Targets(SegmentPremiumUsers))
	assert.False(t, (&Campaign{TargetAudience: &premium}).Targets(SegmentNewUsers))
}

func TestPercent_Rounded(t *testing.T) {
	assert.Equal(t, 90.0, Percent(90.004).Rounded())
	assert.Equal(t, 90.01, Percent(90.006).Rounded())
	assert.Equal(t, 33.33, Percent(33.333).Rounded())
	assert.Equal(t, 0.0, Percent(0).Rounded())
}

func TestQuantity(t *testing.T) {
	limited := QuantityFromLimit(10)
	assert.Equal(t, "120.00", limited.UsedPercent(12).String())
	left, ok := limited.Remaining(12).Value()
	assert.True(t, ok)
	assert.Zero(t, left)
	assert.Equal(t, int64(10), limited.StorageValue())

	for _, stored := range []int64{-1, 0} {
		q := QuantityFromLimit(stored)
		assert.True(t, q.IsUnlimited())
		assert.Equal(t, Percent(0), q.UsedPercent(500))
		assert.True(t, q.Remaining(500).IsUnlimited())
		assert.Equal(t, int64(-1), q.StorageValue())
	}
}

func TestQuantity_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Data  Quantity `json:"data"`
		Voice Quantity `json:"voice"`
		Pct   Percent  `json:"pct"`
	}{Limited(7.5), Unlimited(), Percent(33.333)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":7.5,"voice":"Unlimited","pct":"33.33"}`, string(raw))

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"Unlimited"`), &q))
	assert.True(t, q.IsUnlimited())
	require.NoError(t, json.Unmarshal([]byte(`-1`), &q))
	assert.True(t, q.IsUnlimited())
	require.NoError(t, json.Unmarshal([]byte(`25`), &q))
	v, ok := q.Value()
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &q))
}

func TestBill_IsOverdue(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	assert.True(t, (&Bill{PaymentStatus: PaymentStatusOverdue, DueDate: future}).IsOverdue(now))
	assert.True(t, (&Bill{PaymentStatus: PaymentStatusPending, DueDate: past}).IsOverdue(now))
	assert.False(t, (&Bill{PaymentStatus: PaymentStatusPending, DueDate: future}).IsOverdue(now))
	assert.False(t, (&Bill{PaymentStatus: PaymentStatusPaid, DueDate: past}).IsOverdue(now))
}

func TestTicket_DerivedFields(t *testing.T) {
	ticket := SupportTicket{Status: TicketStatusOpen, CreatedAt: now.Add(-7*24*time.Hour - time.Minute)}
	assert.Equal(t, 8, ticket.DaysOpen(now))
	assert.True(t, ticket.IsOverdue(now))

	ticket.Status = TicketStatusInProgress
	assert.False(t, ticket.IsOverdue(now))

	ticket.CreatedAt = now.Add(-7 * 24 * time.Hour)
	ticket.Status = TicketStatusOpen
	assert.Equal(t, 7, ticket.DaysOpen(now))
	assert.False(t, ticket.IsOverdue(now))
}

func TestTicketPriority_Rank(t *testing.T) {
	assert.Greater(t, TicketPriorityUrgent.Rank(), TicketPriorityHigh.Rank())
	assert.Greater(t, TicketPriorityHigh.Rank(), TicketPriorityMedium.Rank())
	assert.Greater(t, TicketPriorityMedium.Rank(), TicketPriorityLow.Rank())
	assert.Equal(t, -1, TicketPriority("critical").Rank())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusInProgress))
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusClosed))
	assert.False(t, CanTransition(TicketStatusResolved, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusOpen, TicketStatusOpen))
	assert.False(t, CanTransition("archived", TicketStatusClosed))
}

func TestUserCampaign_IsEffectivelyActive(t *testing.T) {
	uc := UserCampaign{Status: UserCampaignActive, ExpiresAt: now}
	assert.True(t, uc.IsEffectivelyActive(now))
	assert.False(t, uc.IsEffectivelyActive(now.Add(time.Second)))
	uc.Status = UserCampaignExpired
	assert.False(t, uc.IsEffectivelyActive(now.Add(-time.Hour)))
}
