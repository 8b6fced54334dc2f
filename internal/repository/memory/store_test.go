package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/clock"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seedCampaign(t *testing.T, store *Store, maxUses *int64) *domain.Campaign {
	t.Helper()
	campaign := &domain.Campaign{
		CampaignID:   "CMP-TEST",
		Name:         "Summer",
		CampaignType: domain.CampaignTypeDiscount,
		StartDate:    base.Add(-24 * time.Hour),
		EndDate:      base.Add(24 * time.Hour),
		IsActive:     true,
		MaxUses:      maxUses,
	}
	require.NoError(t, store.Campaigns().Create(context.Background(), campaign))
	return campaign
}

func application(userID, campaignID int64) *domain.UserCampaign {
	return &domain.UserCampaign{
		UserID:     userID,
		CampaignID: campaignID,
		Status:     domain.UserCampaignActive,
		ExpiresAt:  base.Add(24 * time.Hour),
	}
}

func TestStore_ApplyToUser_RejectsDuplicateActive(t *testing.T) {
	store := NewStore(clock.NewFakeClock(base))
	campaign := seedCampaign(t, store, nil)
	ctx := context.Background()

	require.NoError(t, store.Campaigns().ApplyToUser(ctx, application(1, campaign.ID)))
	err := store.Campaigns().ApplyToUser(ctx, application(1, campaign.ID))
	require.ErrorIs(t, err, repository.ErrActiveApplicationExists)

	got, err := store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CurrentUses)
}

func TestStore_ApplyToUser_ConcurrentLastSlot(t *testing.T) {
	store := NewStore(clock.NewFakeClock(base))
	maxUses := int64(1)
	campaign := seedCampaign(t, store, &maxUses)
	ctx := context.Background()

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		limited   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			err := store.Campaigns().ApplyToUser(ctx, application(userID, campaign.ID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, repository.ErrUsageLimitReached):
				limited++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, limited)
	got, err := store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CurrentUses)
	apps, err := store.UserCampaigns().ListByCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestStore_ExpireBefore_Idempotent(t *testing.T) {
	store := NewStore(clock.NewFakeClock(base))
	campaign := seedCampaign(t, store, nil)
	ctx := context.Background()

	stale := application(1, campaign.ID)
	stale.ExpiresAt = base.Add(-time.Hour)
	require.NoError(t, store.Campaigns().ApplyToUser(ctx, stale))
	require.NoError(t, store.Campaigns().ApplyToUser(ctx, application(2, campaign.ID)))

	n, err := store.UserCampaigns().ExpireBefore(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.UserCampaigns().ExpireBefore(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, n)

	active, err := store.UserCampaigns().HasActive(ctx, 1, campaign.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestStore_TicketList_OrdersByPriorityThenNewest(t *testing.T) {
	clk := clock.NewFakeClock(base)
	store := NewStore(clk)
	ctx := context.Background()

	create := func(key string, p domain.TicketPriority) {
		require.NoError(t, store.Tickets().Create(ctx, &domain.SupportTicket{
			TicketID: key, UserID: 1, Priority: p, Status: domain.TicketStatusOpen,
		}))
		clk.Advance(time.Minute)
	}
	create("low", domain.TicketPriorityLow)
	create("urgent-old", domain.TicketPriorityUrgent)
	create("medium", domain.TicketPriorityMedium)
	create("urgent-new", domain.TicketPriorityUrgent)

	userID := int64(1)
	tickets, err := store.Tickets().List(ctx, repository.TicketFilter{UserID: &userID})
	require.NoError(t, err)
	keys := make([]string, 0, len(tickets))
	for _, tk := range tickets {
		keys = append(keys, tk.TicketID)
	}
	assert.Equal(t, []string{"urgent-new", "urgent-old", "medium", "low"}, keys)
}

func TestStore_BillList_PagesNewestFirst(t *testing.T) {
	clk := clock.NewFakeClock(base)
	store := NewStore(clk)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Bills().Create(ctx, &domain.Bill{UserID: 7, PaymentStatus: domain.PaymentStatusPaid}))
		clk.Advance(time.Hour)
	}
	userID := int64(7)

	bills, err := store.Bills().List(ctx, repository.BillFilter{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, bills, 10)
	assert.True(t, bills[0].CreatedAt.After(bills[9].CreatedAt))

	total, err := store.Bills().Count(ctx, repository.BillFilter{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
}

func TestStore_GetMissing_ReturnsNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Users().GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_UpdateCampaign_RejectsMaxUsesBelowUsage(t *testing.T) {
	store := NewStore(clock.NewFakeClock(base))
	ctx := context.Background()
	campaign := seedCampaign(t, store, nil)
	require.NoError(t, store.Campaigns().ApplyToUser(ctx, application(1, campaign.ID)))
	require.NoError(t, store.Campaigns().ApplyToUser(ctx, application(2, campaign.ID)))

	one := int64(1)
	campaign.MaxUses = &one
	err := store.Campaigns().Update(ctx, campaign)
	require.ErrorIs(t, err, repository.ErrMaxUsesBelowUsage)

	got, err := store.Campaigns().GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MaxUses)
	assert.Equal(t, int64(2), got.CurrentUses)
}
