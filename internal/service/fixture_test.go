package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/clock"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	clock *clock.FakeClock
	store *memory.Store
	rt    Runtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFakeClock(testNow)
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		clock: clk,
		store: memory.NewStore(clk),
		rt:    Runtime{Clock: clk},
	}
}

func (f *fixture) campaigns() *CampaignService {
	return NewCampaignService(CampaignDependencies{
		CampaignRepo:     f.store.Campaigns(),
		UserCampaignRepo: f.store.UserCampaigns(),
		UserRepo:         f.store.Users(),
		PackageRepo:      f.store.Packages(),
		Runtime:          f.rt,
	})
}

func (f *fixture) accounts() *AccountService {
	return NewAccountService(AccountDependencies{
		UserRepo:    f.store.Users(),
		PackageRepo: f.store.Packages(),
		BillRepo:    f.store.Bills(),
		TicketRepo:  f.store.Tickets(),
		Runtime:     f.rt,
	})
}

func (f *fixture) addPackage(key string, price float64, dataGB, voiceMinutes int64) *domain.Package {
	f.t.Helper()
	pkg := &domain.Package{
		PackageID:    key,
		Name:         key + " plan",
		Price:        price,
		DataLimitGB:  domain.QuantityFromLimit(dataGB),
		VoiceMinutes: domain.QuantityFromLimit(voiceMinutes),
		SMSCount:     domain.Unlimited(),
		IsActive:     true,
	}
	require.NoError(f.t, f.store.Packages().Create(f.ctx, pkg))
	return pkg
}

func (f *fixture) addUser(mutate func(*domain.User)) *domain.User {
	f.t.Helper()
	user := &domain.User{
		CustomerID:    generateKey(customerKeyPrefix),
		PhoneNumber:   "+905551112233",
		FirstName:     "Ayse",
		LastName:      "Kaya",
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     testNow.AddDate(-1, 0, 0),
	}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, user))
	return user
}

func (f *fixture) addCampaign(mutate func(*domain.Campaign)) *domain.Campaign {
	f.t.Helper()
	campaign := &domain.Campaign{
		CampaignID:   generateKey(campaignKeyPrefix),
		Name:         "Summer deal",
		CampaignType: domain.CampaignTypeDiscount,
		StartDate:    testNow.AddDate(0, 0, -7),
		EndDate:      testNow.AddDate(0, 0, 7),
		IsActive:     true,
	}
	if mutate != nil {
		mutate(campaign)
	}
	require.NoError(f.t, f.store.Campaigns().Create(f.ctx, campaign))
	f.clock.Advance(time.Second)
	return campaign
}

func (f *fixture) addBill(userID int64, status domain.PaymentStatus, amount float64, due time.Time) *domain.Bill {
	f.t.Helper()
	bill := &domain.Bill{
		BillID:             generateKey(billKeyPrefix),
		UserID:             userID,
		BillingPeriodStart: due.AddDate(0, -1, 0),
		BillingPeriodEnd:   due.AddDate(0, 0, -15),
		DueDate:            due,
		TotalAmount:        amount,
		PaymentStatus:      status,
	}
	require.NoError(f.t, f.store.Bills().Create(f.ctx, bill))
	return bill
}

func (f *fixture) addTicket(userID int64, status domain.TicketStatus, priority domain.TicketPriority, createdAt time.Time) *domain.SupportTicket {
	f.t.Helper()
	ticket := &domain.SupportTicket{
		TicketID:  generateKey(ticketKeyPrefix),
		UserID:    userID,
		IssueType: "network",
		Priority:  priority,
		Status:    status,
		Title:     "No signal",
		CreatedAt: createdAt,
	}
	require.NoError(f.t, f.store.Tickets().Create(f.ctx, ticket))
	return ticket
}

func strPtr(s string) *string { return &s }
