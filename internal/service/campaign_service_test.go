package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

func segmentPtr(s domain.Segment) *domain.Segment { return &s }

func requireInvalidState(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsInvalidState(err), "expected invalid state, got %v", err)
	assert.Equal(t, reason, apperrors.ToDomainError(err).Message)
}

func TestCampaignService_ListEligible_FiltersAndKeepsNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 50, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	maxOne := int64(1)

	older := f.addCampaign(func(c *domain.Campaign) { c.Name = "older" })
	f.addCampaign(func(c *domain.Campaign) { c.TargetAudience = segmentPtr(domain.SegmentPremiumUsers) })
	f.addCampaign(func(c *domain.Campaign) { c.ApplicablePackages = []string{"gold"} })
	f.addCampaign(func(c *domain.Campaign) { c.MaxUses = &maxOne; c.CurrentUses = 1 })
	f.addCampaign(func(c *domain.Campaign) { c.IsActive = false })
	f.addCampaign(func(c *domain.Campaign) { c.StartDate = testNow.AddDate(0, 0, 1) })
	applied := f.addCampaign(func(c *domain.Campaign) { c.Name = "applied" })
	newer := f.addCampaign(func(c *domain.Campaign) {
		c.Name = "newer"
		c.TargetAudience = segmentPtr(domain.SegmentAll)
		c.ApplicablePackages = []string{"basic"}
	})

	svc := f.campaigns()
	_, err := svc.Apply(f.ctx, applied.ID, user.ID)
	require.NoError(t, err)

	eligible, err := svc.ListEligible(f.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, newer.ID, eligible[0].ID)
	assert.Equal(t, older.ID, eligible[1].ID)
}

func TestCampaignService_ListEligible_UsesOverdueSegment(t *testing.T) {
	f := newFixture(t)
	f.addPackage("gold", 250, 100, 0)
	user := f.addUser(func(u *domain.User) {
		u.CurrentPackageID = strPtr("gold")
		u.PaymentStatus = domain.PaymentStatusOverdue
	})
	overdue := f.addCampaign(func(c *domain.Campaign) { c.TargetAudience = segmentPtr(domain.SegmentOverdueUsers) })
	f.addCampaign(func(c *domain.Campaign) { c.TargetAudience = segmentPtr(domain.SegmentPremiumUsers) })

	eligible, err := f.campaigns().ListEligible(f.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, overdue.ID, eligible[0].ID)
}

func TestCampaignService_ListEligible_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.campaigns().ListEligible(f.ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCampaignService_Apply_AmountWinsOverPercentage(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	campaign := f.addCampaign(func(c *domain.Campaign) {
		c.DiscountAmount = 50
		c.DiscountPercentage = 20
		c.FreeDataGB = 5
		c.FreeVoiceMinutes = 100
	})

	result, err := f.campaigns().Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Benefits.DiscountApplied)
	assert.Equal(t, int64(5), result.Benefits.DataBonusGB)
	assert.Equal(t, int64(100), result.Benefits.VoiceBonusMinutes)
	assert.Equal(t, domain.UserCampaignActive, result.UserCampaign.Status)
	assert.Equal(t, campaign.EndDate, result.UserCampaign.ExpiresAt)

	stored, err := f.store.Campaigns().GetByID(f.ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.CurrentUses)
}

func TestCampaignService_Apply_PercentageOfPackagePrice(t *testing.T) {
	f := newFixture(t)
	f.addPackage("plus", 199.99, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("plus") })
	campaign := f.addCampaign(func(c *domain.Campaign) { c.DiscountPercentage = 20 })

	result, err := f.campaigns().Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 39.998, result.UserCampaign.DiscountApplied, 1e-9)
}

func TestCampaignService_Apply_DiscountFrozenAfterCampaignEdit(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	campaign := f.addCampaign(func(c *domain.Campaign) { c.DiscountAmount = 15 })
	svc := f.campaigns()

	_, err := svc.Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)

	campaign.DiscountAmount = 99
	require.NoError(t, f.store.Campaigns().Update(f.ctx, campaign))

	summary, err := svc.SummarizeUserCampaigns(f.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, summary.ActiveCampaigns, 1)
	assert.Equal(t, 15.0, summary.ActiveCampaigns[0].DiscountApplied)
}

func TestCampaignService_Apply_Rejections(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	bare := f.addUser(nil)
	maxOne := int64(1)
	svc := f.campaigns()

	inactive := f.addCampaign(func(c *domain.Campaign) { c.IsActive = false })
	ended := f.addCampaign(func(c *domain.Campaign) { c.EndDate = testNow.Add(-time.Hour) })
	exhausted := f.addCampaign(func(c *domain.Campaign) { c.MaxUses = &maxOne; c.CurrentUses = 1 })
	gold := f.addCampaign(func(c *domain.Campaign) { c.ApplicablePackages = []string{"gold"} })
	percent := f.addCampaign(func(c *domain.Campaign) { c.DiscountPercentage = 10 })

	_, err := svc.Apply(f.ctx, inactive.ID, user.ID)
	requireInvalidState(t, err, ReasonCampaignNotRunning)

	_, err = svc.Apply(f.ctx, ended.ID, user.ID)
	requireInvalidState(t, err, ReasonCampaignNotRunning)

	_, err = svc.Apply(f.ctx, exhausted.ID, user.ID)
	requireInvalidState(t, err, ReasonUsageLimitReached)

	_, err = svc.Apply(f.ctx, gold.ID, user.ID)
	requireInvalidState(t, err, ReasonPackageNotEligible)

	_, err = svc.Apply(f.ctx, percent.ID, bare.ID)
	requireInvalidState(t, err, ReasonPackagePriceRequired)

	_, err = svc.Apply(f.ctx, 9999, user.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Apply(f.ctx, percent.ID, 9999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCampaignService_Apply_SecondApplicationRejected(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	campaign := f.addCampaign(nil)
	svc := f.campaigns()

	_, err := svc.Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)

	_, err = svc.Apply(f.ctx, campaign.ID, user.ID)
	requireInvalidState(t, err, ReasonAlreadyApplied)

	stored, err := f.store.Campaigns().GetByID(f.ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.CurrentUses)
}

func TestCampaignService_Apply_ConcurrentLastUse(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	first := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	second := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	maxOne := int64(1)
	campaign := f.addCampaign(func(c *domain.Campaign) { c.MaxUses = &maxOne })
	svc := f.campaigns()

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i, userID := range []int64{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Apply(f.ctx, campaign.ID, userID)
		}(i, userID)
	}
	close(start)
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireInvalidState(t, err, ReasonUsageLimitReached)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.store.Campaigns().GetByID(f.ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.CurrentUses)
}

func TestCampaignService_SummarizeUserCampaigns_SkipsExpired(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	shortLived := f.addCampaign(func(c *domain.Campaign) {
		c.EndDate = testNow.Add(time.Hour)
		c.DiscountAmount = 10
		c.FreeDataGB = 1
	})
	longLived := f.addCampaign(func(c *domain.Campaign) {
		c.DiscountAmount = 20
		c.FreeDataGB = 2
		c.FreeVoiceMinutes = 30
	})
	svc := f.campaigns()

	_, err := svc.Apply(f.ctx, shortLived.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.Apply(f.ctx, longLived.ID, user.ID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	summary, err := svc.SummarizeUserCampaigns(f.ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CampaignsCount)
	require.Len(t, summary.ActiveCampaigns, 1)
	require.NotNil(t, summary.ActiveCampaigns[0].Campaign)
	assert.Equal(t, longLived.CampaignID, summary.ActiveCampaigns[0].Campaign.CampaignID)
	assert.Equal(t, BenefitTotals{TotalDiscount: 20, TotalDataBonus: 2, TotalVoiceBonus: 30}, summary.TotalBenefits)
	require.NotNil(t, summary.UserInfo.Package)
	assert.Equal(t, "basic", summary.UserInfo.Package.PackageID)
}

func TestCampaignService_ExpireOldCampaigns_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	user := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	campaign := f.addCampaign(func(c *domain.Campaign) { c.EndDate = testNow.Add(time.Hour) })
	svc := f.campaigns()

	_, err := svc.Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	first, err := svc.ExpireOldCampaigns(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ExpiredUserCampaigns)

	second, err := svc.ExpireOldCampaigns(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, second.ExpiredUserCampaigns)
}

func TestCampaignService_Analytics(t *testing.T) {
	f := newFixture(t)
	f.addPackage("basic", 100, 10, 500)
	f.addPackage("gold", 300, 100, 0)
	basicUser := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("basic") })
	goldUser := f.addUser(func(u *domain.User) { u.CurrentPackageID = strPtr("gold") })
	noPkgUser := f.addUser(nil)
	maxUses := int64(8)
	campaign := f.addCampaign(func(c *domain.Campaign) {
		c.DiscountPercentage = 10
		c.FreeDataGB = 3
		c.MaxUses = &maxUses
	})
	svc := f.campaigns()

	for _, id := range []int64{basicUser.ID, goldUser.ID} {
		_, err := svc.Apply(f.ctx, campaign.ID, id)
		require.NoError(t, err)
	}
	_, err := svc.Apply(f.ctx, campaign.ID, noPkgUser.ID)
	requireInvalidState(t, err, ReasonPackagePriceRequired)

	report, err := svc.Analytics(f.ctx, campaign.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalApplications)
	require.NotNil(t, report.RemainingUses)
	assert.Equal(t, int64(6), *report.RemainingUses)
	require.NotNil(t, report.UsagePercentage)
	assert.Equal(t, "25.00", report.UsagePercentage.String())
	assert.InDelta(t, 40.0, report.TotalDiscountGiven, 1e-9)
	assert.Equal(t, 20.0, report.AverageDiscountPerUser)
	assert.Equal(t, int64(6), report.TotalDataBonusGiven)
	require.Contains(t, report.UserSegments, "gold")
	assert.Equal(t, 1, report.UserSegments["gold"].Count)
	assert.InDelta(t, 30.0, report.UserSegments["gold"].TotalDiscount, 1e-9)
}

func TestCampaignService_Analytics_UnlimitedAndEmpty(t *testing.T) {
	f := newFixture(t)
	campaign := f.addCampaign(nil)

	report, err := f.campaigns().Analytics(f.ctx, campaign.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalApplications)
	assert.Nil(t, report.RemainingUses)
	assert.Nil(t, report.UsagePercentage)
	assert.Zero(t, report.AverageDiscountPerUser)
	assert.Empty(t, report.UserSegments)
}

func TestCampaignService_Analytics_UnknownPackageBucket(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(nil)
	campaign := f.addCampaign(func(c *domain.Campaign) { c.DiscountAmount = 5 })
	svc := f.campaigns()

	_, err := svc.Apply(f.ctx, campaign.ID, user.ID)
	require.NoError(t, err)

	report, err := svc.Analytics(f.ctx, campaign.ID)
	require.NoError(t, err)
	require.Contains(t, report.UserSegments, UnknownPackageSegment)
	assert.Equal(t, 1, report.UserSegments[UnknownPackageSegment].Count)
}

func TestCampaignService_Create_Validates(t *testing.T) {
	f := newFixture(t)
	svc := f.campaigns()
	zero := int64(0)

	_, err := svc.Create(f.ctx, CampaignInput{
		Name:               "bad",
		CampaignType:       "bogus",
		DiscountPercentage: 120,
		StartDate:          testNow,
		EndDate:            testNow.Add(-time.Hour),
		MaxUses:            &zero,
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Contains(t, domainErr.Details, "campaign_type")
	assert.Contains(t, domainErr.Details, "discount_percentage")
	assert.Contains(t, domainErr.Details, "end_date")
	assert.Contains(t, domainErr.Details, "max_uses")

	created, err := svc.Create(f.ctx, CampaignInput{
		Name:         "Welcome",
		CampaignType: domain.CampaignTypePromotion,
		StartDate:    testNow,
		EndDate:      testNow.AddDate(0, 1, 0),
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^CMP-[0-9A-F]{8}$`, created.CampaignID)
	assert.NotZero(t, created.ID)
}

func TestCampaignService_Update_MaxUsesBelowCurrentUses(t *testing.T) {
	f := newFixture(t)
	svc := f.campaigns()
	limit := int64(10)
	campaign := f.addCampaign(func(c *domain.Campaign) {
		c.MaxUses = &limit
		c.CurrentUses = 3
	})

	input := CampaignInput{
		Name:         campaign.Name,
		CampaignType: campaign.CampaignType,
		StartDate:    campaign.StartDate,
		EndDate:      campaign.EndDate,
		IsActive:     true,
	}

	tooLow := int64(2)
	input.MaxUses = &tooLow
	_, err := svc.Update(f.ctx, campaign.ID, input)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	assert.Equal(t, "must not be below current uses (3)", domainErr.Details["max_uses"])

	stored, err := svc.Get(f.ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MaxUses)
	assert.Equal(t, int64(10), *stored.MaxUses)

	exact := int64(3)
	input.MaxUses = &exact
	updated, err := svc.Update(f.ctx, campaign.ID, input)
	require.NoError(t, err)
	require.NotNil(t, updated.MaxUses)
	assert.Equal(t, int64(3), *updated.MaxUses)
	assert.Equal(t, int64(3), updated.CurrentUses)
}
