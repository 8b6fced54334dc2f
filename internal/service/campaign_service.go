package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// Rejection reasons returned to callers of Apply.
const (
	ReasonCampaignNotRunning   = "Campaign is not active or has expired"
	ReasonUsageLimitReached    = "Campaign has reached maximum usage limit"
	ReasonAlreadyApplied       = "User already has this campaign applied"
	ReasonPackageNotEligible   = "User's current package is not eligible for this campaign"
	ReasonPackagePriceRequired = "User has no package to price a percentage discount"
)

// UnknownPackageSegment labels applications of users without a package in analytics.
const UnknownPackageSegment = "unknown"

// CampaignService evaluates eligibility, applies campaigns and reports on their use.
type CampaignService struct {
	campaigns    repository.CampaignRepository
	applications repository.UserCampaignRepository
	users        repository.UserRepository
	packages     repository.PackageRepository
	rt           Runtime
	tracer       trace.Tracer
}

// CampaignDependencies bundles repositories for campaign service.
type CampaignDependencies struct {
	CampaignRepo     repository.CampaignRepository
	UserCampaignRepo repository.UserCampaignRepository
	UserRepo         repository.UserRepository
	PackageRepo      repository.PackageRepository
	Runtime          Runtime
}

// NewCampaignService constructs the service.
func NewCampaignService(deps CampaignDependencies) *CampaignService {
	rt := deps.Runtime.withDefaults()
	return &CampaignService{
		campaigns:    deps.CampaignRepo,
		applications: deps.UserCampaignRepo,
		users:        deps.UserRepo,
		packages:     deps.PackageRepo,
		rt:           rt,
		tracer:       rt.tracer(),
	}
}

// CampaignInput carries the writable campaign fields.
type CampaignInput struct {
	CampaignID         string
	Name               string
	Description        string
	CampaignType       domain.CampaignType
	TargetAudience     *domain.Segment
	DiscountPercentage float64
	DiscountAmount     float64
	FreeDataGB         int64
	FreeVoiceMinutes   int64
	ApplicablePackages []string
	StartDate          time.Time
	EndDate            time.Time
	IsActive           bool
	MaxUses            *int64
	TermsConditions    string
}

// CampaignListFilter narrows the running-campaign listing.
type CampaignListFilter struct {
	Active *bool
	Type   *domain.CampaignType
}

// ApplyResult is the outcome of a successful application.
type ApplyResult struct {
	UserCampaign domain.UserCampaign
	Benefits     domain.Benefits
}

// CampaignUserInfo identifies the user in a campaign summary.
type CampaignUserInfo struct {
	ID          int64
	CustomerID  string
	FirstName   string
	LastName    string
	PhoneNumber string
	Package     *domain.Package
}

// BenefitTotals sums benefits over a set of applications.
type BenefitTotals struct {
	TotalDiscount   float64
	TotalDataBonus  int64
	TotalVoiceBonus int64
}

func (t *BenefitTotals) add(uc domain.UserCampaign) {
	t.TotalDiscount += uc.DiscountApplied
	t.TotalDataBonus += uc.DataBonusGB
	t.TotalVoiceBonus += uc.VoiceBonusMinutes
}

// UserCampaignSummary lists a user's effectively active applications.
type UserCampaignSummary struct {
	UserInfo        CampaignUserInfo
	ActiveCampaigns []domain.UserCampaign
	TotalBenefits   BenefitTotals
	CampaignsCount  int
}

// ExpireResult reports one expiry sweep.
type ExpireResult struct {
	ExpiredUserCampaigns int64
}

// SegmentImpact aggregates applications for one package.
type SegmentImpact struct {
	Count int
	BenefitTotals
}

// CampaignAnalytics reports usage and benefit totals for a campaign.
type CampaignAnalytics struct {
	Campaign          domain.Campaign
	TotalApplications int
	// RemainingUses and UsagePercentage are nil for uncapped campaigns.
	RemainingUses          *int64
	UsagePercentage        *domain.Percent
	TotalDiscountGiven     float64
	AverageDiscountPerUser float64
	TotalDataBonusGiven    int64
	TotalVoiceBonusGiven   int64
	UserSegments           map[string]*SegmentImpact
}

// ListEligible returns running campaigns the user may still apply, newest first.
func (s *CampaignService) ListEligible(ctx context.Context, userID int64) ([]domain.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "CampaignService.ListEligible", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	user, pkg, err := loadAccount(ctx, s.users, s.packages, userID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	now := s.rt.Clock.Now()
	segment := domain.ComputeUserSegment(user, pkg, now)
	span.SetAttributes(attribute.String("user.segment", string(segment)))

	active := true
	candidates, err := s.campaigns.List(ctx, repository.CampaignFilter{
		Active:    &active,
		RunningAt: &now,
		Audiences: []domain.Segment{segment, domain.SegmentAll},
	})
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}

	eligible := make([]domain.Campaign, 0, len(candidates))
	for i := range candidates {
		campaign := &candidates[i]
		applied, err := s.applications.HasActive(ctx, userID, campaign.ID)
		if err != nil {
			return nil, failSpan(span, apperrors.NewInternalError(err))
		}
		if applied || !campaign.AllowsPackage(user.PackageKey()) || campaign.UsageExhausted() {
			continue
		}
		eligible = append(eligible, *campaign)
	}
	return eligible, nil
}

// Apply records a campaign application for a user and returns the frozen benefits.
func (s *CampaignService) Apply(ctx context.Context, campaignID, userID int64) (*ApplyResult, error) {
	ctx, span := s.tracer.Start(ctx, "CampaignService.Apply", trace.WithAttributes(
		attribute.Int64("campaign.id", campaignID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, failSpan(span, lookupError(err, "campaign", map[string]any{"campaign_id": campaignID}))
	}
	user, pkg, err := loadAccount(ctx, s.users, s.packages, userID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	now := s.rt.Clock.Now()
	if !campaign.IsRunning(now) {
		return nil, s.reject(span, "not_running", ReasonCampaignNotRunning)
	}
	if campaign.UsageExhausted() {
		return nil, s.reject(span, "limit_reached", ReasonUsageLimitReached)
	}
	applied, err := s.applications.HasActive(ctx, userID, campaignID)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}
	if applied {
		return nil, s.reject(span, "duplicate", ReasonAlreadyApplied)
	}
	if !campaign.AllowsPackage(user.PackageKey()) {
		return nil, s.reject(span, "package_ineligible", ReasonPackageNotEligible)
	}
	benefits, ok := campaign.ComputeBenefits(pkg)
	if !ok {
		return nil, s.reject(span, "unpriced", ReasonPackagePriceRequired)
	}

	application := domain.UserCampaign{
		UserID:            userID,
		CampaignID:        campaignID,
		AppliedDate:       now,
		Status:            domain.UserCampaignActive,
		DiscountApplied:   benefits.DiscountApplied,
		DataBonusGB:       benefits.DataBonusGB,
		VoiceBonusMinutes: benefits.VoiceBonusMinutes,
		ExpiresAt:         campaign.EndDate,
	}
	if err := s.campaigns.ApplyToUser(ctx, &application); err != nil {
		switch {
		case errors.Is(err, repository.ErrActiveApplicationExists):
			return nil, s.reject(span, "duplicate", ReasonAlreadyApplied)
		case errors.Is(err, repository.ErrUsageLimitReached):
			return nil, s.reject(span, "limit_reached", ReasonUsageLimitReached)
		default:
			return nil, failSpan(span, apperrors.NewInternalError(err))
		}
	}

	s.rt.Metrics.RecordCampaignApply("applied")
	s.rt.Logger.Info("campaign applied",
		zap.String("campaign_id", campaign.CampaignID),
		zap.Int64("user_id", userID),
		zap.Float64("discount_applied", benefits.DiscountApplied),
	)
	s.rt.publish(ctx, events.Event{
		Type:    events.EventCampaignApplied,
		Subject: campaign.CampaignID,
		UserID:  int64Ptr(userID),
		Payload: events.CampaignAppliedPayload{
			UserCampaignID:    application.ID,
			CampaignID:        campaignID,
			DiscountApplied:   benefits.DiscountApplied,
			DataBonusGB:       benefits.DataBonusGB,
			VoiceBonusMinutes: benefits.VoiceBonusMinutes,
			ExpiresAt:         application.ExpiresAt,
		},
	})

	return &ApplyResult{UserCampaign: application, Benefits: benefits}, nil
}

func (s *CampaignService) reject(span trace.Span, outcome, reason string) error {
	s.rt.Metrics.RecordCampaignApply(outcome)
	span.SetAttributes(attribute.String("campaign.rejection", outcome))
	return apperrors.NewInvalidState(reason, nil)
}

// SummarizeUserCampaigns lists the user's active, unexpired applications with benefit totals.
func (s *CampaignService) SummarizeUserCampaigns(ctx context.Context, userID int64) (*UserCampaignSummary, error) {
	ctx, span := s.tracer.Start(ctx, "CampaignService.SummarizeUserCampaigns", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	user, pkg, err := loadAccount(ctx, s.users, s.packages, userID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	active, err := s.applications.ListEffectivelyActive(ctx, userID, s.rt.Clock.Now())
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}

	summary := &UserCampaignSummary{
		UserInfo: CampaignUserInfo{
			ID:          user.ID,
			CustomerID:  user.CustomerID,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			PhoneNumber: user.PhoneNumber,
			Package:     pkg,
		},
		ActiveCampaigns: active,
		CampaignsCount:  len(active),
	}
	for _, uc := range active {
		summary.TotalBenefits.add(uc)
	}
	return summary, nil
}

// ExpireOldCampaigns moves active applications past their expiry to expired.
// Running it again without new stale rows expires nothing.
func (s *CampaignService) ExpireOldCampaigns(ctx context.Context) (*ExpireResult, error) {
	ctx, span := s.tracer.Start(ctx, "CampaignService.ExpireOldCampaigns")
	defer span.End()

	now := s.rt.Clock.Now()
	expired, err := s.applications.ExpireBefore(ctx, now)
	if err != nil {
		s.rt.Metrics.RecordExpirySweep("error", 0)
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}
	span.SetAttributes(attribute.Int64("campaign.expired", expired))
	s.rt.Metrics.RecordExpirySweep("ok", expired)

	if expired > 0 {
		s.rt.Logger.Info("campaign applications expired", zap.Int64("count", expired))
		s.rt.publish(ctx, events.Event{
			Type:      events.EventCampaignsExpired,
			Subject:   "user_campaigns",
			Timestamp: now,
			Payload:   events.CampaignsExpiredPayload{ExpiredCount: expired},
		})
	}
	return &ExpireResult{ExpiredUserCampaigns: expired}, nil
}

// Analytics reports usage, financial and per-package impact of a campaign.
func (s *CampaignService) Analytics(ctx context.Context, campaignID int64) (*CampaignAnalytics, error) {
	ctx, span := s.tracer.Start(ctx, "CampaignService.Analytics", trace.WithAttributes(attribute.Int64("campaign.id", campaignID)))
	defer span.End()

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, failSpan(span, lookupError(err, "campaign", map[string]any{"campaign_id": campaignID}))
	}
	applications, err := s.applications.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}

	report := &CampaignAnalytics{
		Campaign:          *campaign,
		TotalApplications: len(applications),
		UserSegments:      make(map[string]*SegmentImpact),
	}
	if campaign.MaxUses != nil {
		remaining := *campaign.MaxUses - campaign.CurrentUses
		usage := domain.Percent(float64(campaign.CurrentUses) / float64(*campaign.MaxUses) * 100)
		report.RemainingUses = &remaining
		report.UsagePercentage = &usage
	}

	for _, uc := range applications {
		report.TotalDiscountGiven += uc.DiscountApplied
		report.TotalDataBonusGiven += uc.DataBonusGB
		report.TotalVoiceBonusGiven += uc.VoiceBonusMinutes

		key := UnknownPackageSegment
		if uc.UserPackageID != nil && *uc.UserPackageID != "" {
			key = *uc.UserPackageID
		}
		impact, ok := report.UserSegments[key]
		if !ok {
			impact = &SegmentImpact{}
			report.UserSegments[key] = impact
		}
		impact.Count++
		impact.add(uc)
	}
	if len(applications) > 0 {
		report.AverageDiscountPerUser = roundCents(report.TotalDiscountGiven / float64(len(applications)))
	}
	return report, nil
}

// Create validates and stores a new campaign.
func (s *CampaignService) Create(ctx context.Context, input CampaignInput) (*domain.Campaign, error) {
	if err := validateCampaign(input, 0); err != nil {
		return nil, err
	}
	campaign := campaignFromInput(input)
	if campaign.CampaignID == "" {
		campaign.CampaignID = generateKey(campaignKeyPrefix)
	}
	if err := s.campaigns.Create(ctx, &campaign); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.rt.Logger.Info("campaign created", zap.String("campaign_id", campaign.CampaignID))
	return &campaign, nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "campaign", map[string]any{"campaign_id": id})
	}
	return campaign, nil
}

// List returns campaigns whose validity window contains now.
func (s *CampaignService) List(ctx context.Context, filter CampaignListFilter) ([]domain.Campaign, error) {
	now := s.rt.Clock.Now()
	campaigns, err := s.campaigns.List(ctx, repository.CampaignFilter{
		Active:    filter.Active,
		Type:      filter.Type,
		RunningAt: &now,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return campaigns, nil
}

// Update replaces the writable fields of a campaign. Usage counters are never touched.
func (s *CampaignService) Update(ctx context.Context, id int64, input CampaignInput) (*domain.Campaign, error) {
	existing, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "campaign", map[string]any{"campaign_id": id})
	}
	if err := validateCampaign(input, existing.CurrentUses); err != nil {
		return nil, err
	}
	campaign := campaignFromInput(input)
	campaign.ID = existing.ID
	campaign.CampaignID = existing.CampaignID
	if err := s.campaigns.Update(ctx, &campaign); err != nil {
		if errors.Is(err, repository.ErrMaxUsesBelowUsage) {
			return nil, apperrors.NewValidationError("invalid campaign", map[string]any{
				"max_uses": "must not be below current uses",
			})
		}
		return nil, lookupError(err, "campaign", map[string]any{"campaign_id": id})
	}
	return &campaign, nil
}

// Delete removes a campaign and its applications.
func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return lookupError(err, "campaign", map[string]any{"campaign_id": id})
	}
	s.rt.Logger.Info("campaign deleted", zap.Int64("id", id))
	return nil
}

func campaignFromInput(input CampaignInput) domain.Campaign {
	return domain.Campaign{
		CampaignID:         strings.TrimSpace(input.CampaignID),
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		CampaignType:       input.CampaignType,
		TargetAudience:     input.TargetAudience,
		DiscountPercentage: input.DiscountPercentage,
		DiscountAmount:     input.DiscountAmount,
		FreeDataGB:         input.FreeDataGB,
		FreeVoiceMinutes:   input.FreeVoiceMinutes,
		ApplicablePackages: input.ApplicablePackages,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		IsActive:           input.IsActive,
		MaxUses:            input.MaxUses,
		TermsConditions:    input.TermsConditions,
	}
}

// validateCampaign checks input; currentUses is the usage already recorded, which max_uses may not undercut.
func validateCampaign(input CampaignInput, currentUses int64) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	switch input.CampaignType {
	case domain.CampaignTypePromotion, domain.CampaignTypeDiscount, domain.CampaignTypeUpgrade,
		domain.CampaignTypeLoyalty, domain.CampaignTypeReferral:
	default:
		details["campaign_type"] = "must be one of promotion, discount, upgrade, loyalty, referral"
	}
	if input.TargetAudience != nil && !input.TargetAudience.Valid() {
		details["target_audience"] = "must be one of all, premium_users, new_users, overdue_users"
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		details["discount_percentage"] = "must be between 0 and 100"
	}
	if input.DiscountAmount < 0 {
		details["discount_amount"] = "must not be negative"
	}
	if input.FreeDataGB < 0 || input.FreeVoiceMinutes < 0 {
		details["bonus"] = "free data and voice must not be negative"
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		details["dates"] = "start_date and end_date are required"
	} else if input.EndDate.Before(input.StartDate) {
		details["end_date"] = "must not precede start_date"
	}
	if input.MaxUses != nil {
		switch {
		case *input.MaxUses <= 0:
			details["max_uses"] = "must be positive when set"
		case *input.MaxUses < currentUses:
			details["max_uses"] = fmt.Sprintf("must not be below current uses (%d)", currentUses)
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid campaign", details)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
