package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// CampaignRequest payload for creating or replacing a campaign.
type CampaignRequest struct {
	CampaignID         string    `json:"campaign_id" validate:"omitempty,max=20"`
	Name               string    `json:"name" validate:"required,max=100"`
	Description        string    `json:"description"`
	CampaignType       string    `json:"campaign_type" validate:"required,oneof=promotion discount upgrade loyalty referral"`
	TargetAudience     *string   `json:"target_audience" validate:"omitempty,oneof=all premium_users new_users overdue_users"`
	DiscountPercentage float64   `json:"discount_percentage" validate:"gte=0,lte=100"`
	DiscountAmount     float64   `json:"discount_amount" validate:"gte=0"`
	FreeDataGB         int64     `json:"free_data_gb" validate:"gte=0"`
	FreeVoiceMinutes   int64     `json:"free_voice_minutes" validate:"gte=0"`
	ApplicablePackages []string  `json:"applicable_packages" validate:"omitempty,dive,required"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	IsActive           *bool     `json:"is_active"`
	MaxUses            *int64    `json:"max_uses" validate:"omitempty,gt=0"`
	TermsConditions    string    `json:"terms_conditions"`
}

// CampaignResponse renders one campaign.
type CampaignResponse struct {
	ID                 int64               `json:"id"`
	CampaignID         string              `json:"campaign_id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	CampaignType       domain.CampaignType `json:"campaign_type"`
	TargetAudience     *domain.Segment     `json:"target_audience"`
	DiscountPercentage float64             `json:"discount_percentage"`
	DiscountAmount     float64             `json:"discount_amount"`
	FreeDataGB         int64               `json:"free_data_gb"`
	FreeVoiceMinutes   int64               `json:"free_voice_minutes"`
	ApplicablePackages []string            `json:"applicable_packages"`
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	IsActive           bool                `json:"is_active"`
	MaxUses            *int64              `json:"max_uses"`
	CurrentUses        int64               `json:"current_uses"`
	TermsConditions    string              `json:"terms_conditions"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// NewCampaignResponse maps a domain campaign.
func NewCampaignResponse(c *domain.Campaign) CampaignResponse {
	packages := c.ApplicablePackages
	if packages == nil {
		packages = []string{}
	}
	return CampaignResponse{
		ID:                 c.ID,
		CampaignID:         c.CampaignID,
		Name:               c.Name,
		Description:        c.Description,
		CampaignType:       c.CampaignType,
		TargetAudience:     c.TargetAudience,
		DiscountPercentage: c.DiscountPercentage,
		DiscountAmount:     c.DiscountAmount,
		FreeDataGB:         c.FreeDataGB,
		FreeVoiceMinutes:   c.FreeVoiceMinutes,
		ApplicablePackages: packages,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		IsActive:           c.IsActive,
		MaxUses:            c.MaxUses,
		CurrentUses:        c.CurrentUses,
		TermsConditions:    c.TermsConditions,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// CampaignRefResponse is the parent campaign shown next to an application.
type CampaignRefResponse struct {
	CampaignID   string              `json:"campaign_id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	CampaignType domain.CampaignType `json:"campaign_type"`
	EndDate      time.Time           `json:"end_date"`
}

// UserCampaignResponse renders one campaign application.
type UserCampaignResponse struct {
	ID                int64                     `json:"id"`
	UserID            int64                     `json:"user_id"`
	CampaignID        int64                     `json:"campaign_id"`
	AppliedDate       time.Time                 `json:"applied_date"`
	Status            domain.UserCampaignStatus `json:"status"`
	DiscountApplied   float64                   `json:"discount_applied"`
	DataBonusGB       int64                     `json:"data_bonus_gb"`
	VoiceBonusMinutes int64                     `json:"voice_bonus_minutes"`
	ExpiresAt         time.Time                 `json:"expires_at"`
	Notes             string                    `json:"notes,omitempty"`
	Campaign          *CampaignRefResponse      `json:"campaign,omitempty"`
}

// NewUserCampaignResponse maps a domain application.
func NewUserCampaignResponse(uc *domain.UserCampaign) UserCampaignResponse {
	resp := UserCampaignResponse{
		ID:                uc.ID,
		UserID:            uc.UserID,
		CampaignID:        uc.CampaignID,
		AppliedDate:       uc.AppliedDate,
		Status:            uc.Status,
		DiscountApplied:   uc.DiscountApplied,
		DataBonusGB:       uc.DataBonusGB,
		VoiceBonusMinutes: uc.VoiceBonusMinutes,
		ExpiresAt:         uc.ExpiresAt,
		Notes:             uc.Notes,
	}
	if uc.Campaign != nil {
		resp.Campaign = &CampaignRefResponse{
			CampaignID:   uc.Campaign.CampaignID,
			Name:         uc.Campaign.Name,
			Description:  uc.Campaign.Description,
			CampaignType: uc.Campaign.CampaignType,
			EndDate:      uc.Campaign.EndDate,
		}
	}
	return resp
}

// BenefitsResponse echoes the values granted by one application.
type BenefitsResponse struct {
	DiscountApplied   float64 `json:"discount_applied"`
	DataBonusGB       int64   `json:"data_bonus_gb"`
	VoiceBonusMinutes int64   `json:"voice_bonus_minutes"`
}

// ApplyCampaignResponse is returned after a successful application.
type ApplyCampaignResponse struct {
	UserCampaign UserCampaignResponse `json:"user_campaign"`
	Benefits     BenefitsResponse     `json:"benefits"`
}

// NewApplyCampaignResponse maps an apply result.
func NewApplyCampaignResponse(r *service.ApplyResult) ApplyCampaignResponse {
	return ApplyCampaignResponse{
		UserCampaign: NewUserCampaignResponse(&r.UserCampaign),
		Benefits: BenefitsResponse{
			DiscountApplied:   r.Benefits.DiscountApplied,
			DataBonusGB:       r.Benefits.DataBonusGB,
			VoiceBonusMinutes: r.Benefits.VoiceBonusMinutes,
		},
	}
}

// TotalBenefitsResponse sums benefits over several applications.
type TotalBenefitsResponse struct {
	TotalDiscount   float64 `json:"total_discount"`
	TotalDataBonus  int64   `json:"total_data_bonus"`
	TotalVoiceBonus int64   `json:"total_voice_bonus"`
}

func newTotalBenefits(t service.BenefitTotals) TotalBenefitsResponse {
	return TotalBenefitsResponse{
		TotalDiscount:   t.TotalDiscount,
		TotalDataBonus:  t.TotalDataBonus,
		TotalVoiceBonus: t.TotalVoiceBonus,
	}
}

// CampaignUserPackage is the package block of a campaign summary.
type CampaignUserPackage struct {
	PackageID string  `json:"package_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// CampaignUserInfoResponse identifies the user in a campaign summary.
type CampaignUserInfoResponse struct {
	ID          int64                `json:"id"`
	CustomerID  string               `json:"customer_id"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	PhoneNumber string               `json:"phone_number"`
	Package     *CampaignUserPackage `json:"package"`
}

// UserCampaignsResponse lists a user's effectively active applications.
type UserCampaignsResponse struct {
	UserInfo        CampaignUserInfoResponse `json:"user_info"`
	ActiveCampaigns []UserCampaignResponse   `json:"active_campaigns"`
	TotalBenefits   TotalBenefitsResponse    `json:"total_benefits"`
	CampaignsCount  int                      `json:"campaigns_count"`
}

// NewUserCampaignsResponse maps a campaign summary.
func NewUserCampaignsResponse(s *service.UserCampaignSummary) UserCampaignsResponse {
	info := CampaignUserInfoResponse{
		ID:          s.UserInfo.ID,
		CustomerID:  s.UserInfo.CustomerID,
		FirstName:   s.UserInfo.FirstName,
		LastName:    s.UserInfo.LastName,
		PhoneNumber: s.UserInfo.PhoneNumber,
	}
	if pkg := s.UserInfo.Package; pkg != nil {
		info.Package = &CampaignUserPackage{PackageID: pkg.PackageID, Name: pkg.Name, Price: pkg.Price}
	}
	active := make([]UserCampaignResponse, 0, len(s.ActiveCampaigns))
	for i := range s.ActiveCampaigns {
		active = append(active, NewUserCampaignResponse(&s.ActiveCampaigns[i]))
	}
	return UserCampaignsResponse{
		UserInfo:        info,
		ActiveCampaigns: active,
		TotalBenefits:   newTotalBenefits(s.TotalBenefits),
		CampaignsCount:  s.CampaignsCount,
	}
}

// ExpireCampaignsResponse reports one expiry sweep.
type ExpireCampaignsResponse struct {
	ExpiredUserCampaigns int64 `json:"expired_user_campaigns"`
}

// CampaignAnalyticsResponse groups the analytics report the way dashboards consume it.
type CampaignAnalyticsResponse struct {
	CampaignInfo    CampaignInfoBlock             `json:"campaign_info"`
	UsageStats      UsageStatsBlock               `json:"usage_stats"`
	FinancialImpact FinancialImpactBlock          `json:"financial_impact"`
	DataImpact      DataImpactBlock               `json:"data_impact"`
	UserSegments    map[string]SegmentImpactBlock `json:"user_segments"`
}

// CampaignInfoBlock identifies the analysed campaign.
type CampaignInfoBlock struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Type      domain.CampaignType `json:"type"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
}

// UsageStatsBlock reports how much of the usage cap is consumed.
type UsageStatsBlock struct {
	TotalApplications int             `json:"total_applications"`
	MaxUses           *int64          `json:"max_uses"`
	RemainingUses     *int64          `json:"remaining_uses"`
	UsagePercentage   *domain.Percent `json:"usage_percentage"`
}

// FinancialImpactBlock reports discounts granted.
type FinancialImpactBlock struct {
	TotalDiscountGiven     float64 `json:"total_discount_given"`
	AverageDiscountPerUser float64 `json:"average_discount_per_user"`
}

// DataImpactBlock reports bonuses granted.
type DataImpactBlock struct {
	TotalDataBonusGiven  int64 `json:"total_data_bonus_given"`
	TotalVoiceBonusGiven int64 `json:"total_voice_bonus_given"`
}

// SegmentImpactBlock aggregates applications for one package.
type SegmentImpactBlock struct {
	Count int `json:"count"`
	TotalBenefitsResponse
}

// NewCampaignAnalyticsResponse maps an analytics report.
func NewCampaignAnalyticsResponse(a *service.CampaignAnalytics) CampaignAnalyticsResponse {
	segments := make(map[string]SegmentImpactBlock, len(a.UserSegments))
	for key, impact := range a.UserSegments {
		segments[key] = SegmentImpactBlock{
			Count:                 impact.Count,
			TotalBenefitsResponse: newTotalBenefits(impact.BenefitTotals),
		}
	}
	return CampaignAnalyticsResponse{
		CampaignInfo: CampaignInfoBlock{
			ID:        a.Campaign.ID,
			Name:      a.Campaign.Name,
			Type:      a.Campaign.CampaignType,
			StartDate: a.Campaign.StartDate,
			EndDate:   a.Campaign.EndDate,
		},
		UsageStats: UsageStatsBlock{
			TotalApplications: a.TotalApplications,
			MaxUses:           a.Campaign.MaxUses,
			RemainingUses:     a.RemainingUses,
			UsagePercentage:   a.UsagePercentage,
		},
		FinancialImpact: FinancialImpactBlock{
			TotalDiscountGiven:     a.TotalDiscountGiven,
			AverageDiscountPerUser: a.AverageDiscountPerUser,
		},
		DataImpact: DataImpactBlock{
			TotalDataBonusGiven:  a.TotalDataBonusGiven,
			TotalVoiceBonusGiven: a.TotalVoiceBonusGiven,
		},
		UserSegments: segments,
	}
}
