package domain

import "time"

// UserCampaignStatus is the lifecycle state of a campaign application.
type UserCampaignStatus string

const (
	UserCampaignActive    UserCampaignStatus = "active"
	UserCampaignExpired   UserCampaignStatus = "expired"
	UserCampaignUsed      UserCampaignStatus = "used"
	UserCampaignCancelled UserCampaignStatus = "cancelled"
)

// UserCampaign links one user to one application of a campaign.
// DiscountApplied is frozen when the application is created.
type UserCampaign struct {
	ID                int64
	UserID            int64
	CampaignID        int64
	AppliedDate       time.Time
	Status            UserCampaignStatus
	DiscountApplied   float64
	DataBonusGB       int64
	VoiceBonusMinutes int64
	ExpiresAt         time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Campaign is populated by read paths that join the parent campaign.
	Campaign *CampaignRef
	// UserPackageID is populated by analytics reads that join the user.
	UserPackageID *string
}

// CampaignRef is the subset of a campaign shown next to an application.
type CampaignRef struct {
	CampaignID   string
	Name         string
	Description  string
	CampaignType CampaignType
	EndDate      time.Time
}

// IsEffectivelyActive reports whether the application is active and not yet past expiry.
// Read paths use this view; the expiry job separately moves stale rows to expired.
func (uc *UserCampaign) IsEffectivelyActive(now time.Time) bool {
	return uc.Status == UserCampaignActive && !uc.ExpiresAt.Before(now)
}
