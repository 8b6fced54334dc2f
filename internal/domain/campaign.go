package domain

import (
	"slices"
	"time"
)

// CampaignType classifies a promotional campaign.
type CampaignType string

const (
	CampaignTypePromotion CampaignType = "promotion"
	CampaignTypeDiscount  CampaignType = "discount"
	CampaignTypeUpgrade   CampaignType = "upgrade"
	CampaignTypeLoyalty   CampaignType = "loyalty"
	CampaignTypeReferral  CampaignType = "referral"
)

// Campaign is a promotional offer that can be applied to users.
type Campaign struct {
	ID                 int64
	CampaignID         string
	Name               string
	Description        string
	CampaignType       CampaignType
	TargetAudience     *Segment
	DiscountPercentage float64
	DiscountAmount     float64
	FreeDataGB         int64
	FreeVoiceMinutes   int64
	ApplicablePackages []string
	StartDate          time.Time
	EndDate            time.Time
	IsActive           bool
	MaxUses            *int64
	CurrentUses        int64
	TermsConditions    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InWindow reports whether now lies within [StartDate, EndDate], both inclusive.
func (c *Campaign) InWindow(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// IsRunning reports whether the campaign is enabled and within its validity window.
func (c *Campaign) IsRunning(now time.Time) bool {
	return c.IsActive && c.InWindow(now)
}

// UsageExhausted reports whether a usage cap is set and reached.
func (c *Campaign) UsageExhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

// AllowsPackage reports whether a user on packageKey may use the campaign.
// An empty package list places no restriction.
func (c *Campaign) AllowsPackage(packageKey string) bool {
	if len(c.ApplicablePackages) == 0 {
		return true
	}
	return slices.Contains(c.ApplicablePackages, packageKey)
}

// Targets reports whether the campaign audience matches seg.
func (c *Campaign) Targets(seg Segment) bool {
	if c.TargetAudience == nil {
		return true
	}
	return *c.TargetAudience == SegmentAll || *c.TargetAudience == seg
}

// Benefits are the resolved values granted by one campaign application.
type Benefits struct {
	DiscountApplied   float64
	DataBonusGB       int64
	VoiceBonusMinutes int64
}

// ComputeBenefits resolves the discount and bonuses for a user on pkg.
// A nonzero fixed amount wins over the percentage; the two are never summed.
// The bool result is false when a percentage discount needs a package price and pkg is nil.
func (c *Campaign) ComputeBenefits(pkg *Package) (Benefits, bool) {
	b := Benefits{
		DataBonusGB:       c.FreeDataGB,
		VoiceBonusMinutes: c.FreeVoiceMinutes,
	}
	switch {
	case c.DiscountAmount != 0:
		b.DiscountApplied = c.DiscountAmount
	case c.DiscountPercentage != 0:
		if pkg == nil {
			return b, false
		}
		b.DiscountApplied = pkg.Price * (c.DiscountPercentage / 100)
	}
	return b, true
}
