package domain

import "time"

// Package is a catalog entry keyed by its business key PackageID.
type Package struct {
	ID           int64
	PackageID    string
	Name         string
	Price        float64
	DataLimitGB  Quantity
	VoiceMinutes Quantity
	SMSCount     Quantity
	Features     map[string]any
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PremiumPriceThreshold is the monthly price from which subscribers count as premium.
const PremiumPriceThreshold = 200.0
