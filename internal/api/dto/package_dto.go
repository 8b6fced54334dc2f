package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// PackageRequest payload for creating or replacing a catalog entry.
// Limits of zero or below (conventionally -1) mean unlimited.
type PackageRequest struct {
	PackageID    string         `json:"package_id" validate:"required,max=20"`
	Name         string         `json:"name" validate:"required,max=100"`
	Price        float64        `json:"price" validate:"gte=0"`
	DataLimitGB  int64          `json:"data_limit_gb"`
	VoiceMinutes int64          `json:"voice_minutes"`
	SMSCount     int64          `json:"sms_count"`
	Features     map[string]any `json:"features"`
	IsActive     *bool          `json:"is_active"`
}

// PackageResponse renders a package; unlimited allowances render as "Unlimited".
type PackageResponse struct {
	ID           int64           `json:"id"`
	PackageID    string          `json:"package_id"`
	Name         string          `json:"name"`
	Price        float64         `json:"price"`
	DataLimitGB  domain.Quantity `json:"data_limit_gb"`
	VoiceMinutes domain.Quantity `json:"voice_minutes"`
	SMSCount     domain.Quantity `json:"sms_count"`
	Features     map[string]any  `json:"features"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewPackageResponse maps a domain package.
func NewPackageResponse(p *domain.Package) PackageResponse {
	return PackageResponse{
		ID:           p.ID,
		PackageID:    p.PackageID,
		Name:         p.Name,
		Price:        p.Price,
		DataLimitGB:  p.DataLimitGB,
		VoiceMinutes: p.VoiceMinutes,
		SMSCount:     p.SMSCount,
		Features:     p.Features,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
