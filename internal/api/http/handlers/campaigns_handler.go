package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// CampaignsHandler exposes campaign administration and the campaign engine.
type CampaignsHandler struct {
	campaigns *service.CampaignService
}

// NewCampaignsHandler constructs handler.
func NewCampaignsHandler(campaigns *service.CampaignService) *CampaignsHandler {
	return &CampaignsHandler{campaigns: campaigns}
}

// Create handles POST /campaigns.
func (h *CampaignsHandler) Create(c *fiber.Ctx) error {
	var req dto.CampaignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	campaign, err := h.campaigns.Create(c.UserContext(), campaignInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCampaignResponse(campaign)})
}

// List handles GET /campaigns?active=&type=. Only campaigns running today are listed.
func (h *CampaignsHandler) List(c *fiber.Ctx) error {
	campaigns, err := h.campaigns.List(c.UserContext(), service.CampaignListFilter{
		Active: parseBool(c.Query("active")),
		Type:   optional[domain.CampaignType](c.Query("type")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": campaignResponses(campaigns)})
}

// Get handles GET /campaigns/:id.
func (h *CampaignsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	campaign, err := h.campaigns.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCampaignResponse(campaign)})
}

// Update handles PUT /campaigns/:id.
func (h *CampaignsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CampaignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	campaign, err := h.campaigns.Update(c.UserContext(), id, campaignInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCampaignResponse(campaign)})
}

// Delete handles DELETE /campaigns/:id.
func (h *CampaignsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.campaigns.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Apply handles POST /campaigns/:id/apply/:userId.
func (h *CampaignsHandler) Apply(c *fiber.Ctx) error {
	campaignID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	result, err := h.campaigns.Apply(c.UserContext(), campaignID, userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewApplyCampaignResponse(result)})
}

// UserCampaigns handles GET /campaigns/user/:userId.
func (h *CampaignsHandler) UserCampaigns(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	summary, err := h.campaigns.SummarizeUserCampaigns(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserCampaignsResponse(summary)})
}

// Eligible handles GET /campaigns/eligible/:userId.
func (h *CampaignsHandler) Eligible(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	campaigns, err := h.campaigns.ListEligible(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": campaignResponses(campaigns)})
}

// Analytics handles GET /campaigns/:id/analytics.
func (h *CampaignsHandler) Analytics(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.campaigns.Analytics(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCampaignAnalyticsResponse(report)})
}

// Expire handles POST /campaigns/expire.
func (h *CampaignsHandler) Expire(c *fiber.Ctx) error {
	result, err := h.campaigns.ExpireOldCampaigns(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ExpireCampaignsResponse{ExpiredUserCampaigns: result.ExpiredUserCampaigns}})
}

func campaignResponses(campaigns []domain.Campaign) []dto.CampaignResponse {
	items := make([]dto.CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, dto.NewCampaignResponse(&campaigns[i]))
	}
	return items
}

func campaignInput(req dto.CampaignRequest) service.CampaignInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	input := service.CampaignInput{
		CampaignID:         req.CampaignID,
		Name:               req.Name,
		Description:        req.Description,
		CampaignType:       domain.CampaignType(req.CampaignType),
		DiscountPercentage: req.DiscountPercentage,
		DiscountAmount:     req.DiscountAmount,
		FreeDataGB:         req.FreeDataGB,
		FreeVoiceMinutes:   req.FreeVoiceMinutes,
		ApplicablePackages: req.ApplicablePackages,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		IsActive:           active,
		MaxUses:            req.MaxUses,
		TermsConditions:    req.TermsConditions,
	}
	if req.TargetAudience != nil {
		input.TargetAudience = optional[domain.Segment](*req.TargetAudience)
	}
	return input
}
