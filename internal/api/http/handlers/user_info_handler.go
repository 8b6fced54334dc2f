package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// UserInfoHandler serves the per-account aggregate views.
type UserInfoHandler struct {
	accounts *service.AccountService
}

// NewUserInfoHandler constructs handler.
func NewUserInfoHandler(accounts *service.AccountService) *UserInfoHandler {
	return &UserInfoHandler{accounts: accounts}
}

// Package handles GET /user-info/:id/package.
func (h *UserInfoHandler) Package(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	info, err := h.accounts.PackageInfo(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPackageInfoResponse(info)})
}

// Bills handles GET /user-info/:id/bills?limit=&payment_status=.
func (h *UserInfoHandler) Bills(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	info, err := h.accounts.BillInfo(c.UserContext(), userID, service.BillInfoOptions{
		Limit:         parseInt(c.Query("limit"), service.DefaultBillLimit),
		PaymentStatus: optional[domain.PaymentStatus](c.Query("payment_status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBillInfoResponse(info)})
}

// Tickets handles GET /user-info/:id/tickets?limit=&status=&priority=.
func (h *UserInfoHandler) Tickets(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	info, err := h.accounts.SupportTickets(c.UserContext(), userID, service.TicketOptions{
		Limit:    parseInt(c.Query("limit"), service.DefaultTicketLimit),
		Status:   optional[domain.TicketStatus](c.Query("status")),
		Priority: optional[domain.TicketPriority](c.Query("priority")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSupportInfoResponse(info)})
}

// Complete handles GET /user-info/:id/complete.
func (h *UserInfoHandler) Complete(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	info, err := h.accounts.CompleteInfo(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCompleteInfoResponse(info)})
}

// Dashboard handles GET /user-info/:id/dashboard.
func (h *UserInfoHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	dashboard, err := h.accounts.Dashboard(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(dashboard)})
}
