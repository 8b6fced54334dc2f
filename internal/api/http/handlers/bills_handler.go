package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// BillsHandler exposes billing endpoints.
type BillsHandler struct {
	billing *service.BillingService
}

// NewBillsHandler constructs handler.
func NewBillsHandler(billing *service.BillingService) *BillsHandler {
	return &BillsHandler{billing: billing}
}

// Create handles POST /bills.
func (h *BillsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBillRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	bill, err := h.billing.Create(c.UserContext(), service.BillInput{
		BillID:             req.BillID,
		UserID:             req.UserID,
		BillingPeriodStart: req.BillingPeriodStart,
		BillingPeriodEnd:   req.BillingPeriodEnd,
		DueDate:            req.DueDate,
		TotalAmount:        req.TotalAmount,
		DataUsedGB:         req.DataUsedGB,
		VoiceUsedMinutes:   req.VoiceUsedMinutes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBillResponse(bill)})
}

// List handles GET /bills?user_id=&payment_status=.
func (h *BillsHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c, service.DefaultBillLimit)
	filter := service.BillListFilter{
		PaymentStatus: optional[domain.PaymentStatus](c.Query("payment_status")),
		Limit:         limit,
		Offset:        offset,
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.UserID = &userID
		}
	}
	bills, err := h.billing.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.BillResponse, 0, len(bills))
	for i := range bills {
		items = append(items, dto.NewBillResponse(&bills[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /bills/:id.
func (h *BillsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bill, err := h.billing.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBillResponse(bill)})
}

// Pay handles POST /bills/:id/pay.
func (h *BillsHandler) Pay(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bill, err := h.billing.Pay(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBillResponse(bill)})
}
