package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/telecom-backoffice/internal/api/dto"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// TicketsHandler manages support ticket endpoints.
type TicketsHandler struct {
	support *service.SupportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(support *service.SupportService) *TicketsHandler {
	return &TicketsHandler{support: support}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.support.Create(c.UserContext(), service.TicketCreateInput{
		UserID:      req.UserID,
		IssueType:   req.IssueType,
		Priority:    domain.TicketPriority(req.Priority),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	limit, offset := page(c, service.DefaultTicketLimit)
	filter := service.TicketListFilter{
		Status:   optional[domain.TicketStatus](c.Query("status")),
		Priority: optional[domain.TicketPriority](c.Query("priority")),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.UserID = &userID
		}
	}
	tickets, err := h.support.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.support.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	input := service.TicketUpdateInput{
		IssueType:   req.IssueType,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		input.Priority = optional[domain.TicketPriority](*req.Priority)
	}
	if req.Status != nil {
		input.Status = optional[domain.TicketStatus](*req.Status)
	}
	ticket, err := h.support.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResolveTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.support.Resolve(c.UserContext(), id, req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
