package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	IssueType   string `json:"issue_type" validate:"required,max=50"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// UpdateTicketRequest payload; absent fields are left unchanged.
type UpdateTicketRequest struct {
	IssueType   *string `json:"issue_type" validate:"omitempty,max=50"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// TicketResponse renders one ticket. DaysOpen and IsOverdue are set on account views.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	TicketID    string                `json:"ticket_id"`
	UserID      int64                 `json:"user_id"`
	IssueType   string                `json:"issue_type"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Resolution  *string               `json:"resolution"`
	ResolvedAt  *time.Time            `json:"resolved_at"`
	DaysOpen    *int                  `json:"days_open,omitempty"`
	IsOverdue   *bool                 `json:"is_overdue,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.SupportTicket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		TicketID:    t.TicketID,
		UserID:      t.UserID,
		IssueType:   t.IssueType,
		Priority:    t.Priority,
		Status:      t.Status,
		Title:       t.Title,
		Description: t.Description,
		Resolution:  t.Resolution,
		ResolvedAt:  t.ResolvedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
