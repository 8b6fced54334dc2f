package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/events"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// SupportService coordinates support ticket workflows.
type SupportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	rt      Runtime
}

// NewSupportService constructs the service.
func NewSupportService(tickets repository.TicketRepository, users repository.UserRepository, rt Runtime) *SupportService {
	return &SupportService{tickets: tickets, users: users, rt: rt.withDefaults()}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	UserID      int64
	IssueType   string
	Priority    domain.TicketPriority
	Title       string
	Description string
}

// TicketUpdateInput carries editable ticket fields; nil leaves a field unchanged.
type TicketUpdateInput struct {
	IssueType   *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	Title       *string
	Description *string
}

// TicketListFilter narrows the ticket listing.
type TicketListFilter struct {
	UserID   *int64
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Limit    int
	Offset   int
}

// Create opens a ticket for a user.
func (s *SupportService) Create(ctx context.Context, input TicketCreateInput) (*domain.SupportTicket, error) {
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": input.UserID})
	}
	ticket := &domain.SupportTicket{
		TicketID:    generateKey(ticketKeyPrefix),
		UserID:      input.UserID,
		IssueType:   strings.TrimSpace(input.IssueType),
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": ticket.Priority})
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.rt.Logger.Info("ticket created", zap.String("ticket_id", ticket.TicketID), zap.Int64("user_id", ticket.UserID))
	return ticket, nil
}

// Get returns one ticket.
func (s *SupportService) Get(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

// List returns tickets most severe first, then newest.
func (s *SupportService) List(ctx context.Context, filter TicketListFilter) ([]domain.SupportTicket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		UserID:   filter.UserID,
		Status:   filter.Status,
		Priority: filter.Priority,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// Update edits a ticket. Status may only move forward; resolving goes through Resolve.
func (s *SupportService) Update(ctx context.Context, id int64, input TicketUpdateInput) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": id})
	}
	if input.IssueType != nil {
		ticket.IssueType = strings.TrimSpace(*input.IssueType)
	}
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Status != nil && *input.Status != ticket.Status {
		next := *input.Status
		if !next.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": next})
		}
		if !domain.CanTransition(ticket.Status, next) {
			return nil, apperrors.NewInvalidState("Ticket status cannot move backwards", map[string]any{
				"from": ticket.Status,
				"to":   next,
			})
		}
		if next == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			now := s.rt.Clock.Now()
			ticket.ResolvedAt = &now
		}
		ticket.Status = next
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

// Resolve closes out an open ticket with a resolution note.
func (s *SupportService) Resolve(ctx context.Context, id int64, resolution string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": id})
	}
	if ticket.Status.IsResolved() {
		return nil, apperrors.NewInvalidState("Ticket is already resolved or closed", map[string]any{"status": ticket.Status})
	}

	previous := ticket.Status
	now := s.rt.Clock.Now()
	note := strings.TrimSpace(resolution)
	ticket.Status = domain.TicketStatusResolved
	ticket.Resolution = &note
	ticket.ResolvedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": id})
	}

	s.rt.Logger.Info("ticket resolved", zap.String("ticket_id", ticket.TicketID), zap.String("priority", string(ticket.Priority)))
	s.rt.publish(ctx, events.Event{
		Type:    events.EventTicketResolved,
		Subject: ticket.TicketID,
		UserID:  int64Ptr(ticket.UserID),
		Payload: events.TicketResolvedPayload{
			Priority:   ticket.Priority,
			OldStatus:  previous,
			Resolution: note,
		},
	})
	return ticket, nil
}
