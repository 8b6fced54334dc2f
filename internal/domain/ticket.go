package domain

import (
	"math"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketOverdueAfterDays is how long an open ticket may wait before it is flagged.
const TicketOverdueAfterDays = 7

var priorityRank = map[TicketPriority]int{
	TicketPriorityLow:    0,
	TicketPriorityMedium: 1,
	TicketPriorityHigh:   2,
	TicketPriorityUrgent: 3,
}

// Rank orders priorities by severity; unknown values sort below low.
func (p TicketPriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Valid reports whether the priority is known.
func (p TicketPriority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

var statusOrder = map[TicketStatus]int{
	TicketStatusOpen:       0,
	TicketStatusInProgress: 1,
	TicketStatusResolved:   2,
	TicketStatusClosed:     3,
}

// Valid reports whether the status is known.
func (s TicketStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// IsOpen reports whether the ticket still needs work.
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// IsResolved reports whether the ticket reached a terminal outcome.
func (s TicketStatus) IsResolved() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// CanTransition reports whether status may move from current to next.
// Tickets only move forward; re-opening is not modeled.
func CanTransition(current, next TicketStatus) bool {
	from, ok := statusOrder[current]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// SupportTicket is the aggregate for customer support requests.
type SupportTicket struct {
	ID          int64
	TicketID    string
	UserID      int64
	IssueType   string
	Priority    TicketPriority
	Status      TicketStatus
	Title       string
	Description string
	Resolution  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DaysOpen returns the whole days since creation, rounded up.
func (t *SupportTicket) DaysOpen(now time.Time) int {
	return int(math.Ceil(now.Sub(t.CreatedAt).Hours() / 24))
}

// IsOverdue reports whether an open ticket has waited longer than the threshold.
func (t *SupportTicket) IsOverdue(now time.Time) bool {
	return t.Status == TicketStatusOpen && t.DaysOpen(now) > TicketOverdueAfterDays
}
