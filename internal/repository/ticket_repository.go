package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	UserID   *int64
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Limit    int
	Offset   int
}

// TicketRepository encapsulates support ticket persistence.
// Listings are ordered by priority severity descending, then newest first.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	Update(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_id, user_id, issue_type, priority, status, title, description,
               resolution, resolved_at, created_at, updated_at`

// priorityRankSQL mirrors domain.TicketPriority.Rank.
const priorityRankSQL = `CASE priority WHEN 'urgent' THEN 3 WHEN 'high' THEN 2 WHEN 'medium' THEN 1 WHEN 'low' THEN 0 ELSE -1 END`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        INSERT INTO support_tickets (ticket_id, user_id, issue_type, priority, status, title, description, resolution, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.UserID,
		ticket.IssueType,
		ticket.Priority,
		ticket.Status,
		ticket.Title,
		ticket.Description,
		ticket.Resolution,
		ticket.ResolvedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        UPDATE support_tickets SET issue_type=$1, priority=$2, status=$3, title=$4, description=$5,
            resolution=$6, resolved_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.IssueType,
		ticket.Priority,
		ticket.Status,
		ticket.Title,
		ticket.Description,
		ticket.Resolution,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return translate(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, error) {
	where, args := ticketWhere(filter)
	limit, offset := pageBounds(filter.Limit, filter.Offset, 20)
	query := fmt.Sprintf(`SELECT %s FROM support_tickets WHERE %s ORDER BY %s DESC, created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, priorityRankSQL, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := ticketWhere(filter)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM support_tickets WHERE `+where, args...).Scan(&count)
	return count, err
}

func ticketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.UserID,
		&ticket.IssueType,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Title,
		&ticket.Description,
		&ticket.Resolution,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
