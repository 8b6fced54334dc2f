package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// BillFilter captures bill search parameters.
type BillFilter struct {
	UserID        *int64
	PaymentStatus *domain.PaymentStatus
	Limit         int
	Offset        int
}

// BillRepository encapsulates bill persistence. Listings are newest-created first.
type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	Update(ctx context.Context, bill *domain.Bill) error
	GetByID(ctx context.Context, id int64) (*domain.Bill, error)
	List(ctx context.Context, filter BillFilter) ([]domain.Bill, error)
	Count(ctx context.Context, filter BillFilter) (int, error)
}

type billRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository instantiates repository.
func NewBillRepository(pool *pgxpool.Pool) BillRepository {
	return &billRepository{pool: pool}
}

const billColumns = `id, bill_id, user_id, billing_period_start, billing_period_end, due_date, total_amount,
               payment_status, payment_date, data_used_gb, voice_used_minutes, created_at, updated_at`

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	const query = `
        INSERT INTO bills (bill_id, user_id, billing_period_start, billing_period_end, due_date, total_amount,
            payment_status, payment_date, data_used_gb, voice_used_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		bill.BillID,
		bill.UserID,
		bill.BillingPeriodStart,
		bill.BillingPeriodEnd,
		bill.DueDate,
		bill.TotalAmount,
		bill.PaymentStatus,
		bill.PaymentDate,
		bill.DataUsedGB,
		bill.VoiceUsedMinutes,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
}

func (r *billRepository) Update(ctx context.Context, bill *domain.Bill) error {
	const query = `
        UPDATE bills SET due_date=$1, total_amount=$2, payment_status=$3, payment_date=$4,
            data_used_gb=$5, voice_used_minutes=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		bill.DueDate,
		bill.TotalAmount,
		bill.PaymentStatus,
		bill.PaymentDate,
		bill.DataUsedGB,
		bill.VoiceUsedMinutes,
		bill.ID,
	).Scan(&bill.UpdatedAt)
	return translate(err)
}

func (r *billRepository) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return bill, nil
}

func (r *billRepository) List(ctx context.Context, filter BillFilter) ([]domain.Bill, error) {
	where, args := billWhere(filter)
	limit, offset := pageBounds(filter.Limit, filter.Offset, 10)
	query := fmt.Sprintf(`SELECT %s FROM bills WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		billColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bill)
	}
	return result, rows.Err()
}

func (r *billRepository) Count(ctx context.Context, filter BillFilter) (int, error) {
	where, args := billWhere(filter)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bills WHERE `+where, args...).Scan(&count)
	return count, err
}

func billWhere(filter BillFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		clauses = append(clauses, fmt.Sprintf("payment_status=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var bill domain.Bill
	if err := row.Scan(
		&bill.ID,
		&bill.BillID,
		&bill.UserID,
		&bill.BillingPeriodStart,
		&bill.BillingPeriodEnd,
		&bill.DueDate,
		&bill.TotalAmount,
		&bill.PaymentStatus,
		&bill.PaymentDate,
		&bill.DataUsedGB,
		&bill.VoiceUsedMinutes,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &bill, nil
}
