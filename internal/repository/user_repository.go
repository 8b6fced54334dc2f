package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// UserFilter captures customer listing parameters.
type UserFilter struct {
	PaymentStatus *domain.PaymentStatus
	PackageID     *string
	Limit         int
	Offset        int
}

// UserRepository defines persistence access for subscribers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, customer_id, phone_number, first_name, last_name, email, national_id, birth_date,
               current_package_id, payment_status, balance, data_usage_gb, voice_usage_minutes,
               address, city, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (customer_id, phone_number, first_name, last_name, email, national_id, birth_date,
            current_package_id, payment_status, balance, data_usage_gb, voice_usage_minutes, address, city)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.CustomerID,
		user.PhoneNumber,
		user.FirstName,
		user.LastName,
		user.Email,
		user.NationalID,
		user.BirthDate,
		user.CurrentPackageID,
		user.PaymentStatus,
		user.Balance,
		user.DataUsageGB,
		user.VoiceUsageMinutes,
		user.Address,
		user.City,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET phone_number=$1, first_name=$2, last_name=$3, email=$4, current_package_id=$5,
            payment_status=$6, balance=$7, data_usage_gb=$8, voice_usage_minutes=$9, address=$10, city=$11,
            updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.PhoneNumber,
		user.FirstName,
		user.LastName,
		user.Email,
		user.CurrentPackageID,
		user.PaymentStatus,
		user.Balance,
		user.DataUsageGB,
		user.VoiceUsageMinutes,
		user.Address,
		user.City,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		clauses = append(clauses, fmt.Sprintf("payment_status=$%d", len(args)))
	}
	if filter.PackageID != nil {
		args = append(args, *filter.PackageID)
		clauses = append(clauses, fmt.Sprintf("current_package_id=$%d", len(args)))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset, 50)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.CustomerID,
		&user.PhoneNumber,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.NationalID,
		&user.BirthDate,
		&user.CurrentPackageID,
		&user.PaymentStatus,
		&user.Balance,
		&user.DataUsageGB,
		&user.VoiceUsageMinutes,
		&user.Address,
		&user.City,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func pageBounds(limit, offset, fallback int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
