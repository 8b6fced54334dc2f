package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// PackageFilter narrows catalog listings.
type PackageFilter struct {
	Active *bool
}

// PackageRepository encapsulates catalog persistence.
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) error
	Update(ctx context.Context, pkg *domain.Package) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Package, error)
	// GetByPackageID resolves the business key users reference.
	GetByPackageID(ctx context.Context, packageID string) (*domain.Package, error)
	List(ctx context.Context, filter PackageFilter) ([]domain.Package, error)
}

type packageRepository struct {
	pool *pgxpool.Pool
}

// NewPackageRepository instantiates repository.
func NewPackageRepository(pool *pgxpool.Pool) PackageRepository {
	return &packageRepository{pool: pool}
}

const packageColumns = `id, package_id, name, price, data_limit_gb, voice_minutes, sms_count, features, is_active, created_at, updated_at`

func (r *packageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	const query = `
        INSERT INTO packages (package_id, name, price, data_limit_gb, voice_minutes, sms_count, features, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		pkg.PackageID,
		pkg.Name,
		pkg.Price,
		pkg.DataLimitGB.StorageValue(),
		pkg.VoiceMinutes.StorageValue(),
		pkg.SMSCount.StorageValue(),
		featuresOrEmpty(pkg.Features),
		pkg.IsActive,
	).Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)
}

func (r *packageRepository) Update(ctx context.Context, pkg *domain.Package) error {
	const query = `
        UPDATE packages SET name=$1, price=$2, data_limit_gb=$3, voice_minutes=$4, sms_count=$5,
            features=$6, is_active=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		pkg.Name,
		pkg.Price,
		pkg.DataLimitGB.StorageValue(),
		pkg.VoiceMinutes.StorageValue(),
		pkg.SMSCount.StorageValue(),
		featuresOrEmpty(pkg.Features),
		pkg.IsActive,
		pkg.ID,
	).Scan(&pkg.UpdatedAt)
	return translate(err)
}

func (r *packageRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM packages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *packageRepository) GetByID(ctx context.Context, id int64) (*domain.Package, error) {
	return r.fetchSingle(ctx, `SELECT `+packageColumns+` FROM packages WHERE id=$1`, id)
}

func (r *packageRepository) GetByPackageID(ctx context.Context, packageID string) (*domain.Package, error) {
	return r.fetchSingle(ctx, `SELECT `+packageColumns+` FROM packages WHERE package_id=$1`, packageID)
}

func (r *packageRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Package, error) {
	pkg, err := scanPackage(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return pkg, nil
}

func (r *packageRepository) List(ctx context.Context, filter PackageFilter) ([]domain.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	args := []any{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" WHERE is_active=$%d", len(args))
	}
	query += " ORDER BY price ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *pkg)
	}
	return result, rows.Err()
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var (
		pkg                      domain.Package
		dataLimit, voice, smsCnt int64
	)
	if err := row.Scan(
		&pkg.ID,
		&pkg.PackageID,
		&pkg.Name,
		&pkg.Price,
		&dataLimit,
		&voice,
		&smsCnt,
		&pkg.Features,
		&pkg.IsActive,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	pkg.DataLimitGB = domain.QuantityFromLimit(dataLimit)
	pkg.VoiceMinutes = domain.QuantityFromLimit(voice)
	pkg.SMSCount = domain.QuantityFromLimit(smsCnt)
	return &pkg, nil
}

func featuresOrEmpty(features map[string]any) map[string]any {
	if features == nil {
		return map[string]any{}
	}
	return features
}
