package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// UserCampaignRepository encapsulates campaign application reads and the expiry sweep.
// Applications are created through CampaignRepository.ApplyToUser.
type UserCampaignRepository interface {
	// HasActive reports whether an application with status active links the pair.
	HasActive(ctx context.Context, userID, campaignID int64) (bool, error)
	// ListEffectivelyActive returns active, unexpired applications newest first, with Campaign populated.
	ListEffectivelyActive(ctx context.Context, userID int64, now time.Time) ([]domain.UserCampaign, error)
	// ListByCampaign returns every application of a campaign, with UserPackageID populated.
	ListByCampaign(ctx context.Context, campaignID int64) ([]domain.UserCampaign, error)
	// ExpireBefore moves active applications with expires_at < now to expired.
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

type userCampaignRepository struct {
	pool *pgxpool.Pool
}

// NewUserCampaignRepository instantiates repository.
func NewUserCampaignRepository(pool *pgxpool.Pool) UserCampaignRepository {
	return &userCampaignRepository{pool: pool}
}

const userCampaignColumns = `uc.id, uc.user_id, uc.campaign_id, uc.applied_date, uc.status, uc.discount_applied,
               uc.data_bonus_gb, uc.voice_bonus_minutes, uc.expires_at, uc.notes, uc.created_at, uc.updated_at`

func (r *userCampaignRepository) HasActive(ctx context.Context, userID, campaignID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM user_campaigns WHERE user_id=$1 AND campaign_id=$2 AND status='active'
        )`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, campaignID).Scan(&exists)
	return exists, err
}

func (r *userCampaignRepository) ListEffectivelyActive(ctx context.Context, userID int64, now time.Time) ([]domain.UserCampaign, error) {
	query := `SELECT ` + userCampaignColumns + `, c.campaign_id, c.name, c.description, c.campaign_type, c.end_date
        FROM user_campaigns uc
        JOIN campaigns c ON c.id = uc.campaign_id
        WHERE uc.user_id=$1 AND uc.status='active' AND uc.expires_at >= $2
        ORDER BY uc.applied_date DESC, uc.id DESC`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserCampaign
	for rows.Next() {
		var (
			uc  domain.UserCampaign
			ref domain.CampaignRef
		)
		dest := append(userCampaignDest(&uc), &ref.CampaignID, &ref.Name, &ref.Description, &ref.CampaignType, &ref.EndDate)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		uc.Campaign = &ref
		result = append(result, uc)
	}
	return result, rows.Err()
}

func (r *userCampaignRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.UserCampaign, error) {
	query := `SELECT ` + userCampaignColumns + `, u.current_package_id
        FROM user_campaigns uc
        LEFT JOIN users u ON u.id = uc.user_id
        WHERE uc.campaign_id=$1
        ORDER BY uc.applied_date DESC, uc.id DESC`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplicationsWithPackage(rows)
}

func (r *userCampaignRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        UPDATE user_campaigns SET status='expired', updated_at=NOW()
        WHERE status='active' AND expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanApplicationsWithPackage(rows pgx.Rows) ([]domain.UserCampaign, error) {
	var result []domain.UserCampaign
	for rows.Next() {
		var uc domain.UserCampaign
		dest := append(userCampaignDest(&uc), &uc.UserPackageID)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, uc)
	}
	return result, rows.Err()
}

func userCampaignDest(uc *domain.UserCampaign) []any {
	return []any{
		&uc.ID,
		&uc.UserID,
		&uc.CampaignID,
		&uc.AppliedDate,
		&uc.Status,
		&uc.DiscountApplied,
		&uc.DataBonusGB,
		&uc.VoiceBonusMinutes,
		&uc.ExpiresAt,
		&uc.Notes,
		&uc.CreatedAt,
		&uc.UpdatedAt,
	}
}
