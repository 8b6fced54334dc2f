package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
)

// CampaignFilter captures campaign search parameters.
type CampaignFilter struct {
	Active *bool
	Type   *domain.CampaignType
	// RunningAt keeps campaigns whose [start_date, end_date] window contains the instant.
	RunningAt *time.Time
	// Audiences keeps campaigns targeting one of the segments or with no target set.
	Audiences []domain.Segment
}

// CampaignRepository encapsulates campaign persistence. Listings are newest-created first.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	Update(ctx context.Context, campaign *domain.Campaign) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	// ApplyToUser records an application and increments the campaign usage counter atomically.
	// It fails with ErrActiveApplicationExists or ErrUsageLimitReached without writing anything.
	ApplyToUser(ctx context.Context, application *domain.UserCampaign) error
}

type campaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository instantiates repository.
func NewCampaignRepository(pool *pgxpool.Pool) CampaignRepository {
	return &campaignRepository{pool: pool}
}

const usesWithinMaxConstraint = "campaigns_uses_within_max"

const campaignColumns = `id, campaign_id, name, description, campaign_type, target_audience, discount_percentage,
               discount_amount, free_data_gb, free_voice_minutes, applicable_packages, start_date, end_date,
               is_active, max_uses, current_uses, terms_conditions, created_at, updated_at`

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	const query = `
        INSERT INTO campaigns (campaign_id, name, description, campaign_type, target_audience, discount_percentage,
            discount_amount, free_data_gb, free_voice_minutes, applicable_packages, start_date, end_date,
            is_active, max_uses, current_uses, terms_conditions)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		campaign.CampaignID,
		campaign.Name,
		campaign.Description,
		campaign.CampaignType,
		campaign.TargetAudience,
		campaign.DiscountPercentage,
		campaign.DiscountAmount,
		campaign.FreeDataGB,
		campaign.FreeVoiceMinutes,
		packagesOrEmpty(campaign.ApplicablePackages),
		campaign.StartDate,
		campaign.EndDate,
		campaign.IsActive,
		campaign.MaxUses,
		campaign.CurrentUses,
		campaign.TermsConditions,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
}

// Update leaves current_uses untouched; only ApplyToUser moves the counter.
func (r *campaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	const query = `
        UPDATE campaigns SET name=$1, description=$2, campaign_type=$3, target_audience=$4, discount_percentage=$5,
            discount_amount=$6, free_data_gb=$7, free_voice_minutes=$8, applicable_packages=$9, start_date=$10,
            end_date=$11, is_active=$12, max_uses=$13, terms_conditions=$14, updated_at=NOW()
        WHERE id=$15
        RETURNING current_uses, updated_at`
	err := r.pool.QueryRow(ctx, query,
		campaign.Name,
		campaign.Description,
		campaign.CampaignType,
		campaign.TargetAudience,
		campaign.DiscountPercentage,
		campaign.DiscountAmount,
		campaign.FreeDataGB,
		campaign.FreeVoiceMinutes,
		packagesOrEmpty(campaign.ApplicablePackages),
		campaign.StartDate,
		campaign.EndDate,
		campaign.IsActive,
		campaign.MaxUses,
		campaign.TermsConditions,
		campaign.ID,
	).Scan(&campaign.CurrentUses, &campaign.UpdatedAt)
	if isCheckViolation(err, usesWithinMaxConstraint) {
		return ErrMaxUsesBelowUsage
	}
	return translate(err)
}

func (r *campaignRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	campaign, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("campaign_type=$%d", len(args)))
	}
	if filter.RunningAt != nil {
		args = append(args, *filter.RunningAt)
		clauses = append(clauses, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", len(args), len(args)))
	}
	if len(filter.Audiences) > 0 {
		audiences := make([]string, len(filter.Audiences))
		for i, seg := range filter.Audiences {
			audiences[i] = string(seg)
		}
		args = append(args, audiences)
		clauses = append(clauses, fmt.Sprintf("(target_audience = ANY($%d) OR target_audience IS NULL)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE %s ORDER BY created_at DESC, id DESC`,
		campaignColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *campaign)
	}
	return result, rows.Err()
}

func (r *campaignRepository) ApplyToUser(ctx context.Context, application *domain.UserCampaign) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `
            INSERT INTO user_campaigns (user_id, campaign_id, status, discount_applied, data_bonus_gb,
                voice_bonus_minutes, expires_at, notes)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, applied_date, discount_applied, created_at, updated_at`
		err := tx.QueryRow(ctx, insert,
			application.UserID,
			application.CampaignID,
			application.Status,
			application.DiscountApplied,
			application.DataBonusGB,
			application.VoiceBonusMinutes,
			application.ExpiresAt,
			application.Notes,
		).Scan(&application.ID, &application.AppliedDate, &application.DiscountApplied, &application.CreatedAt, &application.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrActiveApplicationExists
			}
			return err
		}

		const increment = `
            UPDATE campaigns SET current_uses = current_uses + 1, updated_at = NOW()
            WHERE id=$1 AND (max_uses IS NULL OR current_uses < max_uses)`
		cmd, err := tx.Exec(ctx, increment, application.CampaignID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrUsageLimitReached
		}
		return nil
	})
}

func packagesOrEmpty(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var campaign domain.Campaign
	if err := row.Scan(
		&campaign.ID,
		&campaign.CampaignID,
		&campaign.Name,
		&campaign.Description,
		&campaign.CampaignType,
		&campaign.TargetAudience,
		&campaign.DiscountPercentage,
		&campaign.DiscountAmount,
		&campaign.FreeDataGB,
		&campaign.FreeVoiceMinutes,
		&campaign.ApplicablePackages,
		&campaign.StartDate,
		&campaign.EndDate,
		&campaign.IsActive,
		&campaign.MaxUses,
		&campaign.CurrentUses,
		&campaign.TermsConditions,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &campaign, nil
}
