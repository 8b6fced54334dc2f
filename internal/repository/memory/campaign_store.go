package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
)

type campaignStore struct{ s *Store }

func (r campaignStore) Create(_ context.Context, campaign *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	campaign.ID = r.s.nextID()
	campaign.CreatedAt = r.s.stamp(campaign.CreatedAt)
	campaign.UpdatedAt = campaign.CreatedAt
	r.s.campaigns[campaign.ID] = cloneCampaign(*campaign)
	return nil
}

func (r campaignStore) Update(_ context.Context, campaign *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.campaigns[campaign.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if campaign.MaxUses != nil && *campaign.MaxUses < existing.CurrentUses {
		return repository.ErrMaxUsesBelowUsage
	}
	campaign.CampaignID = existing.CampaignID
	campaign.CurrentUses = existing.CurrentUses
	campaign.CreatedAt = existing.CreatedAt
	campaign.UpdatedAt = r.s.clock.Now()
	r.s.campaigns[campaign.ID] = cloneCampaign(*campaign)
	return nil
}

func (r campaignStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campaigns[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.campaigns, id)
	for ucID, uc := range r.s.userCampaigns {
		if uc.CampaignID == id {
			delete(r.s.userCampaigns, ucID)
		}
	}
	return nil
}

func (r campaignStore) GetByID(_ context.Context, id int64) (*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	campaign, ok := r.s.campaigns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneCampaign(campaign)
	return &c, nil
}

func (r campaignStore) List(_ context.Context, filter repository.CampaignFilter) ([]domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Campaign
	for _, campaign := range r.s.campaigns {
		if filter.Active != nil && campaign.IsActive != *filter.Active {
			continue
		}
		if filter.Type != nil && campaign.CampaignType != *filter.Type {
			continue
		}
		if filter.RunningAt != nil && !campaign.InWindow(*filter.RunningAt) {
			continue
		}
		if len(filter.Audiences) > 0 && campaign.TargetAudience != nil &&
			!slices.Contains(filter.Audiences, *campaign.TargetAudience) {
			continue
		}
		result = append(result, cloneCampaign(campaign))
	}
	sort.Slice(result, func(i, j int) bool {
		return newestFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return result, nil
}

// ApplyToUser mirrors the Postgres partial unique index and guarded increment under one lock.
func (r campaignStore) ApplyToUser(_ context.Context, application *domain.UserCampaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, uc := range r.s.userCampaigns {
		if uc.UserID == application.UserID && uc.CampaignID == application.CampaignID && uc.Status == domain.UserCampaignActive {
			return repository.ErrActiveApplicationExists
		}
	}
	campaign, ok := r.s.campaigns[application.CampaignID]
	if !ok || campaign.UsageExhausted() {
		return repository.ErrUsageLimitReached
	}

	now := r.s.clock.Now()
	application.ID = r.s.nextID()
	if application.AppliedDate.IsZero() {
		application.AppliedDate = now
	}
	application.CreatedAt = now
	application.UpdatedAt = now
	stored := *application
	stored.Campaign = nil
	stored.UserPackageID = nil
	r.s.userCampaigns[application.ID] = stored

	campaign.CurrentUses++
	campaign.UpdatedAt = now
	r.s.campaigns[campaign.ID] = campaign
	return nil
}

type userCampaignStore struct{ s *Store }

func (r userCampaignStore) HasActive(_ context.Context, userID, campaignID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, uc := range r.s.userCampaigns {
		if uc.UserID == userID && uc.CampaignID == campaignID && uc.Status == domain.UserCampaignActive {
			return true, nil
		}
	}
	return false, nil
}

func (r userCampaignStore) ListEffectivelyActive(_ context.Context, userID int64, now time.Time) ([]domain.UserCampaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.UserCampaign
	for _, uc := range r.s.userCampaigns {
		if uc.UserID != userID || !uc.IsEffectivelyActive(now) {
			continue
		}
		campaign, ok := r.s.campaigns[uc.CampaignID]
		if !ok {
			continue
		}
		uc.Campaign = &domain.CampaignRef{
			CampaignID:   campaign.CampaignID,
			Name:         campaign.Name,
			Description:  campaign.Description,
			CampaignType: campaign.CampaignType,
			EndDate:      campaign.EndDate,
		}
		result = append(result, uc)
	}
	sortByAppliedDesc(result)
	return result, nil
}

func (r userCampaignStore) ListByCampaign(_ context.Context, campaignID int64) ([]domain.UserCampaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.UserCampaign
	for _, uc := range r.s.userCampaigns {
		if uc.CampaignID != campaignID {
			continue
		}
		if user, ok := r.s.users[uc.UserID]; ok && user.CurrentPackageID != nil {
			key := *user.CurrentPackageID
			uc.UserPackageID = &key
		}
		result = append(result, uc)
	}
	sortByAppliedDesc(result)
	return result, nil
}

func (r userCampaignStore) ExpireBefore(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var affected int64
	for id, uc := range r.s.userCampaigns {
		if uc.Status == domain.UserCampaignActive && uc.ExpiresAt.Before(now) {
			uc.Status = domain.UserCampaignExpired
			uc.UpdatedAt = r.s.clock.Now()
			r.s.userCampaigns[id] = uc
			affected++
		}
	}
	return affected, nil
}

func sortByAppliedDesc(items []domain.UserCampaign) {
	sort.Slice(items, func(i, j int) bool {
		return newestFirst(items[i].AppliedDate, items[i].ID, items[j].AppliedDate, items[j].ID)
	})
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.ApplicablePackages = slices.Clone(c.ApplicablePackages)
	if c.MaxUses != nil {
		maxUses := *c.MaxUses
		c.MaxUses = &maxUses
	}
	if c.TargetAudience != nil {
		audience := *c.TargetAudience
		c.TargetAudience = &audience
	}
	return c
}
