// Package memory implements the repository interfaces on process memory.
// It backs the service when no Postgres DSN is configured and in tests, and
// enforces the same campaign application guard as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/clock"
	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
)

// Store holds every entity table behind a single lock.
type Store struct {
	mu    sync.RWMutex
	clock clock.Clock
	seq   int64

	users         map[int64]domain.User
	packages      map[int64]domain.Package
	bills         map[int64]domain.Bill
	tickets       map[int64]domain.SupportTicket
	campaigns     map[int64]domain.Campaign
	userCampaigns map[int64]domain.UserCampaign
}

// NewStore returns an empty store stamping rows with clk.
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{
		clock:         clk,
		users:         make(map[int64]domain.User),
		packages:      make(map[int64]domain.Package),
		bills:         make(map[int64]domain.Bill),
		tickets:       make(map[int64]domain.SupportTicket),
		campaigns:     make(map[int64]domain.Campaign),
		userCampaigns: make(map[int64]domain.UserCampaign),
	}
}

func (s *Store) Users() repository.UserRepository                 { return userStore{s} }
func (s *Store) Packages() repository.PackageRepository           { return packageStore{s} }
func (s *Store) Bills() repository.BillRepository                 { return billStore{s} }
func (s *Store) Tickets() repository.TicketRepository             { return ticketStore{s} }
func (s *Store) Campaigns() repository.CampaignRepository         { return campaignStore{s} }
func (s *Store) UserCampaigns() repository.UserCampaignRepository { return userCampaignStore{s} }

// nextID must be called with the write lock held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// stamp returns creation time; rows created with a preset CreatedAt keep it.
func (s *Store) stamp(existing time.Time) time.Time {
	if !existing.IsZero() {
		return existing
	}
	return s.clock.Now()
}

func page[T any](items []T, limit, offset, fallback int) []T {
	if limit <= 0 {
		limit = fallback
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func newestFirst(aCreated time.Time, aID int64, bCreated time.Time, bID int64) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID > bID
}

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.stamp(user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.CustomerID = existing.CustomerID
	user.NationalID = existing.NationalID
	user.BirthDate = existing.BirthDate
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.clock.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userStore) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.User
	for _, user := range r.s.users {
		if filter.PaymentStatus != nil && user.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		if filter.PackageID != nil && user.PackageKey() != *filter.PackageID {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		return newestFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return page(result, filter.Limit, filter.Offset, 50), nil
}

type packageStore struct{ s *Store }

func (r packageStore) Create(_ context.Context, pkg *domain.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pkg.ID = r.s.nextID()
	pkg.CreatedAt = r.s.stamp(pkg.CreatedAt)
	pkg.UpdatedAt = pkg.CreatedAt
	r.s.packages[pkg.ID] = *pkg
	return nil
}

func (r packageStore) Update(_ context.Context, pkg *domain.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.packages[pkg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	pkg.PackageID = existing.PackageID
	pkg.CreatedAt = existing.CreatedAt
	pkg.UpdatedAt = r.s.clock.Now()
	r.s.packages[pkg.ID] = *pkg
	return nil
}

func (r packageStore) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.packages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.packages, id)
	return nil
}

func (r packageStore) GetByID(_ context.Context, id int64) (*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pkg, ok := r.s.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pkg, nil
}

func (r packageStore) GetByPackageID(_ context.Context, packageID string) (*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, pkg := range r.s.packages {
		if pkg.PackageID == packageID {
			return &pkg, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r packageStore) List(_ context.Context, filter repository.PackageFilter) ([]domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Package
	for _, pkg := range r.s.packages {
		if filter.Active != nil && pkg.IsActive != *filter.Active {
			continue
		}
		result = append(result, pkg)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Price != result[j].Price {
			return result[i].Price < result[j].Price
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type billStore struct{ s *Store }

func (r billStore) Create(_ context.Context, bill *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bill.ID = r.s.nextID()
	bill.CreatedAt = r.s.stamp(bill.CreatedAt)
	bill.UpdatedAt = bill.CreatedAt
	r.s.bills[bill.ID] = *bill
	return nil
}

func (r billStore) Update(_ context.Context, bill *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.bills[bill.ID]
	if !ok {
		return repository.ErrNotFound
	}
	bill.BillID = existing.BillID
	bill.UserID = existing.UserID
	bill.BillingPeriodStart = existing.BillingPeriodStart
	bill.BillingPeriodEnd = existing.BillingPeriodEnd
	bill.CreatedAt = existing.CreatedAt
	bill.UpdatedAt = r.s.clock.Now()
	r.s.bills[bill.ID] = *bill
	return nil
}

func (r billStore) GetByID(_ context.Context, id int64) (*domain.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	bill, ok := r.s.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &bill, nil
}

func (r billStore) List(_ context.Context, filter repository.BillFilter) ([]domain.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := r.matching(filter)
	sort.Slice(result, func(i, j int) bool {
		return newestFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return page(result, filter.Limit, filter.Offset, 10), nil
}

func (r billStore) Count(_ context.Context, filter repository.BillFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r billStore) matching(filter repository.BillFilter) []domain.Bill {
	var result []domain.Bill
	for _, bill := range r.s.bills {
		if filter.UserID != nil && bill.UserID != *filter.UserID {
			continue
		}
		if filter.PaymentStatus != nil && bill.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		result = append(result, bill)
	}
	return result
}

type ticketStore struct{ s *Store }

func (r ticketStore) Create(_ context.Context, ticket *domain.SupportTicket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.nextID()
	ticket.CreatedAt = r.s.stamp(ticket.CreatedAt)
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketStore) Update(_ context.Context, ticket *domain.SupportTicket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ticket.TicketID = existing.TicketID
	ticket.UserID = existing.UserID
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = r.s.clock.Now()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketStore) GetByID(_ context.Context, id int64) (*domain.SupportTicket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (r ticketStore) List(_ context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := r.matching(filter)
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return newestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	return page(result, filter.Limit, filter.Offset, 20), nil
}

func (r ticketStore) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r ticketStore) matching(filter repository.TicketFilter) []domain.SupportTicket {
	var result []domain.SupportTicket
	for _, ticket := range r.s.tickets {
		if filter.UserID != nil && ticket.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		result = append(result, ticket)
	}
	return result
}
