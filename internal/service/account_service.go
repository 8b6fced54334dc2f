package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/repository"
	apperrors "github.com/spec-kit/telecom-backoffice/pkg/util"
)

// Default page sizes of the account views.
const (
	DefaultBillLimit         = 10
	DefaultTicketLimit       = 20
	CompleteInfoBillLimit    = 5
	CompleteInfoTicketLimit  = 10
	usageAlertThreshold      = 90
	supportNeededOpenTickets = 2
	noPackageName            = "No Package"
)

// AccountStatus is the headline state shown on the dashboard.
type AccountStatus string

const (
	AccountStatusGood              AccountStatus = "good"
	AccountStatusPaymentRequired   AccountStatus = "payment_required"
	AccountStatusSupportNeeded     AccountStatus = "support_needed"
	AccountStatusAttentionRequired AccountStatus = "attention_required"
)

// AlertType grades dashboard alerts.
type AlertType string

const (
	AlertUrgent  AlertType = "urgent"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is one dashboard notice. Amount is set on billing reminders that carry one.
type Alert struct {
	Type    AlertType
	Message string
	Action  string
	Amount  *float64
}

// AccountService computes usage, billing and support views for a single account.
type AccountService struct {
	users    repository.UserRepository
	packages repository.PackageRepository
	bills    repository.BillRepository
	tickets  repository.TicketRepository
	rt       Runtime
	tracer   trace.Tracer
}

// AccountDependencies bundles repositories for account service.
type AccountDependencies struct {
	UserRepo    repository.UserRepository
	PackageRepo repository.PackageRepository
	BillRepo    repository.BillRepository
	TicketRepo  repository.TicketRepository
	Runtime     Runtime
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	rt := deps.Runtime.withDefaults()
	return &AccountService{
		users:    deps.UserRepo,
		packages: deps.PackageRepo,
		bills:    deps.BillRepo,
		tickets:  deps.TicketRepo,
		rt:       rt,
		tracer:   rt.tracer(),
	}
}

// PackageUsage is the user's package with usage against its allowances.
type PackageUsage struct {
	Package               domain.Package
	DataUsedPercentage    domain.Percent
	VoiceUsedPercentage   domain.Percent
	RemainingDataGB       domain.Quantity
	RemainingVoiceMinutes domain.Quantity
}

// PackageInfo pairs a user with its current package, which may be nil.
type PackageInfo struct {
	User           domain.User
	CurrentPackage *PackageUsage
}

// BillInfoOptions filters the bill view.
type BillInfoOptions struct {
	Limit         int
	PaymentStatus *domain.PaymentStatus
}

// BillingSummary aggregates the fetched bills.
type BillingSummary struct {
	TotalBills        int
	TotalOwed         float64
	OverdueBillsCount int
	OverdueAmount     float64
}

// BillView annotates a bill with its derived overdue flag.
type BillView struct {
	domain.Bill
	Overdue bool
}

// BillInfo is the billing view of an account.
type BillInfo struct {
	User        domain.User
	Summary     BillingSummary
	RecentBills []BillView
}

// TicketOptions filters the support view.
type TicketOptions struct {
	Limit    int
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
}

// TicketsSummary aggregates the fetched tickets.
type TicketsSummary struct {
	TotalTickets      int
	OpenTickets       int
	ResolvedTickets   int
	AvgResolutionDays int
	StatusBreakdown   map[domain.TicketStatus]int
	PriorityBreakdown map[domain.TicketPriority]int
}

// TicketView annotates a ticket with age-derived fields.
type TicketView struct {
	domain.SupportTicket
	DaysOpen int
	Overdue  bool
}

// SupportInfo is the support view of an account.
type SupportInfo struct {
	User    domain.User
	Summary TicketsSummary
	Tickets []TicketView
}

// CompleteSummary is the quick-scan block of CompleteInfo.
type CompleteSummary struct {
	CustomerStatus domain.PaymentStatus
	TotalOwed      float64
	OpenTickets    int
	LastUpdated    time.Time
}

// CompleteInfo composes the three account views.
type CompleteInfo struct {
	PackageInfo *PackageInfo
	BillingInfo *BillInfo
	SupportInfo *SupportInfo
	Summary     CompleteSummary
}

// DashboardSummary is the headline numbers of the dashboard.
type DashboardSummary struct {
	PackageName          string
	MonthlyBill          float64
	OutstandingAmount    float64
	OpenTickets          int
	DataUsagePercentage  domain.Percent
	VoiceUsagePercentage domain.Percent
}

// Dashboard is the composite account view with alerts.
type Dashboard struct {
	User          domain.User
	AccountStatus AccountStatus
	Summary       DashboardSummary
	Alerts        []Alert
	PackageInfo   *PackageInfo
	BillingInfo   *BillInfo
	SupportInfo   *SupportInfo
	LastUpdated   time.Time
}

// PackageInfo returns the user's package and usage summary.
func (s *AccountService) PackageInfo(ctx context.Context, userID int64) (*PackageInfo, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.PackageInfo", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	user, pkg, err := loadAccount(ctx, s.users, s.packages, userID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	info := &PackageInfo{User: *user}
	if pkg != nil {
		voiceUsed := float64(user.VoiceUsageMinutes)
		info.CurrentPackage = &PackageUsage{
			Package:               *pkg,
			DataUsedPercentage:    pkg.DataLimitGB.UsedPercent(user.DataUsageGB),
			VoiceUsedPercentage:   pkg.VoiceMinutes.UsedPercent(voiceUsed),
			RemainingDataGB:       pkg.DataLimitGB.Remaining(user.DataUsageGB),
			RemainingVoiceMinutes: pkg.VoiceMinutes.Remaining(voiceUsed),
		}
	}
	return info, nil
}

// BillInfo returns the newest bills of a user and their billing summary.
// Totals cover only the fetched page.
func (s *AccountService) BillInfo(ctx context.Context, userID int64, opts BillInfoOptions) (*BillInfo, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.BillInfo", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, failSpan(span, lookupError(err, "user", map[string]any{"user_id": userID}))
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultBillLimit
	}
	filter := repository.BillFilter{UserID: &userID, PaymentStatus: opts.PaymentStatus, Limit: opts.Limit}
	bills, err := s.bills.List(ctx, filter)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}
	total, err := s.bills.Count(ctx, filter)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}

	now := s.rt.Clock.Now()
	info := &BillInfo{
		User:        *user,
		Summary:     BillingSummary{TotalBills: total},
		RecentBills: make([]BillView, 0, len(bills)),
	}
	for i := range bills {
		bill := &bills[i]
		overdue := bill.IsOverdue(now)
		if bill.IsOutstanding() {
			info.Summary.TotalOwed += bill.TotalAmount
		}
		if overdue {
			info.Summary.OverdueBillsCount++
			info.Summary.OverdueAmount += bill.TotalAmount
		}
		info.RecentBills = append(info.RecentBills, BillView{Bill: *bill, Overdue: overdue})
	}
	return info, nil
}

// SupportTickets returns the user's tickets, most severe and newest first, with summary counts.
func (s *AccountService) SupportTickets(ctx context.Context, userID int64, opts TicketOptions) (*SupportInfo, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.SupportTickets", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, failSpan(span, lookupError(err, "user", map[string]any{"user_id": userID}))
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultTicketLimit
	}
	filter := repository.TicketFilter{UserID: &userID, Status: opts.Status, Priority: opts.Priority, Limit: opts.Limit}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, failSpan(span, apperrors.NewInternalError(err))
	}

	now := s.rt.Clock.Now()
	summary := TicketsSummary{
		TotalTickets:      total,
		StatusBreakdown:   make(map[domain.TicketStatus]int),
		PriorityBreakdown: make(map[domain.TicketPriority]int),
	}
	views := make([]TicketView, 0, len(tickets))
	var (
		resolutionTotal time.Duration
		resolvedTimed   int
	)
	for i := range tickets {
		ticket := &tickets[i]
		summary.StatusBreakdown[ticket.Status]++
		summary.PriorityBreakdown[ticket.Priority]++
		switch {
		case ticket.Status.IsOpen():
			summary.OpenTickets++
		case ticket.Status.IsResolved():
			summary.ResolvedTickets++
			if ticket.ResolvedAt != nil {
				resolutionTotal += ticket.ResolvedAt.Sub(ticket.CreatedAt)
				resolvedTimed++
			}
		}
		views = append(views, TicketView{
			SupportTicket: *ticket,
			DaysOpen:      ticket.DaysOpen(now),
			Overdue:       ticket.IsOverdue(now),
		})
	}
	if resolvedTimed > 0 {
		avgDays := resolutionTotal.Hours() / 24 / float64(resolvedTimed)
		summary.AvgResolutionDays = int(math.Round(avgDays))
	}

	return &SupportInfo{User: *user, Summary: summary, Tickets: views}, nil
}

// views fetches the three account views concurrently.
func (s *AccountService) views(ctx context.Context, userID int64, billLimit, ticketLimit int) (*PackageInfo, *BillInfo, *SupportInfo, error) {
	var (
		pkgInfo     *PackageInfo
		billInfo    *BillInfo
		supportInfo *SupportInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pkgInfo, err = s.PackageInfo(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		billInfo, err = s.BillInfo(gctx, userID, BillInfoOptions{Limit: billLimit})
		return err
	})
	g.Go(func() error {
		var err error
		supportInfo, err = s.SupportTickets(gctx, userID, TicketOptions{Limit: ticketLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return pkgInfo, billInfo, supportInfo, nil
}

// CompleteInfo composes package, billing and support views of an account.
func (s *AccountService) CompleteInfo(ctx context.Context, userID int64) (*CompleteInfo, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.CompleteInfo", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	pkgInfo, billInfo, supportInfo, err := s.views(ctx, userID, CompleteInfoBillLimit, CompleteInfoTicketLimit)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return &CompleteInfo{
		PackageInfo: pkgInfo,
		BillingInfo: billInfo,
		SupportInfo: supportInfo,
		Summary: CompleteSummary{
			CustomerStatus: pkgInfo.User.PaymentStatus,
			TotalOwed:      billInfo.Summary.TotalOwed,
			OpenTickets:    supportInfo.Summary.OpenTickets,
			LastUpdated:    s.rt.Clock.Now(),
		},
	}, nil
}

// Dashboard composes the account views with alerts and an overall status.
func (s *AccountService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Dashboard", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	pkgInfo, billInfo, supportInfo, err := s.views(ctx, userID, DefaultBillLimit, DefaultTicketLimit)
	if err != nil {
		return nil, failSpan(span, err)
	}

	alerts := make([]Alert, 0)
	alerts = append(alerts, usageAlerts(pkgInfo)...)
	alerts = append(alerts, billingReminders(billInfo)...)
	alerts = append(alerts, ticketAlerts(supportInfo)...)

	summary := DashboardSummary{
		PackageName:       noPackageName,
		OutstandingAmount: billInfo.Summary.TotalOwed,
		OpenTickets:       supportInfo.Summary.OpenTickets,
	}
	if usage := pkgInfo.CurrentPackage; usage != nil {
		summary.PackageName = usage.Package.Name
		summary.MonthlyBill = usage.Package.Price
		summary.DataUsagePercentage = usage.DataUsedPercentage
		summary.VoiceUsagePercentage = usage.VoiceUsedPercentage
	}

	status := accountStatus(billInfo.Summary, supportInfo.Summary, alerts)
	span.SetAttributes(attribute.String("account.status", string(status)))

	return &Dashboard{
		User:          pkgInfo.User,
		AccountStatus: status,
		Summary:       summary,
		Alerts:        alerts,
		PackageInfo:   pkgInfo,
		BillingInfo:   billInfo,
		SupportInfo:   supportInfo,
		LastUpdated:   s.rt.Clock.Now(),
	}, nil
}

// accountStatus applies the first matching rule: overdue bills, many open tickets, urgent alerts.
func accountStatus(billing BillingSummary, support TicketsSummary, alerts []Alert) AccountStatus {
	switch {
	case billing.OverdueBillsCount > 0:
		return AccountStatusPaymentRequired
	case support.OpenTickets > supportNeededOpenTickets:
		return AccountStatusSupportNeeded
	}
	for _, alert := range alerts {
		if alert.Type == AlertUrgent {
			return AccountStatusAttentionRequired
		}
	}
	return AccountStatusGood
}

func usageAlerts(info *PackageInfo) []Alert {
	var alerts []Alert
	if info.CurrentPackage == nil {
		return alerts
	}
	if info.CurrentPackage.DataUsedPercentage.Rounded() > usageAlertThreshold {
		alerts = append(alerts, Alert{
			Type:    AlertWarning,
			Message: "Data usage is over 90% of your limit",
			Action:  "Consider upgrading your package or monitoring usage",
		})
	}
	if info.CurrentPackage.VoiceUsedPercentage.Rounded() > usageAlertThreshold {
		alerts = append(alerts, Alert{
			Type:    AlertWarning,
			Message: "Voice usage is over 90% of your limit",
			Action:  "Consider upgrading your package or using alternative communication",
		})
	}
	return alerts
}

func billingReminders(info *BillInfo) []Alert {
	var alerts []Alert
	if n := info.Summary.OverdueBillsCount; n > 0 {
		amount := info.Summary.OverdueAmount
		alerts = append(alerts, Alert{
			Type:    AlertUrgent,
			Message: fmt.Sprintf("You have %d overdue bill(s)", n),
			Action:  "Please make payment immediately to avoid service interruption",
			Amount:  &amount,
		})
	}
	if owed := info.Summary.TotalOwed; owed > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertInfo,
			Message: fmt.Sprintf("Total outstanding amount: $%.2f", owed),
			Action:  "Please review and pay pending bills",
		})
	}
	return alerts
}

func ticketAlerts(info *SupportInfo) []Alert {
	var urgentOpen, overdue int
	for _, t := range info.Tickets {
		if t.Priority == domain.TicketPriorityUrgent && t.Status == domain.TicketStatusOpen {
			urgentOpen++
		}
		if t.Overdue {
			overdue++
		}
	}
	var alerts []Alert
	if urgentOpen > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertUrgent,
			Message: fmt.Sprintf("You have %d urgent open ticket(s)", urgentOpen),
			Action:  "These require immediate attention",
		})
	}
	if overdue > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertWarning,
			Message: fmt.Sprintf("You have %d overdue ticket(s)", overdue),
			Action:  "Please follow up on these tickets",
		})
	}
	return alerts
}
