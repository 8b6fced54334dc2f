package dto

import (
	"time"

	"github.com/spec-kit/telecom-backoffice/internal/domain"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// UsageSummary reports consumption against package allowances.
type UsageSummary struct {
	DataUsedPercentage    domain.Percent  `json:"data_used_percentage"`
	VoiceUsedPercentage   domain.Percent  `json:"voice_used_percentage"`
	RemainingDataGB       domain.Quantity `json:"remaining_data_gb"`
	RemainingVoiceMinutes domain.Quantity `json:"remaining_voice_minutes"`
}

// CurrentPackage is the user's package with its usage summary.
type CurrentPackage struct {
	PackageID    string          `json:"package_id"`
	Name         string          `json:"name"`
	Price        float64         `json:"price"`
	DataLimitGB  domain.Quantity `json:"data_limit_gb"`
	VoiceMinutes domain.Quantity `json:"voice_minutes"`
	SMSCount     domain.Quantity `json:"sms_count"`
	Features     map[string]any  `json:"features"`
	IsActive     bool            `json:"is_active"`
	UsageSummary UsageSummary    `json:"usage_summary"`
}

// AccountUserInfo is the identity block of the account views, with usage counters.
type AccountUserInfo struct {
	UserInfo
	DataUsageGB       float64 `json:"data_usage_gb"`
	VoiceUsageMinutes int64   `json:"voice_usage_minutes"`
}

// PackageInfoResponse renders the package view; CurrentPackage is null when unresolved.
type PackageInfoResponse struct {
	UserInfo       AccountUserInfo `json:"user_info"`
	CurrentPackage *CurrentPackage `json:"current_package"`
}

// NewPackageInfoResponse maps the package view.
func NewPackageInfoResponse(info *service.PackageInfo) PackageInfoResponse {
	resp := PackageInfoResponse{
		UserInfo: AccountUserInfo{
			UserInfo:          NewUserInfo(&info.User),
			DataUsageGB:       info.User.DataUsageGB,
			VoiceUsageMinutes: info.User.VoiceUsageMinutes,
		},
	}
	if cp := info.CurrentPackage; cp != nil {
		resp.CurrentPackage = &CurrentPackage{
			PackageID:    cp.Package.PackageID,
			Name:         cp.Package.Name,
			Price:        cp.Package.Price,
			DataLimitGB:  cp.Package.DataLimitGB,
			VoiceMinutes: cp.Package.VoiceMinutes,
			SMSCount:     cp.Package.SMSCount,
			Features:     cp.Package.Features,
			IsActive:     cp.Package.IsActive,
			UsageSummary: UsageSummary{
				DataUsedPercentage:    cp.DataUsedPercentage,
				VoiceUsedPercentage:   cp.VoiceUsedPercentage,
				RemainingDataGB:       cp.RemainingDataGB,
				RemainingVoiceMinutes: cp.RemainingVoiceMinutes,
			},
		}
	}
	return resp
}

// BillingSummaryResponse aggregates the fetched bills.
type BillingSummaryResponse struct {
	TotalBills        int     `json:"total_bills"`
	TotalOwed         float64 `json:"total_owed"`
	OverdueBillsCount int     `json:"overdue_bills_count"`
	OverdueAmount     float64 `json:"overdue_amount"`
}

// BillInfoResponse renders the billing view.
type BillInfoResponse struct {
	UserInfo       UserInfo               `json:"user_info"`
	BillingSummary BillingSummaryResponse `json:"billing_summary"`
	RecentBills    []BillResponse         `json:"recent_bills"`
}

// NewBillInfoResponse maps the billing view.
func NewBillInfoResponse(info *service.BillInfo) BillInfoResponse {
	bills := make([]BillResponse, 0, len(info.RecentBills))
	for i := range info.RecentBills {
		view := info.RecentBills[i]
		resp := NewBillResponse(&view.Bill)
		overdue := view.Overdue
		resp.IsOverdue = &overdue
		bills = append(bills, resp)
	}
	return BillInfoResponse{
		UserInfo: NewUserInfo(&info.User),
		BillingSummary: BillingSummaryResponse{
			TotalBills:        info.Summary.TotalBills,
			TotalOwed:         info.Summary.TotalOwed,
			OverdueBillsCount: info.Summary.OverdueBillsCount,
			OverdueAmount:     info.Summary.OverdueAmount,
		},
		RecentBills: bills,
	}
}

// TicketsSummaryResponse aggregates the fetched tickets.
type TicketsSummaryResponse struct {
	TotalTickets      int                           `json:"total_tickets"`
	OpenTickets       int                           `json:"open_tickets"`
	ResolvedTickets   int                           `json:"resolved_tickets"`
	AvgResolutionDays int                           `json:"avg_resolution_days"`
	StatusBreakdown   map[domain.TicketStatus]int   `json:"status_breakdown"`
	PriorityBreakdown map[domain.TicketPriority]int `json:"priority_breakdown"`
}

// SupportInfoResponse renders the support view.
type SupportInfoResponse struct {
	UserInfo       UserInfo               `json:"user_info"`
	TicketsSummary TicketsSummaryResponse `json:"tickets_summary"`
	Tickets        []TicketResponse       `json:"tickets"`
}

// NewSupportInfoResponse maps the support view.
func NewSupportInfoResponse(info *service.SupportInfo) SupportInfoResponse {
	tickets := make([]TicketResponse, 0, len(info.Tickets))
	for i := range info.Tickets {
		view := info.Tickets[i]
		resp := NewTicketResponse(&view.SupportTicket)
		days, overdue := view.DaysOpen, view.Overdue
		resp.DaysOpen = &days
		resp.IsOverdue = &overdue
		tickets = append(tickets, resp)
	}
	return SupportInfoResponse{
		UserInfo: NewUserInfo(&info.User),
		TicketsSummary: TicketsSummaryResponse{
			TotalTickets:      info.Summary.TotalTickets,
			OpenTickets:       info.Summary.OpenTickets,
			ResolvedTickets:   info.Summary.ResolvedTickets,
			AvgResolutionDays: info.Summary.AvgResolutionDays,
			StatusBreakdown:   info.Summary.StatusBreakdown,
			PriorityBreakdown: info.Summary.PriorityBreakdown,
		},
		Tickets: tickets,
	}
}

// CompleteSummaryResponse is the quick-scan block of the complete view.
type CompleteSummaryResponse struct {
	CustomerStatus domain.PaymentStatus `json:"customer_status"`
	TotalOwed      float64              `json:"total_owed"`
	OpenTickets    int                  `json:"open_tickets"`
	LastUpdated    time.Time            `json:"last_updated"`
}

// CompleteInfoResponse composes the three account views.
type CompleteInfoResponse struct {
	PackageInfo PackageInfoResponse     `json:"package_info"`
	BillingInfo BillInfoResponse        `json:"billing_info"`
	SupportInfo SupportInfoResponse     `json:"support_info"`
	Summary     CompleteSummaryResponse `json:"summary"`
}

// NewCompleteInfoResponse maps the complete view.
func NewCompleteInfoResponse(info *service.CompleteInfo) CompleteInfoResponse {
	return CompleteInfoResponse{
		PackageInfo: NewPackageInfoResponse(info.PackageInfo),
		BillingInfo: NewBillInfoResponse(info.BillingInfo),
		SupportInfo: NewSupportInfoResponse(info.SupportInfo),
		Summary: CompleteSummaryResponse{
			CustomerStatus: info.Summary.CustomerStatus,
			TotalOwed:      info.Summary.TotalOwed,
			OpenTickets:    info.Summary.OpenTickets,
			LastUpdated:    info.Summary.LastUpdated,
		},
	}
}

// AlertResponse is one dashboard notice.
type AlertResponse struct {
	Type    service.AlertType `json:"type"`
	Message string            `json:"message"`
	Action  string            `json:"action"`
	Amount  *float64          `json:"amount,omitempty"`
}

// DashboardSummaryResponse is the headline block of the dashboard.
type DashboardSummaryResponse struct {
	PackageName          string         `json:"package_name"`
	MonthlyBill          float64        `json:"monthly_bill"`
	OutstandingAmount    float64        `json:"outstanding_amount"`
	OpenTickets          int            `json:"open_tickets"`
	DataUsagePercentage  domain.Percent `json:"data_usage_percentage"`
	VoiceUsagePercentage domain.Percent `json:"voice_usage_percentage"`
}

// DashboardResponse is the composite account view with alerts.
type DashboardResponse struct {
	UserInfo         AccountUserInfo          `json:"user_info"`
	AccountStatus    service.AccountStatus    `json:"account_status"`
	DashboardSummary DashboardSummaryResponse `json:"dashboard_summary"`
	Alerts           []AlertResponse          `json:"alerts"`
	PackageInfo      PackageInfoResponse      `json:"package_info"`
	BillingInfo      BillInfoResponse         `json:"billing_info"`
	SupportInfo      SupportInfoResponse      `json:"support_info"`
	LastUpdated      time.Time                `json:"last_updated"`
}

// NewDashboardResponse maps the dashboard.
func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	alerts := make([]AlertResponse, 0, len(d.Alerts))
	for _, a := range d.Alerts {
		alerts = append(alerts, AlertResponse{Type: a.Type, Message: a.Message, Action: a.Action, Amount: a.Amount})
	}
	packageInfo := NewPackageInfoResponse(d.PackageInfo)
	return DashboardResponse{
		UserInfo:      packageInfo.UserInfo,
		AccountStatus: d.AccountStatus,
		DashboardSummary: DashboardSummaryResponse{
			PackageName:          d.Summary.PackageName,
			MonthlyBill:          d.Summary.MonthlyBill,
			OutstandingAmount:    d.Summary.OutstandingAmount,
			OpenTickets:          d.Summary.OpenTickets,
			DataUsagePercentage:  d.Summary.DataUsagePercentage,
			VoiceUsagePercentage: d.Summary.VoiceUsagePercentage,
		},
		Alerts:      alerts,
		PackageInfo: packageInfo,
		BillingInfo: NewBillInfoResponse(d.BillingInfo),
		SupportInfo: NewSupportInfoResponse(d.SupportInfo),
		LastUpdated: d.LastUpdated,
	}
}
