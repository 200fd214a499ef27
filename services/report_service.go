package services

import (
	"sort"
	"time"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/store"
)

// DashboardStats is the dashboard payload every role receives.
type DashboardStats struct {
	TotalTickets      int     `json:"total_tickets"`
	PendingTickets    int     `json:"pending_tickets"`
	InProgressTickets int     `json:"in_progress_tickets"`
	CompletedTickets  int     `json:"completed_tickets"`
	DeliveredTickets  int     `json:"delivered_tickets"`
	TotalCustomers    int     `json:"total_customers"`
	TodayCompleted    int     `json:"today_completed"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
}

// TechnicianStats extends the shared stats with the technician's own
// workload counters.
type TechnicianStats struct {
	DashboardStats
	AssignedToMe     int `json:"assigned_to_me"`
	MyInProgress     int `json:"my_in_progress"`
	MyCompletedToday int `json:"my_completed_today"`
}

type ReportSummary struct {
	TotalTickets      int     `json:"total_tickets"`
	TotalCustomers    int     `json:"total_customers"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgResolutionDays int     `json:"avg_resolution_days"`
}

type RevenueBreakdown struct {
	Today     float64 `json:"today"`
	ThisWeek  float64 `json:"this_week"`
	ThisMonth float64 `json:"this_month"`
}

type StatusBreakdown struct {
	Pending         int `json:"pending"`
	InProgress      int `json:"in_progress"`
	WaitingForParts int `json:"waiting_for_parts"`
	Testing         int `json:"testing"`
	Completed       int `json:"completed"`
	Delivered       int `json:"delivered"`
}

type IssueCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type Reports struct {
	Summary         ReportSummary               `json:"summary"`
	Revenue         RevenueBreakdown            `json:"revenue"`
	StatusBreakdown StatusBreakdown             `json:"status_breakdown"`
	TopIssues       []IssueCount                `json:"top_issues"`
	RecentTickets   []models.TicketWithCustomer `json:"recent_tickets"`
}

// ReportService derives dashboard and report aggregates by scanning the
// ticket store read-only.
type ReportService struct {
	Store store.Store
	Now   func() time.Time
}

func NewReportService(st store.Store) *ReportService {
	return &ReportService{
		Store: st,
		Now:   time.Now,
	}
}

func (s *ReportService) Stats() (*DashboardStats, error) {
	tickets, err := s.Store.ListTickets()
	if err != nil {
		return nil, err
	}
	customers, err := s.Store.ListCustomers()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalTickets:   len(tickets),
		TotalCustomers: len(customers),
	}

	now := s.Now()
	today := dateOf(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for _, t := range tickets {
		switch t.ServiceStatus {
		case models.StatusPending:
			stats.PendingTickets++
		case models.StatusInProgress:
			stats.InProgressTickets++
		case models.StatusCompleted:
			stats.CompletedTickets++
		case models.StatusDelivered:
			stats.DeliveredTickets++
		}
		if t.CompletedAt != nil && dateOf(*t.CompletedAt).Equal(today) {
			stats.TodayCompleted++
		}
		if t.ServiceStatus == models.StatusDelivered && t.FinalCost != nil {
			moment := t.CreatedAt
			if t.CompletedAt != nil {
				moment = *t.CompletedAt
			}
			if !moment.Before(startOfMonth) {
				stats.MonthlyRevenue += *t.FinalCost
			}
		}
	}
	return stats, nil
}

func (s *ReportService) StatsForTechnician(technicianID string) (*TechnicianStats, error) {
	base, err := s.Stats()
	if err != nil {
		return nil, err
	}

	mine, err := s.Store.ListTicketsByTechnician(technicianID)
	if err != nil {
		return nil, err
	}

	stats := &TechnicianStats{
		DashboardStats: *base,
		AssignedToMe:   len(mine),
	}
	today := dateOf(s.Now())
	for _, t := range mine {
		if t.ServiceStatus == models.StatusInProgress {
			stats.MyInProgress++
		}
		if t.CompletedAt != nil && dateOf(*t.CompletedAt).Equal(today) {
			stats.MyCompletedToday++
		}
	}
	return stats, nil
}

func (s *ReportService) Reports() (*Reports, error) {
	tickets, err := s.Store.ListTickets()
	if err != nil {
		return nil, err
	}
	customers, err := s.Store.ListCustomers()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := dateOf(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfWeek := today.AddDate(0, 0, -int(today.Weekday()))

	reports := &Reports{}
	reports.Summary.TotalTickets = len(tickets)
	reports.Summary.TotalCustomers = len(customers)

	issueCounts := make(map[string]int)
	var resolutionTotal time.Duration
	var resolved int

	for _, t := range tickets {
		switch t.ServiceStatus {
		case models.StatusPending:
			reports.StatusBreakdown.Pending++
		case models.StatusInProgress:
			reports.StatusBreakdown.InProgress++
		case models.StatusWaitingForParts:
			reports.StatusBreakdown.WaitingForParts++
		case models.StatusTesting:
			reports.StatusBreakdown.Testing++
		case models.StatusCompleted:
			reports.StatusBreakdown.Completed++
		case models.StatusDelivered:
			reports.StatusBreakdown.Delivered++
		}

		issueCounts[t.IssueCategory]++

		if t.CompletedAt != nil {
			resolutionTotal += t.CompletedAt.Sub(t.CreatedAt)
			resolved++
		}

		if t.ServiceStatus == models.StatusDelivered && t.FinalCost != nil {
			reports.Summary.TotalRevenue += *t.FinalCost

			// revenue windows key off the completion time, falling
			// back to creation time when it was never stamped
			moment := t.CreatedAt
			if t.CompletedAt != nil {
				moment = *t.CompletedAt
			}
			if !moment.Before(startOfMonth) {
				reports.Revenue.ThisMonth += *t.FinalCost
			}
			if !moment.Before(startOfWeek) {
				reports.Revenue.ThisWeek += *t.FinalCost
			}
			if t.CompletedAt != nil && dateOf(*t.CompletedAt).Equal(today) {
				reports.Revenue.Today += *t.FinalCost
			}
		}
	}

	if resolved > 0 {
		avg := resolutionTotal / time.Duration(resolved)
		reports.Summary.AvgResolutionDays = int(avg.Round(24*time.Hour) / (24 * time.Hour))
	}

	reports.TopIssues = topIssues(issueCounts, 5)

	if len(tickets) > 10 {
		tickets = tickets[:10]
	}
	reports.RecentTickets = tickets

	return reports, nil
}

func topIssues(counts map[string]int, limit int) []IssueCount {
	issues := make([]IssueCount, 0, len(counts))
	for category, count := range counts {
		issues = append(issues, IssueCount{Category: category, Count: count})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Category < issues[j].Category
	})
	if len(issues) > limit {
		issues = issues[:limit]
	}
	return issues
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
