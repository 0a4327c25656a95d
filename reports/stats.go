package reports

import (
	"context"
	"time"
)

// DashboardStats are the four counters of the dashboard.
type DashboardStats struct {
	TotalBooks   int `json:"total_books"`
	Members      int `json:"members"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}

// Stats counts books, members, active loans and loans overdue as of today.
func Stats(ctx context.Context, source Source, today time.Time) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalBooks, err = source.CountBooks(ctx); err != nil {
		return DashboardStats{}, err
	}

	if stats.Members, err = source.CountMembers(ctx); err != nil {
		return DashboardStats{}, err
	}

	if stats.ActiveLoans, err = source.CountActiveLoans(ctx); err != nil {
		return DashboardStats{}, err
	}

	if stats.OverdueLoans, err = source.CountOverdueLoans(ctx, today); err != nil {
		return DashboardStats{}, err
	}

	return stats, nil
}
