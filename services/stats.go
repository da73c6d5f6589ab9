package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"citysense-be/models"
)

// OverviewStats is the public issue statistics snapshot.
type OverviewStats struct {
	Total                int                   `json:"total"`
	Open                 int                   `json:"open"`
	InProgress           int                   `json:"inProgress"`
	Resolved             int                   `json:"resolved"`
	Categories           map[string]int        `json:"categories"`
	SeverityDistribution map[int]int           `json:"severityDistribution"`
}

// MonthBucket is one entry of the trailing monthly trend.
type MonthBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DashboardStats is the admin dashboard snapshot.
type DashboardStats struct {
	TotalIssues       int            `json:"totalIssues"`
	TotalUsers        int            `json:"totalUsers"`
	OpenIssues        int            `json:"openIssues"`
	ResolvedIssues    int            `json:"resolvedIssues"`
	RecentIssues      int            `json:"recentIssues"`
	WeeklyIssues      int            `json:"weeklyIssues"`
	AverageSeverity   float64        `json:"averageSeverity"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
	SeverityBreakdown map[int]int    `json:"severityBreakdown"`
	StatusBreakdown   map[string]int `json:"statusBreakdown"`
	MonthlyTrend      []MonthBucket  `json:"monthlyTrend"`
}

// ReportRow is one line of the flattened statistics report.
type ReportRow struct {
	Metric   string
	Value    int
	Category string
}

// BuildOverviewStats reduces a full issues snapshot into the public
// overview. Severity keys 1-5 are always present; category keys appear
// only for categories actually reported.
func BuildOverviewStats(issues []models.Issue) OverviewStats {
	stats := OverviewStats{
		Total:                len(issues),
		Categories:           map[string]int{},
		SeverityDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	for _, issue := range issues {
		switch issue.Status {
		case models.Open:
			stats.Open++
		case models.InProgress:
			stats.InProgress++
		case models.Resolved:
			stats.Resolved++
		}
		stats.Categories[string(issue.Category)]++
		if issue.Severity >= 1 && issue.Severity <= 5 {
			stats.SeverityDistribution[issue.Severity]++
		}
	}
	return stats
}

// BuildDashboardStats reduces full issues and users snapshots into the
// admin dashboard numbers. A full scan: there is no caching layer, so
// exactness beats incremental maintenance.
func BuildDashboardStats(issues []models.Issue, users []models.User, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalIssues:       len(issues),
		TotalUsers:        len(users),
		CategoryBreakdown: map[string]int{},
		SeverityBreakdown: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		StatusBreakdown: map[string]int{
			string(models.Open):       0,
			string(models.InProgress): 0,
			string(models.Resolved):   0,
		},
		MonthlyTrend: make([]MonthBucket, 0, 6),
	}

	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)

	severitySum := 0
	for _, issue := range issues {
		if issue.Status == models.Open {
			stats.OpenIssues++
		}
		if issue.Status == models.Resolved {
			stats.ResolvedIssues++
		}
		if !issue.Timestamp.Before(thirtyDaysAgo) {
			stats.RecentIssues++
		}
		if !issue.Timestamp.Before(sevenDaysAgo) {
			stats.WeeklyIssues++
		}
		stats.CategoryBreakdown[string(issue.Category)]++
		if issue.Severity >= 1 && issue.Severity <= 5 {
			stats.SeverityBreakdown[issue.Severity]++
		}
		stats.StatusBreakdown[string(issue.Status)]++
		severitySum += issue.Severity
	}

	if len(issues) > 0 {
		avg := float64(severitySum) / float64(len(issues))
		stats.AverageSeverity = math.Round(avg*10) / 10
	}

	// Six trailing calendar months, oldest first.
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		monthEnd := monthStart.AddDate(0, 1, 0)

		count := 0
		for _, issue := range issues {
			if !issue.Timestamp.Before(monthStart) && issue.Timestamp.Before(monthEnd) {
				count++
			}
		}
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthBucket{
			Month: monthStart.Format("Jan 2006"),
			Count: count,
		})
	}

	return stats
}

// BuildStatsReport flattens overview, status, category and severity
// breakdowns into metric/value/category rows for the CSV report.
func BuildStatsReport(issues []models.Issue, users []models.User) []ReportRow {
	rows := []ReportRow{
		{Metric: "Total Issues", Value: len(issues), Category: "Overview"},
		{Metric: "Total Users", Value: len(users), Category: "Overview"},
	}

	statusStats := map[models.IssueStatus]int{}
	categoryStats := map[string]int{}
	severityStats := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, issue := range issues {
		statusStats[issue.Status]++
		categoryStats[string(issue.Category)]++
		if issue.Severity >= 1 && issue.Severity <= 5 {
			severityStats[issue.Severity]++
		}
	}

	for _, status := range models.AllStatuses {
		rows = append(rows, ReportRow{
			Metric:   fmt.Sprintf("%s Issues", status),
			Value:    statusStats[status],
			Category: "Status",
		})
	}

	categories := make([]string, 0, len(categoryStats))
	for category := range categoryStats {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		rows = append(rows, ReportRow{
			Metric:   fmt.Sprintf("%s Issues", category),
			Value:    categoryStats[category],
			Category: "Category",
		})
	}

	for severity := 1; severity <= 5; severity++ {
		rows = append(rows, ReportRow{
			Metric:   fmt.Sprintf("Severity %d Issues", severity),
			Value:    severityStats[severity],
			Category: "Severity",
		})
	}

	return rows
}
