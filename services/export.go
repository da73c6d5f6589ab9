package services

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"citysense-be/models"
)

var issueCSVHeader = []string{
	"ID", "Title", "Description", "Category", "Severity", "Status",
	"Latitude", "Longitude", "Address", "Upvotes", "User ID",
	"Created At", "Resolved At", "Resolved By", "Image URL",
}

var userCSVHeader = []string{
	"User ID", "Email", "Display Name", "Role", "Created At",
	"Issues Reported", "Issues Upvoted",
}

var reportCSVHeader = []string{"Metric", "Value", "Category"}

// ExportFilename builds the date-stamped attachment name.
func ExportFilename(entity string, now time.Time) string {
	return entity + "_export_" + now.Format("2006-01-02") + ".csv"
}

// WriteIssuesCSV writes the issue export. Absent optional fields render
// as empty strings, never a null literal.
func WriteIssuesCSV(path string, issues []models.Issue) error {
	records := make([][]string, 0, len(issues))
	for _, issue := range issues {
		resolvedAt := ""
		if issue.ResolvedAt != nil {
			resolvedAt = issue.ResolvedAt.UTC().Format(time.RFC3339)
		}
		resolvedBy := ""
		if issue.ResolvedBy != nil {
			resolvedBy = *issue.ResolvedBy
		}
		imageURL := ""
		if issue.ImageURL != nil {
			imageURL = *issue.ImageURL
		}
		records = append(records, []string{
			issue.ID.Hex(),
			issue.Title,
			issue.Description,
			string(issue.Category),
			strconv.Itoa(issue.Severity),
			string(issue.Status),
			strconv.FormatFloat(issue.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(issue.Location.Lng, 'f', -1, 64),
			issue.Location.Address,
			strconv.FormatInt(issue.Upvotes, 10),
			issue.UserID,
			issue.Timestamp.UTC().Format(time.RFC3339),
			resolvedAt,
			resolvedBy,
			imageURL,
		})
	}
	return writeCSV(path, issueCSVHeader, records)
}

// WriteUsersCSV writes the user export.
func WriteUsersCSV(path string, users []models.User) error {
	records := make([][]string, 0, len(users))
	for _, user := range users {
		records = append(records, []string{
			user.ID.Hex(),
			user.Email,
			user.DisplayName,
			string(user.Role),
			user.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(user.IssuesReported),
			strconv.Itoa(user.IssuesUpvoted),
		})
	}
	return writeCSV(path, userCSVHeader, records)
}

// WriteStatsReportCSV writes the flattened statistics report.
func WriteStatsReportCSV(path string, rows []ReportRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Metric,
			strconv.Itoa(row.Value),
			row.Category,
		})
	}
	return writeCSV(path, reportCSVHeader, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
