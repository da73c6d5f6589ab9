package services

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"citysense-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "issues_export_2026-08-29.csv", ExportFilename("issues", now))
	assert.Equal(t, "users_export_2026-08-29.csv", ExportFilename("users", now))
}

func TestWriteIssuesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.csv")

	imageURL := "https://cdn.example.com/pothole.jpg"
	resolvedBy := "admin-1"
	resolvedAt := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

	issues := []models.Issue{
		{
			ID:          primitive.NewObjectID(),
			Title:       "Deep pothole",
			Description: "Large pothole near the school gate",
			Category:    models.Pothole,
			Severity:    4,
			Status:      models.Resolved,
			Location:    models.Location{Lat: 12.97, Lng: 77.59, Address: "MG Road"},
			Upvotes:     7,
			UserID:      "user-1",
			Timestamp:   time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
			ImageURL:    &imageURL,
			ResolvedAt:  &resolvedAt,
			ResolvedBy:  &resolvedBy,
		},
		{
			ID:          primitive.NewObjectID(),
			Title:       "Streetlight out",
			Description: "Dark stretch on 5th cross",
			Category:    models.BrokenStreetlight,
			Severity:    2,
			Status:      models.Open,
			Location:    models.Location{Lat: 12.9, Lng: 77.6},
			UserID:      "user-2",
			Timestamp:   time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, WriteIssuesCSV(path, issues))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, issueCSVHeader, records[0])

	resolved := records[1]
	assert.Equal(t, "Deep pothole", resolved[1])
	assert.Equal(t, "Pothole", resolved[3])
	assert.Equal(t, "4", resolved[4])
	assert.Equal(t, "Resolved", resolved[5])
	assert.Equal(t, "12.97", resolved[6])
	assert.Equal(t, "MG Road", resolved[8])
	assert.Equal(t, "7", resolved[9])
	assert.Equal(t, "2026-03-02T09:30:00Z", resolved[12])
	assert.Equal(t, "admin-1", resolved[13])
	assert.Equal(t, imageURL, resolved[14])

	// Absent optional fields render as empty strings.
	open := records[2]
	assert.Equal(t, "", open[8])
	assert.Equal(t, "", open[12])
	assert.Equal(t, "", open[13])
	assert.Equal(t, "", open[14])
}

func TestWriteIssuesCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteIssuesCSV(path, nil))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, issueCSVHeader, records[0])
}

func TestWriteUsersCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	users := []models.User{
		{
			ID:             primitive.NewObjectID(),
			Email:          "citizen@example.com",
			DisplayName:    "Citizen One",
			Role:           models.RoleCitizen,
			CreatedAt:      time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			IssuesReported: 3,
			IssuesUpvoted:  8,
		},
	}

	require.NoError(t, WriteUsersCSV(path, users))

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, userCSVHeader, records[0])

	row := records[1]
	assert.Equal(t, "citizen@example.com", row[1])
	assert.Equal(t, "citizen", row[3])
	assert.Equal(t, "2026-01-10T00:00:00Z", row[4])
	assert.Equal(t, "3", row[5])
	assert.Equal(t, "8", row[6])
}

func TestWriteStatsReportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	rows := []ReportRow{
		{Metric: "Total Issues", Value: 42, Category: "Overview"},
		{Metric: "Open Issues", Value: 10, Category: "Status"},
	}
	require.NoError(t, WriteStatsReportCSV(path, rows))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, reportCSVHeader, records[0])
	assert.Equal(t, []string{"Total Issues", "42", "Overview"}, records[1])
	assert.Equal(t, []string{"Open Issues", "10", "Status"}, records[2])
}
