package controllers

import (
	"os"
	"strconv"
	"time"

	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/repository"
	"citysense-be/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ExportController streams CSV exports of issues, users and statistics.
type ExportController struct {
	Issues repository.IssueStore
	Users  repository.UserStore
}

func NewExportController(issues repository.IssueStore, users repository.UserStore) *ExportController {
	return &ExportController{Issues: issues, Users: users}
}

// ExportIssuesCSV streams a filtered issue export as a CSV attachment
func (ec *ExportController) ExportIssuesCSV(c *gin.Context) {
	filter := repository.ExportFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	if v := c.Query("severity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			c.Error(middlewares.BadRequest("severity must be an integer between 1 and 5"))
			return
		}
		filter.Severity = n
	}
	if v := c.Query("startDate"); v != "" {
		t, err := parseExportDate(v)
		if err != nil {
			c.Error(middlewares.BadRequest("startDate must be an ISO date"))
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := parseExportDate(v)
		if err != nil {
			c.Error(middlewares.BadRequest("endDate must be an ISO date"))
			return
		}
		filter.EndDate = &t
	}

	issues, err := ec.Issues.ListForExport(c.Request.Context(), filter)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	filename := services.ExportFilename("issues", time.Now())
	ec.sendCSV(c, filename, func(path string) error {
		return services.WriteIssuesCSV(path, issues)
	})
}

// ExportUsersCSV streams a user export as a CSV attachment
func (ec *ExportController) ExportUsersCSV(c *gin.Context) {
	ctx := c.Request.Context()

	var users []models.User
	var err error
	if role := c.Query("role"); role != "" {
		if !models.ValidRoles[models.UserRole(role)] {
			c.Error(middlewares.BadRequest("Invalid role"))
			return
		}
		users, err = ec.Users.ListByRole(ctx, models.UserRole(role))
	} else {
		users, err = ec.Users.ListAll(ctx)
	}
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	filename := services.ExportFilename("users", time.Now())
	ec.sendCSV(c, filename, func(path string) error {
		return services.WriteUsersCSV(path, users)
	})
}

// ExportStatsReport streams the flattened statistics report
func (ec *ExportController) ExportStatsReport(c *gin.Context) {
	ctx := c.Request.Context()

	issues, err := ec.Issues.ListAll(ctx)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}
	users, err := ec.Users.ListAll(ctx)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	rows := services.BuildStatsReport(issues, users)
	filename := "statistics_report_" + time.Now().Format("2006-01-02") + ".csv"
	ec.sendCSV(c, filename, func(path string) error {
		return services.WriteStatsReportCSV(path, rows)
	})
}

// sendCSV writes the export to a transient file, streams it as an
// attachment and removes the file on every exit path. Each request gets
// its own temp file so concurrent same-day exports cannot collide.
func (ec *ExportController) sendCSV(c *gin.Context, filename string, write func(path string) error) {
	f, err := os.CreateTemp("", "citysense_export_*.csv")
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}
	path := f.Name()
	f.Close()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove temp export file")
		}
	}()

	if err := write(path); err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.FileAttachment(path, filename)
}

func parseExportDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
