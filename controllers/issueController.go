package controllers

import (
	"net/http"
	"time"

	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/repository"
	"citysense-be/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IssueController serves issue CRUD, upvotes and the stats overview.
type IssueController struct {
	Issues repository.IssueStore
	Users  repository.UserStore
	Mailer *services.EmailService
}

func NewIssueController(issues repository.IssueStore, users repository.UserStore, mailer *services.EmailService) *IssueController {
	return &IssueController{Issues: issues, Users: users, Mailer: mailer}
}

// ListIssues returns a filtered, sorted, paginated page of issues
func (ic *IssueController) ListIssues(c *gin.Context) {
	q := middlewares.ListQueryFrom(c)

	issues, totalCount, err := ic.Issues.List(c.Request.Context(), q)
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "Issues not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues": issues,
		"pagination": gin.H{
			"page":       q.Page,
			"limit":      q.Limit,
			"totalCount": totalCount,
			"totalPages": repository.TotalPages(totalCount, q.Limit),
		},
	})
}

// GetIssue retrieves a single issue by its ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	issue, err := ic.Issues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}
	c.JSON(http.StatusOK, issue)
}

// GetIssuesByUser lists a user's issues; callers may only see their own
// unless they hold the admin role.
func (ic *IssueController) GetIssuesByUser(c *gin.Context) {
	userID := c.Param("userId")
	callerID := c.GetString(middlewares.UserIDKey)

	if callerID != userID {
		caller, err := ic.Users.GetByID(c.Request.Context(), callerID)
		if err != nil || caller.Role != models.RoleAdmin {
			c.Error(middlewares.Forbidden("Access denied"))
			return
		}
	}

	issues, err := ic.Issues.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// CreateIssue handles a citizen submission
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"required,min=3,max=100"`
		Description string `json:"description" binding:"required,min=10,max=1000"`
		Category    string `json:"category" binding:"required"`
		Severity    int    `json:"severity" binding:"required,min=1,max=5"`
		Location    struct {
			Lat     *float64 `json:"lat" binding:"required"`
			Lng     *float64 `json:"lng" binding:"required"`
			Address string   `json:"address" binding:"omitempty,max=200"`
		} `json:"location" binding:"required"`
		ImageURL *string `json:"imageURL,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	if !models.ValidCategories[models.IssueCategory(input.Category)] {
		c.Error(middlewares.BadRequest("Invalid category"))
		return
	}
	if *input.Location.Lat < -90 || *input.Location.Lat > 90 {
		c.Error(middlewares.BadRequest("Latitude must be between -90 and 90"))
		return
	}
	if *input.Location.Lng < -180 || *input.Location.Lng > 180 {
		c.Error(middlewares.BadRequest("Longitude must be between -180 and 180"))
		return
	}

	uid := c.GetString(middlewares.UserIDKey)
	issue := models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    models.IssueCategory(input.Category),
		Severity:    input.Severity,
		Status:      models.Open,
		Location: models.Location{
			Lat:     *input.Location.Lat,
			Lng:     *input.Location.Lng,
			Address: input.Location.Address,
		},
		UserID:    uid,
		ImageURL:  input.ImageURL,
		Timestamp: time.Now(),
	}

	ctx := c.Request.Context()
	if err := ic.Issues.Create(ctx, &issue); err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	if err := ic.Users.IncIssuesReported(ctx, uid, 1); err != nil {
		log.Warn().Err(err).Str("uid", uid).Msg("failed to bump issuesReported")
	}

	if err := ic.Mailer.SendIssueNotification(&issue); err != nil {
		log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("issue notification failed")
	}

	c.JSON(http.StatusCreated, issue)
}

// ToggleUpvote casts or removes the caller's upvote on an issue
func (ic *IssueController) ToggleUpvote(c *gin.Context) {
	uid := c.GetString(middlewares.UserIDKey)

	voted, upvotes, err := ic.Issues.ToggleUpvote(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}

	message := "Upvote removed successfully"
	if voted {
		message = "Upvote cast successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"voted":   voted,
		"upvotes": upvotes,
	})
}

// UpdateStatus sets an issue's status (admin only)
func (ic *IssueController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	status := models.IssueStatus(input.Status)
	if !models.ValidStatuses[status] {
		c.Error(middlewares.BadRequest("Invalid status"))
		return
	}

	ctx := c.Request.Context()
	issue, err := ic.Issues.GetByID(ctx, c.Param("id"))
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}

	adminID := c.GetString(middlewares.UserIDKey)
	if err := ic.Issues.SetStatus(ctx, c.Param("id"), status, adminID); err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}

	if status == models.Resolved {
		if reporter, err := ic.Users.GetByID(ctx, issue.UserID); err == nil {
			if err := ic.Mailer.SendResolutionNotification(issue, reporter.Email); err != nil {
				log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("resolution notification failed")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue status updated successfully"})
}

// DeleteIssue removes an issue (admin only)
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	if err := ic.Issues.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// StatsOverview returns public aggregate issue statistics
func (ic *IssueController) StatsOverview(c *gin.Context) {
	issues, err := ic.Issues.ListAll(c.Request.Context())
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}
	c.JSON(http.StatusOK, services.BuildOverviewStats(issues))
}
