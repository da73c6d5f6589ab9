package controllers

import (
	"net/http"
	"strconv"
	"time"

	"citysense-be/middlewares"
	"citysense-be/models"
	"citysense-be/repository"
	"citysense-be/services"

	"github.com/gin-gonic/gin"
)

var validBulkActions = map[string]bool{
	"resolve": true, "delete": true, "reopen": true,
}

// AdminController serves user administration, the dashboard and bulk
// issue actions.
type AdminController struct {
	Issues repository.IssueStore
	Users  repository.UserStore
}

func NewAdminController(issues repository.IssueStore, users repository.UserStore) *AdminController {
	return &AdminController{Issues: issues, Users: users}
}

// ListUsers returns a paginated user listing, newest first
func (ac *AdminController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, totalCount, err := ac.Users.List(c.Request.Context(), page, limit)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, user := range users {
		out = append(out, gin.H{
			"uid":            user.ID.Hex(),
			"email":          user.Email,
			"displayName":    user.DisplayName,
			"role":           user.Role,
			"createdAt":      user.CreatedAt,
			"issuesReported": user.IssuesReported,
			"issuesUpvoted":  user.IssuesUpvoted,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"totalCount": totalCount,
			"totalPages": repository.TotalPages(totalCount, limit),
		},
	})
}

// UpdateUserRole changes a user's role
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	var input struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Validation failed", middlewares.ValidationDetails(err)...))
		return
	}

	role := models.UserRole(input.Role)
	if !models.ValidRoles[role] {
		c.Error(middlewares.BadRequest("Invalid role"))
		return
	}

	if err := ac.Users.UpdateRole(c.Request.Context(), c.Param("uid"), role); err != nil {
		c.Error(middlewares.FromStoreError(err, "User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully"})
}

// DeleteUser removes a user record. Their issues are left in place.
func (ac *AdminController) DeleteUser(c *gin.Context) {
	if err := ac.Users.Delete(c.Request.Context(), c.Param("uid")); err != nil {
		c.Error(middlewares.FromStoreError(err, "User not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// DashboardStats returns the admin dashboard aggregates
func (ac *AdminController) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	issues, err := ac.Issues.ListAll(ctx)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}
	users, err := ac.Users.ListAll(ctx)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, services.BuildDashboardStats(issues, users, time.Now()))
}

// BulkAction applies resolve/delete/reopen over a list of issue ids
func (ac *AdminController) BulkAction(c *gin.Context) {
	var input struct {
		Action   string   `json:"action"`
		IssueIDs []string `json:"issueIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(middlewares.BadRequest("Invalid request body"))
		return
	}
	if input.Action == "" || len(input.IssueIDs) == 0 {
		c.Error(middlewares.BadRequest("Invalid request body"))
		return
	}
	if !validBulkActions[input.Action] {
		c.Error(middlewares.BadRequest("Invalid action"))
		return
	}

	adminID := c.GetString(middlewares.UserIDKey)
	results, err := ac.Issues.BulkAction(c.Request.Context(), input.Action, input.IssueIDs, adminID)
	if err != nil {
		c.Error(middlewares.FromStoreError(err, "Issue not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bulk " + input.Action + " completed",
		"results": results,
	})
}
