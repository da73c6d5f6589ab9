package routes

import (
	"citysense-be/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, ctrl *controllers.IssueController, auth, admin, limiter gin.HandlerFunc) {
	group := r.Group("/api/issues")
	{
		group.GET("", ctrl.ListIssues)
		group.GET("/stats/overview", ctrl.StatsOverview)
		group.GET("/user/:userId", auth, ctrl.GetIssuesByUser)
		group.GET("/:id", ctrl.GetIssue)
		group.POST("", auth, limiter, ctrl.CreateIssue)
		group.POST("/:id/upvote", auth, ctrl.ToggleUpvote)
		group.PATCH("/:id/status", auth, admin, ctrl.UpdateStatus)
		group.DELETE("/:id", auth, admin, ctrl.DeleteIssue)
	}
}
