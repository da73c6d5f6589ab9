package routes

import (
	"citysense-be/controllers"

	"github.com/gin-gonic/gin"
)

// ExportRoutes sets up the CSV export routes
func ExportRoutes(r *gin.Engine, ctrl *controllers.ExportController, auth, admin gin.HandlerFunc) {
	group := r.Group("/api/export", auth, admin)
	{
		group.GET("/issues/csv", ctrl.ExportIssuesCSV)
		group.GET("/users/csv", ctrl.ExportUsersCSV)
		group.GET("/stats/report", ctrl.ExportStatsReport)
	}
}
