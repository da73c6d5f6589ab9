package routes

import (
	"citysense-be/controllers"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin routes
func AdminRoutes(r *gin.Engine, ctrl *controllers.AdminController, auth, admin gin.HandlerFunc) {
	group := r.Group("/api/admin", auth, admin)
	{
		group.GET("/users", ctrl.ListUsers)
		group.PATCH("/users/:uid/role", ctrl.UpdateUserRole)
		group.DELETE("/users/:uid", ctrl.DeleteUser)
		group.GET("/dashboard/stats", ctrl.DashboardStats)
		group.POST("/issues/bulk-action", ctrl.BulkAction)
	}
}
