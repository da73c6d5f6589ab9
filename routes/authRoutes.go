package routes

import (
	"citysense-be/controllers"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication and profile routes
func AuthRoutes(r *gin.Engine, ctrl *controllers.AuthController, auth gin.HandlerFunc) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", ctrl.Register)
		group.POST("/login", ctrl.Login)
		group.GET("/profile", auth, ctrl.GetProfile)
		group.PATCH("/profile", auth, ctrl.UpdateProfile)
		group.POST("/verify", auth, ctrl.VerifyToken)
	}
}
