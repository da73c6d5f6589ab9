package routes

import (
	"citysense-be/controllers"

	"github.com/gin-gonic/gin"
)

// MediaRoutes sets up the media gateway routes
func MediaRoutes(r *gin.Engine, ctrl *controllers.MediaController, auth gin.HandlerFunc) {
	group := r.Group("/api/cloudinary", auth)
	{
		group.DELETE("/delete", ctrl.DeleteImage)
		group.GET("/metadata/:publicId", ctrl.GetImageMetadata)
		group.POST("/upload", ctrl.UploadImage)
		group.POST("/signed-upload", ctrl.SignedUpload)
		group.DELETE("/bulk-delete", ctrl.BulkDeleteImages)
		group.GET("/folder/*folderPath", ctrl.GetFolderContents)
		group.GET("/stats", ctrl.GetMediaStats)
	}
}
