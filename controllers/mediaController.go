package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"citysense-be/middlewares"
	"citysense-be/services"

	"github.com/gin-gonic/gin"
)

// MediaController proxies image operations to the media host.
type MediaController struct {
	Media *services.MediaService
}

func NewMediaController(media *services.MediaService) *MediaController {
	return &MediaController{Media: media}
}

// DeleteImage removes a single image by public id
func (mc *MediaController) DeleteImage(c *gin.Context) {
	var input struct {
		PublicID string `json:"publicId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.PublicID == "" {
		c.Error(middlewares.BadRequest("Public ID is required"))
		return
	}

	result, err := mc.Media.Delete(c.Request.Context(), input.PublicID)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Result == "ok",
		"message": "Image deleted successfully",
		"result":  result.Result,
	})
}

// GetImageMetadata fetches image details by public id
func (mc *MediaController) GetImageMetadata(c *gin.Context) {
	publicID := c.Param("publicId")
	if publicID == "" {
		c.Error(middlewares.BadRequest("Public ID is required"))
		return
	}

	asset, err := mc.Media.Metadata(c.Request.Context(), publicID)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"metadata": gin.H{
			"publicId":  asset.PublicID,
			"format":    asset.Format,
			"width":     asset.Width,
			"height":    asset.Height,
			"bytes":     asset.Bytes,
			"url":       asset.SecureURL,
			"createdAt": asset.CreatedAt,
			"tags":      asset.Tags,
		},
	})
}

// UploadImage performs a server-side upload
func (mc *MediaController) UploadImage(c *gin.Context) {
	var input struct {
		FilePath string                 `json:"filePath"`
		Options  services.UploadOptions `json:"options"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.FilePath == "" {
		c.Error(middlewares.BadRequest("File path is required"))
		return
	}

	result, err := mc.Media.Upload(c.Request.Context(), input.FilePath, input.Options)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Image uploaded successfully",
		"url":      result.SecureURL,
		"publicId": result.PublicID,
		"metadata": gin.H{
			"width":     result.Width,
			"height":    result.Height,
			"format":    result.Format,
			"bytes":     result.Bytes,
			"createdAt": result.CreatedAt,
		},
	})
}

// SignedUpload generates signed parameters for client-side uploads
func (mc *MediaController) SignedUpload(c *gin.Context) {
	var input struct {
		Options services.UploadOptions `json:"options"`
	}
	// An empty body is fine; defaults apply.
	_ = c.ShouldBindJSON(&input)

	params, err := mc.Media.SignedUploadParams(input.Options)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"signedParams": params,
	})
}

// BulkDeleteImages removes a batch of images
func (mc *MediaController) BulkDeleteImages(c *gin.Context) {
	var input struct {
		PublicIDs []string `json:"publicIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || len(input.PublicIDs) == 0 {
		c.Error(middlewares.BadRequest("Array of public IDs is required"))
		return
	}

	result, err := mc.Media.BulkDelete(c.Request.Context(), input.PublicIDs)
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bulk deletion completed for " + strconv.Itoa(len(input.PublicIDs)) + " images",
		"deleted": result.Deleted,
		"partial": result.Partial,
	})
}

// GetFolderContents lists a folder with cursor pagination
func (mc *MediaController) GetFolderContents(c *gin.Context) {
	folder := strings.TrimPrefix(c.Param("folderPath"), "/")

	maxResults := 100
	if v := c.Query("maxResults"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxResults = n
		}
	}

	result, err := mc.Media.FolderContents(c.Request.Context(), folder, maxResults, c.Query("nextCursor"))
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"resources":  result.Assets,
		"nextCursor": result.NextCursor,
		"totalCount": result.TotalCount,
	})
}

// GetMediaStats reports basic stats for the issues folder
func (mc *MediaController) GetMediaStats(c *gin.Context) {
	result, err := mc.Media.FolderContents(c.Request.Context(), services.DefaultMediaFolder, 1, "")
	if err != nil {
		c.Error(middlewares.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"totalImages": result.TotalCount,
			"folder":      services.DefaultMediaFolder,
		},
	})
}
