package routes

import (
	"freebie-finder-be/controllers"
	"freebie-finder-be/middlewares"

	"github.com/gin-gonic/gin"
)

// PhotoRoutes sets up the standalone photo upload route
func PhotoRoutes(r *gin.Engine) {
	photo := r.Group("/api/photos")
	{
		photo.POST("", middlewares.DeviceAuthMiddleware(), controllers.UploadPhoto)
	}
}
