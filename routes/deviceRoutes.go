package routes

import (
	"freebie-finder-be/controllers"
	"freebie-finder-be/middlewares"

	"github.com/gin-gonic/gin"
)

// DeviceRoutes sets up the installation identity routes
func DeviceRoutes(r *gin.Engine) {
	device := r.Group("/api/device")
	{
		device.POST("/register", controllers.RegisterDevice)
		device.POST("/reset", middlewares.DeviceAuthMiddleware(), controllers.ResetDevice)
		device.GET("/me", middlewares.DeviceAuthMiddleware(), controllers.GetDeviceProfile)
	}
}
