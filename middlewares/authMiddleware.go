package middlewares

import (
	"log"
	"net/http"
	"strings"

	"freebie-finder-be/utils"

	"github.com/gin-gonic/gin"
)

// DeviceAuthMiddleware validates the bearer device token and stores the
// device id in the request context. Every write path runs behind it;
// the device id is the only identity in the system.
func DeviceAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No device token provided"})
			c.Abort()
			return
		}

		// Extracting token from "Bearer <token>" format
		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		deviceID, err := utils.ParseDeviceToken(tokenString)
		if err != nil {
			log.Printf("Device token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid device token"})
			c.Abort()
			return
		}

		c.Set("device_id", deviceID)
		c.Next()
	}
}

// OptionalDeviceAuth resolves the device id when a token is present but
// lets anonymous reads through. Used on read paths that want to report
// userHasUpvoted.
func OptionalDeviceAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		if deviceID, err := utils.ParseDeviceToken(tokenString); err == nil {
			c.Set("device_id", deviceID)
		}

		c.Next()
	}
}
