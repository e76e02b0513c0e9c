package routes

import (
	"os"
	"strconv"

	"freebie-finder-be/controllers"
	"freebie-finder-be/middlewares"

	"github.com/gin-gonic/gin"
)

func postLimitPerDay() int {
	if v, err := strconv.Atoi(os.Getenv("POST_LIMIT_PER_DAY")); err == nil && v > 0 {
		return v
	}
	return 20
}

// ListingRoutes sets up the listing routes
func ListingRoutes(r *gin.Engine) {
	listing := r.Group("/api/listings")
	{
		listing.GET("", middlewares.OptionalDeviceAuth(), controllers.SearchListings)
		listing.GET("/analytics", controllers.GetListingAnalytics)
		listing.GET("/mine", middlewares.DeviceAuthMiddleware(), controllers.GetMyListings)
		listing.GET("/:id", middlewares.OptionalDeviceAuth(), controllers.GetListing)
		listing.POST("", middlewares.DeviceAuthMiddleware(), middlewares.PostRateLimiter(postLimitPerDay()), controllers.CreateListing)
		listing.POST("/:id/upvote", middlewares.DeviceAuthMiddleware(), controllers.UpvoteListing)
		listing.POST("/:id/photo", middlewares.DeviceAuthMiddleware(), controllers.AttachListingPhoto)
		listing.POST("/:id/reviews", middlewares.DeviceAuthMiddleware(), controllers.AddReview)
		listing.GET("/:id/reviews", controllers.GetReviews)
		listing.POST("/:id/reports", middlewares.DeviceAuthMiddleware(), controllers.AddReport)
	}
}
