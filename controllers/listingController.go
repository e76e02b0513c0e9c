package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"freebie-finder-be/config"
	"freebie-finder-be/models"
	"freebie-finder-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var listingCollection *mongo.Collection = config.GetCollection("listings")
var upvoteCollection *mongo.Collection = config.GetCollection("upvotes")

// CreateListing handles posting a new freebie
func CreateListing(c *gin.Context) {
	deviceID, exists := c.Get("device_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}

	var input struct {
		Title             string     `json:"title" binding:"required,max=100"`
		Description       string     `json:"description" binding:"max=1000"`
		Category          string     `json:"category" binding:"required"`
		Latitude          *float64   `json:"latitude" binding:"required"`
		Longitude         *float64   `json:"longitude" binding:"required"`
		PhotoURL          string     `json:"photoUrl,omitempty"`
		ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
		CleanlinessRating *float64   `json:"cleanlinessRating,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.ListingCategory(input.Category)
	if !models.ValidCategories[category] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	if !utils.IsLocationValid(*input.Latitude, *input.Longitude) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	if !models.ValidateCleanliness(category, input.CleanlinessRating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cleanlinessRating must be 1-10 and only set on bathroom listings"})
		return
	}

	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiresAt must be in the future"})
		return
	}

	listing := models.NewListing(
		input.Title,
		input.Description,
		category,
		*input.Latitude,
		*input.Longitude,
		input.PhotoURL,
		deviceID.(string),
		input.ExpiresAt,
		input.CleanlinessRating,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := listingCollection.InsertOne(ctx, listing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// SearchListings handles the feed query: active, unexpired listings
// filtered by search text, category, poop mode and radius, ordered by
// distance from the caller (or recency when no location is sent).
func SearchListings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := utils.SearchQuery{
		SearchText:   c.Query("search"),
		PoopModeOnly: c.Query("poop_mode") == "true",
	}

	if categoryParam := c.Query("category"); categoryParam != "" && categoryParam != "all" {
		category := models.ListingCategory(categoryParam)
		if !models.ValidCategories[category] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		query.Category = &category
	}

	latParam := c.Query("lat")
	lngParam := c.Query("lng")
	if latParam != "" || lngParam != "" {
		lat, latErr := strconv.ParseFloat(latParam, 64)
		lng, lngErr := strconv.ParseFloat(lngParam, 64)
		if latErr != nil || lngErr != nil || !utils.IsLocationValid(lat, lng) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		query.UserLocation = &utils.UserLocation{Latitude: lat, Longitude: lng}
	}

	if radiusParam := c.Query("radius"); radiusParam != "" {
		radius, err := strconv.ParseFloat(radiusParam, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
		query.RadiusMiles = radius
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	// The active scan re-runs on every request; creation order in,
	// so distance ties keep creation order out.
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := listingCollection.Find(ctx, bson.M{"isActive": true}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listings"})
		return
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode listings"})
		return
	}

	ordered := utils.SearchListings(listings, query, time.Now())

	total := len(ordered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := ordered[start:end]

	var deviceID string
	if deviceIDVal, exists := c.Get("device_id"); exists {
		deviceID, _ = deviceIDVal.(string)
	}

	type ListingResult struct {
		models.Listing
		DistanceMeters *float64 `json:"distanceMeters,omitempty"`
		UserHasUpvoted bool     `json:"userHasUpvoted"`
	}

	results := make([]ListingResult, 0, len(pageItems))
	for _, listing := range pageItems {
		result := ListingResult{Listing: listing}

		if query.UserLocation != nil {
			meters := utils.HaversineDistanceMeters(
				query.UserLocation.Latitude, query.UserLocation.Longitude,
				listing.Latitude, listing.Longitude,
			)
			result.DistanceMeters = &meters
		}

		if deviceID != "" {
			count, err := upvoteCollection.CountDocuments(ctx, bson.M{
				"listing": listing.ID,
				"device":  deviceID,
			})
			if err == nil && count > 0 {
				result.UserHasUpvoted = true
			}
		}

		results = append(results, result)
	}

	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, gin.H{
		"listings":      results,
		"totalListings": total,
		"totalPages":    totalPages,
		"currentPage":   page,
	})
}

// GetListing retrieves a listing by its ID with upvote information
func GetListing(c *gin.Context) {
	idParam := c.Param("id")
	listingID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var listing models.Listing
	err = listingCollection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}

	userHasUpvoted := false
	if deviceIDVal, exists := c.Get("device_id"); exists {
		if deviceID, ok := deviceIDVal.(string); ok && deviceID != "" {
			count, err := upvoteCollection.CountDocuments(ctx, bson.M{
				"listing": listingID,
				"device":  deviceID,
			})
			if err == nil && count > 0 {
				userHasUpvoted = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                listing.ID,
		"title":             listing.Title,
		"description":       listing.Description,
		"category":          listing.Category,
		"latitude":          listing.Latitude,
		"longitude":         listing.Longitude,
		"photoUrl":          listing.PhotoURL,
		"postedBy":          listing.PostedBy,
		"createdAt":         listing.CreatedAt,
		"expiresAt":         listing.ExpiresAt,
		"upvotes":           listing.Upvotes,
		"averageRating":     listing.AverageRating,
		"reviewCount":       listing.ReviewCount,
		"isActive":          listing.IsActive,
		"cleanlinessRating": listing.CleanlinessRating,
		"userHasUpvoted":    userHasUpvoted,
	})
}

// GetMyListings retrieves all listings posted by the calling device
func GetMyListings(c *gin.Context) {
	deviceID, exists := c.Get("device_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := listingCollection.Find(ctx, bson.M{"postedBy": deviceID.(string)}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listings"})
		return
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// UpvoteListing applies an at-most-once-per-device upvote. The unique
// (listing, device) index turns the insert into a compare-and-set:
// concurrent attempts from the same device race on the index, exactly
// one insert wins, and only the winner increments the counter.
func UpvoteListing(c *gin.Context) {
	idParam := c.Param("id")
	listingID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	deviceIDVal, exists := c.Get("device_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}
	deviceID := deviceIDVal.(string)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := listingCollection.CountDocuments(ctx, bson.M{"_id": listingID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	result, err := models.ApplyUpvote(ctx, listingCollection, upvoteCollection, listingID, deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upvote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied": result.Applied,
		"upvotes": result.Upvotes,
	})
}

// GetListingAnalytics returns analytical data about listings
func GetListingAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Get listings by category using aggregation
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := listingCollection.Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category analytics"})
		return
	}
	defer categoryCursor.Close(ctx)

	var listingsByCategory []bson.M
	if err := categoryCursor.All(ctx, &listingsByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode category analytics"})
		return
	}

	// Get last 7 days data
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := listingCollection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Get top upvoted listings
	findOptions := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}}).
		SetLimit(5)

	cursor, err := listingCollection.Find(ctx, bson.M{"isActive": true}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top listings"})
		return
	}
	defer cursor.Close(ctx)

	var topListings []models.Listing
	if err := cursor.All(ctx, &topListings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode top listings"})
		return
	}

	type TopListing struct {
		ID       primitive.ObjectID `json:"id"`
		Title    string             `json:"title"`
		Category string             `json:"category"`
		Upvotes  int64              `json:"upvotes"`
	}

	topUpvoted := make([]TopListing, 0, len(topListings))
	for _, listing := range topListings {
		topUpvoted = append(topUpvoted, TopListing{
			ID:       listing.ID,
			Title:    listing.Title,
			Category: string(listing.Category),
			Upvotes:  listing.Upvotes,
		})
	}

	// Get total counts
	totalListings, err := listingCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalListings = 0
	}

	totalUpvotes, err := upvoteCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalUpvotes = 0
	}

	activeListings, err := listingCollection.CountDocuments(ctx, bson.M{
		"isActive":  true,
		"expiresAt": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		activeListings = 0
	}

	response := gin.H{
		"listingsByCategory": listingsByCategory,
		"last7Days":          last7Days,
		"topUpvotedListings": topUpvoted,
		"totalListings":      totalListings,
		"totalUpvotes":       totalUpvotes,
		"activeListings":     activeListings,
	}

	c.JSON(http.StatusOK, response)
}
