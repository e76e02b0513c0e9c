package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"freebie-finder-be/config"
	"freebie-finder-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var reviewCollection *mongo.Collection = config.GetCollection("reviews")

// AddReview persists a review and recomputes the listing's average
// rating. A device may review the same listing more than once.
func AddReview(c *gin.Context) {
	idParam := c.Param("id")
	listingID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	deviceID, exists := c.Get("device_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}

	var input struct {
		Rating *float64 `json:"rating" binding:"required"`
		Text   string   `json:"text" binding:"max=500"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *input.Rating < 1 || *input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := listingCollection.CountDocuments(ctx, bson.M{"_id": listingID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check listing"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	review := models.Review{
		ID:         primitive.NewObjectID(),
		ListingID:  listingID,
		Rating:     *input.Rating,
		Text:       input.Text,
		ReviewerID: deviceID.(string),
		CreatedAt:  time.Now(),
	}

	_, err = reviewCollection.InsertOne(ctx, review)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add review"})
		return
	}

	if err := recomputeListingRating(ctx, listingID); err != nil {
		// The review is durable; a failed recompute converges on the
		// next one. Surface nothing worse than a log line.
		log.Printf("Failed to recompute rating for listing %s: %v", listingID.Hex(), err)
	}

	c.JSON(http.StatusCreated, review)
}

// GetReviews retrieves all reviews for a listing, newest first
func GetReviews(c *gin.Context) {
	idParam := c.Param("id")
	listingID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := listingCollection.CountDocuments(ctx, bson.M{"_id": listingID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check listing"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := reviewCollection.Find(ctx, bson.M{"listingId": listingID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reviews"})
		return
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// recomputeListingRating reads all reviews for a listing, folds them
// into averageRating and reviewCount, and writes both back in a single
// $set. Last writer wins across concurrent recomputes.
func recomputeListingRating(ctx context.Context, listingID primitive.ObjectID) error {
	cursor, err := reviewCollection.Find(ctx, bson.M{"listingId": listingID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	average, count := models.SummarizeRatings(reviews)

	_, err = listingCollection.UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{"$set": bson.M{
			"averageRating": average,
			"reviewCount":   count,
		}},
	)
	return err
}
