package controllers

import (
	"context"
	"net/http"
	"time"

	"freebie-finder-be/config"
	"freebie-finder-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var reportCollection *mongo.Collection = config.GetCollection("reports")

// AddReport flags a listing. Reports are persisted as-is; nothing on
// the listing changes.
func AddReport(c *gin.Context) {
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
		Reason      string  `json:"reason" binding:"required"`
		Description *string `json:"description,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reason := models.ReportReason(input.Reason)
	if !models.ValidReportReasons[reason] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report reason"})
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

	report := models.Report{
		ID:          primitive.NewObjectID(),
		ListingID:   listingID,
		Reason:      reason,
		ReporterID:  deviceID.(string),
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	_, err = reportCollection.InsertOne(ctx, report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}
