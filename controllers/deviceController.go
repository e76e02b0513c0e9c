package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"freebie-finder-be/config"
	"freebie-finder-be/models"
	"freebie-finder-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterDevice mints a fresh installation identity. There are no
// accounts: the uuid plus its signed token is everything a device is.
func RegisterDevice(c *gin.Context) {
	var input struct {
		Platform string `json:"platform" binding:"max=50"`
	}
	// Body is optional; an empty one registers fine.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	deviceCollection := config.GetCollection("devices")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	device := models.Device{
		ID:        primitive.NewObjectID(),
		DeviceID:  uuid.NewString(),
		Platform:  input.Platform,
		CreatedAt: time.Now(),
	}

	if _, err := deviceCollection.InsertOne(ctx, device); err != nil {
		log.Println("Error inserting device:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := utils.GenerateDeviceToken(device.DeviceID)
	if err != nil {
		log.Println("Error generating device token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"deviceId":  device.DeviceID,
		"token":     token,
		"createdAt": device.CreatedAt,
	})
}

// ResetDevice hands the caller a brand-new identity. Listings, reviews
// and upvotes made under the old id keep it; they just stop counting
// as "mine" for the new one.
func ResetDevice(c *gin.Context) {
	if _, exists := c.Get("device_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}

	deviceCollection := config.GetCollection("devices")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	device := models.Device{
		ID:        primitive.NewObjectID(),
		DeviceID:  uuid.NewString(),
		CreatedAt: time.Now(),
	}

	if _, err := deviceCollection.InsertOne(ctx, device); err != nil {
		log.Println("Error inserting device:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := utils.GenerateDeviceToken(device.DeviceID)
	if err != nil {
		log.Println("Error generating device token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deviceId":  device.DeviceID,
		"token":     token,
		"createdAt": device.CreatedAt,
	})
}

// GetDeviceProfile returns the calling device's id and its posting
// stats: how many listings it has up and the upvotes they collected.
func GetDeviceProfile(c *gin.Context) {
	deviceIDVal, exists := c.Get("device_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}
	deviceID := deviceIDVal.(string)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listingCount, err := listingCollection.CountDocuments(ctx, bson.M{"postedBy": deviceID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count listings"})
		return
	}

	pipeline := []bson.M{
		{"$match": bson.M{"postedBy": deviceID}},
		{
			"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": "$upvotes"},
			},
		},
	}

	cursor, err := listingCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate upvotes"})
		return
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode upvote totals"})
		return
	}

	var totalUpvotes int64
	if len(totals) > 0 {
		totalUpvotes = totals[0].Total
	}

	c.JSON(http.StatusOK, gin.H{
		"deviceId":      deviceID,
		"listingCount":  listingCount,
		"totalUpvotes":  totalUpvotes,
	})
}
