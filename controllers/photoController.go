package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"freebie-finder-be/config"
	"freebie-finder-be/models"
	"freebie-finder-be/utils"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxPhotoUploadBytes = 10 << 20 // 10MB multipart cap

func validPhotoExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// storePhoto uploads to Cloudinary when configured, otherwise encodes
// the image inline under the document size cap. Returns the URL to
// store on the listing.
func storePhoto(ctx context.Context, data []byte, filename string) (string, error) {
	if cld := config.Cloudinary(); cld != nil {
		uf := true
		up, err := cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
			Folder:         "freebies",
			PublicID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
			UniqueFilename: &uf,
			ResourceType:   "image",
		})
		if err == nil {
			return up.SecureURL, nil
		}
		log.Printf("Cloudinary upload failed, falling back to inline photo: %v", err)
	}

	return utils.EncodeInlinePhoto(data)
}

// UploadPhoto accepts a multipart image and returns a URL usable as a
// listing's photoUrl.
func UploadPhoto(c *gin.Context) {
	if _, exists := c.Get("device_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Device not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxPhotoUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be under 10MB"})
		return
	}
	if !validPhotoExt(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be jpeg or png"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := storePhoto(ctx, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, utils.ErrImageTooLarge) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image could not be compressed enough to store"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// AttachListingPhoto uploads a photo and sets it on a listing the
// caller owns.
func AttachListingPhoto(c *gin.Context) {
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

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxPhotoUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be under 10MB"})
		return
	}
	if !validPhotoExt(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be jpeg or png"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	if listing.PostedBy != deviceID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only attach photos to your own listings"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	url, err := storePhoto(ctx, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, utils.ErrImageTooLarge) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "image could not be compressed enough to store"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	_, err = listingCollection.UpdateOne(ctx,
		bson.M{"_id": listingID},
		bson.M{"$set": bson.M{"photoUrl": url}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
