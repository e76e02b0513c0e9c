package config

import (
	"log"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
)

var cld *cloudinary.Cloudinary

// ConnectCloudinary initializes the Cloudinary client when
// CLOUDINARY_URL is set. Photo uploads fall back to inline encoding
// when it isn't, so a missing URL is not fatal.
func ConnectCloudinary() {
	cloudinaryURL := os.Getenv("CLOUDINARY_URL")
	if cloudinaryURL == "" {
		log.Println("CLOUDINARY_URL not set, photos will be stored inline")
		return
	}

	c, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		log.Printf("Failed to initialize Cloudinary, photos will be stored inline: %v", err)
		return
	}

	cld = c
	log.Println("Connected to Cloudinary")
}

// Cloudinary returns the configured client, or nil when uploads should
// use the inline fallback.
func Cloudinary() *cloudinary.Cloudinary {
	return cld
}
