package main

import (
	"log"
	"net/http"
	"os"

	"freebie-finder-be/config"
	"freebie-finder-be/models"
	"freebie-finder-be/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}

	log.Println("MongoDB connection established successfully!")

	if err := models.EnsureUpvoteIndex(config.GetCollection("upvotes")); err != nil {
		log.Fatalf("Failed to create upvote index: %v", err)
	}

	config.ConnectRedis()
	config.ConnectCloudinary()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	routes.DeviceRoutes(r)
	routes.ListingRoutes(r)
	routes.PhotoRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
