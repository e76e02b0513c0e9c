package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingCategory enum
type ListingCategory string

const (
	Food     ListingCategory = "food"
	Event    ListingCategory = "event"
	Stuff    ListingCategory = "stuff"
	Service  ListingCategory = "service"
	Water    ListingCategory = "water"
	Bathroom ListingCategory = "bathroom"
)

// ValidCategories is the set of categories a listing may carry.
var ValidCategories = map[ListingCategory]bool{
	Food: true, Event: true, Stuff: true,
	Service: true, Water: true, Bathroom: true,
}

// DefaultListingTTL is how long a listing stays up when the poster
// doesn't pick an expiry.
const DefaultListingTTL = 48 * time.Hour

// Listing represents a free item/resource posted from a device
type Listing struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Category          ListingCategory    `bson:"category" json:"category"`
	Latitude          float64            `bson:"latitude" json:"latitude"`
	Longitude         float64            `bson:"longitude" json:"longitude"`
	PhotoURL          string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PostedBy          string             `bson:"postedBy" json:"postedBy"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt         time.Time          `bson:"expiresAt" json:"expiresAt"`
	Upvotes           int64              `bson:"upvotes" json:"upvotes"`
	AverageRating     float64            `bson:"averageRating" json:"averageRating"`
	ReviewCount       int                `bson:"reviewCount" json:"reviewCount"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CleanlinessRating *float64           `bson:"cleanlinessRating,omitempty" json:"cleanlinessRating,omitempty"`
}

// NewListing builds a listing with creation-time defaults applied:
// createdAt = now, expiresAt = now + 48h unless the caller supplied one,
// counters zeroed, isActive true.
func NewListing(title, description string, category ListingCategory, lat, lng float64, photoURL, postedBy string, expiresAt *time.Time, cleanliness *float64) Listing {
	now := time.Now()
	expiry := now.Add(DefaultListingTTL)
	if expiresAt != nil {
		expiry = *expiresAt
	}
	return Listing{
		ID:                primitive.NewObjectID(),
		Title:             title,
		Description:       description,
		Category:          category,
		Latitude:          lat,
		Longitude:         lng,
		PhotoURL:          photoURL,
		PostedBy:          postedBy,
		CreatedAt:         now,
		ExpiresAt:         expiry,
		Upvotes:           0,
		AverageRating:     0,
		ReviewCount:       0,
		IsActive:          true,
		CleanlinessRating: cleanliness,
	}
}

// Expired reports whether the listing's window has passed at t.
func (l Listing) Expired(t time.Time) bool {
	return !l.ExpiresAt.After(t)
}

// ValidateCleanliness enforces that cleanlinessRating is only set on
// bathroom listings and stays within 1-10. A bathroom listing without
// one is fine.
func ValidateCleanliness(category ListingCategory, rating *float64) bool {
	if rating == nil {
		return true
	}
	if category != Bathroom {
		return false
	}
	return *rating >= 1 && *rating <= 10
}
