package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review represents a device's review of a listing. A device may
// review the same listing more than once; there is no uniqueness
// constraint here.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID  primitive.ObjectID `bson:"listingId" json:"listingId"`
	Rating     float64            `bson:"rating" json:"rating"`
	Text       string             `bson:"text" json:"text"`
	ReviewerID string             `bson:"reviewerId" json:"reviewerId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// SummarizeRatings folds a listing's reviews into the averageRating
// and reviewCount stored on the listing: the mean of all ratings, or
// 0 when there are none.
func SummarizeRatings(reviews []Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews)), len(reviews)
}
