package models

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upvote records that a device has upvoted a listing. The unique
// (listing, device) index is what makes upvoting idempotent: a second
// insert for the same pair fails with a duplicate-key error instead of
// double-counting.
type Upvote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Listing   primitive.ObjectID `bson:"listing" json:"listing"`
	Device    string             `bson:"device" json:"device"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureUpvoteIndex creates the unique compound index for (listing, device)
func EnsureUpvoteIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "listing", Value: 1}, {Key: "device", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

// ListingStore is the slice of a listings collection ApplyUpvote needs.
// *mongo.Collection satisfies it.
type ListingStore interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
}

// UpvoteStore is the slice of an upvotes collection ApplyUpvote needs.
// *mongo.Collection satisfies it.
type UpvoteStore interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// UpvoteResult reports whether the vote was newly applied and the
// listing's upvote count afterwards.
type UpvoteResult struct {
	Applied bool  `json:"applied"`
	Upvotes int64 `json:"upvotes"`
}

// ApplyUpvote records an at-most-once-per-device upvote. The unique
// (listing, device) index turns the insert into a compare-and-set:
// concurrent attempts from the same device race on the index, exactly
// one insert wins, and only the winner increments the counter. A
// duplicate insert reports Applied=false with the current count.
func ApplyUpvote(ctx context.Context, listings ListingStore, upvotes UpvoteStore, listingID primitive.ObjectID, deviceID string) (UpvoteResult, error) {
	upvote := Upvote{
		ID:        primitive.NewObjectID(),
		Listing:   listingID,
		Device:    deviceID,
		CreatedAt: time.Now(),
	}

	_, err := upvotes.InsertOne(ctx, upvote)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var listing Listing
			if err := listings.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing); err != nil {
				return UpvoteResult{}, err
			}
			return UpvoteResult{Applied: false, Upvotes: listing.Upvotes}, nil
		}
		return UpvoteResult{}, err
	}

	after := options.After
	var updated Listing
	err = listings.FindOneAndUpdate(ctx,
		bson.M{"_id": listingID},
		bson.M{"$inc": bson.M{"upvotes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		// A vote only exists once it's counted. Undo the record so a
		// retry can apply cleanly instead of stranding it uncounted.
		if _, delErr := upvotes.DeleteOne(ctx, bson.M{"_id": upvote.ID}); delErr != nil {
			log.Printf("Failed to roll back upvote %s after counter error: %v", upvote.ID.Hex(), delErr)
		}
		return UpvoteResult{}, err
	}

	return UpvoteResult{Applied: true, Upvotes: updated.Upvotes}, nil
}
