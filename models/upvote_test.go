package models

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- Fake stores ---

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Index: 0, Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
}

// fakeUpvoteStore behaves like the upvotes collection under its unique
// (listing, device) index: a second insert for the same pair fails with
// a duplicate-key error.
type fakeUpvoteStore struct {
	records   map[string]bool
	byID      map[primitive.ObjectID]string
	insertErr error
	deleteErr error
	deletes   int
}

func newFakeUpvoteStore() *fakeUpvoteStore {
	return &fakeUpvoteStore{
		records: map[string]bool{},
		byID:    map[primitive.ObjectID]string{},
	}
}

func (f *fakeUpvoteStore) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	up := document.(Upvote)
	key := up.Listing.Hex() + "/" + up.Device
	if f.records[key] {
		return nil, duplicateKeyErr()
	}
	f.records[key] = true
	f.byID[up.ID] = key
	return &mongo.InsertOneResult{InsertedID: up.ID}, nil
}

func (f *fakeUpvoteStore) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.deletes++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	id, _ := filter.(bson.M)["_id"].(primitive.ObjectID)
	if key, ok := f.byID[id]; ok {
		delete(f.records, key)
		delete(f.byID, id)
		return &mongo.DeleteResult{DeletedCount: 1}, nil
	}
	return &mongo.DeleteResult{}, nil
}

// fakeListingStore holds one listing and applies $inc the way the real
// collection does.
type fakeListingStore struct {
	listing   Listing
	updateErr error
	incCalls  int
}

func (f *fakeListingStore) FindOne(_ context.Context, _ interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(f.listing, nil, nil)
}

func (f *fakeListingStore) FindOneAndUpdate(_ context.Context, _ interface{}, _ interface{}, _ ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	if f.updateErr != nil {
		return mongo.NewSingleResultFromDocument(f.listing, f.updateErr, nil)
	}
	f.incCalls++
	f.listing.Upvotes++
	return mongo.NewSingleResultFromDocument(f.listing, nil, nil)
}

// --- Tests ---

func TestApplyUpvoteFirstTime(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID}}
	upvotes := newFakeUpvoteStore()

	result, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1")
	if err != nil {
		t.Fatalf("ApplyUpvote() error = %v", err)
	}
	if !result.Applied {
		t.Error("first upvote should report applied=true")
	}
	if result.Upvotes != 1 {
		t.Errorf("upvotes = %d, want 1", result.Upvotes)
	}
	if len(upvotes.records) != 1 {
		t.Errorf("expected one upvote record, found %d", len(upvotes.records))
	}
}

// Two upvotes from the same (listing, device) pair increment the
// counter exactly once; the second reports applied=false.
func TestApplyUpvoteIdempotent(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID}}
	upvotes := newFakeUpvoteStore()

	first, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1")
	if err != nil {
		t.Fatalf("first ApplyUpvote() error = %v", err)
	}
	second, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1")
	if err != nil {
		t.Fatalf("second ApplyUpvote() error = %v", err)
	}

	if !first.Applied || second.Applied {
		t.Errorf("applied flags = %v, %v; want true, false", first.Applied, second.Applied)
	}
	if second.Upvotes != 1 {
		t.Errorf("upvotes after duplicate = %d, want 1", second.Upvotes)
	}
	if listings.incCalls != 1 {
		t.Errorf("counter incremented %d times, want 1", listings.incCalls)
	}
	if len(upvotes.records) != 1 {
		t.Errorf("expected one persisted upvote record, found %d", len(upvotes.records))
	}
}

func TestApplyUpvoteDifferentDevices(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID}}
	upvotes := newFakeUpvoteStore()

	for _, device := range []string{"device-1", "device-2"} {
		result, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, device)
		if err != nil {
			t.Fatalf("ApplyUpvote(%s) error = %v", device, err)
		}
		if !result.Applied {
			t.Errorf("upvote from %s should apply", device)
		}
	}

	if listings.listing.Upvotes != 2 {
		t.Errorf("upvotes = %d, want 2", listings.listing.Upvotes)
	}
}

// The duplicate branch reads the listing again instead of reporting a
// count captured before the insert attempt.
func TestApplyUpvoteDuplicateReportsFreshCount(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID, Upvotes: 7}}
	upvotes := newFakeUpvoteStore()
	upvotes.records[listingID.Hex()+"/device-1"] = true

	result, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1")
	if err != nil {
		t.Fatalf("ApplyUpvote() error = %v", err)
	}
	if result.Applied {
		t.Error("duplicate upvote should report applied=false")
	}
	if result.Upvotes != 7 {
		t.Errorf("upvotes = %d, want the freshly read 7", result.Upvotes)
	}
	if listings.incCalls != 0 {
		t.Errorf("duplicate upvote must not increment, incremented %d times", listings.incCalls)
	}
}

// When the counter write fails the record is rolled back, so a retry
// applies cleanly and the count converges to exactly one.
func TestApplyUpvoteCounterFailureRollsBack(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID}, updateErr: errors.New("write failed")}
	upvotes := newFakeUpvoteStore()

	if _, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1"); err == nil {
		t.Fatal("expected an error when the counter write fails")
	}
	if upvotes.deletes != 1 {
		t.Errorf("rollback delete called %d times, want 1", upvotes.deletes)
	}
	if len(upvotes.records) != 0 {
		t.Fatalf("upvote record should be rolled back, found %d", len(upvotes.records))
	}

	listings.updateErr = nil
	result, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1")
	if err != nil {
		t.Fatalf("retry ApplyUpvote() error = %v", err)
	}
	if !result.Applied || result.Upvotes != 1 {
		t.Errorf("retry = {applied: %v, upvotes: %d}, want {true, 1}", result.Applied, result.Upvotes)
	}
}

func TestApplyUpvoteInsertFailurePropagates(t *testing.T) {
	listingID := primitive.NewObjectID()
	listings := &fakeListingStore{listing: Listing{ID: listingID}}
	upvotes := newFakeUpvoteStore()
	upvotes.insertErr = errors.New("connection reset")

	if _, err := ApplyUpvote(context.Background(), listings, upvotes, listingID, "device-1"); err == nil {
		t.Fatal("expected a non-duplicate insert error to propagate")
	}
	if listings.incCalls != 0 {
		t.Errorf("failed insert must not increment, incremented %d times", listings.incCalls)
	}
}
