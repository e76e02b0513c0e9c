package utils

import (
	"testing"
	"time"

	"freebie-finder-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)

func makeListing(title string, category models.ListingCategory, lat, lng float64, createdAgo time.Duration) models.Listing {
	created := testNow.Add(-createdAgo)
	return models.Listing{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Category:  category,
		Latitude:  lat,
		Longitude: lng,
		PostedBy:  "device-1",
		CreatedAt: created,
		ExpiresAt: created.Add(models.DefaultListingTTL),
		IsActive:  true,
	}
}

func titles(listings []models.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Title)
	}
	return out
}

func TestSearchExcludesExpiredAndInactive(t *testing.T) {
	expired := makeListing("Old Couch", models.Stuff, 39.95, -75.16, time.Hour)
	expired.ExpiresAt = testNow.Add(-time.Minute)

	inactive := makeListing("Hidden Chair", models.Stuff, 39.95, -75.16, time.Hour)
	inactive.IsActive = false

	fresh := makeListing("Free Lamp", models.Stuff, 39.95, -75.16, time.Hour)

	got := SearchListings([]models.Listing{expired, inactive, fresh}, SearchQuery{}, testNow)
	if len(got) != 1 || got[0].Title != "Free Lamp" {
		t.Errorf("expected only the fresh listing, got %v", titles(got))
	}
}

func TestSearchExpiryBoundary(t *testing.T) {
	boundary := makeListing("Boundary", models.Food, 39.95, -75.16, time.Hour)
	boundary.ExpiresAt = testNow

	got := SearchListings([]models.Listing{boundary}, SearchQuery{}, testNow)
	if len(got) != 0 {
		t.Errorf("listing expiring exactly now should be excluded, got %v", titles(got))
	}
}

func TestSearchPoopModeOnly(t *testing.T) {
	listings := []models.Listing{
		makeListing("Free Pizza", models.Food, 39.95, -75.16, time.Hour),
		makeListing("Clean Restroom", models.Bathroom, 39.95, -75.16, time.Hour),
	}

	got := SearchListings(listings, SearchQuery{PoopModeOnly: true}, testNow)
	if len(got) != 1 || got[0].Category != models.Bathroom {
		t.Errorf("poop mode should only return bathrooms, got %v", titles(got))
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	listings := []models.Listing{
		makeListing("Free Pizza", models.Food, 39.95, -75.16, time.Hour),
		makeListing("Free Desk", models.Stuff, 39.95, -75.16, time.Hour),
	}

	food := models.Food
	got := SearchListings(listings, SearchQuery{Category: &food}, testNow)
	if len(got) != 1 || got[0].Title != "Free Pizza" {
		t.Errorf("category filter failed, got %v", titles(got))
	}
}

func TestSearchTextCaseInsensitive(t *testing.T) {
	pizza := makeListing("Free Pizza", models.Food, 39.95, -75.16, time.Hour)
	desk := makeListing("Desk", models.Stuff, 39.95, -75.16, time.Hour)
	desk.Description = "Sturdy PIZZA-themed desk"
	bagel := makeListing("Bagels", models.Food, 39.95, -75.16, time.Hour)

	got := SearchListings([]models.Listing{pizza, desk, bagel}, SearchQuery{SearchText: "pIzZa"}, testNow)
	if len(got) != 2 {
		t.Fatalf("expected title and description matches, got %v", titles(got))
	}
}

func TestSearchRadiusFilter(t *testing.T) {
	user := &UserLocation{Latitude: 39.9526, Longitude: -75.1652}
	near := makeListing("Near", models.Food, 39.9530, -75.1660, time.Hour)
	far := makeListing("Far NYC", models.Food, 40.7128, -74.0060, time.Hour)

	got := SearchListings([]models.Listing{far, near}, SearchQuery{UserLocation: user, RadiusMiles: 5}, testNow)
	if len(got) != 1 || got[0].Title != "Near" {
		t.Fatalf("radius filter failed, got %v", titles(got))
	}

	for _, l := range got {
		meters := HaversineDistanceMeters(user.Latitude, user.Longitude, l.Latitude, l.Longitude)
		if meters > 5*MetersPerMile {
			t.Errorf("listing %q is %v meters away, outside the 5 mile radius", l.Title, meters)
		}
	}
}

func TestSearchDistanceOrderMonotonic(t *testing.T) {
	user := &UserLocation{Latitude: 39.9526, Longitude: -75.1652}
	listings := []models.Listing{
		makeListing("Third", models.Food, 39.9700, -75.1652, time.Hour),
		makeListing("First", models.Food, 39.9530, -75.1660, time.Hour),
		makeListing("Second", models.Food, 39.9600, -75.1652, time.Hour),
	}

	got := SearchListings(listings, SearchQuery{UserLocation: user, RadiusMiles: 50}, testNow)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}

	prev := -1.0
	for _, l := range got {
		d := HaversineDistanceMeters(user.Latitude, user.Longitude, l.Latitude, l.Longitude)
		if d < prev {
			t.Errorf("results not in non-decreasing distance order: %v", titles(got))
		}
		prev = d
	}
	if got[0].Title != "First" || got[1].Title != "Second" || got[2].Title != "Third" {
		t.Errorf("unexpected order: %v", titles(got))
	}
}

func TestSearchFreePizzaScenario(t *testing.T) {
	pizza := makeListing("Free Pizza", models.Food, 39.9526, -75.1652, time.Hour)
	user := &UserLocation{Latitude: 39.9530, Longitude: -75.1660}

	got := SearchListings([]models.Listing{pizza}, SearchQuery{UserLocation: user, RadiusMiles: 5}, testNow)
	if len(got) != 1 || got[0].Title != "Free Pizza" {
		t.Fatalf("expected the pizza listing first, got %v", titles(got))
	}
}

func TestSearchRecencyOrderWithoutLocation(t *testing.T) {
	oldest := makeListing("Oldest", models.Food, 39.95, -75.16, 3*time.Hour)
	middle := makeListing("Middle", models.Food, 39.95, -75.16, 2*time.Hour)
	newest := makeListing("Newest", models.Food, 39.95, -75.16, time.Hour)

	got := SearchListings([]models.Listing{oldest, newest, middle}, SearchQuery{}, testNow)
	want := []string{"Newest", "Middle", "Oldest"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("recency order wrong: got %v, want %v", titles(got), want)
		}
	}
}

func TestSearchDistanceTieBreakKeepsInputOrder(t *testing.T) {
	user := &UserLocation{Latitude: 39.9526, Longitude: -75.1652}
	first := makeListing("Tie A", models.Food, 39.9530, -75.1660, 2*time.Hour)
	second := makeListing("Tie B", models.Food, 39.9530, -75.1660, time.Hour)

	got := SearchListings([]models.Listing{first, second}, SearchQuery{UserLocation: user, RadiusMiles: 5}, testNow)
	if len(got) != 2 || got[0].Title != "Tie A" || got[1].Title != "Tie B" {
		t.Errorf("equal distances should keep input order, got %v", titles(got))
	}
}

func TestSearchDeterministic(t *testing.T) {
	user := &UserLocation{Latitude: 39.9526, Longitude: -75.1652}
	listings := []models.Listing{
		makeListing("A", models.Food, 39.9530, -75.1660, time.Hour),
		makeListing("B", models.Stuff, 39.9600, -75.1652, 2*time.Hour),
		makeListing("C", models.Water, 39.9540, -75.1655, 3*time.Hour),
	}
	query := SearchQuery{UserLocation: user, RadiusMiles: 10}

	first := titles(SearchListings(listings, query, testNow))
	second := titles(SearchListings(listings, query, testNow))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("search is not deterministic: %v vs %v", first, second)
		}
	}
}

func TestSearchDefaultRadius(t *testing.T) {
	user := &UserLocation{Latitude: 39.9526, Longitude: -75.1652}
	// ~8 miles north of the user, outside the default 5 mile radius.
	outside := makeListing("Outside", models.Food, 40.0684, -75.1652, time.Hour)
	inside := makeListing("Inside", models.Food, 39.9600, -75.1652, time.Hour)

	got := SearchListings([]models.Listing{outside, inside}, SearchQuery{UserLocation: user}, testNow)
	if len(got) != 1 || got[0].Title != "Inside" {
		t.Errorf("default radius should be 5 miles, got %v", titles(got))
	}
}
