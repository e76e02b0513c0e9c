package utils

import (
	"sort"
	"strings"
	"time"

	"freebie-finder-be/models"
)

// DefaultRadiusMiles is the search radius when the client doesn't pick one.
const DefaultRadiusMiles = 5.0

// UserLocation is the searcher's position.
type UserLocation struct {
	Latitude  float64
	Longitude float64
}

// SearchQuery holds every filter the feed applies. PoopModeOnly
// restricts results to bathrooms regardless of Category.
type SearchQuery struct {
	SearchText   string
	Category     *models.ListingCategory
	UserLocation *UserLocation
	RadiusMiles  float64
	PoopModeOnly bool
}

// SearchListings filters and orders listings for a query. It is a pure
// function of its arguments: same listings, query and clock in, same
// order out.
//
// A listing survives the filter when it is active, not expired at
// `now`, matches poop mode / category, matches the search text
// case-insensitively on title or description, and sits within
// RadiusMiles of the user's location when one is given. Results come
// back nearest-first when a location is given (ties keep input order),
// newest-first otherwise.
func SearchListings(listings []models.Listing, query SearchQuery, now time.Time) []models.Listing {
	radius := query.RadiusMiles
	if radius <= 0 {
		radius = DefaultRadiusMiles
	}
	search := strings.ToLower(strings.TrimSpace(query.SearchText))

	matched := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.IsActive || l.Expired(now) {
			continue
		}
		if query.PoopModeOnly && l.Category != models.Bathroom {
			continue
		}
		if query.Category != nil && l.Category != *query.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Title), search) &&
			!strings.Contains(strings.ToLower(l.Description), search) {
			continue
		}
		if query.UserLocation != nil {
			meters := HaversineDistanceMeters(
				query.UserLocation.Latitude, query.UserLocation.Longitude,
				l.Latitude, l.Longitude,
			)
			if meters/MetersPerMile > radius {
				continue
			}
		}
		matched = append(matched, l)
	}

	if query.UserLocation != nil {
		loc := *query.UserLocation
		sort.SliceStable(matched, func(i, j int) bool {
			di := HaversineDistanceMeters(loc.Latitude, loc.Longitude, matched[i].Latitude, matched[i].Longitude)
			dj := HaversineDistanceMeters(loc.Latitude, loc.Longitude, matched[j].Latitude, matched[j].Longitude)
			return di < dj
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	return matched
}
