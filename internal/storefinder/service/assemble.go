package service

import (
	"strings"

	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/transport"
)

// Assemble maps resolved places to the output shape, one to one and in order.
func Assemble(places []mapbox.Place) []transport.Store {
	stores := make([]transport.Store, 0, len(places))
	for _, place := range places {
		categories := place.Categories
		if categories == nil {
			categories = []string{}
		}

		store := transport.Store{
			Name:        place.Name,
			Address:     place.Address,
			Latitude:    place.Coordinate.Latitude,
			Longitude:   place.Coordinate.Longitude,
			DistanceM:   place.DistanceM,
			Categories:  categories,
			Brand:       place.Brand,
			Country:     strings.ToUpper(place.CountryCode),
			MapboxID:    place.MapboxID,
			FeatureType: place.FeatureType,
		}
		if len(categories) > 0 {
			store.Category = categories[0]
		}
		stores = append(stores, store)
	}
	return stores
}
