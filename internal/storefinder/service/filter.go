package service

import (
	"strings"

	"meal_planner_backend/internal/storefinder/mapbox"
)

// InRegion reports whether place belongs to region.
// An empty region keeps everything. A place without a country code is
// dropped whenever a region is set, so keep(p) implies p.country == region.
func InRegion(place mapbox.Place, region string) bool {
	region = strings.TrimSpace(region)
	if region == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(place.CountryCode), region)
}

// FilterByRegion keeps the places in region, preserving order.
func FilterByRegion(places []mapbox.Place, region string) []mapbox.Place {
	kept := make([]mapbox.Place, 0, len(places))
	for _, place := range places {
		if InRegion(place, region) {
			kept = append(kept, place)
		}
	}
	return kept
}

// FilterByCategory keeps the places matched by allow, preserving order.
// When that would empty a non-empty input the input is returned unchanged and
// fallback is true.
func FilterByCategory(places []mapbox.Place, allow AllowList) (kept []mapbox.Place, fallback bool) {
	kept = make([]mapbox.Place, 0, len(places))
	for _, place := range places {
		if allow.Matches(place.Name, place.Categories) {
			kept = append(kept, place)
		}
	}
	if len(kept) == 0 && len(places) > 0 {
		return places, true
	}
	return kept, false
}
