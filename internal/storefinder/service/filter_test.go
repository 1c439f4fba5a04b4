package service

import (
	"strings"
	"testing"

	"meal_planner_backend/internal/storefinder/mapbox"
)

func names(places []mapbox.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}
	return out
}

func TestInRegionKeepsOnlyMatchingCountry(t *testing.T) {
	cases := []struct {
		country string
		region  string
		want    bool
	}{
		{"KW", "KW", true},
		{"kw", "KW", true},
		{"SA", "KW", false},
		{"", "KW", false},
		{"SA", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got := InRegion(mapbox.Place{CountryCode: tc.country}, tc.region)
		if got != tc.want {
			t.Fatalf("InRegion(%q, %q) = %v, want %v", tc.country, tc.region, got, tc.want)
		}
		if got && tc.region != "" && !strings.EqualFold(tc.country, tc.region) {
			t.Fatalf("kept place from %q for region %q", tc.country, tc.region)
		}
	}
}

func TestFilterByCategoryMatchesNameOrTags(t *testing.T) {
	places := []mapbox.Place{
		{Name: "The Sultan Center"},
		{Name: "Gas Station"},
		{Name: "Al Rashed", Categories: []string{"Grocery"}},
		{Name: "Pharmacy One", Categories: []string{"pharmacy"}},
	}

	kept, fallback := FilterByCategory(places, GroceryAllowList)

	if fallback {
		t.Fatalf("did not expect fallback")
	}
	got := names(kept)
	if len(got) != 2 || got[0] != "The Sultan Center" || got[1] != "Al Rashed" {
		t.Fatalf("unexpected kept places %v", got)
	}
}

func TestFilterByCategoryFallsBackToInput(t *testing.T) {
	places := []mapbox.Place{
		{Name: "Bank", Categories: []string{"finance"}},
		{Name: "Gym", Categories: []string{"fitness"}},
		{Name: "Clinic", Categories: []string{"health"}},
	}

	kept, fallback := FilterByCategory(places, GroceryAllowList)

	if !fallback {
		t.Fatalf("expected fallback")
	}
	got := names(kept)
	if len(got) != 3 || got[0] != "Bank" || got[1] != "Gym" || got[2] != "Clinic" {
		t.Fatalf("fallback must return input unchanged, got %v", got)
	}

	again, _ := FilterByCategory(kept, GroceryAllowList)
	if len(again) != len(kept) {
		t.Fatalf("fallback must be idempotent")
	}
}

func TestFilterByCategoryEmptyInput(t *testing.T) {
	kept, fallback := FilterByCategory(nil, GroceryAllowList)
	if fallback || len(kept) != 0 {
		t.Fatalf("empty input must stay empty without fallback")
	}
}

func TestAssembleMapsFieldsInOrder(t *testing.T) {
	distance := 350.0
	stores := Assemble([]mapbox.Place{
		{
			MapboxID:    "a",
			Name:        "Lulu Hypermarket",
			Address:     "Al Qurain",
			Coordinate:  mapbox.Coordinate{Latitude: 29.2, Longitude: 48.0},
			CountryCode: "KW",
			Categories:  []string{"hypermarket", "grocery"},
			Brand:       "Lulu",
			DistanceM:   &distance,
		},
		{MapboxID: "b", Name: "Corner Shop"},
	})

	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
	first := stores[0]
	if first.Name != "Lulu Hypermarket" || first.Category != "hypermarket" || first.Country != "KW" {
		t.Fatalf("unexpected first store %+v", first)
	}
	if first.Latitude != 29.2 || first.Longitude != 48.0 || *first.DistanceM != 350 {
		t.Fatalf("coordinates or distance not mapped: %+v", first)
	}
	if stores[1].Categories == nil || stores[1].Category != "" {
		t.Fatalf("empty categories must map to empty slice: %+v", stores[1])
	}
}
