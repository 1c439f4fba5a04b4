package mapbox

import (
	"encoding/json"
	"strings"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SuggestRequest is the input of a suggest call.
type SuggestRequest struct {
	Query        string
	Proximity    *Coordinate
	Country      string
	Categories   []string
	Limit        int
	SessionToken string
}

// Candidate is an unresolved suggestion. Only MapboxID is needed to retrieve it.
type Candidate struct {
	MapboxID    string
	Name        string
	FeatureType string
	Categories  []string
	DistanceM   *float64
}

// Place is a candidate after detail retrieval.
type Place struct {
	MapboxID    string
	Name        string
	Address     string
	Coordinate  Coordinate
	CountryCode string
	FeatureType string
	Categories  []string
	Brand       string
	DistanceM   *float64
}

type suggestResponse struct {
	Suggestions []suggestion `json:"suggestions"`
}

type suggestion struct {
	Name        string     `json:"name"`
	MapboxID    string     `json:"mapbox_id"`
	FeatureType string     `json:"feature_type"`
	POICategory stringList `json:"poi_category"`
	Distance    *float64   `json:"distance"`
}

type retrieveResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	Name       string            `json:"name"`
	Geometry   geometry          `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type featureProperties struct {
	Name           string         `json:"name"`
	MapboxID       string         `json:"mapbox_id"`
	FeatureType    string         `json:"feature_type"`
	FullAddress    string         `json:"full_address"`
	PlaceFormatted string         `json:"place_formatted"`
	Address        string         `json:"address"`
	Country        string         `json:"country"`
	POICategory    stringList     `json:"poi_category"`
	Categories     stringList     `json:"categories"`
	Brand          stringList     `json:"brand"`
	Distance       *float64       `json:"distance"`
	Coordinates    *propertyCoord `json:"coordinates"`
	Context        featureContext `json:"context"`
}

type propertyCoord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type featureContext struct {
	Country *contextCountry `json:"country"`
}

type contextCountry struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}

// stringList accepts either a JSON string or an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*s = nil
			return nil
		}
		*s = stringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
