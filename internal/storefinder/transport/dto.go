// Package transport holds the request and response shapes of the store finder API.
package transport

// SearchRequest is the query string of GET /stores/search and /restaurants/search.
type SearchRequest struct {
	Query  string   `form:"q" validate:"required,notblank,min=2,max=200"`
	Lat    *float64 `form:"lat" validate:"omitempty,latitude"`
	Lng    *float64 `form:"lng" validate:"omitempty,longitude"`
	Region string   `form:"region" validate:"omitempty,region"`
	Limit  int      `form:"limit" validate:"omitempty,min=1,max=10"`
}

// Store is one place in the caller-facing result.
type Store struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	DistanceM   *float64 `json:"distanceM,omitempty"`
	Category    string   `json:"category,omitempty"`
	Categories  []string `json:"categories"`
	Brand       string   `json:"brand,omitempty"`
	Country     string   `json:"country"`
	MapboxID    string   `json:"mapboxId"`
	FeatureType string   `json:"featureType,omitempty"`
}

// SearchResponse is the ordered result of a lookup.
// Fallback reports that the category filter was skipped because it matched nothing.
type SearchResponse struct {
	Query    string  `json:"query"`
	Region   string  `json:"region"`
	Stores   []Store `json:"stores"`
	Fallback bool    `json:"fallback"`
	Cached   bool    `json:"cached"`
}
