// Package mapbox is a client for the Mapbox Search Box suggest and retrieve endpoints.
package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meal_planner_backend/platform/logger"
)

const (
	suggestPath  = "/search/searchbox/v1/suggest"
	retrievePath = "/search/searchbox/v1/retrieve/"

	// DefaultLimit is the suggestion count used when a request does not set one.
	DefaultLimit = 10
	maxLimit     = 10
)

var (
	// ErrNoFeature is returned when retrieve answers without any feature.
	ErrNoFeature = errors.New("mapbox retrieve returned no features")
	// ErrMissingToken is returned when the client has no access token.
	ErrMissingToken = errors.New("mapbox access token is not configured")
)

// StatusError reports a non-200 answer from Mapbox.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mapbox %s returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client calls the Search Box API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// Config configures the client.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// NewClient creates a Search Box client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mapbox.com"
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Suggest returns ranked candidates for a free-text query.
// Suggestions without a mapbox_id cannot be retrieved and are skipped.
func (c *Client) Suggest(ctx context.Context, req SuggestRequest) ([]Candidate, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("access_token", c.token)
	params.Set("session_token", req.SessionToken)
	params.Set("limit", strconv.Itoa(limit))
	if len(req.Categories) > 0 {
		params.Set("poi_category", strings.Join(req.Categories, ","))
	}
	if req.Country != "" {
		params.Set("country", strings.ToLower(req.Country))
	}
	if req.Proximity != nil {
		params.Set("proximity", formatCoordinate(*req.Proximity))
	}

	var payload suggestResponse
	if err := c.get(ctx, "suggest", c.baseURL+suggestPath, params, &payload); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		if s.MapboxID == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			MapboxID:    s.MapboxID,
			Name:        s.Name,
			FeatureType: s.FeatureType,
			Categories:  []string(s.POICategory),
			DistanceM:   s.Distance,
		})
		if len(candidates) == limit {
			break
		}
	}

	return candidates, nil
}

// Retrieve resolves one suggestion into full place details.
// sessionToken must be the token used for the suggest call that produced mapboxID.
func (c *Client) Retrieve(ctx context.Context, mapboxID, sessionToken string) (Place, error) {
	if c.token == "" {
		return Place{}, ErrMissingToken
	}
	if strings.TrimSpace(mapboxID) == "" {
		return Place{}, errors.New("mapbox id is required")
	}

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("session_token", sessionToken)

	var payload retrieveResponse
	endpoint := c.baseURL + retrievePath + url.PathEscape(mapboxID)
	if err := c.get(ctx, "retrieve", endpoint, params, &payload); err != nil {
		return Place{}, err
	}
	if len(payload.Features) == 0 {
		return Place{}, ErrNoFeature
	}

	return buildPlace(mapboxID, payload.Features[0]), nil
}

func (c *Client) get(ctx context.Context, operation, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("mapbox %s request failed: %w", operation, err)
		c.log.WithContext(ctx).UpstreamError("mapbox", operation, err)
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		c.log.WithContext(ctx).UpstreamError("mapbox", operation, statusErr)
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("decode mapbox %s payload: %w", operation, err)
		c.log.WithContext(ctx).UpstreamError("mapbox", operation, err)
		return err
	}
	return nil
}

func buildPlace(mapboxID string, f feature) Place {
	props := f.Properties

	name := f.Name
	if name == "" {
		name = props.Name
	}

	place := Place{
		MapboxID:    mapboxID,
		Name:        name,
		Address:     firstNonEmpty(props.FullAddress, props.PlaceFormatted, props.Address),
		CountryCode: pickCountry(props),
		FeatureType: props.FeatureType,
		Categories:  pickCategories(props),
		DistanceM:   props.Distance,
	}

	if len(f.Geometry.Coordinates) >= 2 {
		place.Coordinate = Coordinate{Longitude: f.Geometry.Coordinates[0], Latitude: f.Geometry.Coordinates[1]}
	} else if props.Coordinates != nil {
		place.Coordinate = Coordinate{Latitude: props.Coordinates.Latitude, Longitude: props.Coordinates.Longitude}
	}

	if len(props.Brand) > 0 {
		place.Brand = props.Brand[0]
	}

	return place
}

func pickCountry(props featureProperties) string {
	if props.Context.Country != nil && props.Context.Country.CountryCode != "" {
		return strings.ToUpper(props.Context.Country.CountryCode)
	}
	return strings.ToUpper(strings.TrimSpace(props.Country))
}

func pickCategories(props featureProperties) []string {
	if len(props.POICategory) > 0 {
		return []string(props.POICategory)
	}
	return []string(props.Categories)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// formatCoordinate renders the lng,lat order Mapbox expects.
func formatCoordinate(c Coordinate) string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}
