// Package service implements the store lookup pipeline:
// suggest, concurrent retrieve, regional filter, category filter with fallback, assemble.
package service

import (
	"context"
	"math"
	"strings"
	"time"

	"meal_planner_backend/internal/storefinder/cache"
	"meal_planner_backend/internal/storefinder/mapbox"
	"meal_planner_backend/internal/storefinder/transport"
	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/config"
	"meal_planner_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Provider is the search backend. *mapbox.Client implements it.
type Provider interface {
	Suggest(ctx context.Context, req mapbox.SuggestRequest) ([]mapbox.Candidate, error)
	Retrieve(ctx context.Context, mapboxID, sessionToken string) (mapbox.Place, error)
}

// Cache stores finished lookups. *cache.RedisCache implements it.
type Cache interface {
	Get(ctx context.Context, key string) (transport.SearchResponse, bool, error)
	Set(ctx context.Context, key string, resp transport.SearchResponse, ttl time.Duration) error
}

// Query is one lookup request.
type Query struct {
	Text      string
	Proximity *mapbox.Coordinate
	// Region overrides the configured default when set.
	Region  string
	Limit   int
	Profile Profile
}

// Options tune the pipeline.
type Options struct {
	Region      string
	Limit       int
	Concurrency int
	CacheTTL    time.Duration
}

// OptionsFromConfig reads the pipeline tuning from configuration.
func OptionsFromConfig(cfg config.StoreFinderConfig) Options {
	return Options{
		Region:      cfg.GetStoreFinderRegion(),
		Limit:       cfg.GetStoreFinderLimit(),
		Concurrency: cfg.GetStoreFinderConcurrency(),
		CacheTTL:    cfg.GetStoreFinderCacheTTL(),
	}
}

// Service runs lookups. It holds no per-request state and is safe for concurrent use.
type Service struct {
	provider Provider
	cache    Cache
	opts     Options
	log      *logger.Logger
	newToken func() string
}

// New creates the service. cache may be nil.
func New(provider Provider, cache Cache, opts Options, log *logger.Logger) *Service {
	if opts.Limit <= 0 {
		opts.Limit = mapbox.DefaultLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	opts.Region = strings.ToUpper(strings.TrimSpace(opts.Region))

	return &Service{
		provider: provider,
		cache:    cache,
		opts:     opts,
		log:      log,
		newToken: uuid.NewString,
	}
}

// Search runs the full lookup. Zero matches is an empty result, not an error.
// Only a failed suggest call fails the lookup; candidates that cannot be
// retrieved are dropped.
func (s *Service) Search(ctx context.Context, q Query) (transport.SearchResponse, error) {
	const op = "storefinder.Search"
	log := s.log.WithContext(ctx)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return transport.SearchResponse{}, apperr.Validation("query is required").WithOp(op)
	}
	if q.Proximity != nil && !validCoordinate(*q.Proximity) {
		return transport.SearchResponse{}, apperr.Validation("proximity coordinate is out of range").WithOp(op)
	}

	region := strings.ToUpper(strings.TrimSpace(q.Region))
	if region == "" {
		region = s.opts.Region
	}
	limit := q.Limit
	if limit <= 0 || limit > s.opts.Limit {
		limit = s.opts.Limit
	}
	profile := q.Profile
	if profile.isZero() {
		profile = GroceryProfile
	}

	key := s.cacheKey(profile, text, region, q.Proximity, limit)
	if cached, ok := s.lookupCache(ctx, key); ok {
		log.Debug("store lookup served from cache", "query", text, "region", region)
		return cached, nil
	}

	sessionToken := s.newToken()
	candidates, err := s.provider.Suggest(ctx, mapbox.SuggestRequest{
		Query:        text,
		Proximity:    q.Proximity,
		Country:      region,
		Categories:   profile.Categories,
		Limit:        limit,
		SessionToken: sessionToken,
	})
	if err != nil {
		return transport.SearchResponse{}, apperr.Upstream("store lookup failed", err).WithOp(op)
	}

	resp := transport.SearchResponse{Query: text, Region: region, Stores: []transport.Store{}}
	if len(candidates) == 0 {
		log.Info("store lookup returned no candidates", "query", text, "region", region)
		return resp, nil
	}

	resolved, err := s.retrieveAll(ctx, candidates, sessionToken)
	if err != nil {
		return transport.SearchResponse{}, err
	}

	regional := FilterByRegion(resolved, region)
	filtered, fallback := FilterByCategory(regional, profile.AllowList)

	resp.Stores = Assemble(filtered)
	resp.Fallback = fallback

	log.Info("store lookup complete",
		"query", text,
		"region", region,
		"profile", profile.Name,
		"candidates", len(candidates),
		"resolved", len(resolved),
		"regional", len(regional),
		"results", len(resp.Stores),
		"fallback", fallback,
	)

	if len(resp.Stores) > 0 {
		s.storeCache(ctx, key, resp)
	}
	return resp, nil
}

// retrieveAll resolves every candidate concurrently. Results land in slots
// indexed by suggestion rank so the output order never depends on timing.
func (s *Service) retrieveAll(ctx context.Context, candidates []mapbox.Candidate, sessionToken string) ([]mapbox.Place, error) {
	slots := make([]*mapbox.Place, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			place, err := s.provider.Retrieve(gctx, candidate.MapboxID, sessionToken)
			if err != nil {
				s.log.WithContext(ctx).Warn("dropping candidate after failed retrieve",
					"mapboxId", candidate.MapboxID,
					"name", candidate.Name,
					"error", err,
				)
				return nil
			}
			if place.DistanceM == nil {
				place.DistanceM = candidate.DistanceM
			}
			if len(place.Categories) == 0 {
				place.Categories = candidate.Categories
			}
			if place.Name == "" {
				place.Name = candidate.Name
			}
			slots[i] = &place
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, apperr.Upstream("store lookup failed", err).WithOp("storefinder.Search")
	}

	places := make([]mapbox.Place, 0, len(candidates))
	for _, slot := range slots {
		if slot != nil {
			places = append(places, *slot)
		}
	}
	return places, nil
}

func (s *Service) cacheKey(profile Profile, text, region string, proximity *mapbox.Coordinate, limit int) string {
	if proximity == nil {
		return cache.Key(profile.Name, text, region, nil, nil, limit)
	}
	return cache.Key(profile.Name, text, region, &proximity.Latitude, &proximity.Longitude, limit)
}

func (s *Service) lookupCache(ctx context.Context, key string) (transport.SearchResponse, bool) {
	if s.cache == nil {
		return transport.SearchResponse{}, false
	}
	resp, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithContext(ctx).Warn("store cache read failed", "error", err)
		return transport.SearchResponse{}, false
	}
	if ok {
		resp.Cached = true
	}
	return resp, ok
}

func (s *Service) storeCache(ctx context.Context, key string, resp transport.SearchResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, resp, s.opts.CacheTTL); err != nil {
		s.log.WithContext(ctx).Warn("store cache write failed", "error", err)
	}
}

func validCoordinate(c mapbox.Coordinate) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
