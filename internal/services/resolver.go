package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ResolutionResult is returned by both resolvers.
// For link resolution PlaceID carries the Maps feature ID.
type ResolutionResult struct {
	PlaceID        string       `json:"placeId"`
	SkippedDetails bool         `json:"skippedDetails"`
	Cafe           *models.Cafe `json:"cafe,omitempty"`
	Link           *LinkData    `json:"googleMapsData,omitempty"`
}

// ResolverConfig controls query building and link policy
type ResolverConfig struct {
	// CategoryHint is appended to queries that mention none of CategorySynonyms
	CategoryHint     string
	CategorySynonyms []string
	// AutoCreateCafe makes link resolution create a cafe from parsed link data
	AutoCreateCafe bool
}

// PlaceResolver turns free-form post metadata into a canonical cafe
type PlaceResolver struct {
	lookup PlaceLookup
	cache  PlaceCache
	cafes  CafeStore
	cfg    ResolverConfig
	log    *zap.SugaredLogger
}

func NewPlaceResolver(lookup PlaceLookup, cache PlaceCache, cafes CafeStore, cfg ResolverConfig) *PlaceResolver {
	return &PlaceResolver{
		lookup: lookup,
		cache:  cache,
		cafes:  cafes,
		cfg:    cfg,
		log:    logger.GetLogger("place-resolver"),
	}
}

// BuildQuery joins title and description and appends the category hint
// unless the text already names the category.
func (r *PlaceResolver) BuildQuery(title, description string) string {
	query := strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(description))
	if r.cfg.CategoryHint == "" {
		return query
	}

	lower := strings.ToLower(query)
	for _, synonym := range r.cfg.CategorySynonyms {
		if synonym != "" && strings.Contains(lower, strings.ToLower(synonym)) {
			return query
		}
	}
	if query == "" {
		return r.cfg.CategoryHint
	}
	return query + " " + r.cfg.CategoryHint
}

// ResolveFromMetadata finds the provider place described by title and
// description and returns the cafe referencing it, creating both the cached
// detail record and the cafe on first sight. originalURL is only logged.
func (r *PlaceResolver) ResolveFromMetadata(ctx context.Context, title, description, originalURL string) (result *ResolutionResult, err error) {
	query := r.BuildQuery(title, description)
	ctx, span := telemetry.StartSpan(ctx, "PlaceResolver.ResolveFromMetadata",
		attribute.String("resolver.query", query),
		attribute.String("resolver.original_url", originalURL),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	r.log.Debugw("resolving place from metadata", "query", query, "url", originalURL)

	placeID, found, err := r.lookup.FindPlaceIDFromText(ctx, query)
	telemetry.RecordProviderCall("find_place", err)
	if err != nil {
		telemetry.RecordResolution(telemetry.KindMetadata, "failed")
		return nil, fmt.Errorf("text search %q: %w", query, err)
	}
	if !found || placeID == "" {
		telemetry.RecordResolution(telemetry.KindMetadata, "no_candidate")
		return nil, fmt.Errorf("%w for %q", ErrNoCandidateFound, query)
	}
	span.SetAttributes(attribute.String("resolver.place_id", placeID))

	detail, skipped, err := r.placeDetail(ctx, placeID)
	if err != nil {
		telemetry.RecordResolution(telemetry.KindMetadata, "failed")
		return nil, err
	}

	cafe, created, err := findOrCreateCafe(ctx, r.cafes, placeID, func() *models.Cafe {
		return CafeFromPlaceDetail(detail)
	})
	if err != nil {
		telemetry.RecordResolution(telemetry.KindMetadata, "failed")
		return nil, err
	}

	outcome := "existing"
	if created {
		outcome = "created"
	}
	telemetry.RecordResolution(telemetry.KindMetadata, outcome)
	r.log.Infow("place resolved", "placeId", placeID, "cafeId", cafe.ID, "skippedDetails", skipped, "outcome", outcome)

	return &ResolutionResult{PlaceID: placeID, SkippedDetails: skipped, Cafe: cafe}, nil
}

// placeDetail reads through the persistent cache. skipped reports a cache hit.
func (r *PlaceResolver) placeDetail(ctx context.Context, placeID string) (*models.PlaceDetail, bool, error) {
	cached, err := r.cache.Get(ctx, placeID)
	if err != nil {
		return nil, false, err
	}
	telemetry.RecordPlaceCache(cached != nil)
	if cached != nil {
		return cached, true, nil
	}

	fetched, err := r.lookup.FetchDetails(ctx, placeID)
	telemetry.RecordProviderCall("place_details", err)
	if err != nil {
		return nil, false, fmt.Errorf("fetch details %s: %w", placeID, err)
	}
	if fetched.PlaceID == "" {
		fetched.PlaceID = placeID
	}

	stored, err := r.cache.Put(ctx, fetched)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// findOrCreateCafe returns the cafe referencing placeID, creating it from
// build() when absent. A lost create race is settled by re-reading the winner.
func findOrCreateCafe(ctx context.Context, store CafeStore, placeID string, build func() *models.Cafe) (*models.Cafe, bool, error) {
	existing, err := store.FindByGooglePlace(ctx, placeID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := store.Create(ctx, build())
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrDuplicateProviderReference) {
		return nil, false, err
	}

	winner, err := store.FindByGooglePlace(ctx, placeID)
	if err != nil {
		return nil, false, err
	}
	if winner == nil {
		return nil, false, fmt.Errorf("cafe for %s vanished after duplicate insert", placeID)
	}
	return winner, false, nil
}

// CafeFromPlaceDetail maps a provider record onto a new cafe
func CafeFromPlaceDetail(d *models.PlaceDetail) *models.Cafe {
	placeID := d.PlaceID
	cafe := &models.Cafe{
		Name:         d.Name,
		Address:      d.FormattedAddress,
		Lat:          d.Lat,
		Lng:          d.Lng,
		Website:      d.Website,
		OpeningHours: d.OpeningHours,
		Images:       []models.Image{},
		ExternalReferences: models.ExternalReferences{
			GooglePlace: &placeID,
		},
	}
	if d.Rating != nil {
		cafe.AverageRating = *d.Rating
		rating := *d.Rating
		cafe.Features = &models.CafeFeatures{GoogleRating: &rating}
	}
	if d.UserRatingsTotal != nil {
		cafe.TotalReviews = *d.UserRatingsTotal
	}
	return cafe
}
