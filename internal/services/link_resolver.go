package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/telemetry"
	"github.com/ggorockee/coffeemode/pkg/mapsurl"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LinkData is what a shared Google Maps link resolved to
type LinkData struct {
	ID                 string   `json:"id,omitempty"`
	FeatureID          string   `json:"featureId"`
	Name               string   `json:"name,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Category           string   `json:"category,omitempty"`
	OriginalSharingURL string   `json:"originalSharingUrl"`
	ResolvedFullURL    string   `json:"resolvedFullUrl"`
	GoogleMapsURL      string   `json:"googleMapsUrl"`
}

// link resolution states, logged on every transition
const (
	stateStart               = "Start"
	stateRedirectResolved    = "RedirectResolved"
	stateIdentifierExtracted = "IdentifierExtracted"
	stateEntityHit           = "EntityHit"
	stateCacheHit            = "CacheHit"
	stateFreshParse          = "FreshParse"
	statePersisted           = "Persisted"
	stateDone                = "Done"
	stateClientRejected      = "ClientRejected"
	stateResolutionFailed    = "ResolutionFailed"
)

// LinkResolver turns a shared Google Maps link into a cafe or parsed link data
type LinkResolver struct {
	follower LinkFollower
	cafes    CafeStore
	links    SharedLinkStore
	cfg      ResolverConfig
	log      *zap.SugaredLogger
}

func NewLinkResolver(follower LinkFollower, cafes CafeStore, links SharedLinkStore, cfg ResolverConfig) *LinkResolver {
	return &LinkResolver{
		follower: follower,
		cafes:    cafes,
		links:    links,
		cfg:      cfg,
		log:      logger.GetLogger("link-resolver"),
	}
}

// ResolveFromSharedLink follows sharingURL, extracts the feature ID and
// returns the existing cafe, the cached link or freshly parsed link data.
// Only a malformed link or a missing feature ID are client errors; every
// other failure is ErrLinkResolutionFailed with the cause kept.
func (r *LinkResolver) ResolveFromSharedLink(ctx context.Context, sharingURL string) (result *ResolutionResult, err error) {
	sharingURL = strings.TrimSpace(sharingURL)
	ctx, span := telemetry.StartSpan(ctx, "LinkResolver.ResolveFromSharedLink",
		attribute.String("resolver.sharing_url", sharingURL),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	r.transition(sharingURL, stateStart)
	defer func() {
		switch {
		case err == nil:
			r.transition(sharingURL, stateDone)
		case errors.Is(err, ErrInvalidSharedLink), errors.Is(err, ErrFeatureIDExtraction):
			r.transition(sharingURL, stateClientRejected)
			telemetry.RecordResolution(telemetry.KindLink, "client_error")
		default:
			r.transition(sharingURL, stateResolutionFailed)
			telemetry.RecordResolution(telemetry.KindLink, "failed")
		}
	}()

	if !isHTTPURL(sharingURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSharedLink, sharingURL)
	}

	resolved := r.follower.Resolve(ctx, sharingURL)
	if resolved == "" {
		resolved = sharingURL
	}
	r.transition(sharingURL, stateRedirectResolved, "resolvedUrl", resolved)

	featureID, ok := mapsurl.FeatureID(resolved)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFeatureIDExtraction, resolved)
	}
	r.transition(sharingURL, stateIdentifierExtracted, "featureId", featureID)
	span.SetAttributes(attribute.String("resolver.feature_id", featureID))

	base := LinkData{
		FeatureID:          featureID,
		OriginalSharingURL: sharingURL,
		ResolvedFullURL:    resolved,
		GoogleMapsURL:      resolved,
	}

	cafe, err := r.cafes.FindByGooglePlace(ctx, featureID)
	if err != nil {
		return nil, linkFailed("find cafe", err)
	}
	if cafe != nil {
		r.transition(sharingURL, stateEntityHit, "cafeId", cafe.ID)
		telemetry.RecordResolution(telemetry.KindLink, "existing")
		return &ResolutionResult{PlaceID: featureID, SkippedDetails: true, Cafe: cafe, Link: &base}, nil
	}

	link, err := r.cachedLink(ctx, featureID, resolved)
	if err != nil {
		return nil, linkFailed("find cached link", err)
	}
	cacheHit := link != nil
	if cacheHit {
		r.transition(sharingURL, stateCacheHit, "linkId", link.ID)
	} else {
		r.transition(sharingURL, stateFreshParse)
		parsed := mapsurl.Parse(resolved)
		link, err = r.links.Save(ctx, &models.SharedLink{
			FeatureID:          featureID,
			OriginalSharingURL: sharingURL,
			ResolvedFullURL:    resolved,
			Name:               parsed.Name,
			Lat:                parsed.Lat,
			Lng:                parsed.Lng,
			Category:           parsed.Category,
		})
		if err != nil {
			return nil, linkFailed("save link", err)
		}
		r.transition(sharingURL, statePersisted, "linkId", link.ID)
	}

	result = &ResolutionResult{PlaceID: featureID, SkippedDetails: cacheHit, Link: linkDataFrom(link)}
	if !r.cfg.AutoCreateCafe {
		if cacheHit {
			telemetry.RecordResolution(telemetry.KindLink, "cached")
		} else {
			telemetry.RecordResolution(telemetry.KindLink, "link_only")
		}
		return result, nil
	}

	// a cached link may predate the cafe: an earlier create failed or the
	// flag was off when it was stored
	cafe, created, err := findOrCreateCafe(ctx, r.cafes, featureID, func() *models.Cafe {
		return cafeFromLink(link, featureID)
	})
	if err != nil {
		return nil, linkFailed("create cafe", err)
	}
	result.Cafe = cafe
	if created {
		telemetry.RecordResolution(telemetry.KindLink, "created")
	} else {
		telemetry.RecordResolution(telemetry.KindLink, "existing")
	}
	return result, nil
}

// cachedLink looks the link up by feature ID, then by resolved URL
func (r *LinkResolver) cachedLink(ctx context.Context, featureID, resolved string) (*models.SharedLink, error) {
	link, err := r.links.FindByFeatureID(ctx, featureID)
	if err != nil || link != nil {
		return link, err
	}
	return r.links.FindByResolvedURL(ctx, resolved)
}

func (r *LinkResolver) transition(sharingURL, state string, kv ...any) {
	r.log.Debugw("link resolution", append([]any{"state", state, "sharingUrl", sharingURL}, kv...)...)
}

func linkFailed(step string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrLinkResolutionFailed, step, cause)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func linkDataFrom(l *models.SharedLink) *LinkData {
	return &LinkData{
		ID:                 l.ID,
		FeatureID:          l.FeatureID,
		Name:               l.Name,
		Latitude:           l.Lat,
		Longitude:          l.Lng,
		Category:           l.Category,
		OriginalSharingURL: l.OriginalSharingURL,
		ResolvedFullURL:    l.ResolvedFullURL,
		GoogleMapsURL:      l.ResolvedFullURL,
	}
}

func cafeFromLink(l *models.SharedLink, featureID string) *models.Cafe {
	name := l.Name
	if name == "" {
		name = featureID
	}
	return &models.Cafe{
		Name:   name,
		Lat:    l.Lat,
		Lng:    l.Lng,
		Images: []models.Image{},
		ExternalReferences: models.ExternalReferences{
			GooglePlace: &featureID,
		},
	}
}
