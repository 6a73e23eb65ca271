package services

import (
	"context"

	"github.com/ggorockee/coffeemode/internal/models"
)

// PlaceLookup resolves text to provider place IDs and fetches place details.
// FindPlaceIDFromText reports found=false for zero results; transport or auth
// problems are ErrLookupUnavailable. FetchDetails returns ErrIdentifierNotFound
// when the provider no longer knows the ID.
type PlaceLookup interface {
	FindPlaceIDFromText(ctx context.Context, query string) (placeID string, found bool, err error)
	FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetail, error)
}

// LinkFollower follows a share link to its final URL. It never fails: when
// nothing redirects, the input URL is returned as-is.
type LinkFollower interface {
	Resolve(ctx context.Context, rawURL string) string
}

// PlaceCache stores provider detail records keyed by place ID.
// Get returns nil, nil on a miss. Put is idempotent per place ID.
type PlaceCache interface {
	Get(ctx context.Context, placeID string) (*models.PlaceDetail, error)
	Put(ctx context.Context, detail *models.PlaceDetail) (*models.PlaceDetail, error)
}

// CafeStore persists canonical cafes. FindByGooglePlace returns nil, nil on a
// miss; Create fails with ErrDuplicateProviderReference when another cafe
// already references the same provider place.
type CafeStore interface {
	FindByGooglePlace(ctx context.Context, placeID string) (*models.Cafe, error)
	Create(ctx context.Context, cafe *models.Cafe) (*models.Cafe, error)
	FindByID(ctx context.Context, id string) (*models.Cafe, error)
	List(ctx context.Context) ([]models.Cafe, error)
	Update(ctx context.Context, cafe *models.Cafe) (*models.Cafe, error)
	Delete(ctx context.Context, id string) error
	FindWithinBounds(ctx context.Context, sw, ne models.GeoPoint) ([]models.Cafe, error)
}

// SharedLinkStore caches parsed share links. Lookups return nil, nil on a miss.
type SharedLinkStore interface {
	FindByFeatureID(ctx context.Context, featureID string) (*models.SharedLink, error)
	FindByResolvedURL(ctx context.Context, resolvedURL string) (*models.SharedLink, error)
	Save(ctx context.Context, link *models.SharedLink) (*models.SharedLink, error)
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, int64, error)
}
