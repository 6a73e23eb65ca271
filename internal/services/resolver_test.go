package services_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var defaultResolverConfig = services.ResolverConfig{
	CategoryHint:     "cafe",
	CategorySynonyms: []string{"cafe", "咖啡"},
}

func TestBuildQuery(t *testing.T) {
	r := services.NewPlaceResolver(nil, nil, nil, defaultResolverConfig)

	tests := []struct {
		title, description string
		want               string
	}{
		{"Blue Bottle", "downtown", "Blue Bottle downtown cafe"},
		{"  Blue Bottle  ", "", "Blue Bottle cafe"},
		{"Best CAFE in town", "", "Best CAFE in town"},
		{"上海", "咖啡 推荐", "上海 咖啡 推荐"},
		{"", "", "cafe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.BuildQuery(tt.title, tt.description), "title=%q description=%q", tt.title, tt.description)
	}

	noHint := services.NewPlaceResolver(nil, nil, nil, services.ResolverConfig{})
	assert.Equal(t, "Blue Bottle downtown", noHint.BuildQuery("Blue Bottle", "downtown"))
}

type PlaceResolverSuite struct {
	suite.Suite
	stores   *stores
	lookup   *fakeLookup
	resolver *services.PlaceResolver
	ctx      context.Context
}

func TestPlaceResolverSuite(t *testing.T) {
	suite.Run(t, new(PlaceResolverSuite))
}

func (s *PlaceResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = newStores(s.T())
	s.lookup = newFakeLookup()
	s.lookup.ids["Blue Bottle downtown cafe"] = "XYZ1"
	s.lookup.details["XYZ1"] = &models.PlaceDetail{
		PlaceID:          "XYZ1",
		Name:             "Blue Bottle Coffee",
		FormattedAddress: "123 Main St",
		Lat:              floatPtr(37.7),
		Lng:              floatPtr(-122.4),
		Website:          "https://bluebottlecoffee.com",
		Rating:           floatPtr(4.5),
		OpeningHours:     map[string]string{"Monday": "7:00 AM – 6:00 PM"},
		RawDetails:       map[string]interface{}{"name": "Blue Bottle Coffee"},
	}
	s.resolver = services.NewPlaceResolver(s.lookup, s.stores.places, s.stores.cafes, defaultResolverConfig)
}

func (s *PlaceResolverSuite) TestBlueBottleDowntown() {
	result, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "https://xhslink.com/abc")
	s.Require().NoError(err)

	s.Equal("XYZ1", result.PlaceID)
	s.False(result.SkippedDetails)
	s.Require().NotNil(result.Cafe)
	s.NotEmpty(result.Cafe.ID)
	s.Equal("Blue Bottle Coffee", result.Cafe.Name)
	s.Equal("123 Main St", result.Cafe.Address)
	s.Require().NotNil(result.Cafe.ExternalReferences.GooglePlace)
	s.Equal("XYZ1", *result.Cafe.ExternalReferences.GooglePlace)
	s.InDelta(4.5, result.Cafe.AverageRating, 1e-9)
	s.Equal("https://bluebottlecoffee.com", result.Cafe.Website)
	s.Equal(map[string]string{"Monday": "7:00 AM – 6:00 PM"}, result.Cafe.OpeningHours)

	s.EqualValues(1, s.lookup.findCalls.Load())
	s.EqualValues(1, s.lookup.fetchCalls.Load())
	s.EqualValues(1, s.stores.count(s.T(), &models.PlaceDetail{}))
	s.EqualValues(1, s.stores.count(s.T(), &models.Cafe{}))

	cached, err := s.stores.places.Get(s.ctx, "XYZ1")
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.Equal("Blue Bottle Coffee", cached.RawDetails["name"])
}

func (s *PlaceResolverSuite) TestIdempotent() {
	first, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")
	s.Require().NoError(err)
	second, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")
	s.Require().NoError(err)

	s.False(first.SkippedDetails)
	s.True(second.SkippedDetails)
	s.Equal(first.Cafe.ID, second.Cafe.ID)
	s.EqualValues(1, s.lookup.fetchCalls.Load())
	s.EqualValues(1, s.stores.count(s.T(), &models.PlaceDetail{}))
	s.EqualValues(1, s.stores.count(s.T(), &models.Cafe{}))
}

func (s *PlaceResolverSuite) TestCachedDetailsAreNeverRefetched() {
	_, err := s.stores.places.Put(s.ctx, &models.PlaceDetail{PlaceID: "XYZ1", Name: "Cached Name", FormattedAddress: "1 Cache Rd"})
	s.Require().NoError(err)

	result, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")
	s.Require().NoError(err)

	s.True(result.SkippedDetails)
	s.EqualValues(0, s.lookup.fetchCalls.Load())
	s.Equal("Cached Name", result.Cafe.Name)
}

func (s *PlaceResolverSuite) TestExistingCafeIsNotOverwritten() {
	existing, err := s.stores.cafes.Create(s.ctx, &models.Cafe{
		Name:               "My Blue Bottle",
		Address:            "hand curated",
		ExternalReferences: models.ExternalReferences{GooglePlace: strPtr("XYZ1")},
	})
	s.Require().NoError(err)

	result, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")
	s.Require().NoError(err)

	s.Equal(existing.ID, result.Cafe.ID)
	s.Equal("My Blue Bottle", result.Cafe.Name)
	s.Equal("hand curated", result.Cafe.Address)
	s.EqualValues(1, s.stores.count(s.T(), &models.Cafe{}))
}

func (s *PlaceResolverSuite) TestNoCandidateFound() {
	_, err := s.resolver.ResolveFromMetadata(s.ctx, "Unknown", "place", "")

	s.Require().ErrorIs(err, services.ErrNoCandidateFound)
	appErr := services.Classify(err)
	s.Equal(services.KindClient, appErr.Kind)
	s.Equal(http.StatusNotFound, appErr.Status)
	s.EqualValues(0, s.lookup.fetchCalls.Load())
	s.EqualValues(0, s.stores.count(s.T(), &models.Cafe{}))
}

func (s *PlaceResolverSuite) TestLookupUnavailable() {
	s.lookup.findErr = fmt.Errorf("%w: connection refused", services.ErrLookupUnavailable)

	_, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")

	s.Require().ErrorIs(err, services.ErrLookupUnavailable)
	appErr := services.Classify(err)
	s.Equal(services.KindServer, appErr.Kind)
	s.Equal(http.StatusBadGateway, appErr.Status)
	s.NotContains(appErr.Message, "connection refused")
}

func (s *PlaceResolverSuite) TestDetailFetchFailureStoresNothing() {
	s.lookup.fetchErr = fmt.Errorf("%w: gone", services.ErrIdentifierNotFound)

	_, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")

	s.Require().ErrorIs(err, services.ErrIdentifierNotFound)
	s.EqualValues(0, s.stores.count(s.T(), &models.PlaceDetail{}))
	s.EqualValues(0, s.stores.count(s.T(), &models.Cafe{}))
}

func (s *PlaceResolverSuite) TestConcurrentResolutionsCreateOneCafe() {
	const n = 8
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")
			errs[i] = err
			if err == nil {
				ids[i] = result.Cafe.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		s.Require().NoError(errs[i])
		s.Equal(ids[0], ids[i])
	}
	s.EqualValues(1, s.stores.count(s.T(), &models.Cafe{}))
	s.EqualValues(1, s.stores.count(s.T(), &models.PlaceDetail{}))
}

// staleCafeStore misses on the first lookup, as a racing reader would
type staleCafeStore struct {
	services.CafeStore
	missed bool
}

func (s *staleCafeStore) FindByGooglePlace(ctx context.Context, placeID string) (*models.Cafe, error) {
	if !s.missed {
		s.missed = true
		return nil, nil
	}
	return s.CafeStore.FindByGooglePlace(ctx, placeID)
}

func (s *PlaceResolverSuite) TestLostCreateRaceReturnsWinner() {
	winner, err := s.stores.cafes.Create(s.ctx, &models.Cafe{
		Name:               "Winner",
		ExternalReferences: models.ExternalReferences{GooglePlace: strPtr("XYZ1")},
	})
	s.Require().NoError(err)

	resolver := services.NewPlaceResolver(s.lookup, s.stores.places, &staleCafeStore{CafeStore: s.stores.cafes}, defaultResolverConfig)
	result, err := resolver.ResolveFromMetadata(s.ctx, "Blue Bottle", "downtown", "")

	s.Require().NoError(err)
	s.Equal(winner.ID, result.Cafe.ID)
	s.Equal("Winner", result.Cafe.Name)
	s.EqualValues(1, s.stores.count(s.T(), &models.Cafe{}))
}

func TestCafeFromPlaceDetail(t *testing.T) {
	total := 87
	cafe := services.CafeFromPlaceDetail(&models.PlaceDetail{
		PlaceID:          "P1",
		Name:             "Cafe",
		FormattedAddress: "Addr",
		Rating:           floatPtr(4.2),
		UserRatingsTotal: &total,
	})

	require.NotNil(t, cafe.ExternalReferences.GooglePlace)
	assert.Equal(t, "P1", *cafe.ExternalReferences.GooglePlace)
	assert.InDelta(t, 4.2, cafe.AverageRating, 1e-9)
	assert.Equal(t, 87, cafe.TotalReviews)
	require.NotNil(t, cafe.Features)
	require.NotNil(t, cafe.Features.GoogleRating)
	assert.Nil(t, cafe.Lat)
	assert.Empty(t, cafe.ID)
}
