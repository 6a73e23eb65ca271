package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/database/dbtest"
	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeLookup answers text searches from a fixed table and counts calls
type fakeLookup struct {
	mu       sync.Mutex
	ids      map[string]string // query -> place id
	details  map[string]*models.PlaceDetail
	findErr  error
	fetchErr error

	findCalls  atomic.Int32
	fetchCalls atomic.Int32
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{ids: map[string]string{}, details: map[string]*models.PlaceDetail{}}
}

func (f *fakeLookup) FindPlaceIDFromText(_ context.Context, query string) (string, bool, error) {
	f.findCalls.Add(1)
	if f.findErr != nil {
		return "", false, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.ids[query]
	return id, ok, nil
}

func (f *fakeLookup) FetchDetails(_ context.Context, placeID string) (*models.PlaceDetail, error) {
	f.fetchCalls.Add(1)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[placeID]
	if !ok {
		return &models.PlaceDetail{PlaceID: placeID, Name: placeID}, nil
	}
	copied := *d
	return &copied, nil
}

// fakeFollower maps short links to resolved URLs; unknown links resolve to themselves
type fakeFollower struct {
	targets map[string]string
	calls   atomic.Int32
}

func (f *fakeFollower) Resolve(_ context.Context, rawURL string) string {
	f.calls.Add(1)
	if target, ok := f.targets[rawURL]; ok {
		return target
	}
	return rawURL
}

type stores struct {
	db     *database.DB
	cafes  *repository.CafeRepo
	places *repository.PlaceCacheRepo
	links  *repository.SharedLinkRepo
	users  *repository.UserRepo
}

func newStores(t *testing.T) *stores {
	t.Helper()
	db := dbtest.New(t)
	return &stores{
		db:     db,
		cafes:  repository.NewCafeRepo(db),
		places: repository.NewPlaceCacheRepo(db),
		links:  repository.NewSharedLinkRepo(db),
		users:  repository.NewUserRepo(db),
	}
}

func (s *stores) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
