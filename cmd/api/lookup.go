package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/services"
)

var errNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY is not set")

// unavailableLookup keeps the metadata route answering 502 while the
// Places key is missing, so the rest of the API still starts.
type unavailableLookup struct{}

func (unavailableLookup) FindPlaceIDFromText(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: %w", services.ErrLookupUnavailable, errNoAPIKey)
}

func (unavailableLookup) FetchDetails(context.Context, string) (*models.PlaceDetail, error) {
	return nil, fmt.Errorf("%w: %w", services.ErrLookupUnavailable, errNoAPIKey)
}
