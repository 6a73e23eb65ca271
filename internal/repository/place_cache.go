package repository

import (
	"context"
	"fmt"

	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/models"
	"gorm.io/gorm/clause"
)

type PlaceCacheRepo struct {
	db *database.DB
}

func NewPlaceCacheRepo(db *database.DB) *PlaceCacheRepo {
	return &PlaceCacheRepo{db: db}
}

// Get returns the cached detail record or nil on a miss
func (r *PlaceCacheRepo) Get(ctx context.Context, placeID string) (*models.PlaceDetail, error) {
	var detail models.PlaceDetail
	err := r.db.WithContext(ctx).Where("place_id = ?", placeID).First(&detail).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get place detail %s: %w", placeID, err)
	}
	return &detail, nil
}

// Put stores a freshly fetched record. A second write for the same place ID
// keeps the first row and returns it.
func (r *PlaceCacheRepo) Put(ctx context.Context, detail *models.PlaceDetail) (*models.PlaceDetail, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "place_id"}}, DoNothing: true}).
		Create(detail).Error
	if err != nil {
		return nil, fmt.Errorf("put place detail %s: %w", detail.PlaceID, err)
	}

	stored, err := r.Get(ctx, detail.PlaceID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("put place detail %s: row missing after insert", detail.PlaceID)
	}
	return stored, nil
}
