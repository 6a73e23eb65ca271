package repository

import (
	"context"
	"fmt"

	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/services"
)

type CafeRepo struct {
	db *database.DB
}

func NewCafeRepo(db *database.DB) *CafeRepo {
	return &CafeRepo{db: db}
}

// FindByGooglePlace returns the cafe referencing placeID, or nil
func (r *CafeRepo) FindByGooglePlace(ctx context.Context, placeID string) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.WithContext(ctx).Where("google_place = ?", placeID).First(&cafe).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cafe by google place %s: %w", placeID, err)
	}
	return &cafe, nil
}

// Create inserts a cafe; the google_place unique index turns a lost race
// into services.ErrDuplicateProviderReference.
func (r *CafeRepo) Create(ctx context.Context, cafe *models.Cafe) (*models.Cafe, error) {
	err := r.db.WithContext(ctx).Create(cafe).Error
	if isDuplicateKey(err) {
		return nil, services.ErrDuplicateProviderReference
	}
	if err != nil {
		return nil, fmt.Errorf("create cafe: %w", err)
	}
	return cafe, nil
}

func (r *CafeRepo) FindByID(ctx context.Context, id string) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cafe).Error
	if isNotFound(err) {
		return nil, services.ErrCafeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cafe %s: %w", id, err)
	}
	return &cafe, nil
}

func (r *CafeRepo) List(ctx context.Context) ([]models.Cafe, error) {
	var cafes []models.Cafe
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cafes).Error; err != nil {
		return nil, fmt.Errorf("list cafes: %w", err)
	}
	return cafes, nil
}

// Update saves every column of an existing cafe
func (r *CafeRepo) Update(ctx context.Context, cafe *models.Cafe) (*models.Cafe, error) {
	result := r.db.WithContext(ctx).Model(&models.Cafe{}).Where("id = ?", cafe.ID).
		Select("*").Omit("id", "created_at").Updates(cafe)
	if isDuplicateKey(result.Error) {
		return nil, services.ErrDuplicateProviderReference
	}
	if result.Error != nil {
		return nil, fmt.Errorf("update cafe %s: %w", cafe.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, services.ErrCafeNotFound
	}
	return r.FindByID(ctx, cafe.ID)
}

func (r *CafeRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Cafe{})
	if result.Error != nil {
		return fmt.Errorf("delete cafe %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return services.ErrCafeNotFound
	}
	return nil
}

// FindWithinBounds returns cafes inside the sw/ne bounding box
func (r *CafeRepo) FindWithinBounds(ctx context.Context, sw, ne models.GeoPoint) ([]models.Cafe, error) {
	var cafes []models.Cafe
	err := r.db.WithContext(ctx).
		Where("lat IS NOT NULL AND lng IS NOT NULL").
		Where("lat >= ? AND lat <= ? AND lng >= ? AND lng <= ?", sw.Lat, ne.Lat, sw.Lng, ne.Lng).
		Find(&cafes).Error
	if err != nil {
		return nil, fmt.Errorf("find cafes within bounds: %w", err)
	}
	return cafes, nil
}
