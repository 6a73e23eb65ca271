package repository

import (
	"context"
	"fmt"

	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/models"
)

type SharedLinkRepo struct {
	db *database.DB
}

func NewSharedLinkRepo(db *database.DB) *SharedLinkRepo {
	return &SharedLinkRepo{db: db}
}

func (r *SharedLinkRepo) FindByFeatureID(ctx context.Context, featureID string) (*models.SharedLink, error) {
	return r.findOne(ctx, "feature_id = ?", featureID)
}

func (r *SharedLinkRepo) FindByResolvedURL(ctx context.Context, resolvedURL string) (*models.SharedLink, error) {
	return r.findOne(ctx, "resolved_full_url = ?", resolvedURL)
}

// Save inserts a new link record. When a concurrent writer stored the same
// feature ID first, the existing row is returned instead.
func (r *SharedLinkRepo) Save(ctx context.Context, link *models.SharedLink) (*models.SharedLink, error) {
	err := r.db.WithContext(ctx).Create(link).Error
	if isDuplicateKey(err) {
		existing, findErr := r.FindByFeatureID(ctx, link.FeatureID)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save shared link %s: %w", link.FeatureID, err)
	}
	return link, nil
}

func (r *SharedLinkRepo) findOne(ctx context.Context, query string, arg any) (*models.SharedLink, error) {
	var link models.SharedLink
	err := r.db.WithContext(ctx).Where(query, arg).First(&link).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shared link: %w", err)
	}
	return &link, nil
}
