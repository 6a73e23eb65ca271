package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlaceDetail caches a Google Places detail response.
// Rows are written once per place ID and never updated afterwards.
// DB: google_place_poi
type PlaceDetail struct {
	ID               uint              `gorm:"primaryKey" json:"-"`
	PlaceID          string            `gorm:"column:place_id;size:255;not null;uniqueIndex:idx_google_place_poi_place_id" json:"placeId"`
	Name             string            `gorm:"column:name;size:255" json:"name"`
	FormattedAddress string            `gorm:"column:formatted_address;type:text" json:"formattedAddress"`
	Lat              *float64          `gorm:"column:lat;type:double precision" json:"lat,omitempty"`
	Lng              *float64          `gorm:"column:lng;type:double precision" json:"lng,omitempty"`
	Website          string            `gorm:"column:website;type:text" json:"website,omitempty"`
	Phone            string            `gorm:"column:formatted_phone_number;size:50" json:"formattedPhoneNumber,omitempty"`
	OpeningHours     map[string]string `gorm:"column:opening_hours;serializer:json" json:"openingHours,omitempty"`
	Rating           *float64          `gorm:"column:rating" json:"rating,omitempty"`
	UserRatingsTotal *int              `gorm:"column:user_ratings_total" json:"userRatingsTotal,omitempty"`
	RawDetails       datatypes.JSONMap `gorm:"column:raw_details" json:"rawDetails,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PlaceDetail) TableName() string {
	return "google_place_poi"
}

// SharedLink caches what was parsed out of a resolved Google Maps share link
// DB: google_poi
type SharedLink struct {
	BaseModel

	FeatureID          string   `gorm:"column:feature_id;size:255;not null;uniqueIndex:idx_google_poi_feature_id" json:"featureId"`
	OriginalSharingURL string   `gorm:"column:original_sharing_url;size:2048;index:idx_google_poi_original_url" json:"originalSharingUrl"`
	ResolvedFullURL    string   `gorm:"column:resolved_full_url;size:2048;index:idx_google_poi_resolved_url" json:"resolvedFullUrl"`
	Name               string   `gorm:"column:name;size:255" json:"name,omitempty"`
	Lat                *float64 `gorm:"column:lat;type:double precision" json:"lat,omitempty"`
	Lng                *float64 `gorm:"column:lng;type:double precision" json:"lng,omitempty"`
	Category           string   `gorm:"column:category;size:50" json:"category,omitempty"`
}

func (SharedLink) TableName() string {
	return "google_poi"
}
