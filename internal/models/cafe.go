package models

import "time"

// Cafe is the canonical place record owned by this service
// DB: cafes
type Cafe struct {
	BaseModel

	Name          string            `gorm:"column:name;size:255;not null" json:"name"`
	Address       string            `gorm:"column:address;type:text" json:"address"`
	Lat           *float64          `gorm:"column:lat;type:double precision;index:idx_cafes_lat_lng,priority:1" json:"lat,omitempty"`
	Lng           *float64          `gorm:"column:lng;type:double precision;index:idx_cafes_lat_lng,priority:2" json:"lng,omitempty"`
	Features      *CafeFeatures     `gorm:"column:features;serializer:json" json:"features"`
	AverageRating float64           `gorm:"column:average_rating;not null;default:0" json:"averageRating"`
	TotalReviews  int               `gorm:"column:total_reviews;not null;default:0" json:"totalReviews"`
	Images        []Image           `gorm:"column:images;serializer:json" json:"images"`
	Website       string            `gorm:"column:website;type:text" json:"website,omitempty"`
	OpeningHours  map[string]string `gorm:"column:opening_hours;serializer:json" json:"openingHours,omitempty"`

	ExternalReferences ExternalReferences `gorm:"embedded" json:"externalReferences"`
}

func (Cafe) TableName() string {
	return "cafes"
}

// Location returns the cafe point, or nil when coordinates are unknown
func (c *Cafe) Location() *GeoPoint {
	return NewGeoPoint(c.Lat, c.Lng)
}

// ExternalReferences links a cafe to provider identifiers.
// GooglePlace holds a Places place ID or a Maps feature ID; NULL never collides.
type ExternalReferences struct {
	GooglePlace *string `gorm:"column:google_place;size:255;uniqueIndex:idx_cafes_google_place" json:"googlePlace,omitempty"`
	RedNoteID   *string `gorm:"column:rednote_id;size:255;index:idx_cafes_rednote_id" json:"redNoteId,omitempty"`
}

// CafeFeatures are user-reported workspace attributes
type CafeFeatures struct {
	WifiAvailable     *bool          `json:"wifiAvailable,omitempty"`
	OutletsAvailable  *bool          `json:"outletsAvailable,omitempty"`
	QuietnessLevel    string         `json:"quietnessLevel,omitempty"` // quiet | moderate | noisy
	Temperature       string         `json:"temperature,omitempty"`    // cold | just right | warm
	UnlimitedDuration *bool          `json:"unlimitedDuration,omitempty"`
	LimitDuration     *time.Duration `json:"limitDuration,omitempty"`
	GoogleRating      *float64       `json:"googleRating,omitempty"`
}

// Image is an uploaded cafe photo served by the image worker
type Image struct {
	URL  string `json:"url"`
	UUID string `json:"uuid,omitempty"`
	Type string `json:"type,omitempty"`
}
