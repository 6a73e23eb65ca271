package services

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/ggorockee/coffeemode/internal/models"
)

const (
	DefaultNearbyRadiusKm = 3.0
	MaxNearbyRadiusKm     = 50.0

	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
)

var (
	quietnessLevels = []string{"quiet", "moderate", "noisy"}
	temperatures    = []string{"cold", "just right", "warm"}
)

type CafeService struct {
	store CafeStore
}

func NewCafeService(store CafeStore) *CafeService {
	return &CafeService{store: store}
}

// CafeRequest is the editable part of a cafe
type CafeRequest struct {
	Name          string               `json:"name"`
	Address       string               `json:"address"`
	Location      *models.GeoPoint     `json:"location"`
	Features      *models.CafeFeatures `json:"features,omitempty"`
	Images        []models.Image       `json:"images,omitempty"`
	Website       string               `json:"website,omitempty"`
	OpeningHours  map[string]string    `json:"openingHours,omitempty"`
	AverageRating float64              `json:"averageRating,omitempty"`
	TotalReviews  int                  `json:"totalReviews,omitempty"`

	// create only; ignored on update
	GooglePlace *string `json:"googlePlace,omitempty"`
	RedNoteID   *string `json:"redNoteId,omitempty"`
}

// NearbyCafe is a cafe with its distance from the search point
type NearbyCafe struct {
	models.Cafe
	DistanceKm float64 `json:"distanceKm"`
}

func (req *CafeRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" {
		return invalidInput("name is required")
	}
	if req.Address == "" {
		return invalidInput("address is required")
	}
	if req.Location == nil {
		return invalidInput("location is required")
	}
	if err := validatePoint(req.Location.Lat, req.Location.Lng); err != nil {
		return err
	}
	if req.AverageRating < 0 || req.AverageRating > 5 {
		return invalidInput("averageRating must be between 0 and 5")
	}
	if req.TotalReviews < 0 {
		return invalidInput("totalReviews must not be negative")
	}
	if f := req.Features; f != nil {
		if f.QuietnessLevel != "" && !slices.Contains(quietnessLevels, f.QuietnessLevel) {
			return invalidInput("quietnessLevel must be one of %s", strings.Join(quietnessLevels, ", "))
		}
		if f.Temperature != "" && !slices.Contains(temperatures, f.Temperature) {
			return invalidInput("temperature must be one of %s", strings.Join(temperatures, ", "))
		}
	}
	return nil
}

func (req *CafeRequest) apply(cafe *models.Cafe) {
	lat, lng := req.Location.Lat, req.Location.Lng
	cafe.Name = req.Name
	cafe.Address = req.Address
	cafe.Lat = &lat
	cafe.Lng = &lng
	cafe.Features = req.Features
	cafe.Images = req.Images
	if cafe.Images == nil {
		cafe.Images = []models.Image{}
	}
	cafe.Website = req.Website
	cafe.OpeningHours = req.OpeningHours
	cafe.AverageRating = req.AverageRating
	cafe.TotalReviews = req.TotalReviews
}

// Create stores a new cafe. An already referenced GooglePlace is a conflict.
func (s *CafeService) Create(ctx context.Context, req *CafeRequest) (*models.Cafe, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cafe := &models.Cafe{
		ExternalReferences: models.ExternalReferences{
			GooglePlace: nonEmpty(req.GooglePlace),
			RedNoteID:   nonEmpty(req.RedNoteID),
		},
	}
	req.apply(cafe)
	return s.store.Create(ctx, cafe)
}

func (s *CafeService) GetByID(ctx context.Context, id string) (*models.Cafe, error) {
	return s.store.FindByID(ctx, id)
}

func (s *CafeService) List(ctx context.Context) ([]models.Cafe, error) {
	cafes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if cafes == nil {
		cafes = []models.Cafe{}
	}
	return cafes, nil
}

// Update replaces the editable fields; external references stay untouched
func (s *CafeService) Update(ctx context.Context, id string, req *CafeRequest) (*models.Cafe, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cafe, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(cafe)
	return s.store.Update(ctx, cafe)
}

func (s *CafeService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Nearby returns cafes within radiusKm of (lat, lng), closest first.
// radiusKm <= 0 means the default radius.
func (s *CafeService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyCafe, error) {
	if err := validatePoint(lat, lng); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) {
		return nil, invalidInput("radiusKm must be a number")
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm > MaxNearbyRadiusKm {
		return nil, invalidInput("radiusKm must not exceed %.0f", MaxNearbyRadiusKm)
	}

	sw, ne := boundingBox(lat, lng, radiusKm)
	candidates, err := s.store.FindWithinBounds(ctx, sw, ne)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyCafe, 0, len(candidates))
	for _, cafe := range candidates {
		if cafe.Lat == nil || cafe.Lng == nil {
			continue
		}
		d := HaversineKm(lat, lng, *cafe.Lat, *cafe.Lng)
		if d <= radiusKm {
			nearby = append(nearby, NearbyCafe{Cafe: cafe, DistanceKm: math.Round(d*1000) / 1000})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

// boundingBox returns the sw/ne corners of a box enclosing the radius.
// Longitude spans the whole globe near the poles or across the antimeridian.
func boundingBox(lat, lng, radiusKm float64) (sw, ne models.GeoPoint) {
	dLat := radiusKm / kmPerDegree
	sw.Lat = math.Max(lat-dLat, -90)
	ne.Lat = math.Min(lat+dLat, 90)

	cos := math.Cos(lat * math.Pi / 180)
	if cos < 1e-6 {
		sw.Lng, ne.Lng = -180, 180
		return sw, ne
	}
	dLng := radiusKm / (kmPerDegree * cos)
	sw.Lng, ne.Lng = lng-dLng, lng+dLng
	if sw.Lng < -180 || ne.Lng > 180 {
		sw.Lng, ne.Lng = -180, 180
	}
	return sw, ne
}

// HaversineKm is the great-circle distance between two points
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func validatePoint(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return invalidInput("latitude must be between -90 and 90")
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return invalidInput("longitude must be between -180 and 180")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

