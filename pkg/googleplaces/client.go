// Package googleplaces implements the place lookup port on top of the
// Google Places web service.
package googleplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/models"
	"github.com/ggorockee/coffeemode/internal/services"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Config for the Places client
type Config struct {
	APIKey     string
	Timeout    time.Duration // per provider call, retries included
	MaxRetries int
	Language   string

	// HTTPClient and BaseURL are overridden in tests
	HTTPClient    *http.Client
	BaseURL       string
	RetryInterval time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       10 * time.Second,
		MaxRetries:    2,
		RetryInterval: 200 * time.Millisecond,
	}
}

type Client struct {
	maps *maps.Client
	cfg  Config
	log  *zap.SugaredLogger
}

// NewClient creates a Places client. An API key is required.
func NewClient(cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.APIKey == "" {
		return nil, errors.New("google maps API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaults.RetryInterval
	}

	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		opts = append(opts, maps.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}

	return &Client{maps: mc, cfg: cfg, log: logger.GetLogger("googleplaces")}, nil
}

// FindPlaceIDFromText returns the first candidate for query
func (c *Client) FindPlaceIDFromText(ctx context.Context, query string) (string, bool, error) {
	req := &maps.FindPlaceFromTextRequest{
		Input:     query,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields:    []maps.PlaceSearchFieldMask{maps.PlaceSearchFieldMaskPlaceID},
		Language:  c.cfg.Language,
	}

	var resp maps.FindPlaceFromTextResponse
	err := c.call(ctx, "find_place", func(ctx context.Context) error {
		var err error
		resp, err = c.maps.FindPlaceFromText(ctx, req)
		return err
	})
	if err != nil {
		return "", false, err
	}

	for _, candidate := range resp.Candidates {
		if candidate.PlaceID != "" {
			return candidate.PlaceID, true, nil
		}
	}
	return "", false, nil
}

// FetchDetails loads the full detail record for placeID
func (c *Client) FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetail, error) {
	req := &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: c.cfg.Language,
	}

	var result maps.PlaceDetailsResult
	err := c.call(ctx, "place_details", func(ctx context.Context) error {
		var err error
		result, err = c.maps.PlaceDetails(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	detail := toPlaceDetail(placeID, result)
	return detail, nil
}

// call runs op with a deadline and retries transient failures only
func (c *Client) call(ctx context.Context, operation string, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)

	attempt := func() error {
		err := classify(operation, op(ctx))
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warnw("places call failed, retrying", "operation", operation, "error", err, "wait", wait)
	}

	return backoff.RetryNotify(attempt, policy, notify)
}

// classify maps maps-client errors onto the lookup sentinels.
// The client reports API status as "maps: <STATUS> - <message>".
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if operation == "place_details" && (strings.Contains(msg, "NOT_FOUND") || strings.Contains(msg, "INVALID_REQUEST")) {
		return fmt.Errorf("%w: %v", services.ErrIdentifierNotFound, err)
	}
	return fmt.Errorf("%w: %w", services.ErrLookupUnavailable, err)
}

// transient: quota, provider-side errors, timeouts, transport failures
func isTransient(err error) bool {
	if errors.Is(err, services.ErrIdentifierNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "REQUEST_DENIED") {
		return false
	}
	return true
}

func toPlaceDetail(placeID string, r maps.PlaceDetailsResult) *models.PlaceDetail {
	if r.PlaceID != "" {
		placeID = r.PlaceID
	}
	detail := &models.PlaceDetail{
		PlaceID:          placeID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Website:          r.Website,
		Phone:            r.FormattedPhoneNumber,
		RawDetails:       rawDetails(r),
	}

	if loc := r.Geometry.Location; loc.Lat != 0 || loc.Lng != 0 {
		lat, lng := loc.Lat, loc.Lng
		detail.Lat, detail.Lng = &lat, &lng
	}
	if r.Rating > 0 {
		rating := math.Round(float64(r.Rating)*10) / 10
		detail.Rating = &rating
	}
	if r.UserRatingsTotal > 0 {
		total := r.UserRatingsTotal
		detail.UserRatingsTotal = &total
	}
	if r.OpeningHours != nil {
		detail.OpeningHours = openingHours(r.OpeningHours.WeekdayText)
	}
	return detail
}

// openingHours turns "Monday: 8:00 AM – 6:00 PM" lines into day → hours
func openingHours(weekdayText []string) map[string]string {
	if len(weekdayText) == 0 {
		return nil
	}
	hours := make(map[string]string, len(weekdayText))
	for _, line := range weekdayText {
		day, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		hours[strings.TrimSpace(day)] = strings.TrimSpace(value)
	}
	return hours
}

func rawDetails(r maps.PlaceDetailsResult) map[string]interface{} {
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}
