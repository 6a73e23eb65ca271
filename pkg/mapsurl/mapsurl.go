// Package mapsurl pulls identifiers and best-effort place hints out of
// resolved Google Maps URLs.
package mapsurl

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	// !1s<token> up to the next '!' or end of string
	featureIDPattern = regexp.MustCompile(`!1s([^!]+)`)
	// /place/<name> up to the next '/' or '@'
	placeNamePattern = regexp.MustCompile(`/place/([^/@]+)`)
	// @<lat>,<lng>
	coordPattern = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
)

// Place is what a resolved Maps URL tells us about a place
type Place struct {
	FeatureID string
	Name      string
	Lat       *float64
	Lng       *float64
	Category  string
}

// Parse extracts every signal from rawURL. Only the feature ID is required
// by callers; the other fields stay empty when the URL does not carry them.
func Parse(rawURL string) Place {
	p := Place{Category: Category(rawURL)}
	p.FeatureID, _ = FeatureID(rawURL)
	p.Name, _ = PlaceName(rawURL)
	if lat, lng, ok := Coordinates(rawURL); ok {
		p.Lat, p.Lng = &lat, &lng
	}
	return p
}

// FeatureID returns the provider feature identifier embedded in rawURL
func FeatureID(rawURL string) (string, bool) {
	for _, candidate := range []string{rawURL, unescapePath(rawURL)} {
		if m := featureIDPattern.FindStringSubmatch(candidate); m != nil {
			if id := strings.TrimSpace(unescapePath(m[1])); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

// PlaceName returns the human readable name from the /place/ path segment
func PlaceName(rawURL string) (string, bool) {
	m := placeNamePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	name, err := url.QueryUnescape(m[1])
	if err != nil {
		name = strings.ReplaceAll(strings.ReplaceAll(m[1], "+", " "), "%20", " ")
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// Coordinates returns the map centre encoded as @lat,lng
func Coordinates(rawURL string) (lat, lng float64, ok bool) {
	m := coordPattern.FindStringSubmatch(unescapePath(rawURL))
	if m == nil {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// Category guesses a coarse place category from words in the URL
func Category(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "cafe"), strings.Contains(lower, "coffee"):
		return "Cafe"
	case strings.Contains(lower, "restaurant"):
		return "Restaurant"
	case strings.Contains(lower, "hotel"):
		return "Hotel"
	default:
		return "Place"
	}
}

func unescapePath(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
