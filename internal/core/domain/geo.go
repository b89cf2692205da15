package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Finite reports whether both coordinates are real numbers.
func (p GeoPoint) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box. Non-finite
// coordinates are never contained.
func (b Bounds) Contains(p GeoPoint) bool {
	if !p.Finite() {
		return false
	}
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Place is a geocoding result.
type Place struct {
	DisplayName string   `json:"display_name"`
	Location    GeoPoint `json:"location"`
	Category    string   `json:"category,omitempty"`
}
