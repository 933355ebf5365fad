// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package models

import (
	"github.com/twpayne/go-geom"

	"github.com/tomtom215/caremap/internal/fields"
)

// Region is an administrative boundary (EPCI). Polygon sources are normalized
// to a single-member MultiPolygon.
type Region struct {
	Code       string
	Name       string
	Geometry   *geom.MultiPolygon
	Bounds     BBox
	Properties map[string]interface{}
}

// Commune is a decorative sub-boundary. Its geometry is kept as decoded.
type Commune struct {
	ID         string
	Geometry   geom.T
	Properties map[string]interface{}
}

// ProfessionalRecord is one healthcare professional located at a point.
type ProfessionalRecord struct {
	ID         string
	Location   Coordinate
	Properties map[string]interface{}
}

// Field resolves a logical attribute with the default resolver.
func (r ProfessionalRecord) Field(f fields.Field) string {
	return fields.Resolve(r.Properties, f)
}

// Card returns the display attributes with placeholders.
func (r ProfessionalRecord) Card() fields.Card {
	return fields.DisplayCard(r.Properties)
}

// RegionAggregate is the derived count of professionals inside one region,
// placed at the region centroid.
type RegionAggregate struct {
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Count    int        `json:"count"`
	Location Coordinate `json:"location"`
}

// Route is one driving route returned by the routing service.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        *geom.LineString
}

// Bounds returns the bounding box of the route line.
func (r *Route) Bounds() BBox {
	if r == nil || r.Geometry == nil {
		return BBox{}
	}
	return BBoxFromBounds(r.Geometry.Bounds())
}

// RouteCandidate is a professional considered by a nearest search.
type RouteCandidate struct {
	Record ProfessionalRecord
	// PlanarDistance ranks candidates, in degrees.
	PlanarDistance float64
	// GreatCircleKm is the straight-line ground distance from the origin.
	GreatCircleKm float64
	// Route is nil until resolved, and stays nil when routing failed.
	Route *Route
	Err   error
}

// BestRoute is the winner of a nearest search.
type BestRoute struct {
	Professional    ProfessionalRecord
	Card            fields.Card
	Origin          Coordinate
	Profession      string
	DistanceMeters  float64
	DistanceKm      float64
	DurationSeconds float64
	Geometry        *geom.LineString
	Bounds          BBox
	// Candidates holds every candidate sent to the routing service, in
	// straight-line order, with the per-candidate outcome.
	Candidates []RouteCandidate
	Routed     int
	Failed     int
}

// DurationMinutes returns the travel time in minutes.
func (b *BestRoute) DurationMinutes() float64 {
	return b.DurationSeconds / 60
}
