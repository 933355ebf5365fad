// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package aggregate counts professionals per region.
//
// A point belongs to a region when it lies inside or on the boundary of any
// member polygon's outer ring and strictly outside every hole of that polygon.
// A point on two adjacent regions' shared edge is counted in both. Counts are
// computed over the full, unfiltered professional set.
package aggregate

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"

	"github.com/tomtom215/caremap/internal/models"
)

// Aggregate returns one entry per region, in region order, with the number of
// points inside it and a label position at the region centroid.
func Aggregate(regions []models.Region, points []models.Coordinate) []models.RegionAggregate {
	out := make([]models.RegionAggregate, 0, len(regions))
	for i := range regions {
		r := &regions[i]
		count := 0
		for _, p := range points {
			if !r.Bounds.Contains(p) {
				continue
			}
			if Contains(r.Geometry, p) {
				count++
			}
		}
		out = append(out, models.RegionAggregate{
			Code:     r.Code,
			Name:     r.Name,
			Count:    count,
			Location: Centroid(r),
		})
	}
	return out
}

// Contains reports whether p lies in mp.
func Contains(mp *geom.MultiPolygon, p models.Coordinate) bool {
	if mp == nil {
		return false
	}
	c := p.Coord()
	for i := 0; i < mp.NumPolygons(); i++ {
		if polygonContains(mp.Polygon(i), c) {
			return true
		}
	}
	return false
}

func polygonContains(poly *geom.Polygon, c geom.Coord) bool {
	n := poly.NumLinearRings()
	if n == 0 {
		return false
	}
	layout := poly.Layout()
	if xy.LocatePointInRing(layout, c, poly.LinearRing(0).FlatCoords()) == location.Exterior {
		return false
	}
	for h := 1; h < n; h++ {
		if xy.LocatePointInRing(layout, c, poly.LinearRing(h).FlatCoords()) == location.Interior {
			return false
		}
	}
	return true
}

// Centroid returns the area centroid of a region, or the centre of its
// bounding box when the centroid cannot be computed. This is not the mean of
// the ring vertices: densely digitised edges do not pull the point toward them.
func Centroid(r *models.Region) models.Coordinate {
	if r.Geometry != nil && r.Geometry.NumPolygons() > 0 {
		if c, err := xy.Centroid(r.Geometry); err == nil && len(c) >= 2 && !math.IsNaN(c[0]) && !math.IsNaN(c[1]) {
			return models.Coordinate{Longitude: c[0], Latitude: c[1]}
		}
	}
	return r.Bounds.Center()
}

// Locations extracts the positions of records, preserving order.
func Locations(records []models.ProfessionalRecord) []models.Coordinate {
	out := make([]models.Coordinate, len(records))
	for i := range records {
		out[i] = records[i].Location
	}
	return out
}
