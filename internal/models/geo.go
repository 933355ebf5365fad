// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package models holds the immutable data types shared by the loader, the
// aggregator, the facet filter and the nearest-professional search.
package models

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Coord returns the go-geom XY coordinate.
func (c Coordinate) Coord() geom.Coord {
	return geom.Coord{c.Longitude, c.Latitude}
}

// PlanarDistance is the Euclidean distance in degree space. It ranks
// candidates only; it is not a length on the ground.
func (c Coordinate) PlanarDistance(o Coordinate) float64 {
	return math.Hypot(c.Longitude-o.Longitude, c.Latitude-o.Latitude)
}

// BBox is an axis-aligned bounding box in degrees.
// The zero value is empty; Extend grows it.
type BBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
	set   bool
}

// NewBBox returns a box spanning the two corners.
func NewBBox(west, south, east, north float64) BBox {
	return BBox{
		West:  math.Min(west, east),
		South: math.Min(south, north),
		East:  math.Max(west, east),
		North: math.Max(south, north),
		set:   true,
	}
}

// BBoxFromBounds converts go-geom bounds. Empty bounds give an empty box.
func BBoxFromBounds(b *geom.Bounds) BBox {
	if b == nil || b.IsEmpty() {
		return BBox{}
	}
	return NewBBox(b.Min(0), b.Min(1), b.Max(0), b.Max(1))
}

// IsEmpty reports whether no point has been added.
func (b BBox) IsEmpty() bool {
	return !b.set
}

// Extend returns the box grown to include c.
func (b BBox) Extend(c Coordinate) BBox {
	if !b.set {
		return NewBBox(c.Longitude, c.Latitude, c.Longitude, c.Latitude)
	}
	b.West = math.Min(b.West, c.Longitude)
	b.South = math.Min(b.South, c.Latitude)
	b.East = math.Max(b.East, c.Longitude)
	b.North = math.Max(b.North, c.Latitude)
	return b
}

// Union returns the smallest box containing both.
func (b BBox) Union(o BBox) BBox {
	if !o.set {
		return b
	}
	if !b.set {
		return o
	}
	return NewBBox(
		math.Min(b.West, o.West),
		math.Min(b.South, o.South),
		math.Max(b.East, o.East),
		math.Max(b.North, o.North),
	)
}

// Contains reports whether c lies inside or on the edge of the box.
func (b BBox) Contains(c Coordinate) bool {
	return b.set &&
		c.Longitude >= b.West && c.Longitude <= b.East &&
		c.Latitude >= b.South && c.Latitude <= b.North
}

// Center returns the midpoint of the box.
func (b BBox) Center() Coordinate {
	return Coordinate{
		Longitude: (b.West + b.East) / 2,
		Latitude:  (b.South + b.North) / 2,
	}
}

// Corners returns [[west, south], [east, north]], the form map clients fit to.
func (b BBox) Corners() [2][2]float64 {
	return [2][2]float64{{b.West, b.South}, {b.East, b.North}}
}
