// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package catalog holds the immutable in-memory view built from one dataset
// load: the raw layers, the per-region aggregates, the facet options and the
// GeoJSON bodies served to map clients.
//
// A Snapshot is built once and never mutated. The Holder publishes it
// atomically, so readers either see no catalog at all or a complete one.
package catalog

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/caremap/internal/aggregate"
	"github.com/tomtom215/caremap/internal/facet"
	"github.com/tomtom215/caremap/internal/geodata"
	"github.com/tomtom215/caremap/internal/models"
)

// Options controls how region attributes are named in encoded output.
type Options struct {
	CodeField string
	NameField string
}

// Snapshot is one complete, read-only catalog.
type Snapshot struct {
	Regions           []models.Region
	Professionals     []models.ProfessionalRecord
	Communes          []models.Commune
	CommunesAvailable bool
	Aggregates        []models.RegionAggregate
	Options           facet.Options
	// RegionBounds spans every region; the view resets to it.
	RegionBounds models.BBox
	LoadedAt     time.Time

	RegionsGeoJSON    []byte
	AggregatesGeoJSON []byte
	// CommunesGeoJSON is nil when the commune layer is unavailable.
	CommunesGeoJSON []byte

	opts   Options
	byCode map[string]int
}

// Build derives a snapshot from loaded datasets. Aggregation runs here, after
// the load join, over the full professional set.
func Build(ds *geodata.Datasets, opts Options) (*Snapshot, error) {
	if ds == nil {
		return nil, fmt.Errorf("build catalog: no datasets")
	}

	s := &Snapshot{
		Regions:           ds.Regions,
		Professionals:     ds.Professionals,
		Communes:          ds.Communes,
		CommunesAvailable: ds.HasCommunes(),
		Aggregates:        aggregate.Aggregate(ds.Regions, aggregate.Locations(ds.Professionals)),
		Options:           facet.BuildOptions(ds.Professionals),
		LoadedAt:          ds.LoadedAt,
		opts:              opts,
		byCode:            make(map[string]int, len(ds.Regions)),
	}
	for i := range ds.Regions {
		s.RegionBounds = s.RegionBounds.Union(ds.Regions[i].Bounds)
		if _, dup := s.byCode[ds.Regions[i].Code]; !dup {
			s.byCode[ds.Regions[i].Code] = i
		}
	}

	var err error
	if s.RegionsGeoJSON, err = s.encodeRegions(); err != nil {
		return nil, fmt.Errorf("encode regions: %w", err)
	}
	if s.AggregatesGeoJSON, err = s.encodeAggregates(); err != nil {
		return nil, fmt.Errorf("encode aggregates: %w", err)
	}
	if s.CommunesAvailable {
		if s.CommunesGeoJSON, err = encodeCommunes(s.Communes); err != nil {
			return nil, fmt.Errorf("encode communes: %w", err)
		}
	}
	return s, nil
}

// Region returns the region and its aggregate for code.
func (s *Snapshot) Region(code string) (models.Region, models.RegionAggregate, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return models.Region{}, models.RegionAggregate{}, false
	}
	return s.Regions[i], s.Aggregates[i], true
}

// Filter applies a facet selection to the professional set.
func (s *Snapshot) Filter(sel facet.Selection) []models.ProfessionalRecord {
	return facet.Filter(s.Professionals, sel)
}

func (s *Snapshot) encodeRegions() ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(s.Regions))}
	for i := range s.Regions {
		r := &s.Regions[i]
		props := make(map[string]interface{}, len(r.Properties)+2)
		for k, v := range r.Properties {
			props[k] = v
		}
		props[s.opts.codeField()] = r.Code
		props[s.opts.nameField()] = r.Name
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.Code,
			Geometry:   r.Geometry,
			Properties: props,
		})
	}
	return json.Marshal(fc)
}

func (s *Snapshot) encodeAggregates() ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(s.Aggregates))}
	for _, a := range s.Aggregates {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       a.Code,
			Geometry: geom.NewPointFlat(geom.XY, []float64{a.Location.Longitude, a.Location.Latitude}),
			Properties: map[string]interface{}{
				s.opts.codeField(): a.Code,
				s.opts.nameField(): a.Name,
				"count":            a.Count,
			},
		})
	}
	return json.Marshal(fc)
}

func encodeCommunes(communes []models.Commune) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(communes))}
	for i := range communes {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         communes[i].ID,
			Geometry:   communes[i].Geometry,
			Properties: communes[i].Properties,
		})
	}
	return json.Marshal(fc)
}

// EncodeProfessionals renders records as a GeoJSON FeatureCollection. Each
// feature keeps its source attributes and gains a "card" with placeholders
// applied.
func EncodeProfessionals(records []models.ProfessionalRecord) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	for i := range records {
		r := &records[i]
		props := make(map[string]interface{}, len(r.Properties)+1)
		for k, v := range r.Properties {
			props[k] = v
		}
		props["card"] = r.Card()
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.ID,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{r.Location.Longitude, r.Location.Latitude}),
			Properties: props,
		})
	}
	return json.Marshal(fc)
}

func (o Options) codeField() string {
	if o.CodeField == "" {
		return "code"
	}
	return o.CodeField
}

func (o Options) nameField() string {
	if o.NameField == "" {
		return "name"
	}
	return o.NameField
}
