// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package geodata

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/caremap/internal/models"
)

// rawCollection is decoded by hand instead of through geojson.FeatureCollection
// so that numeric feature ids and null geometries are accepted.
type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	ID         json.RawMessage        `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *geojson.Geometry      `json:"geometry"`
}

func decodeCollection(data []byte) (*rawCollection, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	return &fc, nil
}

func (f *rawFeature) decodeGeometry() (geom.T, error) {
	if f.Geometry == nil || f.Geometry.Type == "" {
		return nil, nil
	}
	return f.Geometry.Decode()
}

// featureID returns the feature id as a string, or fallback when absent.
func (f *rawFeature) featureID(fallback string) string {
	raw := bytes.TrimSpace(f.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ParseRegions decodes region boundaries. Features without a polygonal
// geometry are skipped and counted.
func ParseRegions(data []byte, codeField, nameField string) ([]models.Region, int, error) {
	fc, err := decodeCollection(data)
	if err != nil {
		return nil, 0, err
	}

	regions := make([]models.Region, 0, len(fc.Features))
	skipped := 0
	for i := range fc.Features {
		f := &fc.Features[i]
		g, err := f.decodeGeometry()
		if err != nil {
			skipped++
			continue
		}
		mp, ok := toMultiPolygon(g)
		if !ok {
			skipped++
			continue
		}

		code := propString(f.Properties, codeField)
		if code == "" {
			code = f.featureID(strconv.Itoa(i))
		}
		regions = append(regions, models.Region{
			Code:       code,
			Name:       propString(f.Properties, nameField),
			Geometry:   mp,
			Bounds:     models.BBoxFromBounds(mp.Bounds()),
			Properties: f.Properties,
		})
	}
	return regions, skipped, nil
}

// ParseProfessionals decodes professional records. Only Point geometries are
// kept; everything else is skipped and counted.
func ParseProfessionals(data []byte) ([]models.ProfessionalRecord, int, error) {
	fc, err := decodeCollection(data)
	if err != nil {
		return nil, 0, err
	}

	records := make([]models.ProfessionalRecord, 0, len(fc.Features))
	skipped := 0
	for i := range fc.Features {
		f := &fc.Features[i]
		g, err := f.decodeGeometry()
		if err != nil {
			skipped++
			continue
		}
		pt, ok := g.(*geom.Point)
		if !ok || pt == nil || len(pt.FlatCoords()) < 2 {
			skipped++
			continue
		}
		records = append(records, models.ProfessionalRecord{
			ID:         f.featureID(strconv.Itoa(i)),
			Location:   models.Coordinate{Longitude: pt.X(), Latitude: pt.Y()},
			Properties: f.Properties,
		})
	}
	return records, skipped, nil
}

// ParseCommunes decodes the decorative commune outlines. Any geometry type is kept.
func ParseCommunes(data []byte) ([]models.Commune, int, error) {
	fc, err := decodeCollection(data)
	if err != nil {
		return nil, 0, err
	}

	communes := make([]models.Commune, 0, len(fc.Features))
	skipped := 0
	for i := range fc.Features {
		f := &fc.Features[i]
		g, err := f.decodeGeometry()
		if err != nil || g == nil {
			skipped++
			continue
		}
		communes = append(communes, models.Commune{
			ID:         f.featureID(strconv.Itoa(i)),
			Geometry:   g,
			Properties: f.Properties,
		})
	}
	return communes, skipped, nil
}

func toMultiPolygon(g geom.T) (*geom.MultiPolygon, bool) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		if t == nil || t.NumPolygons() == 0 {
			return nil, false
		}
		return t, true
	case *geom.Polygon:
		if t == nil || t.NumLinearRings() == 0 {
			return nil, false
		}
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil, false
		}
		return mp, true
	default:
		return nil, false
	}
}

func propString(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
