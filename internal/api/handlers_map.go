// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/caremap/internal/catalog"
	"github.com/tomtom215/caremap/internal/facet"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/models"
	"github.com/tomtom215/caremap/internal/validation"
)

// Regions serves the region boundary layer.
//
// @Summary Region boundaries
// @Description EPCI boundary layer as GeoJSON, revalidated with ETag
// @Tags Map
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 304 "Not modified"
// @Failure 503 {object} APIResponse "Datasets not loaded"
// @Router /regions [get]
func (h *Handler) Regions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	WriteGeoJSON(w, r, snap.RegionsGeoJSON)
}

// RegionAggregates serves one point per region carrying the professional count.
//
// @Summary Region aggregates
// @Description One point per region at its centroid carrying the professional count
// @Tags Map
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 503 {object} APIResponse "Datasets not loaded"
// @Router /regions/aggregates [get]
func (h *Handler) RegionAggregates(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	WriteGeoJSON(w, r, snap.AggregatesGeoJSON)
}

// RegionDetail is the body of GET /regions/{code}.
type RegionDetail struct {
	models.RegionAggregate
	Bounds     models.BBox            `json:"bounds"`
	Corners    [2][2]float64          `json:"corners"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Region returns one region's aggregate and the bounds to zoom to.
//
// @Summary Region detail
// @Description Aggregate and bounds of one region for zoom-to-region
// @Tags Map
// @Produce json
// @Param code path string true "Region code"
// @Success 200 {object} APIResponse{data=RegionDetail}
// @Failure 404 {object} APIResponse "Unknown region"
// @Router /regions/{code} [get]
func (h *Handler) Region(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	region, agg, found := snap.Region(code)
	if !found {
		NewResponseWriter(w, r).NotFound("region not found: " + sanitizeLogValue(code))
		return
	}
	NewResponseWriter(w, r).Success(RegionDetail{
		RegionAggregate: agg,
		Bounds:          region.Bounds,
		Corners:         region.Bounds.Corners(),
		Properties:      region.Properties,
	})
}

// Communes serves the optional commune layer, or 404 when it is unavailable.
//
// @Summary Commune boundaries
// @Description Optional commune layer as GeoJSON
// @Tags Map
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 404 {object} APIResponse "Layer unavailable"
// @Router /communes [get]
func (h *Handler) Communes(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	if !snap.CommunesAvailable {
		NewResponseWriter(w, r).NotFound("commune layer is not available")
		return
	}
	WriteGeoJSON(w, r, snap.CommunesGeoJSON)
}

// FilteredProfessionals is the response of a facet filter: the matching
// points as GeoJSON plus the view hint.
type FilteredProfessionals struct {
	Filter facet.Selection `json:"filter"`
	Count  int             `json:"count"`
	Total  int             `json:"total"`
	// Recenter is true when the client should fit the map to Bounds.
	Recenter bool            `json:"recenter"`
	Bounds   *models.BBox    `json:"bounds,omitempty"`
	GeoJSON  json.RawMessage `json:"geojson,omitempty"`
}

func filterProfessionals(snap *catalog.Snapshot, sel facet.Selection, withFeatures bool) (*FilteredProfessionals, error) {
	filtered := snap.Filter(sel)
	out := &FilteredProfessionals{
		Filter: sel,
		Count:  len(filtered),
		Total:  len(snap.Professionals),
	}
	if b, ok := facet.Recenter(filtered, sel); ok {
		out.Recenter = true
		out.Bounds = &b
	}
	if withFeatures {
		body, err := catalog.EncodeProfessionals(filtered)
		if err != nil {
			return nil, err
		}
		out.GeoJSON = body
	}
	return out, nil
}

// Professionals returns the professionals matching ?profession=&commune=.
// A missing or empty parameter means no filter on that facet.
//
// @Summary Filter professionals
// @Description Professionals matching the profession and commune facets
// @Tags Map
// @Produce json
// @Param profession query string false "Profession facet"
// @Param commune query string false "Commune facet"
// @Success 200 {object} APIResponse{data=FilteredProfessionals}
// @Failure 400 {object} APIResponse "Invalid parameters"
// @Router /professionals [get]
func (h *Handler) Professionals(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := validation.ProfessionalsQuery{
		Profession: r.URL.Query().Get("profession"),
		Commune:    r.URL.Query().Get("commune"),
	}
	if !validateRequest(rw, &q) {
		return
	}
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeFiltered(rw, snap, facet.Selection{Profession: q.Profession, Commune: q.Commune})
}

func (h *Handler) writeFiltered(rw *ResponseWriter, snap *catalog.Snapshot, sel facet.Selection) {
	out, err := filterProfessionals(snap, sel, true)
	if err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode professionals")
		rw.InternalError("failed to encode professionals")
		return
	}
	rw.Success(out)
}

// Facets returns the sorted distinct profession and commune values.
//
// @Summary Facet options
// @Description Sorted distinct profession and commune values
// @Tags Map
// @Produce json
// @Success 200 {object} APIResponse{data=facet.Options}
// @Router /facets [get]
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	NewResponseWriter(w, r).Success(snap.Options)
}

// MapView is the initial view and the extent restored on reset.
type MapView struct {
	Center        models.Coordinate `json:"center"`
	Zoom          float64           `json:"zoom"`
	RegionBounds  *models.BBox      `json:"region_bounds,omitempty"`
	RegionCorners *[2][2]float64    `json:"region_corners,omitempty"`
}

// View returns the configured map center and zoom. Region bounds are
// included once the datasets are loaded.
//
// @Summary Default map view
// @Description Configured center and zoom plus the region extent used on reset
// @Tags Map
// @Produce json
// @Success 200 {object} APIResponse{data=MapView}
// @Router /view [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	v := MapView{
		Center: models.Coordinate{Longitude: h.mapView.CenterLongitude, Latitude: h.mapView.CenterLatitude},
		Zoom:   h.mapView.Zoom,
	}
	if snap, err := h.catalog.Get(); err == nil && !snap.RegionBounds.IsEmpty() {
		b := snap.RegionBounds
		c := b.Corners()
		v.RegionBounds, v.RegionCorners = &b, &c
	}
	NewResponseWriter(w, r).Success(v)
}
