// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package validation

// CoordinateRequest is a WGS84 point in a request body. Pointers distinguish
// a missing coordinate from 0.
type CoordinateRequest struct {
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
}

// NearestRequest is the body of a stateless nearest search.
type NearestRequest struct {
	Longitude  *float64 `json:"longitude" validate:"required,longitude"`
	Latitude   *float64 `json:"latitude" validate:"required,latitude"`
	Profession string   `json:"profession" validate:"required,notblank,max=200"`
}

// FilterRequest replaces a session's facet selection. Empty means no filter.
type FilterRequest struct {
	Profession string `json:"profession" validate:"max=200"`
	Commune    string `json:"commune" validate:"max=200"`
}

// ProfessionRequest selects the profession for a session's nearest search.
// An empty profession clears the selection.
type ProfessionRequest struct {
	Profession string `json:"profession" validate:"max=200"`
}

// ProfessionalsQuery is the query string of the professionals listing.
type ProfessionalsQuery struct {
	Profession string `json:"profession" validate:"max=200"`
	Commune    string `json:"commune" validate:"max=200"`
}
