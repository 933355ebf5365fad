// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/caremap/internal/catalog"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/validation"
)

// maxBodyBytes caps request bodies. Every body this API accepts is a few
// short fields.
const maxBodyBytes = 64 << 10

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeAndValidate reads a JSON body into v and validates it. On failure it
// writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	rw := NewResponseWriter(w, r)

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			rw.BadRequest("request body is empty")
		default:
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				rw.BadRequest("request body too large")
				return false
			}
			rw.BadRequest("invalid JSON body: " + sanitizeLogValue(err.Error()))
		}
		return false
	}
	return validateRequest(rw, v)
}

// validateRequest writes a VALIDATION_ERROR response when v fails validation.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
	return false
}

// snapshot returns the current catalog or writes 503 while it is not loaded.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*catalog.Snapshot, bool) {
	snap, err := h.catalog.Get()
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Catalog requested before load")
		NewResponseWriter(w, r).ServiceUnavailable("datasets are not loaded yet")
		return nil, false
	}
	return snap, true
}
