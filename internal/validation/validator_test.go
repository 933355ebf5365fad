// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package validation

import (
	"strings"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestNearestRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       NearestRequest
		wantField string
		wantTag   string
	}{
		{"valid", NearestRequest{Longitude: ptr(3.5), Latitude: ptr(43.68), Profession: "Médecin"}, "", ""},
		{"zero coordinates are valid", NearestRequest{Longitude: ptr(0), Latitude: ptr(0), Profession: "Médecin"}, "", ""},
		{"missing longitude", NearestRequest{Latitude: ptr(43.68), Profession: "Médecin"}, "longitude", "required"},
		{"latitude out of range", NearestRequest{Longitude: ptr(3.5), Latitude: ptr(91), Profession: "Médecin"}, "latitude", "latitude"},
		{"longitude out of range", NearestRequest{Longitude: ptr(-181), Latitude: ptr(43), Profession: "Médecin"}, "longitude", "longitude"},
		{"missing profession", NearestRequest{Longitude: ptr(3.5), Latitude: ptr(43.68)}, "profession", "required"},
		{"blank profession", NearestRequest{Longitude: ptr(3.5), Latitude: ptr(43.68), Profession: "   "}, "profession", "notblank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestFilterRequestMaxLength(t *testing.T) {
	req := FilterRequest{Commune: strings.Repeat("x", 201)}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected max length error")
	}
	if msg := verr.Error(); msg != "commune must be at most 200 characters" {
		t.Errorf("message = %q", msg)
	}

	if verr := ValidateStruct(&FilterRequest{}); verr != nil {
		t.Errorf("empty filter is valid: %v", verr)
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&CoordinateRequest{Longitude: ptr(3.5)})
	if single == nil {
		t.Fatal("expected error")
	}
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Details["field"] != "latitude" {
		t.Errorf("single = %+v", apiErr)
	}
	if apiErr.Message != "latitude is required" {
		t.Errorf("message = %q", apiErr.Message)
	}

	multi := ValidateStruct(&CoordinateRequest{})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("multi details = %+v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "longitude: longitude is required") {
		t.Errorf("multi message = %q", apiErr.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty = %+v", empty)
	}
}

func TestValidateStructNonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil || verr.Errors()[0].Field() != "unknown" {
		t.Errorf("ValidateStruct(string) = %v", verr)
	}
}
