// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package facet filters professional records by profession and commune.
package facet

import (
	"sort"

	"github.com/tomtom215/caremap/internal/fields"
	"github.com/tomtom215/caremap/internal/models"
)

// Selection is the active filter. An empty facet means "no filter".
type Selection struct {
	Profession string `json:"profession"`
	Commune    string `json:"commune"`
}

// IsEmpty reports whether neither facet is set.
func (s Selection) IsEmpty() bool {
	return s.Profession == "" && s.Commune == ""
}

// Matches reports whether the record passes both facets. Comparison is an
// exact string match on the resolved value.
func (s Selection) Matches(r *models.ProfessionalRecord) bool {
	if s.Profession != "" && r.Field(fields.Profession) != s.Profession {
		return false
	}
	if s.Commune != "" && r.Field(fields.Commune) != s.Commune {
		return false
	}
	return true
}

// Filter returns the records matching sel, in their original order.
func Filter(records []models.ProfessionalRecord, sel Selection) []models.ProfessionalRecord {
	if sel.IsEmpty() {
		out := make([]models.ProfessionalRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]models.ProfessionalRecord, 0)
	for i := range records {
		if sel.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Options are the distinct non-empty facet values, sorted.
type Options struct {
	Professions []string `json:"professions"`
	Communes    []string `json:"communes"`
}

// BuildOptions collects the distinct professions and communes present in records.
func BuildOptions(records []models.ProfessionalRecord) Options {
	professions := make(map[string]struct{})
	communes := make(map[string]struct{})
	for i := range records {
		if p := records[i].Field(fields.Profession); p != "" {
			professions[p] = struct{}{}
		}
		if c := records[i].Field(fields.Commune); c != "" {
			communes[c] = struct{}{}
		}
	}
	return Options{
		Professions: sortedKeys(professions),
		Communes:    sortedKeys(communes),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Recenter returns the bounds of the filtered records when a commune is
// selected and at least one record matched. Otherwise the view is left alone.
func Recenter(filtered []models.ProfessionalRecord, sel Selection) (models.BBox, bool) {
	if sel.Commune == "" || len(filtered) == 0 {
		return models.BBox{}, false
	}
	var b models.BBox
	for i := range filtered {
		b = b.Extend(filtered[i].Location)
	}
	return b, true
}
