// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package facet

import (
	"reflect"
	"testing"

	"github.com/tomtom215/caremap/internal/models"
)

func record(id, profession, commune string, lon, lat float64) models.ProfessionalRecord {
	props := map[string]interface{}{}
	if profession != "" {
		props["Profession"] = profession
	}
	if commune != "" {
		props["Commune"] = commune
	}
	return models.ProfessionalRecord{
		ID:         id,
		Location:   models.Coordinate{Longitude: lon, Latitude: lat},
		Properties: props,
	}
}

func ids(records []models.ProfessionalRecord) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].ID
	}
	return out
}

func sample() []models.ProfessionalRecord {
	return []models.ProfessionalRecord{
		record("1", "Dentiste", "A", 3.1, 43.1),
		record("2", "Médecin", "B", 3.2, 43.2),
		record("3", "Médecin", "A", 3.3, 43.3),
		{ID: "4", Properties: map[string]interface{}{"profession": "Médecin", "commune": "B"}},
		record("5", "médecin", "B", 3.5, 43.5),
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"no filter keeps all in order", Selection{}, []string{"1", "2", "3", "4", "5"}},
		{"profession only", Selection{Profession: "Médecin"}, []string{"2", "3", "4"}},
		{"commune only", Selection{Commune: "A"}, []string{"1", "3"}},
		{"both", Selection{Profession: "Médecin", Commune: "B"}, []string{"2", "4"}},
		{"case sensitive", Selection{Profession: "médecin"}, []string{"5"}},
		{"no match", Selection{Profession: "Kiné"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sample(), tt.sel))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%+v) = %v, want %v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestFilterScenario(t *testing.T) {
	t.Parallel()

	points := []models.ProfessionalRecord{
		record("a", "Dentiste", "A", 0, 0),
		record("b", "Médecin", "B", 0, 0),
	}
	got := Filter(points, Selection{Profession: "Médecin"})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Filter = %v, want only the second record", ids(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	t.Parallel()

	sel := Selection{Profession: "Médecin", Commune: "B"}
	once := Filter(sample(), sel)
	twice := Filter(once, sel)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Errorf("filter is not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	in := sample()
	out := Filter(in, Selection{})
	out[0].ID = "changed"
	if in[0].ID != "1" {
		t.Error("unfiltered result must not share the input backing array")
	}
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	records := append(sample(), record("6", "  ", "", 0, 0))
	got := BuildOptions(records)

	wantProfessions := []string{"Dentiste", "Médecin", "médecin"}
	wantCommunes := []string{"A", "B"}
	if !reflect.DeepEqual(got.Professions, wantProfessions) {
		t.Errorf("Professions = %v, want %v", got.Professions, wantProfessions)
	}
	if !reflect.DeepEqual(got.Communes, wantCommunes) {
		t.Errorf("Communes = %v, want %v", got.Communes, wantCommunes)
	}

	empty := BuildOptions(nil)
	if empty.Professions == nil || len(empty.Professions) != 0 {
		t.Errorf("empty options should be non-nil and empty, got %#v", empty.Professions)
	}
}

func TestRecenter(t *testing.T) {
	t.Parallel()

	filtered := Filter(sample(), Selection{Commune: "A"})
	b, ok := Recenter(filtered, Selection{Commune: "A"})
	if !ok {
		t.Fatal("commune selection with results should recenter")
	}
	if b != models.NewBBox(3.1, 43.1, 3.3, 43.3) {
		t.Errorf("bounds = %+v", b)
	}

	if _, ok := Recenter(filtered, Selection{Profession: "Dentiste"}); ok {
		t.Error("profession-only selection must not recenter")
	}
	if _, ok := Recenter(nil, Selection{Commune: "Z"}); ok {
		t.Error("empty result must not recenter")
	}
}
