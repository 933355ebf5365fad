// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package nearest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/tomtom215/caremap/internal/models"
)

var origin = models.Coordinate{Longitude: 3.50, Latitude: 43.68}

// fakeRouter answers from a table keyed by destination longitude.
type fakeRouter struct {
	mu        sync.Mutex
	durations map[float64]float64
	fail      map[float64]error
	delay     map[float64]time.Duration
	requested []models.Coordinate
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (f *fakeRouter) Route(ctx context.Context, from, to models.Coordinate) (*models.Route, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.requested = append(f.requested, to)
	d, hasDuration := f.durations[to.Longitude]
	err := f.fail[to.Longitude]
	delay := f.delay[to.Longitude]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	if !hasDuration {
		d = 600
	}
	return &models.Route{
		DistanceMeters:  d * 20,
		DurationSeconds: d,
		Geometry:        geom.NewLineStringFlat(geom.XY, []float64{from.Longitude, from.Latitude, to.Longitude, to.Latitude}),
	}, nil
}

func (f *fakeRouter) requestedLongitudes() map[float64]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[float64]bool, len(f.requested))
	for _, c := range f.requested {
		out[c.Longitude] = true
	}
	return out
}

func doctor(id string, lon, lat float64, profession string) models.ProfessionalRecord {
	return models.ProfessionalRecord{
		ID:       id,
		Location: models.Coordinate{Longitude: lon, Latitude: lat},
		Properties: map[string]interface{}{
			"Profession":           profession,
			"Nom du professionnel": "Dr " + id,
		},
	}
}

// twelveDoctors returns twelve Médecin records at increasing distance east of
// origin, plus one Dentiste right next to it.
func twelveDoctors() []models.ProfessionalRecord {
	records := []models.ProfessionalRecord{doctor("dentist", 3.5001, 43.68, "Dentiste")}
	for i := 12; i >= 1; i-- {
		lon := 3.50 + float64(i)*0.01
		records = append(records, doctor(fmt.Sprintf("m%02d", i), lon, 43.68, "Médecin"))
	}
	return records
}

func lonOf(i int) float64 {
	return 3.50 + float64(i)*0.01
}

func TestFindNearestScenario(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{durations: map[float64]float64{
		lonOf(1):  900,
		lonOf(2):  850,
		lonOf(7):  300, // fastest among the ten nearest
		lonOf(11): 10,  // faster, but outside the ten nearest
		lonOf(12): 5,
	}}
	f := NewFinder(router, Options{})

	best, err := f.FindNearest(context.Background(), origin, "Médecin", twelveDoctors())
	if err != nil {
		t.Fatalf("FindNearest() error = %v", err)
	}

	requested := router.requestedLongitudes()
	if len(requested) != 10 {
		t.Fatalf("routed %d candidates, want 10", len(requested))
	}
	for i := 1; i <= 10; i++ {
		if !requested[lonOf(i)] {
			t.Errorf("candidate %d should have been routed", i)
		}
	}
	if requested[lonOf(11)] || requested[lonOf(12)] {
		t.Error("candidates beyond the ten nearest must not be routed")
	}

	if best.Professional.ID != "m07" {
		t.Errorf("winner = %s, want m07", best.Professional.ID)
	}
	for _, c := range best.Candidates {
		if c.Route != nil && c.Route.DurationSeconds < best.DurationSeconds {
			t.Errorf("candidate %s is faster than the winner", c.Record.ID)
		}
	}
	if best.Routed != 10 || best.Failed != 0 {
		t.Errorf("routed=%d failed=%d", best.Routed, best.Failed)
	}
	if best.Card.Name != "Dr m07" || best.Card.Phone != "Non disponible" {
		t.Errorf("card = %+v", best.Card)
	}
	if best.DistanceKm != 6 || best.DurationMinutes() != 5 {
		t.Errorf("distance=%v km duration=%v min", best.DistanceKm, best.DurationMinutes())
	}
	if best.Bounds.IsEmpty() {
		t.Error("route bounds should be set")
	}
}

func TestFindNearestNoCandidate(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	f := NewFinder(router, Options{})

	_, err := f.FindNearest(context.Background(), origin, "Kiné", twelveDoctors())
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v, want ErrNoCandidate", err)
	}
	if len(router.requestedLongitudes()) != 0 {
		t.Error("no routing requests should be made")
	}

	if _, err := f.FindNearest(context.Background(), origin, "Médecin", nil); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("empty dataset: err = %v", err)
	}
}

func TestFindNearestExactProfessionMatch(t *testing.T) {
	t.Parallel()

	records := []models.ProfessionalRecord{
		doctor("a", 3.51, 43.68, "médecin"),
		doctor("b", 3.52, 43.68, "Médecin "),
	}
	_, err := NewFinder(&fakeRouter{}, Options{}).FindNearest(context.Background(), origin, "Médecin", records)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("matching must be exact, err = %v", err)
	}
}

func TestFindNearestToleratesPartialFailure(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{
		durations: map[float64]float64{lonOf(2): 100, lonOf(3): 200},
		fail: map[float64]error{
			lonOf(1): errors.New("connection reset"),
			lonOf(2): errors.New("502 bad gateway"),
		},
	}
	records := []models.ProfessionalRecord{
		doctor("m1", lonOf(1), 43.68, "Médecin"),
		doctor("m2", lonOf(2), 43.68, "Médecin"),
		doctor("m3", lonOf(3), 43.68, "Médecin"),
	}

	best, err := NewFinder(router, Options{}).FindNearest(context.Background(), origin, "Médecin", records)
	if err != nil {
		t.Fatalf("partial failure should not fail the search: %v", err)
	}
	if best.Professional.ID != "m3" {
		t.Errorf("winner = %s, want m3", best.Professional.ID)
	}
	if best.Routed != 1 || best.Failed != 2 {
		t.Errorf("routed=%d failed=%d", best.Routed, best.Failed)
	}
	if best.Candidates[0].Err == nil || best.Candidates[2].Route == nil {
		t.Error("per-candidate outcomes should be recorded in straight-line order")
	}
}

func TestFindNearestAllFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("service down")
	router := &fakeRouter{fail: map[float64]error{lonOf(1): boom, lonOf(2): boom}}
	records := []models.ProfessionalRecord{
		doctor("m1", lonOf(1), 43.68, "Médecin"),
		doctor("m2", lonOf(2), 43.68, "Médecin"),
	}

	_, err := NewFinder(router, Options{}).FindNearest(context.Background(), origin, "Médecin", records)
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("err = %v, want ErrNoRoute", err)
	}
	if !errors.Is(err, boom) {
		t.Error("underlying failures should be joined into the error")
	}
}

func TestFindNearestPerRequestTimeout(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{
		durations: map[float64]float64{lonOf(1): 50, lonOf(2): 400},
		delay:     map[float64]time.Duration{lonOf(1): 5 * time.Second},
	}
	records := []models.ProfessionalRecord{
		doctor("slow", lonOf(1), 43.68, "Médecin"),
		doctor("fast", lonOf(2), 43.68, "Médecin"),
	}

	start := time.Now()
	best, err := NewFinder(router, Options{RequestTimeout: 50 * time.Millisecond}).
		FindNearest(context.Background(), origin, "Médecin", records)
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("slow candidate was not cut off by the per-request timeout")
	}
	if best.Professional.ID != "fast" || best.Failed != 1 {
		t.Errorf("winner = %s failed = %d", best.Professional.ID, best.Failed)
	}
	if !errors.Is(best.Candidates[0].Err, context.DeadlineExceeded) {
		t.Errorf("slow candidate err = %v", best.Candidates[0].Err)
	}
}

func TestFindNearestTieKeepsStraightLineOrder(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{durations: map[float64]float64{lonOf(1): 300, lonOf(2): 300, lonOf(3): 300}}
	records := []models.ProfessionalRecord{
		doctor("far", lonOf(3), 43.68, "Médecin"),
		doctor("near", lonOf(1), 43.68, "Médecin"),
		doctor("mid", lonOf(2), 43.68, "Médecin"),
	}

	best, err := NewFinder(router, Options{}).FindNearest(context.Background(), origin, "Médecin", records)
	if err != nil {
		t.Fatal(err)
	}
	if best.Professional.ID != "near" {
		t.Errorf("tie winner = %s, want near", best.Professional.ID)
	}
}

func TestFindNearestRespectsConcurrency(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{delay: map[float64]time.Duration{}}
	var records []models.ProfessionalRecord
	for i := 1; i <= 10; i++ {
		router.delay[lonOf(i)] = 20 * time.Millisecond
		records = append(records, doctor(fmt.Sprintf("m%d", i), lonOf(i), 43.68, "Médecin"))
	}

	if _, err := NewFinder(router, Options{Concurrency: 3}).FindNearest(context.Background(), origin, "Médecin", records); err != nil {
		t.Fatal(err)
	}
	if got := router.maxFlight.Load(); got > 3 {
		t.Errorf("max concurrent requests = %d, want <= 3", got)
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	got := Candidates(origin, "Médecin", twelveDoctors(), 3)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	for i, want := range []string{"m01", "m02", "m03"} {
		if got[i].Record.ID != want {
			t.Errorf("candidate[%d] = %s, want %s", i, got[i].Record.ID, want)
		}
	}
	if got[0].GreatCircleKm <= 0 || got[0].GreatCircleKm > got[1].GreatCircleKm {
		t.Errorf("great-circle distances = %v, %v", got[0].GreatCircleKm, got[1].GreatCircleKm)
	}

	if all := Candidates(origin, "Médecin", twelveDoctors(), 0); len(all) != 12 {
		t.Errorf("limit 0 should keep all, got %d", len(all))
	}
}

func TestRoundKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 0},
		{12345.6, 12.35},
		{12344.9, 12.34},
		{999, 1},
		{1006, 1.01},
	}
	for _, tt := range tests {
		if got := RoundKm(tt.meters); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RoundKm(%v) = %v, want %v", tt.meters, got, tt.want)
		}
	}
}

func TestGreatCircleKm(t *testing.T) {
	t.Parallel()

	montpellier := models.Coordinate{Longitude: 3.8767, Latitude: 43.6108}
	sete := models.Coordinate{Longitude: 3.6976, Latitude: 43.4028}
	got := GreatCircleKm(montpellier, sete)
	if got < 26 || got > 29 {
		t.Errorf("Montpellier to Sète = %.2f km, want about 27", got)
	}
	if GreatCircleKm(sete, sete) != 0 {
		t.Error("distance to self should be 0")
	}
}
