// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/caremap/internal/facet"
	"github.com/tomtom215/caremap/internal/models"
)

var montpellier = models.Coordinate{Longitude: 3.8767, Latitude: 43.6108}

func TestPlacementStateMachine(t *testing.T) {
	t.Parallel()

	s := newSession("s1")
	if s.View().Mode != Idle {
		t.Fatal("new session should be idle")
	}
	if s.SetOrigin(montpellier) {
		t.Error("origin must be ignored while idle")
	}
	if s.View().Origin != nil {
		t.Error("origin should still be unset")
	}

	if s.ToggleArm() != Armed {
		t.Fatal("toggle should arm")
	}
	if !s.SetOrigin(montpellier) {
		t.Error("origin should apply while armed")
	}
	second := models.Coordinate{Longitude: 3.7, Latitude: 43.4}
	if !s.SetOrigin(second) {
		t.Error("subsequent clicks keep overwriting while armed")
	}
	if v := s.View(); v.Mode != Armed || *v.Origin != second {
		t.Errorf("view = %+v", v)
	}

	if s.ToggleArm() != Idle {
		t.Fatal("toggle should disarm")
	}
	if s.SetOrigin(montpellier) {
		t.Error("origin must be ignored after disarming")
	}
	if *s.View().Origin != second {
		t.Error("origin should be kept after disarming")
	}
}

func TestExecuteGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		origin     bool
		profession string
		armed      bool
		want       bool
	}{
		{"nothing set", false, "", false, false},
		{"origin only", true, "", false, false},
		{"profession only", false, "Médecin", false, false},
		{"all set but armed", true, "Médecin", true, false},
		{"open", true, "Médecin", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("gate")
			if tt.origin {
				s.ToggleArm()
				s.SetOrigin(montpellier)
				s.ToggleArm()
			}
			s.SetProfession(tt.profession)
			if tt.armed {
				s.ToggleArm()
			}
			if got := s.CanExecute(); got != tt.want {
				t.Errorf("CanExecute() = %v, want %v", got, tt.want)
			}
			if got := s.View().CanExecute; got != tt.want {
				t.Errorf("View().CanExecute = %v, want %v", got, tt.want)
			}
		})
	}
}

func readySession() *Session {
	s := newSession("ready")
	s.ToggleArm()
	s.SetOrigin(montpellier)
	s.ToggleArm()
	s.SetProfession("Médecin")
	return s
}

func TestExecuteBlocked(t *testing.T) {
	t.Parallel()

	s := newSession("blocked")
	called := false
	_, err := s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, ErrExecuteBlocked) {
		t.Errorf("err = %v, want ErrExecuteBlocked", err)
	}
	if called {
		t.Error("search must not run while the gate is closed")
	}
}

func TestExecuteRunsSearch(t *testing.T) {
	t.Parallel()

	s := readySession()
	want := &models.BestRoute{DurationSeconds: 300}

	got, err := s.Execute(context.Background(), func(_ context.Context, o models.Coordinate, p string) (*models.BestRoute, error) {
		if o != montpellier || p != "Médecin" {
			t.Errorf("search called with %v %q", o, p)
		}
		if !s.View().Busy {
			t.Error("session should be busy during the search")
		}
		return want, nil
	})
	if err != nil || got != want {
		t.Fatalf("Execute() = %v, %v", got, err)
	}
	v := s.View()
	if v.Busy {
		t.Error("busy flag should be cleared")
	}
	if v.LastResult != want || v.LastError != nil {
		t.Errorf("last result not recorded: %+v", v)
	}
}

func TestExecuteReleasesBusyOnError(t *testing.T) {
	t.Parallel()

	s := readySession()
	boom := errors.New("routing down")
	if _, err := s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if s.View().Busy {
		t.Error("busy flag must be cleared after a failure")
	}
	if !errors.Is(s.View().LastError, boom) {
		t.Error("last error should be recorded")
	}
}

func TestExecuteReleasesBusyOnPanic(t *testing.T) {
	t.Parallel()

	s := readySession()
	func() {
		defer func() { _ = recover() }()
		_, _ = s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
			panic("boom")
		})
	}()
	if s.View().Busy {
		t.Error("busy flag must be cleared after a panic")
	}
}

func TestExecuteConcurrentIsBusy(t *testing.T) {
	t.Parallel()

	s := readySession()
	started := make(chan struct{})
	finish := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
			close(started)
			<-finish
			return &models.BestRoute{}, nil
		})
	}()

	<-started
	_, err := s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
		t.Error("second search must not run")
		return nil, nil
	})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}
	close(finish)
	wg.Wait()

	if _, err := s.Execute(context.Background(), func(context.Context, models.Coordinate, string) (*models.BestRoute, error) {
		return &models.BestRoute{}, nil
	}); err != nil {
		t.Errorf("search after release: %v", err)
	}
}

func TestFilterReset(t *testing.T) {
	t.Parallel()

	s := newSession("f")
	s.SetFilter(facet.Selection{Profession: "Médecin", Commune: "Sète"})
	if s.Filter().Commune != "Sète" {
		t.Fatal("filter not stored")
	}
	s.ResetFilter()
	if !s.Filter().IsEmpty() {
		t.Errorf("filter after reset = %+v", s.Filter())
	}
}

func TestModeMarshalText(t *testing.T) {
	t.Parallel()

	for mode, want := range map[Mode]string{Idle: "idle", Armed: "armed"} {
		b, err := mode.MarshalText()
		if err != nil || string(b) != want {
			t.Errorf("MarshalText(%d) = %q, %v", mode, b, err)
		}
		var back Mode
		if err := back.UnmarshalText(b); err != nil || back != mode {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, back, err)
		}
	}
	var m Mode
	if err := m.UnmarshalText([]byte("placing")); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestStore(t *testing.T) {
	t.Parallel()

	st := NewStore(time.Minute)
	defer st.Close()

	s := st.Create()
	if s.ID() == "" {
		t.Fatal("session id should be set")
	}
	got, err := st.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d", st.Len())
	}

	if !st.Delete(s.ID()) {
		t.Error("Delete() should report an existing session")
	}
	if st.Delete(s.ID()) {
		t.Error("second Delete() should report false")
	}
	if _, err := st.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v", err)
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	st := NewStore(30 * time.Millisecond)
	defer st.Close()

	s := st.Create()
	time.Sleep(60 * time.Millisecond)
	if _, err := st.Get(s.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session: err = %v", err)
	}
}
