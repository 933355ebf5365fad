// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/caremap/internal/catalog"
	"github.com/tomtom215/caremap/internal/geodata"
	"github.com/tomtom215/caremap/internal/logging"
)

// DatasetLoader fetches and parses the GeoJSON datasets.
type DatasetLoader interface {
	Load(ctx context.Context) (*geodata.Datasets, error)
}

// BuildFunc derives the serving snapshot from loaded datasets.
type BuildFunc func(ds *geodata.Datasets) (*catalog.Snapshot, error)

// DefaultRetryDelay is the pause after a failed load before the service
// returns control to the supervisor.
const DefaultRetryDelay = 5 * time.Second

// DatasetService loads the datasets once and publishes the catalog.
//
// A failed attempt is recorded on the holder, so readiness reports it, and
// returned to the supervisor, which restarts the service. After a successful
// publish the service returns suture.ErrDoNotRestart.
type DatasetService struct {
	loader     DatasetLoader
	build      BuildFunc
	holder     *catalog.Holder
	retryDelay time.Duration
	name       string
}

// NewDatasetService creates the dataset service.
func NewDatasetService(loader DatasetLoader, build BuildFunc, holder *catalog.Holder) *DatasetService {
	return &DatasetService{
		loader:     loader,
		build:      build,
		holder:     holder,
		retryDelay: DefaultRetryDelay,
		name:       "dataset-loader",
	}
}

// WithRetryDelay overrides the pause after a failed load.
func (s *DatasetService) WithRetryDelay(d time.Duration) *DatasetService {
	s.retryDelay = d
	return s
}

// Serve implements suture.Service.
func (s *DatasetService) Serve(ctx context.Context) error {
	log := logging.WithComponent(s.name)

	snap, err := s.loadOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.holder.SetFailed(err)
		log.Error().Err(err).Int("attempt", s.holder.Status().Attempts).Msg("Dataset load failed")

		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		return err
	}

	s.holder.Publish(snap)
	log.Info().
		Int("regions", len(snap.Regions)).
		Int("professionals", len(snap.Professionals)).
		Int("communes", len(snap.Communes)).
		Bool("communes_available", snap.CommunesAvailable).
		Msg("Catalog published")
	return suture.ErrDoNotRestart
}

func (s *DatasetService) loadOnce(ctx context.Context) (*catalog.Snapshot, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	snap, err := s.build(ds)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return snap, nil
}

func (s *DatasetService) String() string {
	return s.name
}
