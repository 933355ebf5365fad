// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package geodata fetches and decodes the three GeoJSON datasets behind the map:
// region boundaries (EPCI), professional points and commune outlines.
//
// Regions and professionals are mandatory. They are fetched concurrently and
// joined before anything downstream runs; if either fails the whole load fails
// and no partial result is returned. Communes are decorative: a failed commune
// load is reported in Datasets.CommunesErr and the layer is left empty.
package geodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/caremap/internal/config"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/metrics"
	"github.com/tomtom215/caremap/internal/models"
)

// ErrCommunesDisabled marks a commune layer switched off by configuration.
var ErrCommunesDisabled = errors.New("communes dataset not configured")

// Dataset names used in logs and metrics.
const (
	DatasetRegions       = "regions"
	DatasetProfessionals = "professionals"
	DatasetCommunes      = "communes"
)

// Datasets is the joined result of one load.
type Datasets struct {
	Regions       []models.Region
	Professionals []models.ProfessionalRecord
	Communes      []models.Commune
	// CommunesErr is set when the optional commune layer could not be loaded.
	CommunesErr error
	// Skipped counts features dropped per dataset for unusable geometry.
	Skipped  map[string]int
	LoadedAt time.Time
}

// HasCommunes reports whether the optional commune layer is available.
func (d *Datasets) HasCommunes() bool {
	return d.CommunesErr == nil && d.Communes != nil
}

// Loader loads all datasets in one concurrent pass.
type Loader struct {
	cfg     config.DatasetsConfig
	fetcher *Fetcher
	logger  zerolog.Logger
}

// NewLoader creates a loader. A nil client uses a client without its own
// timeout; the fetch timeout from cfg bounds the whole load instead.
func NewLoader(cfg config.DatasetsConfig, client *http.Client) *Loader {
	return &Loader{
		cfg:     cfg,
		fetcher: NewFetcher(client, cfg.MaxBytes),
		logger:  logging.WithComponent("geodata"),
	}
}

// Load fetches and decodes every dataset. It returns only when all fetches
// have finished or the mandatory ones failed.
func (l *Loader) Load(ctx context.Context) (*Datasets, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	ds := &Datasets{Skipped: make(map[string]int)}
	var regionsSkipped, professionalsSkipped, communesSkipped int

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		regionsSkipped, err = l.loadOne(gctx, DatasetRegions, l.cfg.Regions, true, func(data []byte) (int, int, error) {
			regions, skipped, err := ParseRegions(data, l.cfg.RegionCodeField, l.cfg.RegionNameField)
			ds.Regions = regions
			return len(regions), skipped, err
		})
		return err
	})

	g.Go(func() error {
		var err error
		professionalsSkipped, err = l.loadOne(gctx, DatasetProfessionals, l.cfg.Professionals, true, func(data []byte) (int, int, error) {
			records, skipped, err := ParseProfessionals(data)
			ds.Professionals = records
			return len(records), skipped, err
		})
		return err
	})

	if l.cfg.Communes != "" {
		g.Go(func() error {
			var err error
			communesSkipped, err = l.loadOne(gctx, DatasetCommunes, l.cfg.Communes, false, func(data []byte) (int, int, error) {
				communes, skipped, err := ParseCommunes(data)
				ds.Communes = communes
				return len(communes), skipped, err
			})
			if err != nil {
				ds.Communes = nil
				ds.CommunesErr = err
			}
			// optional layer never fails the join
			return nil
		})
	} else {
		ds.CommunesErr = ErrCommunesDisabled
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.Skipped[DatasetRegions] = regionsSkipped
	ds.Skipped[DatasetProfessionals] = professionalsSkipped
	ds.Skipped[DatasetCommunes] = communesSkipped
	ds.LoadedAt = time.Now()

	l.logger.Info().
		Int("regions", len(ds.Regions)).
		Int("professionals", len(ds.Professionals)).
		Int("communes", len(ds.Communes)).
		Bool("communes_available", ds.HasCommunes()).
		Msg("Datasets loaded")

	return ds, nil
}

// loadOne fetches and parses a single dataset. parse stores the typed result
// and returns the kept and skipped feature counts.
func (l *Loader) loadOne(
	ctx context.Context,
	name, source string,
	required bool,
	parse func([]byte) (int, int, error),
) (int, error) {
	start := time.Now()
	log := l.logger.With().Str("dataset", name).Bool("required", required).Logger()

	data, err := l.fetcher.Fetch(ctx, source)
	if err == nil {
		var kept, skipped int
		if kept, skipped, err = parse(data); err == nil {
			metrics.RecordDatasetLoad(name, required, time.Since(start), kept, skipped, nil)
			if skipped > 0 {
				log.Warn().Int("skipped", skipped).Msg("Features without usable geometry were skipped")
			}
			log.Debug().Int("features", kept).Dur("duration", time.Since(start)).Msg("Dataset parsed")
			return skipped, nil
		}
	}

	metrics.RecordDatasetLoad(name, required, time.Since(start), 0, 0, err)
	err = fmt.Errorf("load %s dataset: %w", name, err)
	if required {
		log.Error().Err(err).Msg("Mandatory dataset failed to load")
	} else {
		log.Warn().Err(err).Msg("Optional dataset unavailable, continuing without it")
	}
	return 0, err
}
