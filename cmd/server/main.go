// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package main is the entry point for the caremap server.
//
// Caremap serves an interactive map of healthcare professionals: EPCI
// boundaries with per-region counts, a profession/commune facet filter, and a
// nearest-professional search ranked by driving time from an OSRM-compatible
// routing service.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, .env, then environment (koanf v2)
//  2. Logging: zerolog, with suture events bridged through slog
//  3. Routing: OSRM client behind a circuit breaker and response cache
//  4. Supervisor tree: the dataset loader (data layer) and the HTTP server (api layer)
//
// The HTTP server starts immediately. Dataset endpoints answer 503 and
// /api/v1/health/ready reports the last load error until the three GeoJSON
// datasets have been fetched, aggregated and published.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
// to the configured timeout, then the routing cache and session store close.
//
// # Example Usage
//
//	export REGIONS_URL=https://example.org/epci.geojson
//	export PROFESSIONALS_URL=./data/professionnels.geojson
//	export COMMUNES_URL=./data/communes.geojson
//	export ROUTING_URL=https://router.project-osrm.org
//	./caremap
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/caremap/internal/api"
	"github.com/tomtom215/caremap/internal/catalog"
	"github.com/tomtom215/caremap/internal/config"
	"github.com/tomtom215/caremap/internal/geodata"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/nearest"
	"github.com/tomtom215/caremap/internal/routing"
	"github.com/tomtom215/caremap/internal/session"
	"github.com/tomtom215/caremap/internal/supervisor"
	"github.com/tomtom215/caremap/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title Caremap API
// @version 1.0
// @description Healthcare professional locator: region aggregates, facet filtering and nearest search by driving time.
// @license.name AGPL-3.0-or-later
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("routing_url", cfg.Routing.BaseURL).
		Str("routing_cache", cfg.Routing.CacheBackend).
		Bool("communes_enabled", cfg.Datasets.Communes != "").
		Msg("Starting caremap")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	routingClient := &http.Client{Timeout: cfg.Routing.Timeout + 5*time.Second}
	routingSvc, err := routing.New(ctx, cfg.Routing, routingClient)
	if err != nil {
		return fmt.Errorf("init routing: %w", err)
	}
	defer func() {
		if err := routingSvc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing routing cache")
		}
	}()

	finder := nearest.NewFinder(routingSvc, nearest.Options{
		MaxCandidates:  cfg.Routing.MaxCandidates,
		Concurrency:    cfg.Routing.Concurrency,
		RequestTimeout: cfg.Routing.Timeout,
	})

	sessions := session.NewStore(cfg.Session.TTL)
	defer sessions.Close()

	holder := catalog.NewHolder()
	loader := geodata.NewLoader(cfg.Datasets, &http.Client{Timeout: cfg.Datasets.FetchTimeout})
	catalogOpts := catalog.Options{
		CodeField: cfg.Datasets.RegionCodeField,
		NameField: cfg.Datasets.RegionNameField,
	}
	build := func(ds *geodata.Datasets) (*catalog.Snapshot, error) {
		return catalog.Build(ds, catalogOpts)
	}

	handler := api.NewHandler(holder, finder, sessions, cfg.Map,
		api.WithBreaker(routingSvc.Breaker),
		api.WithVersion(version),
	)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// nearest searches wait on several routing requests
		WriteTimeout: cfg.Server.Timeout + cfg.Routing.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewDatasetService(loader, build, holder))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	treeErr := waitForTree(tree.ServeBackground(ctx))

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return treeErr
}

// waitForTree blocks until the supervisor tree stops. ServeBackground sends
// exactly one value and never closes the channel.
func waitForTree(errCh <-chan error) error {
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
