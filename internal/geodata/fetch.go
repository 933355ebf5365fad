// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package geodata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrTooLarge is returned when a dataset exceeds the configured size cap.
var ErrTooLarge = errors.New("dataset exceeds size limit")

// Fetcher reads raw dataset bytes from an http(s) URL or the local filesystem.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch returns the body found at source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return f.fetchHTTP(ctx, source)
	case strings.HasPrefix(source, "file://"):
		return f.readFile(strings.TrimPrefix(source, "file://"))
	default:
		return f.readFile(source)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

// readBodyForError reads at most 1KB of an error body for diagnostics.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil {
		return "(failed to read body)"
	}
	return strings.TrimSpace(string(body))
}
