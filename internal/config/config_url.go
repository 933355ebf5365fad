// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateHTTPURL checks for an http(s) base URL with a host and no query.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// validateDatasetSource accepts an http(s) URL, a file:// URL or a plain path.
// Dataset URLs may carry paths and queries, unlike service base URLs.
func validateDatasetSource(source, fieldName string) error {
	if !strings.Contains(source, "://") {
		return nil
	}
	parsedURL, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	switch parsedURL.Scheme {
	case "http", "https":
		if parsedURL.Host == "" {
			return fmt.Errorf("%s host is required", fieldName)
		}
	case "file":
		if parsedURL.Path == "" {
			return fmt.Errorf("%s file path is required", fieldName)
		}
	default:
		return fmt.Errorf("%s scheme must be http, https or file, got: %s", fieldName, parsedURL.Scheme)
	}
	return nil
}
