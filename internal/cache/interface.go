// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package cache

import "time"

// Cacher is the in-memory cache contract consumed by routing and sessions.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
	GetStats() Stats
	HitRate() float64
}

var _ Cacher = (*Cache)(nil)
