// Package cache stores serialized results (validation reports) keyed by a
// content hash of the input description.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer], so the key scheme stays in one place:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ReportKey(cache.Hash(raw), cache.ReportKeyOpts{Rules: []string{"symmetry"}})
package cache

import (
	"context"
	"sort"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer generates cache keys.
type Keyer interface {
	// ReportKey keys a validation report by description hash and the
	// options that influence it.
	ReportKey(descHash string, opts ReportKeyOpts) string
}

// ReportKeyOpts holds everything besides the description that changes a
// validation report.
type ReportKeyOpts struct {
	Rules []string `json:"rules"` // enabled rule names
}

// DefaultKeyer is the standard key scheme: "report:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey hashes descHash together with the sorted rule names, so rule
// order never changes the key.
func (DefaultKeyer) ReportKey(descHash string, opts ReportKeyOpts) string {
	rules := append([]string(nil), opts.Rules...)
	sort.Strings(rules)
	return hashKey("report", descHash, rules)
}
