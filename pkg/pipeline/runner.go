package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanegraph/pkg/cache"
	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
	"github.com/matzehuels/lanegraph/pkg/observability"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // report TTL; DefaultReportTTL when zero
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates desc (unless opts.SkipValidate) and builds it.
//
// With opts.Strict, any diagnostic stops the run before building: the
// returned Result carries the report and the error has code
// [errors.ErrCodeInvalidDescription]. Without Strict, diagnostics are
// logged and building proceeds; the build itself may still fail on a
// dangling neighbour.
func (r *Runner) Execute(ctx context.Context, desc *graph.Description, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no description")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := HashDescription(desc)
	if err != nil {
		return nil, err
	}
	result := &Result{Description: desc, DescriptionHash: hash}
	result.Stats.NodeCount = len(desc.Nodes)

	if !opts.SkipValidate {
		start := time.Now()
		report, hit, err := r.validate(ctx, desc, hash, opts)
		if err != nil {
			return nil, err
		}
		result.Report = report
		result.CacheInfo.ReportHit = hit
		result.Stats.Diagnostics = len(report.Diagnostics)
		result.Stats.ValidateTime = time.Since(start)

		r.Logger.Info("validated description",
			"nodes", len(desc.Nodes),
			"diagnostics", len(report.Diagnostics),
			"cached", hit,
			"duration", result.Stats.ValidateTime)

		if !report.Valid && opts.Strict {
			return result, errors.New(errors.ErrCodeInvalidDescription,
				"description has %d diagnostic(s)", len(report.Diagnostics))
		}
		if !report.Valid {
			r.Logger.Warn("building despite diagnostics", "count", len(report.Diagnostics))
		}
	}

	start := time.Now()
	g, err := r.Build(ctx, desc)
	if err != nil {
		return result, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.LinkCount = g.LinkCount()
	result.Stats.BuildTime = time.Since(start)

	r.Logger.Info("built graph",
		"nodes", len(g),
		"links", result.Stats.LinkCount,
		"duration", result.Stats.BuildTime)

	return result, nil
}

// ValidateWithCacheInfo validates desc, reading and writing the report
// cache, and reports whether the report came from cache.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, desc *graph.Description, opts Options) (*Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := HashDescription(desc)
	if err != nil {
		return nil, false, err
	}
	return r.validate(ctx, desc, hash, opts)
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, desc *graph.Description, opts Options) (*Report, error) {
	report, _, err := r.ValidateWithCacheInfo(ctx, desc, opts)
	return report, err
}

func (r *Runner) validate(ctx context.Context, desc *graph.Description, hash string, opts Options) (*Report, bool, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	nodeCount := 0
	if desc != nil {
		nodeCount = len(desc.Nodes)
	}
	hooks.OnValidateStart(ctx, nodeCount)

	rules := opts.EnabledRules()
	key := r.Keyer.ReportKey(hash, cache.ReportKeyOpts{Rules: rules})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached Report
			if err := json.Unmarshal(data, &cached); err == nil {
				hooks.OnValidateComplete(ctx, len(cached.Diagnostics), true, time.Since(start))
				return &cached, true, nil
			}
			// Unreadable entries fall through and are overwritten.
		} else if err != nil {
			r.Logger.Warn("report cache read failed", "err", err)
		}
	}

	diags := opts.Validator().Check(desc)
	report := &Report{
		Valid:       len(diags) == 0,
		Diagnostics: diags,
		Rules:       rules,
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []graph.Diagnostic{}
	}

	if data, err := json.Marshal(report); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Warn("report cache write failed", "err", err)
		}
	}

	hooks.OnValidateComplete(ctx, len(diags), false, time.Since(start))
	return report, false, nil
}

// Build builds desc without validating it.
func (r *Runner) Build(ctx context.Context, desc *graph.Description) (roadnet.Graph, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	nodeCount := 0
	if desc != nil {
		nodeCount = len(desc.Nodes)
	}
	hooks.OnBuildStart(ctx, nodeCount)

	g, err := graph.Build(desc)
	if err != nil {
		hooks.OnBuildComplete(ctx, nodeCount, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, len(g), g.LinkCount(), time.Since(start), nil)
	return g, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultReportTTL
}

// HashDescription returns the content hash of desc's canonical JSON form.
func HashDescription(desc *graph.Description) (string, error) {
	data, err := json.Marshal(desc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash description")
	}
	return cache.Hash(data), nil
}
