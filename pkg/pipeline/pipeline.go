// Package pipeline runs the validate → build sequence shared by the CLI and
// the HTTP service.
//
// Validation reports are cached by description hash and rule set, so
// re-checking an unchanged file is a cache read. Building is never cached:
// a built graph is a web of pointers and cheap to rebuild.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, desc, pipeline.Options{Strict: true})
//	if errors.Is(err, errors.ErrCodeInvalidDescription) {
//	    for _, d := range result.Report.Diagnostics {
//	        fmt.Println(d)
//	    }
//	}
//
// Run individual stages:
//
//	report, err := runner.Validate(ctx, desc, opts)
//	g, err := runner.Build(ctx, desc)
package pipeline

import (
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
	"github.com/matzehuels/lanegraph/pkg/roadnet"
)

// DefaultReportTTL is how long a cached validation report stays valid.
const DefaultReportTTL = 7 * 24 * time.Hour

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It is the JSON body accepted by the
// HTTP service next to the description.
type Options struct {
	// Rules overrides rule enablement by name, e.g. {"type_degree": true}.
	// Unnamed rules keep their defaults.
	Rules map[string]bool `json:"rules,omitempty"`

	// Strict makes any diagnostic fatal in Execute.
	Strict bool `json:"strict,omitempty"`

	// SkipValidate builds without validating.
	SkipValidate bool `json:"skip_validate,omitempty"`

	// Refresh ignores cached reports (they are still rewritten).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	rules     map[graph.Rule]bool
	validated bool
}

// ValidateAndSetDefaults resolves rule names and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.rules = make(map[graph.Rule]bool, len(o.Rules))
	for name, on := range o.Rules {
		r, err := graph.ParseRule(name)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "rules")
		}
		o.rules[r] = on
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Validator returns a validator with the configured rule overrides.
// Call ValidateAndSetDefaults first.
func (o *Options) Validator() *graph.Validator {
	return graph.NewValidator(graph.WithRules(o.rules))
}

// EnabledRules returns the names of the enabled rules in evaluation order.
func (o *Options) EnabledRules() []string {
	var names []string
	for _, r := range o.Validator().EnabledRules() {
		names = append(names, r.String())
	}
	return names
}

// SetRule enables or disables a rule by value.
func (o *Options) SetRule(r graph.Rule, enabled bool) {
	if o.Rules == nil {
		o.Rules = make(map[string]bool)
	}
	o.Rules[r.String()] = enabled
	o.validated = false
}

// =============================================================================
// Results
// =============================================================================

// Report is the cached outcome of validating one description.
type Report struct {
	Valid       bool               `json:"valid"`
	Diagnostics []graph.Diagnostic `json:"diagnostics"`
	Rules       []string           `json:"rules"` // rules that were enabled
}

// Messages returns the diagnostic messages.
func (r *Report) Messages() []string {
	if r == nil {
		return nil
	}
	return graph.Messages(r.Diagnostics)
}

// CountByRule tallies diagnostics per rule name.
func (r *Report) CountByRule() map[string]int {
	counts := make(map[string]int)
	if r == nil {
		return counts
	}
	for _, d := range r.Diagnostics {
		counts[d.Rule.String()]++
	}
	return counts
}

// RuleNames returns the rule names that produced diagnostics, sorted.
func (r *Report) RuleNames() []string {
	return slices.Sorted(maps.Keys(r.CountByRule()))
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Description is the input, as hashed.
	Description *graph.Description

	// DescriptionHash is the content hash used in cache keys.
	DescriptionHash string

	// Report is nil when validation was skipped.
	Report *Report

	// Graph is nil when validation failed under Strict, or building failed.
	Graph roadnet.Graph

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	LinkCount    int
	Diagnostics  int
	ValidateTime time.Duration
	BuildTime    time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	ReportHit bool // whether the validation report came from cache
}
