// Package pipeline provides the core simulation pipeline for cranestack.
//
// This package implements the complete parse → validate → replay pipeline
// that is shared by the CLI and the HTTP server. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// A run consists of three stages:
//
//  1. Parse: Read the crate diagram and the instruction block
//  2. Validate: Dry-run every instruction against the column heights
//  3. Replay: Apply the queue once per requested mode, restoring the
//     parsed layout from a snapshot between modes
//
// Results are cached by input hash and mode set, so replaying the same
// input twice costs one cache lookup.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Modes: []string{"single", "block"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Tops["single"], result.Tops["block"])
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cranestack/pkg/cache"
	"github.com/matzehuels/cranestack/pkg/crane"
	errs "github.com/matzehuels/cranestack/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultCacheTTL is how long a result stays cached when Options.CacheTTL
// is zero.
const DefaultCacheTTL = 24 * time.Hour

// DefaultModes returns the modes replayed when Options.Modes is empty.
func DefaultModes() []string {
	out := make([]string, len(crane.Modes))
	for i, m := range crane.Modes {
		out[i] = string(m)
	}
	return out
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a simulation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Modes lists the replay modes to run, in output order.
	Modes []string `json:"modes,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	CacheTTL time.Duration `json:"-"`
	Logger   *log.Logger   `json:"-"`

	modes     []crane.Mode
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this run. Cache hits get a fresh ID.
	ID string `json:"id"`

	Columns      int `json:"columns"`
	Instructions int `json:"instructions"`
	Crates       int `json:"crates"`

	// Tops maps each replayed mode to the top crate of every column.
	Tops map[string]string `json:"tops"`

	// Initial is the parsed layout; Final maps each mode to its end state.
	Initial crane.Layout            `json:"initial"`
	Final   map[string]crane.Layout `json:"final"`

	Stats    Stats `json:"stats"`
	CacheHit bool  `json:"cache_hit"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime  time.Duration `json:"parse_time"`
	ReplayTime time.Duration `json:"replay_time"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the requested modes and applies defaults.
// Duplicate modes are dropped, keeping the first occurrence.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Modes) == 0 {
		o.Modes = DefaultModes()
	}

	modes := make([]crane.Mode, 0, len(o.Modes))
	names := make([]string, 0, len(o.Modes))
	for _, name := range o.Modes {
		m, err := crane.ParseMode(name)
		if err != nil {
			return err
		}
		if slices.Contains(modes, m) {
			continue
		}
		modes = append(modes, m)
		names = append(names, name)
	}
	o.modes = modes
	o.Modes = names

	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.CacheTTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must not be negative, got %s", o.CacheTTL)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns cache key options. Mode order does not affect the
// result, so the key uses the sorted set.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	modes := slices.Clone(o.Modes)
	slices.Sort(modes)
	return cache.ResultKeyOpts{Modes: modes}
}
