package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cranestack/pkg/cache"
	"github.com/matzehuels/cranestack/pkg/crane"
	"github.com/matzehuels/cranestack/pkg/observability"
)

// keyType labels result entries in cache hooks.
const keyType = "result"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete parse → validate → replay pipeline with caching.
//
// Each mode replays from the parsed layout: the engine is snapshotted after
// parsing and restored before the next mode starts. Parse and invariant
// errors are returned unchanged apart from wrapping, so callers can classify
// them with the errors package.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	key := r.Keyer.ResultKey(cache.Hash(input), opts.ResultKeyOpts())
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, key, logger); ok {
			cached.ID = uuid.NewString()
			cached.CacheHit = true
			logger.Info("cache hit", "modes", opts.Modes)
			return cached, nil
		}
	}

	result := &Result{
		ID:    uuid.NewString(),
		Tops:  make(map[string]string, len(opts.modes)),
		Final: make(map[string]crane.Layout, len(opts.modes)),
	}

	// Stage 1+2: Parse and validate
	parseStart := time.Now()
	e, err := Parse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Initial = e.Layout()
	result.Columns = len(result.Initial)
	result.Instructions = len(e.Pending())
	result.Crates = result.Initial.Crates()

	logger.Info("parsed input",
		"columns", result.Columns,
		"crates", result.Crates,
		"instructions", result.Instructions,
		"duration", result.Stats.ParseTime)

	// Stage 3: Replay each mode from the same starting point
	replayStart := time.Now()
	if err := e.Snapshot(); err != nil {
		return nil, err
	}
	for _, mode := range opts.modes {
		if err := replay(ctx, e, mode); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mode, err)
		}
		result.Tops[string(mode)] = e.Tops()
		result.Final[string(mode)] = e.Layout()
		logger.Info("replayed", "mode", mode, "tops", e.Tops())

		e.Restore()
		if err := e.Snapshot(); err != nil {
			return nil, err
		}
	}
	result.Stats.ReplayTime = time.Since(replayStart)

	r.store(ctx, key, result, opts)
	return result, nil
}

// lookup returns the cached result for key. Unreadable entries are deleted
// and reported as misses.
func (r *Runner) lookup(ctx context.Context, key string, logger *log.Logger) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		logger.Debug("dropping cache entry", "error", fmt.Errorf("%w: %v", cache.ErrCorrupt, err))
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &res, true
}

// store caches result. Failures are logged, never returned: a run that
// computed its result has succeeded.
func (r *Runner) store(ctx context.Context, key string, result *Result, opts Options) {
	data, err := json.Marshal(result)
	if err != nil {
		opts.Logger.Warn("encode result for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
		opts.Logger.Warn("cache store failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
