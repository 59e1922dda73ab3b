package pipeline

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cranestack/pkg/cache"
	"github.com/matzehuels/cranestack/pkg/crane"
	errs "github.com/matzehuels/cranestack/pkg/errors"
	"github.com/matzehuels/cranestack/pkg/observability"
)

const sampleInput = `    [D]
[N] [C]
[Z] [M] [P]
 1   2   3

move 1 from 2 to 1
move 3 from 1 to 3
move 2 from 2 to 1
move 1 from 1 to 2
`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if !slices.Equal(opts.Modes, []string{"single", "block"}) {
		t.Errorf("Modes = %v, want [single block]", opts.Modes)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %s, want %s", opts.CacheTTL, DefaultCacheTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestOptionsModes(t *testing.T) {
	tests := []struct {
		name  string
		modes []string
		want  []string
		code  errs.Code
	}{
		{"single only", []string{"single"}, []string{"single"}, ""},
		{"order kept", []string{"block", "single"}, []string{"block", "single"}, ""},
		{"duplicates dropped", []string{"block", "block", "single"}, []string{"block", "single"}, ""},
		{"unknown", []string{"single", "diagonal"}, nil, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Modes: tt.modes}
			err := opts.ValidateAndSetDefaults()
			if tt.code != "" {
				if !errs.Is(err, tt.code) {
					t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndSetDefaults() error: %v", err)
			}
			if !slices.Equal(opts.Modes, tt.want) {
				t.Errorf("Modes = %v, want %v", opts.Modes, tt.want)
			}
		})
	}
}

func TestOptionsNegativeTTL(t *testing.T) {
	opts := Options{CacheTTL: -time.Second}
	if err := opts.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative ttl error = %v, want INVALID_INPUT", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Modes: []string{"block", "block"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	opts.Modes = append(opts.Modes, "bogus")

	// Second call should be a no-op
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
}

func TestResultKeyOptsIgnoresOrder(t *testing.T) {
	a := Options{Modes: []string{"single", "block"}}
	b := Options{Modes: []string{"block", "single"}}
	_ = a.ValidateAndSetDefaults()
	_ = b.ValidateAndSetDefaults()

	k := cache.NewDefaultKeyer()
	if k.ResultKey("h", a.ResultKeyOpts()) != k.ResultKey("h", b.ResultKeyOpts()) {
		t.Error("mode order should not change the cache key")
	}
	if !slices.Equal(a.Modes, []string{"single", "block"}) {
		t.Errorf("ResultKeyOpts must not reorder Modes, got %v", a.Modes)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Execute(context.Background(), []byte(sampleInput), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.ID == "" {
		t.Error("Result.ID should be set")
	}
	if res.CacheHit {
		t.Error("first run should not be a cache hit")
	}
	if res.Columns != 3 || res.Instructions != 4 || res.Crates != 6 {
		t.Errorf("counts = (%d, %d, %d), want (3, 4, 6)", res.Columns, res.Instructions, res.Crates)
	}
	if got := res.Tops["single"]; got != "CMZ" {
		t.Errorf("Tops[single] = %q, want CMZ", got)
	}
	if got := res.Tops["block"]; got != "MCD" {
		t.Errorf("Tops[block] = %q, want MCD", got)
	}

	wantInitial := crane.LayoutFromStrings([]string{"NZ", "DCM", "P"})
	if !res.Initial.Equal(wantInitial) {
		t.Errorf("Initial = %q, want %q", res.Initial.Strings(), wantInitial.Strings())
	}
	if got := res.Final["single"].Strings(); !slices.Equal(got, []string{"C", "M", "ZNDP"}) {
		t.Errorf("Final[single] = %q, want [C M ZNDP]", got)
	}
	if got := res.Final["block"].Strings(); !slices.Equal(got, []string{"M", "C", "DNZP"}) {
		t.Errorf("Final[block] = %q, want [M C DNZP]", got)
	}
}

func TestExecuteSingleMode(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Execute(context.Background(), []byte(sampleInput), Options{Modes: []string{"block"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Tops) != 1 || res.Tops["block"] != "MCD" {
		t.Errorf("Tops = %v, want map[block:MCD]", res.Tops)
	}
}

func TestExecuteCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	input := []byte(sampleInput)

	first, err := r.Execute(ctx, input, Options{})
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}

	second, err := r.Execute(ctx, input, Options{Modes: []string{"block", "single"}})
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.ID == first.ID {
		t.Error("cache hits should get a fresh ID")
	}
	if second.Tops["single"] != "CMZ" || second.Tops["block"] != "MCD" {
		t.Errorf("cached Tops = %v", second.Tops)
	}
	if !second.Final["block"].Equal(first.Final["block"]) {
		t.Errorf("cached Final[block] = %q, want %q", second.Final["block"].Strings(), first.Final["block"].Strings())
	}

	third, err := r.Execute(ctx, input, Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	input := []byte(sampleInput)

	opts := Options{}
	_ = opts.ValidateAndSetDefaults()
	key := r.Keyer.ResultKey(cache.Hash(input), opts.ResultKeyOpts())
	if err := c.Set(ctx, key, []byte("not json"), 0); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(ctx, input, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheHit {
		t.Error("corrupt entry should be treated as a miss")
	}
	if res.Tops["single"] != "CMZ" {
		t.Errorf("Tops[single] = %q, want CMZ", res.Tops["single"])
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		code      errs.Code
		line      int
		invariant bool
	}{
		{"bad number", "[A] [B]\n 1   2\n\nmove 1 from x to 2\n", errs.ErrCodeInvalidNumber, 4, false},
		{"bad diagram", "[A] (B)\n 1   2\n", errs.ErrCodeInvalidDiagram, 1, false},
		{"underflow", "[A]\n 1\n\nmove 2 from 1 to 1\n", errs.ErrCodeStackUnderflow, 4, true},
		{"unknown column", "[A]\n 1\n\nmove 1 from 1 to 1\nmove 1 from 1 to 7\n", errs.ErrCodeUnknownColumn, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := cache.NewFileCache(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			r := NewRunner(c, nil, quietLogger())

			_, err = r.Execute(context.Background(), []byte(tt.input), Options{})
			if !errs.Is(err, tt.code) {
				t.Fatalf("Execute() error = %v, want %s", err, tt.code)
			}
			if got := errs.GetLine(err); got != tt.line {
				t.Errorf("GetLine() = %d, want %d", got, tt.line)
			}
			if errs.IsInvariant(err) != tt.invariant {
				t.Errorf("IsInvariant() = %v, want %v", errs.IsInvariant(err), tt.invariant)
			}
			if n, _ := c.Clear(); n != 0 {
				t.Errorf("failed runs should not be cached, found %d entries", n)
			}
		})
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(ctx, []byte(sampleInput), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	steps  map[string]int
	replay []string
}

func (h *countingHooks) OnInstruction(_ context.Context, mode string, _ int, _ crane.Instruction, _ crane.Layout) {
	h.steps[mode]++
}

func (h *countingHooks) OnReplayComplete(_ context.Context, mode, tops string, _ time.Duration, _ error) {
	h.replay = append(h.replay, mode+"="+tops)
}

func TestExecuteHooks(t *testing.T) {
	hooks := &countingHooks{steps: make(map[string]int)}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Execute(context.Background(), []byte(sampleInput), Options{}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if hooks.steps["single"] != 4 || hooks.steps["block"] != 4 {
		t.Errorf("instruction events = %v, want 4 per mode", hooks.steps)
	}
	if !slices.Equal(hooks.replay, []string{"single=CMZ", "block=MCD"}) {
		t.Errorf("replay events = %v, want [single=CMZ block=MCD]", hooks.replay)
	}
}
