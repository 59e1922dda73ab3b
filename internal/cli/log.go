// Package cli implements the cranestack command-line interface.
//
// This package provides commands for replaying crane instructions against a
// crate diagram, inspecting parsed input, stepping through a replay
// interactively, serving simulations over HTTP, and managing the result
// cache. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Replay an input file and print the top crates per mode
//   - parse: Show the parsed diagram and instruction count
//   - step: Step through a replay one instruction at a time
//   - serve: Expose the simulation pipeline over HTTP
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs the layout after every applied instruction. Loggers are passed
// through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cranestack/pkg/crane"
	"github.com/matzehuels/cranestack/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Replayed 503 instructions (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports pipeline events at debug level. Registering it is how
// --verbose shows the intermediate layout after every instruction.
type logHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnParseComplete(_ context.Context, columns, instructions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("parse complete", "columns", columns, "instructions", instructions, "duration", d)
}

func (h *logHooks) OnReplayStart(_ context.Context, mode string, instructions int) {
	h.logger.Debug("replay start", "mode", mode, "instructions", instructions)
}

func (h *logHooks) OnInstruction(_ context.Context, mode string, index int, in crane.Instruction, layout crane.Layout) {
	h.logger.Debug(in.String(), "mode", mode, "step", index, "columns", strings.Join(layout.Strings(), "|"))
}
