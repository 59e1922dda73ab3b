package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/cranestack/pkg/crane"
	"github.com/matzehuels/cranestack/pkg/observability"
)

// Parse reads input and validates every instruction against the parsed
// layout, so the returned engine replays cleanly in every mode.
func Parse(ctx context.Context, input []byte) (*crane.Engine, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnParseStart(ctx, len(input))

	e, err := crane.Parse(bytes.NewReader(input))
	if err == nil {
		err = e.Validate()
	}
	if err != nil {
		hooks.OnParseComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnParseComplete(ctx, len(e.Layout()), len(e.Pending()), time.Since(start), nil)
	return e, nil
}

// replay drains e with the mover of mode, checking ctx between
// instructions.
func replay(ctx context.Context, e *crane.Engine, mode crane.Mode) error {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnReplayStart(ctx, string(mode), len(e.Pending()))

	err := drain(ctx, e, mode)
	hooks.OnReplayComplete(ctx, string(mode), e.Tops(), time.Since(start), err)
	return err
}

func drain(ctx context.Context, e *crane.Engine, mode crane.Mode) error {
	m := mode.Mover()
	hooks := observability.Pipeline()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		in, ok, err := e.Step(m)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		hooks.OnInstruction(ctx, string(mode), e.Applied(), in, e.Layout())
	}
}
