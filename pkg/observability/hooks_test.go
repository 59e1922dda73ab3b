package observability

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/cranestack/pkg/crane"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()
	layout := crane.LayoutFromStrings([]string{"NZ", "DCM", "P"})
	in := crane.Instruction{Amount: 1, From: 2, To: 1}

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnParseStart(ctx, 128)
	p.OnParseComplete(ctx, 3, 4, time.Second, nil)
	p.OnReplayStart(ctx, "single", 4)
	p.OnInstruction(ctx, "single", 1, in, layout)
	p.OnReplayComplete(ctx, "single", "CMZ", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "result", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/simulate")
	h.OnResponse(ctx, "POST", "/v1/simulate", 200, time.Second)
}

func TestRecordingHooks(t *testing.T) {
	Reset()
	defer Reset()

	rec := &recordingHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnInstruction(ctx, "block", 2, crane.Instruction{Amount: 3, From: 1, To: 3}, crane.LayoutFromStrings([]string{"A"}))
	Pipeline().OnInstruction(ctx, "block", 3, crane.Instruction{Amount: 1, From: 3, To: 1}, crane.LayoutFromStrings([]string{"B"}))

	if len(rec.steps) != 2 || rec.steps[0] != 2 || rec.steps[1] != 3 {
		t.Errorf("recorded steps = %v, want [2 3]", rec.steps)
	}
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type recordingHooks struct {
	NoopPipelineHooks
	steps []int
}

func (r *recordingHooks) OnInstruction(_ context.Context, _ string, index int, _ crane.Instruction, _ crane.Layout) {
	r.steps = append(r.steps, index)
}
