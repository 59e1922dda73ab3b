package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cranestack/pkg/crane"
)

// syncBuffer is a bytes.Buffer safe to read while the spinner writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerBasic(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Replaying...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	// Stop cancels the spinner's own context.
	if !s.Cancelled() {
		t.Error("Cancelled() should report true after Stop")
	}
	if !strings.Contains(buf.String(), "Replaying...") {
		t.Errorf("spinner should draw its message, got %q", buf.String())
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Parsing...")
	s.Start()
	s.SetMessage("Replaying %s crane %d/%d", "block", 2, 4)
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(buf.String(), "Replaying block crane 2/4") {
		t.Errorf("spinner should draw the updated message, got %q", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, &bytes.Buffer{}, "Testing with context...")
	s.Start()
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerHooks(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Replaying...")
	h := &spinnerHooks{spin: s}
	ctx := context.Background()

	h.OnReplayStart(ctx, "single", 4)
	if s.message != "Replaying single crane..." {
		t.Errorf("message after OnReplayStart = %q", s.message)
	}
	h.OnInstruction(ctx, "single", 3, crane.Instruction{Amount: 1, From: 1, To: 2}, nil)
	if s.message != "Replaying single crane 3/4" {
		t.Errorf("message after OnInstruction = %q", s.message)
	}
}
