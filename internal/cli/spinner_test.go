package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerAnimates(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, true, "Rendering...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Rendering...") {
		t.Errorf("spinner output = %q", out.String())
	}
	if s.Cancelled() != true {
		t.Error("Stop should cancel the spinner context")
	}
}

func TestSpinnerQuietWhenNotTerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, false, "Rendering...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if out.String() != "" {
		t.Errorf("spinner wrote %q without a terminal", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &syncBuffer{}, true, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, true, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithSuccess("Done!")
}
