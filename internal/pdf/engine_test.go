package pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

func TestRenderHonoursCancelledContextWhileWaiting(t *testing.T) {
	e := NewEngine(Options{MaxConcurrent: 1})
	e.slots <- struct{}{} // occupy the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Render(ctx, []byte("<html></html>")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(e.slots) != 1 {
		t.Fatalf("slot accounting changed: %d", len(e.slots))
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Options{})
	if e.timeout != defaultTimeout || cap(e.slots) != 2 || e.logger == nil {
		t.Fatalf("unexpected defaults: timeout=%s slots=%d", e.timeout, cap(e.slots))
	}
}

func TestRenderProducesPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("chromium not available")
	}

	e := NewEngine(Options{Timeout: 60 * time.Second})
	out, err := e.Render(context.Background(), []byte(`<!DOCTYPE html><html><body><h1>Olá</h1></body></html>`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a pdf: %q", out[:min(len(out), 16)])
	}
	if len(e.slots) != 0 {
		t.Fatalf("slot not released")
	}
}
