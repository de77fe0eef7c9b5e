package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LinkTsang/PicoChat/internal/config"
)

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.MetricsAddr = "" // no metrics listener in tests
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	a := New(cfg, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Give the listener a moment to come up, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}

func TestRunReportsBindFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "256.0.0.1:99999" // unbindable
	cfg.MetricsAddr = ""

	logger := zerolog.Nop()
	a := New(cfg, &logger)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected bind failure")
	}
}
