package control

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/vietddude/nodeguard/internal/monitor/health"
)

func testApp() *App {
	return &App{
		healthServer: health.NewServer(health.NewRegistry(), 0),
		log:          slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func TestStop_ReturnsWhenWorkersFinish(t *testing.T) {
	app := testApp()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStop_HonorsShutdownDeadline(t *testing.T) {
	app := testApp()
	app.wg.Add(1) // a worker stuck in a restart call
	defer app.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- app.Stop(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not return when the shutdown deadline passed")
	}
}
