package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ============================================================================
// NEXUS CLI — Role-scoped dashboards and a dashboard-aware assistant
// ============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
