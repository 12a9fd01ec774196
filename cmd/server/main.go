// Package main implements the entry point for the halcyon engine server,
// which computes daily activity goals and keeps locally-saved profiles and
// goal sets synchronized with the remote store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run builds the application and serves until the context is cancelled.
func run(ctx context.Context) error {
	app, err := newApplication()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	app.startBackgroundWorkers(ctx)

	if err := app.startHTTPServer(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return err
	}
	return nil
}
