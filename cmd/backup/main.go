package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// A cancelled context lets a run stop its request and remove the temp file.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := Execute(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
