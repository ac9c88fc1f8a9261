// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ZevCorp/iu-screenagent/cmd"
)

// main is the entry point for the ScreenAgent CLI.
func main() {
	// Listen for interrupt signals so an in-flight run exits as Stopped and
	// releases the overlay instead of dying mid-iteration.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
