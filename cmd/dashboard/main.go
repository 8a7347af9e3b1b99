package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"options-dashboard/internal/cli"
	"options-dashboard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Logger: logging.NewLogger()}
	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
