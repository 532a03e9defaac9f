package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/banknews"
)

func handleRun(args []string) {
	// Parse flags for run command
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := configFlag(fs)
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := banknews.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	result := rt.Job.Run(ctx)

	switch *format {
	case "json":
		printResultJSON(result)
	default:
		printResultTable(result)
	}

	// Exit with error code if the run did not complete
	if result.Failed() {
		rt.Close()
		os.Exit(1)
	}
}
