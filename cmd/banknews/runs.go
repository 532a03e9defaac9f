package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/pevans/banknews/history"
)

func handleRuns(args []string) {
	if len(args) > 0 && args[0] == "show" {
		handleRunsShow(args[1:])
		return
	}

	// Parse flags for runs command
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	configPath := configFlag(fs)
	limit := fs.Int("limit", 20, "Maximum number of runs to show")
	outcome := fs.String("outcome", "", "Only show runs with this outcome")
	format := fs.String("format", "table", "Output format (table or json)")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)

	runs, err := history.NewRunStore(cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open run history: %v\n", err)
		os.Exit(1)
	}
	defer runs.Close()

	filter := history.RunFilter{Limit: *limit}
	if *outcome != "" {
		filter.Outcome = outcome
	}

	list, err := runs.ListRuns(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list runs: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		total, err := runs.CountRuns(filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to count runs: %v\n", err)
			os.Exit(1)
		}
		printJSON(history.ListRunsResponse{Runs: list, Total: total})
	default:
		printRunsTable(list)
	}
}

func handleRunsShow(args []string) {
	fs := flag.NewFlagSet("runs show", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: run ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: banknews runs show <run-id>\n")
		os.Exit(1)
	}

	// Parse UUID
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid run ID: %v\n", err)
		os.Exit(1)
	}

	cfg := mustLoadConfig(*configPath)

	runs, err := history.NewRunStore(cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open run history: %v\n", err)
		os.Exit(1)
	}
	defer runs.Close()

	run, err := runs.GetRun(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printRunDetail(*run)
}
