package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pevans/banknews"
	"github.com/pevans/banknews/history"
)

// printJSON prints v as indented JSON
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}

// printResultTable prints a run summary in human-readable format
func printResultTable(result banknews.Result) {
	fmt.Println("Run completed:")
	fmt.Printf("  Run ID:   %s\n", result.RunID)
	fmt.Printf("  Outcome:  %s\n", result.Outcome)
	fmt.Printf("  Scraped:  %d\n", result.Scraped)
	fmt.Printf("  Inserted: %d\n", result.Inserted)
	fmt.Printf("  Updated:  %d\n", result.Updated)
	fmt.Printf("  Skipped:  %d\n", result.Skipped)
	fmt.Printf("  Elapsed:  %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	if result.Err != nil {
		fmt.Printf("  Error:    %v\n", result.Err)
	}
}

// printResultJSON prints a run summary in the same shape as the history API
func printResultJSON(result banknews.Result) {
	printJSON(history.Run{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Outcome:    string(result.Outcome),
		Scraped:    result.Scraped,
		Inserted:   result.Inserted,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		Error:      history.ErrorString(result.Err),
	})
}

// printRunsTable prints runs one per line
func printRunsTable(runs []history.Run) {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Printf("%-36s %-20s %-18s %8s %8s %8s %8s\n",
		"ID", "STARTED", "OUTCOME", "SCRAPED", "INSERTED", "UPDATED", "SKIPPED")
	fmt.Println("----------------------------------------------------------------------------------------------------------------")

	for _, run := range runs {
		fmt.Printf("%-36s %-20s %-18s %8d %8d %8d %8d\n",
			run.RunID.String(),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Scraped,
			run.Inserted,
			run.Updated,
			run.Skipped,
		)
	}
}

// printRunDetail prints every recorded field of a run
func printRunDetail(run history.Run) {
	fmt.Printf("Run:      %s\n", run.RunID)
	fmt.Printf("Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("Finished: %s\n", run.FinishedAt.Local().Format(time.RFC3339))
	fmt.Printf("Duration: %s\n", run.Duration().Round(time.Millisecond))
	fmt.Printf("Outcome:  %s\n", run.Outcome)
	fmt.Printf("Scraped:  %d\n", run.Scraped)
	fmt.Printf("Inserted: %d\n", run.Inserted)
	fmt.Printf("Updated:  %d\n", run.Updated)
	fmt.Printf("Skipped:  %d\n", run.Skipped)
	if run.Error != nil {
		fmt.Printf("Error:    %s\n", *run.Error)
	}
}
