package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/banknews/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get subcommand
	subcommand := os.Args[1]

	switch subcommand {
	case "init":
		handleInit(os.Args[2:])
	case "run":
		handleRun(os.Args[2:])
	case "issuers":
		if len(os.Args) < 3 {
			printIssuersUsage()
			os.Exit(1)
		}
		handleIssuersCommand(os.Args[2], os.Args[3:])
	case "runs":
		handleRuns(os.Args[2:])
	case "columns":
		handleColumns(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("banknews - Bank news harvester")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  banknews <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init       Create the config file, issuer list and sheet header")
	fmt.Println("  run        Harvest once and reconcile into the sheet")
	fmt.Println("  issuers    Manage issuer keywords")
	fmt.Println("  runs       Show run history")
	fmt.Println("  columns    Show the sheet column layout")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Every command accepts --config (default: $APP_CONFIG_FILE or banknews.yaml).")
	fmt.Println("Any setting can be overridden with an APP_ environment variable,")
	fmt.Println("e.g. APP_SPREADSHEET_NAME, APP_SCRAPING_LIMIT, APP_NEGATIVE_KEYWORDS.")
}

// configFlag registers the --config flag on fs.
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Path to config file")
}

// mustLoadConfig loads the configuration and sets up logging, exiting on
// error.
func mustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.SetupLogging()
	return cfg
}
