package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/banknews"
	"github.com/pevans/banknews/classify"
	"github.com/pevans/banknews/config"
	"github.com/pevans/banknews/history"
	"github.com/pevans/banknews/issuers"
	"github.com/pevans/banknews/sheet"
)

// sampleIssuers seeds a new issuer file.
func sampleIssuers() *classify.IssuerMap {
	m := classify.NewIssuerMap()
	m.Add("BBRI", "bri", "bank rakyat indonesia")
	m.Add("BMRI", "mandiri", "bank mandiri")
	m.Add("BBCA", "bca", "bank central asia")
	m.Add("BBNI", "bni", "bank negara indonesia")
	return m
}

func handleInit(args []string) {
	// Parse flags for init command
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := configFlag(fs)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.Parse(args)

	path := *configPath
	if path == "" {
		path = os.Getenv("APP_CONFIG_FILE")
	}
	if path == "" {
		path = config.DefaultConfigFile
	}

	fmt.Println("Initializing banknews...")
	fmt.Println()

	created, err := config.WriteDefaultConfigFile(path, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to create config file: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("  ✓ Config file: %s\n", path)
	} else {
		fmt.Printf("  Config file: %s (already exists)\n", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		fmt.Fprintf(os.Stderr, "    Edit %s and run 'banknews init' again\n", path)
		os.Exit(1)
	}
	cfg.SetupLogging()

	initSucceeded := true

	if err := initIssuers(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to initialize issuers: %v\n", err)
		initSucceeded = false
	}

	runs, err := history.NewRunStore(cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to initialize run history: %v\n", err)
		initSucceeded = false
	} else {
		runs.Close()
		fmt.Printf("  ✓ Run history: %s\n", cfg.History.DSN)
	}

	ctx := context.Background()
	store, closeStore, err := banknews.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Failed to open sheet: %v\n", err)
		initSucceeded = false
	} else {
		defer closeStore()
		wrote, err := sheet.EnsureHeader(ctx, store, cfg.Columns)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "  ✗ Failed to write header: %v\n", err)
			initSucceeded = false
		case wrote:
			fmt.Printf("  ✓ Sheet header written to %s\n", cfg.Store.SheetName)
		default:
			fmt.Printf("  Sheet %s already has data\n", cfg.Store.SheetName)
		}
	}

	fmt.Println()
	if !initSucceeded {
		fmt.Fprintln(os.Stderr, "Initialization failed")
		os.Exit(1)
	}
	fmt.Println("Initialization complete")
}

// initIssuers seeds the configured issuer source if it is empty.
func initIssuers(cfg *config.Config) error {
	switch cfg.Issuers.Type {
	case config.IssuersFile:
		if _, err := os.Stat(cfg.Issuers.DSN); err == nil {
			fmt.Printf("  Issuer file: %s (already exists)\n", cfg.Issuers.DSN)
			return nil
		}
		data, err := issuers.Marshal(sampleIssuers())
		if err != nil {
			return err
		}
		if dir := filepath.Dir(cfg.Issuers.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return err
			}
		}
		if err := os.WriteFile(cfg.Issuers.DSN, data, 0o600); err != nil {
			return err
		}
		fmt.Printf("  ✓ Issuer file: %s\n", cfg.Issuers.DSN)

	case config.IssuersSQLite:
		store, err := issuers.NewStore(cfg.Issuers.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		m, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if m.Len() > 0 {
			fmt.Printf("  Issuer database: %s (%d issuers)\n", cfg.Issuers.DSN, m.Len())
			return nil
		}
		if err := store.Import(ctx, sampleIssuers()); err != nil {
			return err
		}
		fmt.Printf("  ✓ Issuer database: %s\n", cfg.Issuers.DSN)
	}
	return nil
}

func handleColumns(args []string) {
	fs := flag.NewFlagSet("columns", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)

	fmt.Printf("%-15s %-8s %s\n", "FIELD", "COLUMN", "INDEX")
	for _, f := range sheet.Fields {
		col := cfg.Columns.Column(f)
		fmt.Printf("%-15s %-8s %d\n", f, sheet.ColumnLetter(col), col)
	}
}
