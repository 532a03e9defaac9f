package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/banknews"
	"github.com/pevans/banknews/config"
	"github.com/pevans/banknews/issuers"
)

func printIssuersUsage() {
	fmt.Println("banknews issuers - Manage issuer keywords")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  banknews issuers <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List issuers and their keywords")
	fmt.Println("  export     Print issuers as YAML")
	fmt.Println("  add        Add keywords to an issuer (sqlite issuers only)")
	fmt.Println("  delete     Delete an issuer (sqlite issuers only)")
	fmt.Println("  import     Import a YAML issuer file (sqlite issuers only)")
	fmt.Println("  help       Show this help message")
}

func handleIssuersCommand(action string, args []string) {
	switch action {
	case "list":
		handleIssuersList(args)
	case "export":
		handleIssuersExport(args)
	case "add":
		handleIssuersAdd(args)
	case "delete":
		handleIssuersDelete(args)
	case "import":
		handleIssuersImport(args)
	case "help", "--help", "-h":
		printIssuersUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown issuers command: %s\n\n", action)
		printIssuersUsage()
		os.Exit(1)
	}
}

// openIssuers opens the configured source, exiting on error.
func openIssuers(cfg *config.Config) (issuers.Source, func() error) {
	src, closeFn, err := banknews.OpenIssuers(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open issuers: %v\n", err)
		os.Exit(1)
	}
	return src, closeFn
}

// openIssuerStore opens the sqlite issuer store, exiting when issuers are
// configured as a file.
func openIssuerStore(cfg *config.Config) *issuers.Store {
	if cfg.Issuers.Type != config.IssuersSQLite {
		fmt.Fprintf(os.Stderr, "Error: issuers are read from %s; edit the file or set issuers.type to sqlite\n", cfg.Issuers.DSN)
		os.Exit(1)
	}

	store, err := issuers.NewStore(cfg.Issuers.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open issuer store: %v\n", err)
		os.Exit(1)
	}
	return store
}

func handleIssuersList(args []string) {
	fs := flag.NewFlagSet("issuers list", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	src, closeFn := openIssuers(cfg)
	defer closeFn()

	m, err := src.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load issuers: %v\n", err)
		os.Exit(1)
	}

	if m.Len() == 0 {
		fmt.Println("No issuers configured.")
		return
	}

	fmt.Printf("%-8s %s\n", "SYMBOL", "KEYWORDS")
	for _, symbol := range m.Symbols() {
		fmt.Printf("%-8s %s\n", symbol, strings.Join(m.Keywords(symbol), ", "))
	}
}

func handleIssuersExport(args []string) {
	fs := flag.NewFlagSet("issuers export", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	src, closeFn := openIssuers(cfg)
	defer closeFn()

	m, err := src.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load issuers: %v\n", err)
		os.Exit(1)
	}

	data, err := issuers.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal issuers: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(data))
}

func handleIssuersAdd(args []string) {
	fs := flag.NewFlagSet("issuers add", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Error: symbol and at least one keyword are required\n")
		fmt.Fprintf(os.Stderr, "Usage: banknews issuers add <symbol> <keyword>...\n")
		os.Exit(1)
	}

	cfg := mustLoadConfig(*configPath)
	store := openIssuerStore(cfg)
	defer store.Close()

	symbol := strings.ToUpper(fs.Arg(0))
	if err := store.AddKeywords(context.Background(), symbol, fs.Args()[1:]...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to add keywords: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Updated issuer: %s\n", symbol)
}

func handleIssuersDelete(args []string) {
	fs := flag.NewFlagSet("issuers delete", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: symbol is required\n")
		fmt.Fprintf(os.Stderr, "Usage: banknews issuers delete <symbol>\n")
		os.Exit(1)
	}

	cfg := mustLoadConfig(*configPath)
	store := openIssuerStore(cfg)
	defer store.Close()

	err := store.DeleteIssuer(context.Background(), fs.Arg(0))
	if errors.Is(err, issuers.ErrIssuerNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no issuer %s\n", strings.ToUpper(fs.Arg(0)))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete issuer: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted issuer: %s\n", strings.ToUpper(fs.Arg(0)))
}

func handleIssuersImport(args []string) {
	fs := flag.NewFlagSet("issuers import", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: file is required\n")
		fmt.Fprintf(os.Stderr, "Usage: banknews issuers import <file.yaml>\n")
		os.Exit(1)
	}

	ctx := context.Background()
	m, err := issuers.FileSource{Path: fs.Arg(0)}.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := mustLoadConfig(*configPath)
	store := openIssuerStore(cfg)
	defer store.Close()

	if err := store.Import(ctx, m); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Imported %d issuers from %s\n", m.Len(), fs.Arg(0))
}
