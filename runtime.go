package banknews

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"github.com/pevans/banknews/config"
	"github.com/pevans/banknews/history"
	"github.com/pevans/banknews/issuers"
	"github.com/pevans/banknews/scraper"
	"github.com/pevans/banknews/sheet"
)

// Runtime owns the stores a configured Job uses.
type Runtime struct {
	Job     *Job
	Store   sheet.Store
	Issuers issuers.Source
	History *history.RunStore

	closers []func() error
}

// OpenStore opens the configured tabular store. A Google spreadsheet given
// only by name is resolved to its ID first. The returned close function is
// never nil on success.
func OpenStore(ctx context.Context, cfg *config.Config) (sheet.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		store, err := sheet.NewSQLiteStore(cfg.Store.DSN, cfg.Store.SheetName)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendGoogle:
		opts := sheet.ServiceAccount(cfg.Store.CredsPath)
		id := cfg.Store.SpreadsheetID
		if id == "" {
			found, err := sheet.FindSpreadsheet(ctx, cfg.Store.SpreadsheetName, cfg.RequestTimeout(), opts...)
			if err != nil {
				return nil, nil, err
			}
			log.Debug().Str("name", cfg.Store.SpreadsheetName).Str("id", found).Msg("resolved spreadsheet")
			id = found
		}
		store, err := sheet.NewGoogleStore(ctx, id, cfg.Store.SheetName, cfg.RequestTimeout(), opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}

// OpenIssuers opens the configured issuer source. For the sqlite type the
// concrete *issuers.Store is returned so callers can manage keywords.
func OpenIssuers(cfg *config.Config) (issuers.Source, func() error, error) {
	switch cfg.Issuers.Type {
	case config.IssuersSQLite:
		store, err := issuers.NewStore(cfg.Issuers.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.IssuersFile:
		return issuers.FileSource{Path: cfg.Issuers.DSN}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown issuers type: %q", cfg.Issuers.Type)
	}
}

// Open wires a Job from cfg.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	s, err := scraper.New(cfg.Scraper)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	rt.Store = store
	rt.closers = append(rt.closers, closeStore)

	src, closeIssuers, err := OpenIssuers(cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open issuers: %w", err)
	}
	rt.Issuers = src
	rt.closers = append(rt.closers, closeIssuers)

	runs, err := history.NewRunStore(cfg.History.DSN)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	rt.History = runs
	rt.closers = append(rt.closers, runs.Close)

	rt.Job, err = NewJob(cfg, JobDeps{
		Scraper: s,
		Issuers: src,
		Store:   store,
		History: runs,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	log.Info().
		Str("store", cfg.Store.Backend).
		Str("sheet", cfg.Store.SheetName).
		Str("issuers", cfg.Issuers.Type).
		Str("scraper", cfg.Scraper.Mode).
		Msg("runtime ready")

	return rt, nil
}

// Close releases every store, in reverse order of opening.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
