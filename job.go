// Package banknews harvests bank news from Google News, classifies each
// article and reconciles the batch into a spreadsheet of tracked articles.
package banknews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/pevans/banknews/classify"
	"github.com/pevans/banknews/config"
	"github.com/pevans/banknews/history"
	"github.com/pevans/banknews/issuers"
	"github.com/pevans/banknews/reconcile"
	"github.com/pevans/banknews/scraper"
	"github.com/pevans/banknews/sheet"
)

// Run outcomes raised before any write is attempted. Write-phase outcomes
// come from reconcile.
const (
	OutcomeScrapeFailed     reconcile.Outcome = "scrape_failed"
	OutcomeIssuersFailed    reconcile.Outcome = "issuers_failed"
	OutcomeStoreUnavailable reconcile.Outcome = "store_unavailable"
)

// Recorder persists finished runs.
type Recorder interface {
	Record(run history.Run) (uuid.UUID, error)
}

// JobDeps are the collaborators a Job talks to. History is optional.
type JobDeps struct {
	Scraper scraper.Scraper
	Issuers issuers.Source
	Store   sheet.Store
	History Recorder
}

// Result describes one run.
type Result struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Scraped    int
	reconcile.Summary
}

// Job performs one harvest: scrape, classify, reconcile and write.
type Job struct {
	deps     JobDeps
	cols     sheet.Columns
	limit    int
	engine   *reconcile.Engine
	executor *reconcile.Executor
	now      func() time.Time
}

// NewJob builds a job from cfg. The negative lexicon is the built-in list
// extended with cfg.NegativeKeywords.
func NewJob(cfg *config.Config, deps JobDeps) (*Job, error) {
	if deps.Scraper == nil || deps.Issuers == nil || deps.Store == nil {
		return nil, errors.New("scraper, issuers and store are required")
	}
	if err := cfg.Columns.Validate(); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	lexicon := classify.NewLexicon(classify.DefaultNegativeKeywords, cfg.NegativeKeywords)

	return &Job{
		deps:     deps,
		cols:     cfg.Columns,
		limit:    cfg.Scraper.Limit,
		engine:   reconcile.NewEngine(classify.NewClassifier(lexicon), loc),
		executor: reconcile.NewExecutor(cfg.Columns),
		now:      time.Now,
	}, nil
}

// Run executes one harvest. Failures never escape: they end the run with
// an outcome other than OutcomeOK and are recorded in history.
func (j *Job) Run(ctx context.Context) Result {
	result := Result{RunID: uuid.New(), StartedAt: j.now()}
	result.Summary = j.run(ctx, &result)
	result.FinishedAt = j.now()

	event := log.Info()
	if result.Failed() {
		event = log.Error().Err(result.Err)
	}
	event.Str("run_id", result.RunID.String()).
		Str("outcome", string(result.Outcome)).
		Int("scraped", result.Scraped).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("run finished")

	j.record(result)
	return result
}

func (j *Job) run(ctx context.Context, result *Result) reconcile.Summary {
	articles, err := j.deps.Scraper.Scrape(ctx, j.limit)
	if err != nil {
		return abort(OutcomeScrapeFailed, fmt.Errorf("failed to scrape: %w", err))
	}
	result.Scraped = len(articles)
	log.Info().Int("articles", len(articles)).Msg("scraped")

	if len(articles) == 0 {
		return reconcile.Summary{Outcome: reconcile.OutcomeOK}
	}

	issuerMap, err := j.deps.Issuers.Load(ctx)
	if err != nil {
		return abort(OutcomeIssuersFailed, fmt.Errorf("failed to load issuers: %w", err))
	}
	matcher, err := classify.NewIssuerMatcher(issuerMap)
	if err != nil {
		return abort(OutcomeIssuersFailed, err)
	}

	links, err := j.deps.Store.ReadColumn(ctx, j.cols.Link)
	if err != nil {
		return abort(OutcomeStoreUnavailable, fmt.Errorf("failed to read link column: %w", err))
	}
	index := reconcile.BuildIndex(links)
	log.Info().Int("rows", len(links)).Int("links", len(index)).Int("issuers", issuerMap.Len()).Msg("loaded sheet state")

	plan := j.engine.Reconcile(articles, index, matcher, j.now())
	plan.LastRow = len(links)
	log.Info().Int("inserts", len(plan.Inserts)).Int("updates", len(plan.Updates)).Int("skipped", len(plan.Skipped)).Msg("built write plan")

	return j.executor.Execute(ctx, plan, j.deps.Store)
}

func abort(outcome reconcile.Outcome, err error) reconcile.Summary {
	return reconcile.Summary{Outcome: outcome, Err: err}
}

func (j *Job) record(result Result) {
	if j.deps.History == nil {
		return
	}

	_, err := j.deps.History.Record(history.Run{
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
	if err != nil {
		log.Warn().Err(err).Str("run_id", result.RunID.String()).Msg("failed to record run")
	}
}
