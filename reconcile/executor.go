package reconcile

import (
	"context"

	"github.com/phuslu/log"

	"github.com/pevans/banknews/sheet"
)

// Outcome names how a run ended.
type Outcome string

// Outcomes reported by the executor.
const (
	OutcomeOK           Outcome = "ok"
	OutcomeInsertFailed Outcome = "insert_failed"
	OutcomeUpdateFailed Outcome = "update_failed"
)

// Summary reports what a plan execution wrote. Err is set whenever Outcome
// is not OutcomeOK.
type Summary struct {
	Inserted int
	Updated  int
	Skipped  int
	Outcome  Outcome
	Err      error
}

// Failed reports whether a write phase failed.
func (s Summary) Failed() bool {
	return s.Outcome != OutcomeOK
}

// Executor applies write plans to a store.
type Executor struct {
	cols sheet.Columns
}

// NewExecutor creates an executor writing with the given column layout.
func NewExecutor(cols sheet.Columns) *Executor {
	return &Executor{cols: cols}
}

// Execute appends all inserts in one call below plan.LastRow, then writes
// all updates in one call. If the append fails, updates are not attempted. Nothing written
// earlier is rolled back.
func (x *Executor) Execute(ctx context.Context, plan *Plan, store sheet.Store) Summary {
	summary := Summary{Skipped: len(plan.Skipped), Outcome: OutcomeOK}

	if len(plan.Inserts) > 0 {
		if err := store.AppendRows(ctx, plan.LastRow, plan.Rows(x.cols)); err != nil {
			log.Error().Err(err).Int("rows", len(plan.Inserts)).Int("pending_updates", len(plan.Updates)).Msg("insert phase failed, updates not attempted")
			summary.Outcome = OutcomeInsertFailed
			summary.Err = err
			return summary
		}
		summary.Inserted = len(plan.Inserts)
		log.Info().Int("rows", summary.Inserted).Msg("appended new articles")
	}

	if len(plan.Updates) > 0 {
		cells := plan.Cells(x.cols)
		if err := store.BatchUpdate(ctx, cells); err != nil {
			log.Error().Err(err).Int("rows", len(plan.Updates)).Int("cells", len(cells)).Msg("update phase failed")
			summary.Outcome = OutcomeUpdateFailed
			summary.Err = err
			return summary
		}
		summary.Updated = len(plan.Updates)
		log.Info().Int("rows", summary.Updated).Int("cells", len(cells)).Msg("refreshed known articles")
	}

	return summary
}
