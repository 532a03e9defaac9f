package banknews

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Runner is anything the scheduler can run on a tick.
type Runner interface {
	Run(ctx context.Context) Result
}

// Scheduler runs a job on a cron schedule, at most one run at a time.
type Scheduler struct {
	runner   Runner
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	ctx      context.Context
	wg       sync.WaitGroup
}

// NewScheduler parses schedule (standard five-field cron or descriptors
// like "@every 1h") in loc. A tick that fires while the previous run is
// still going is skipped.
func NewScheduler(runner Runner, schedule string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	logger := cronLogger{}
	s := &Scheduler{
		runner:   runner,
		schedule: schedule,
		ctx:      context.Background(),
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}

	id, err := s.cron.AddFunc(schedule, func() { s.runner.Run(s.ctx) })
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	s.entryID = id

	return s, nil
}

// Run starts the schedule, runs the job once immediately and blocks until
// ctx is cancelled. It then stops scheduling and waits for an in-flight
// run to finish. Runs are not cancelled with ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = context.WithoutCancel(ctx)

	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Time("next", s.Next()).Msg("scheduler started")

	// The wrapped job carries the skip-if-running chain, so the startup
	// run and the first tick cannot overlap.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cron.Entry(s.entryID).WrappedJob.Run()
	}()

	<-ctx.Done()
	log.Info().Msg("scheduler stopping")

	<-s.cron.Stop().Done()
	s.wg.Wait()

	log.Info().Msg("scheduler stopped")
	return nil
}

// Next returns the next scheduled run time. It is zero until Run starts
// the schedule.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// cronLogger sends cron's own messages to the default logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().KeysAndValues(keysAndValues...).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).KeysAndValues(keysAndValues...).Msg("cron: " + msg)
}
