package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/internal/notify"
)

// StateRefresher produces one DashboardState per call.
type StateRefresher interface {
	Refresh(ctx context.Context) (models.DashboardState, error)
}

// Sink presents refresh results.
type Sink interface {
	Render(state models.DashboardState) error
	RenderError(err error)
}

// ClampInterval bounds d to the permitted refresh range.
func ClampInterval(d time.Duration) time.Duration {
	if d < config.MinRefreshInterval {
		return config.MinRefreshInterval
	}
	if d > config.MaxRefreshInterval {
		return config.MaxRefreshInterval
	}
	return d
}

// Runner re-runs a refresh on a fixed interval. Cycles never overlap: a
// tick that fires while the previous cycle is still running is skipped.
type Runner struct {
	refresher StateRefresher
	sink      Sink
	notifier  notify.Notifier
	interval  time.Duration
	logger    zerolog.Logger

	mu     sync.Mutex
	seen   map[string]struct{}
	seeded bool
	cycles int
}

// NewRunner creates a Runner. interval is clamped to the permitted range.
// A nil notifier disables alerts.
func NewRunner(refresher StateRefresher, sink Sink, notifier notify.Notifier, interval time.Duration, logger zerolog.Logger) *Runner {
	if notifier == nil {
		notifier = notify.NewNoOpNotifier()
	}
	return &Runner{
		refresher: refresher,
		sink:      sink,
		notifier:  notifier,
		interval:  ClampInterval(interval),
		logger:    logger.With().Str("component", "runner").Logger(),
	}
}

// Interval returns the effective refresh interval.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run performs one refresh immediately, then one per interval until ctx is
// cancelled. It waits for an in-flight cycle before returning. A fatal
// refresh error, such as a missing symbol file, stops the loop and is
// returned; other failures are rendered and the next cycle runs as usual.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Tick(ctx); apperrors.IsFatal(err) {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fatalOnce sync.Once
		fatal     error
	)
	job := func() {
		if err := r.Tick(runCtx); apperrors.IsFatal(err) {
			fatalOnce.Do(func() {
				fatal = err
				cancel()
			})
		}
	}

	cronLogger := logging.NewCronLogger(r.logger)
	c := cron.New(
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		cron.WithLogger(cronLogger),
	)
	c.Schedule(cron.Every(r.interval), cron.FuncJob(job))

	r.logger.Info().Dur("interval", r.interval).Msg("Auto-refresh started")
	c.Start()

	<-runCtx.Done()
	<-c.Stop().Done()

	if fatal != nil {
		r.logger.Error().Err(fatal).Int("cycles", r.Cycles()).Msg("Auto-refresh aborted")
		return fatal
	}
	r.logger.Info().Int("cycles", r.Cycles()).Msg("Auto-refresh stopped")
	return nil
}

// Tick runs one refresh cycle and hands the result to the sink. The refresh
// error, if any, is rendered and returned.
func (r *Runner) Tick(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	r.mu.Lock()
	r.cycles++
	cycle := r.cycles
	r.mu.Unlock()
	ctx = logging.WithLogger(ctx, r.logger.With().Int("cycle", cycle).Logger())

	state, err := r.refresher.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Error().Err(err).Bool("fatal", apperrors.IsFatal(err)).Msg("Refresh failed")
		r.sink.RenderError(err)
		return err
	}

	if err := r.sink.Render(state); err != nil {
		r.logger.Error().Err(err).Msg("Render failed")
	}

	if fresh := r.newBreakouts(state.Breakouts); len(fresh) > 0 {
		if err := r.notifier.SendBreakouts(ctx, fresh); err != nil {
			r.logger.Warn().Err(err).Int("breakouts", len(fresh)).Msg("Breakout notification failed")
		}
	}
	return nil
}

// Cycles returns how many refreshes have run.
func (r *Runner) Cycles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}

// newBreakouts returns rows whose symbol was not in the previous cycle's top
// breakouts. The first cycle only records the baseline.
func (r *Runner) newBreakouts(rows []models.BreakoutRow) []models.BreakoutRow {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make(map[string]struct{}, len(rows))
	var fresh []models.BreakoutRow
	for _, row := range rows {
		current[row.Symbol] = struct{}{}
		if _, ok := r.seen[row.Symbol]; !ok && r.seeded {
			fresh = append(fresh, row)
		}
	}
	r.seen = current
	r.seeded = true
	return fresh
}
