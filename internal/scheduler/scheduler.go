// Package scheduler refreshes draw history and checks pending tickets on draw nights.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // Europe/London on hosts without a zoneinfo database

	"github.com/robfig/cron/v3"

	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/models"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

// JobName labels the draw-night job in metrics.
const JobName = "draw_refresh"

// Refresher fetches fresh draw history. *engine.DrawRepository implements it.
type Refresher interface {
	Refresh(ctx context.Context) ([]models.Draw, error)
}

// Checker checks pending tickets. *engine.Engine implements it.
type Checker interface {
	CheckTickets(ctx context.Context) ([]tickets.Result, error)
}

// Notifier reports job outcomes. *telegram.Client implements it.
type Notifier interface {
	SendError(err error) error
	SendRecovery(failureCount int) error
	SendCheckResults(results []tickets.Result) error
}

// Recorder counts job runs. *metrics.Metrics implements it.
type Recorder interface {
	JobRun(job string, success bool)
}

// Config holds the cron schedule.
type Config struct {
	Cron     string
	Timezone string
	Timeout  time.Duration
}

// DefaultConfig runs at 22:30 London time on Tuesday and Friday.
func DefaultConfig() Config {
	return Config{
		Cron:     "30 22 * * 2,5",
		Timezone: "Europe/London",
		Timeout:  5 * time.Minute,
	}
}

// Scheduler runs the draw-night job on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration
	refresher Refresher
	checker   Checker
	notifier  Notifier
	rec       Recorder

	mu                  sync.Mutex
	consecutiveFailures int
}

type printfLogger struct{}

func (printfLogger) Printf(format string, args ...interface{}) {
	logger.Debug(format, args...)
}

// New creates a scheduler. notifier and rec may be nil.
func New(cfg Config, refresher Refresher, checker Checker, notifier Notifier, rec Recorder) (*Scheduler, error) {
	def := DefaultConfig()
	if cfg.Cron == "" {
		cfg.Cron = def.Cron
	}
	if cfg.Timezone == "" {
		cfg.Timezone = def.Timezone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	cronLogger := cron.VerbosePrintfLogger(printfLogger{})
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		schedule:  cfg.Cron,
		timeout:   cfg.Timeout,
		refresher: refresher,
		checker:   checker,
		notifier:  notifier,
		rec:       rec,
	}
	if _, err := s.cron.AddFunc(cfg.Cron, s.run); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
	}
	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		logger.Info("Scheduler started (%s), next run at %s", s.schedule, entries[0].Next.Format(time.RFC3339))
	}
}

// Stop stops the scheduler and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("Scheduler stop timed out while a job was running")
	}
}

// ConsecutiveFailures returns the length of the current failure streak.
func (s *Scheduler) ConsecutiveFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveFailures
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.RunOnce(ctx) //nolint:errcheck
}

// RunOnce refreshes draws and checks pending tickets, tracking the failure
// streak. It notifies on the first failure of a streak and on recovery.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	logger.Info("Starting draw refresh")

	err := s.runJob(ctx)
	s.handleResult(err)
	if s.rec != nil {
		s.rec.JobRun(JobName, err == nil)
	}
	if err == nil {
		logger.Info("Draw refresh completed in %v", time.Since(startTime))
	}
	return err
}

func (s *Scheduler) runJob(ctx context.Context) error {
	ds, err := s.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh draws: %w", err)
	}
	if len(ds) == 0 {
		return errors.New("draw source returned no draws")
	}
	logger.Debug("Refreshed %d draws, latest %s", len(ds), ds[0].DateKey())

	results, err := s.checker.CheckTickets(ctx)
	if err != nil {
		return fmt.Errorf("failed to check tickets: %w", err)
	}
	if len(results) == 0 {
		logger.Debug("No pending tickets with results")
		return nil
	}
	logger.Info("Checked %d tickets", len(results))
	if s.notifier != nil {
		if err := s.notifier.SendCheckResults(results); err != nil {
			logger.Warn("Failed to send ticket results to Telegram: %v", err)
		}
	}
	return nil
}

func (s *Scheduler) handleResult(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.consecutiveFailures++
		logger.Error("Draw refresh failed: %v", err)
		if s.consecutiveFailures == 1 && s.notifier != nil {
			if sendErr := s.notifier.SendError(err); sendErr != nil {
				logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
			}
		}
		return
	}
	if s.consecutiveFailures > 0 && s.notifier != nil {
		if sendErr := s.notifier.SendRecovery(s.consecutiveFailures); sendErr != nil {
			logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
		}
	}
	s.consecutiveFailures = 0
}
