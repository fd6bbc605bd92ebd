package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/config"
)

const reportTimeout = 2 * time.Minute

// ReportGenerator builds the daily report text.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context) (string, error)
}

// Sender delivers a text message to the operators.
type Sender interface {
	SendText(ctx context.Context, body string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	reports  ReportGenerator
	sender   Sender
	location *time.Location
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reports ReportGenerator, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		reports:  reports,
		sender:   sender,
		location: loc,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("report_schedule", s.cfg.CronSchedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Entries lists the next run of each job.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Next)
	}
	return next
}

func (s *Scheduler) sendDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
		return
	}
	s.logger.Info("daily report sent successfully")
}

// RunDailyReport generates the report and sends it. Sending is skipped when no sender is set.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	report, err := s.reports.GenerateDailyReport(ctx)
	if err != nil {
		return fmt.Errorf("generate daily report: %w", err)
	}

	if s.sender == nil {
		s.logger.Info("daily report generated, no recipient configured")
		return nil
	}
	if err := s.sender.SendText(ctx, report); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	return nil
}
