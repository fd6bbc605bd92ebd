package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	"github.com/mamadbah2/motofleet/internal/i18n"
)

const (
	dateLayout   = "2006-01-02"
	eventsWindow = 24 * time.Hour
)

// Store provides the aggregates a daily report is built from.
type Store interface {
	CountMotos(ctx context.Context, stockID string) (int, error)
	CountStocks(ctx context.Context) (int, error)
	CountStatus(ctx context.Context) (map[string]int, error)
	CountLowBattery(ctx context.Context, threshold float64) (int, error)
	CountEventsSince(ctx context.Context, since time.Time) (map[string]int, error)
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Exporter receives a copy of every report. The spreadsheet export implements it.
type Exporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service builds the daily fleet report.
type Service struct {
	store            Store
	exporter         Exporter
	batteryThreshold float64
	location         *time.Location
	tr               *i18n.Translator
	clock            clockwork.Clock
	logger           *zap.Logger
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(store Store, exporter Exporter, batteryThreshold float64, location *time.Location, tr *i18n.Translator, clock clockwork.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	if tr == nil {
		tr = i18n.New("pt")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:            store,
		exporter:         exporter,
		batteryThreshold: batteryThreshold,
		location:         location,
		tr:               tr,
		clock:            clock,
		logger:           logger,
	}
}

// BuildDailyReport aggregates the fleet state, stores the snapshot and exports it.
func (s *Service) BuildDailyReport(ctx context.Context) (*models.DailyReport, error) {
	now := s.clock.Now().In(s.location)
	report := models.DailyReport{
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location),
		CreatedAt: now.UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.MotosTotal, err = s.store.CountMotos(gctx, "")
		return wrap("count motos", err)
	})
	g.Go(func() (err error) {
		report.StocksTotal, err = s.store.CountStocks(gctx)
		return wrap("count stocks", err)
	})
	g.Go(func() (err error) {
		report.StatusCounts, err = s.store.CountStatus(gctx)
		return wrap("count status", err)
	})
	g.Go(func() (err error) {
		report.LowBattery, err = s.store.CountLowBattery(gctx, s.batteryThreshold)
		return wrap("count low battery", err)
	})
	g.Go(func() (err error) {
		report.EventCounts, err = s.store.CountEventsSince(gctx, now.Add(-eventsWindow).UTC())
		return wrap("count events", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if report.StatusCounts == nil {
		report.StatusCounts = map[string]int{}
	}
	if report.EventCounts == nil {
		report.EventCounts = map[string]int{}
	}
	for _, n := range report.EventCounts {
		report.EventsInPeriod += n
	}

	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save daily report: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.AppendDailyReport(ctx, report); err != nil {
			s.logger.Warn("daily report export failed", zap.Error(err))
		}
	}

	s.logger.Info("daily report built",
		zap.String("date", report.Date.Format(dateLayout)),
		zap.Int("motos", report.MotosTotal),
		zap.Int("events", report.EventsInPeriod),
	)
	return &report, nil
}

// GenerateDailyReport builds the report and renders it as a chat message.
func (s *Service) GenerateDailyReport(ctx context.Context) (string, error) {
	report, err := s.BuildDailyReport(ctx)
	if err != nil {
		return "", err
	}
	return s.Format(*report), nil
}

// Format renders a report in the service language.
func (s *Service) Format(report models.DailyReport) string {
	lines := []string{
		s.tr.T("report.title", report.Date.Format(dateLayout)),
		s.tr.T("report.inventory", report.MotosTotal, report.StocksTotal),
	}
	for _, status := range sortedKeys(report.StatusCounts) {
		lines = append(lines, s.tr.T("report.statusLine", status, report.StatusCounts[status]))
	}
	lines = append(lines, s.tr.T("report.lowBattery", report.LowBattery))

	if report.EventsInPeriod == 0 {
		lines = append(lines, s.tr.T("report.noEvents"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, s.tr.T("report.events", report.EventsInPeriod))
	for _, eventType := range sortedKeys(report.EventCounts) {
		lines = append(lines, fmt.Sprintf("- %s: %d", eventType, report.EventCounts[eventType]))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
