// Package telemetry ingests MQTT sensor messages and maintains the consolidated
// status of every moto.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/metrics"
	"github.com/mamadbah2/motofleet/internal/repository"
	"github.com/mamadbah2/motofleet/internal/service/rules"
)

// ErrInvalidPayload is returned for messages that are not JSON objects.
var ErrInvalidPayload = errors.New("invalid telemetry payload")

// MessageMotoNotFound is the API message for unknown motos.
const MessageMotoNotFound = "Moto não encontrada"

// Store is the persistence needed by the service.
type Store interface {
	InsertRawTelemetry(ctx context.Context, doc map[string]any) error
	LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error)
	InsertEvent(ctx context.Context, event models.Event) error
	LatestEvents(ctx context.Context, limit int) ([]models.Event, error)
	GetStatus(ctx context.Context, motoID string) (*models.MotoStatus, error)
	UpsertStatus(ctx context.Context, status models.MotoStatus) error
	ListStatus(ctx context.Context, recentFirst bool, limit int) ([]models.MotoStatus, error)
}

// Notifier receives alerts. Implementations must not block.
type Notifier interface {
	NotifyAlert(alert models.Alert)
}

// Service implements ingestion and the status queries.
type Service struct {
	store    Store
	engine   *rules.Engine
	notifier Notifier
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// mu serializes read-modify-write cycles on status documents.
	mu sync.Mutex
}

// NewService wires the ingestion service. notifier and m may be nil.
func NewService(store Store, engine *rules.Engine, notifier Notifier, clock clockwork.Clock, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:    store,
		engine:   engine,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		logger:   logger,
	}
}

// HandleMessage processes one MQTT message.
func (s *Service) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil || data == nil {
		s.metrics.TelemetryIngested(models.TelemetryUnknown, "invalid")
		s.logger.Warn("dropping undecodable message", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("%w on %s", ErrInvalidPayload, topic)
	}

	now := s.clock.Now().UTC()
	t := Standardize(topic, data, now)

	if err := s.store.InsertRawTelemetry(ctx, rawDocument(topic, data, t, now)); err != nil {
		s.logger.Error("failed to store raw telemetry", zap.String("topic", topic), zap.Error(err))
	}

	if strings.HasPrefix(topic, "cv/") || t.Type == models.TelemetryCVEvent {
		event := models.Event{
			MotoID:    t.MotoID,
			Type:      models.TelemetryCVEvent,
			Source:    "cv",
			Payload:   t.Payload,
			Timestamp: t.Timestamp,
			CreatedAt: now,
		}
		if err := s.store.InsertEvent(ctx, event); err != nil {
			s.metrics.TelemetryIngested(t.Type, "failed")
			return fmt.Errorf("store cv event: %w", err)
		}
		s.metrics.EventRecorded(event.Type)
		s.metrics.TelemetryIngested(t.Type, "stored")
		return nil
	}

	if err := s.updateStatus(ctx, t, now); err != nil {
		s.metrics.TelemetryIngested(t.Type, "failed")
		return err
	}
	s.metrics.TelemetryIngested(t.Type, "stored")
	return nil
}

func (s *Service) updateStatus(ctx context.Context, t models.Telemetry, now time.Time) error {
	s.mu.Lock()
	prev, err := s.loadStatus(ctx, t.MotoID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	outcome := s.engine.Apply(prev, t, now)
	if err := s.store.UpsertStatus(ctx, outcome.Status); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("upsert status of %s: %w", t.MotoID, err)
	}
	s.mu.Unlock()

	for _, event := range outcome.Events {
		if err := s.store.InsertEvent(ctx, event); err != nil {
			s.logger.Error("failed to store rule event", zap.String("moto_id", t.MotoID), zap.String("type", event.Type), zap.Error(err))
			continue
		}
		s.metrics.EventRecorded(event.Type)
	}

	if rules.EnteredAlert(prev.Status, outcome.Status.Status) {
		s.logger.Info("moto entered alert state",
			zap.String("moto_id", t.MotoID),
			zap.String("from", prev.Status),
			zap.String("to", outcome.Status.Status),
		)
		s.notify(models.Alert{MotoID: t.MotoID, Status: outcome.Status.Status, Reason: lastReason(outcome.Status.Reasons)})
	}
	return nil
}

// loadStatus returns the stored status or an empty one for new motos. Callers hold mu.
func (s *Service) loadStatus(ctx context.Context, motoID string) (models.MotoStatus, error) {
	prev, err := s.store.GetStatus(ctx, motoID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.MotoStatus{MotoID: motoID}, nil
	case err != nil:
		return models.MotoStatus{}, fmt.Errorf("load status of %s: %w", motoID, err)
	}
	return *prev, nil
}

// ApplyCommand records an operator command against the moto status. Motos without a
// status document are left untouched and the returned status is nil.
func (s *Service) ApplyCommand(ctx context.Context, motoID, command, source string) (*models.MotoStatus, error) {
	now := s.clock.Now().UTC()

	var next *models.MotoStatus
	s.mu.Lock()
	prev, err := s.store.GetStatus(ctx, motoID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("command for moto without status", zap.String("moto_id", motoID), zap.String("command", command))
	case err != nil:
		s.mu.Unlock()
		return nil, apperrors.InternalError("failed to load status", err)
	default:
		updated, changed := s.engine.ApplyCommand(*prev, command, now)
		if changed {
			updated.MotoID = motoID
			if err := s.store.UpsertStatus(ctx, updated); err != nil {
				s.mu.Unlock()
				return nil, apperrors.InternalError("failed to update status", err)
			}
		}
		next = &updated
	}
	s.mu.Unlock()

	event := models.Event{
		MotoID:    motoID,
		Type:      models.EventCommand,
		Reason:    command,
		Source:    source,
		Timestamp: now.Format(models.TimestampLayout),
		CreatedAt: now,
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		s.logger.Error("failed to store command event", zap.String("moto_id", motoID), zap.Error(err))
	} else {
		s.metrics.EventRecorded(event.Type)
	}

	return next, nil
}

// RecordManualAlert stores a manual alert for a known moto.
func (s *Service) RecordManualAlert(ctx context.Context, motoID, message, source string) (*models.Event, error) {
	if _, err := s.Status(ctx, motoID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	event := models.Event{
		MotoID:    motoID,
		Type:      models.EventManualAlert,
		Reason:    message,
		Source:    source,
		Timestamp: now.Format(models.TimestampLayout),
		CreatedAt: now,
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, apperrors.InternalError("Erro ao registrar alerta no banco", err)
	}
	s.metrics.EventRecorded(event.Type)
	s.notify(models.Alert{MotoID: motoID, Status: models.EventManualAlert, Reason: message})

	return &event, nil
}

// Status returns the consolidated status of one moto.
func (s *Service) Status(ctx context.Context, motoID string) (*models.MotoStatus, error) {
	status, err := s.store.GetStatus(ctx, motoID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFoundError(MessageMotoNotFound)
	case err != nil:
		return nil, apperrors.InternalError("failed to load status", err)
	}
	return status, nil
}

// AllStatus returns every status document.
func (s *Service) AllStatus(ctx context.Context) ([]models.MotoStatus, error) {
	out, err := s.store.ListStatus(ctx, false, 0)
	if err != nil {
		return nil, apperrors.InternalError("failed to list status", err)
	}
	return nonNil(out), nil
}

// Sensors returns the most recently updated status documents.
func (s *Service) Sensors(ctx context.Context, limit int) ([]models.MotoStatus, error) {
	out, err := s.store.ListStatus(ctx, true, limit)
	if err != nil {
		return nil, apperrors.InternalError("failed to list sensors", err)
	}
	return nonNil(out), nil
}

// LatestTelemetry returns the most recent raw readings.
func (s *Service) LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	out, err := s.store.LatestTelemetry(ctx, limit)
	if err != nil {
		return nil, apperrors.InternalError("failed to list telemetry", err)
	}
	return nonNil(out), nil
}

// LatestEvents returns the most recent events.
func (s *Service) LatestEvents(ctx context.Context, limit int) ([]models.Event, error) {
	out, err := s.store.LatestEvents(ctx, limit)
	if err != nil {
		return nil, apperrors.InternalError("failed to list events", err)
	}
	return nonNil(out), nil
}

func (s *Service) notify(alert models.Alert) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyAlert(alert)
}

func lastReason(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return reasons[len(reasons)-1]
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
