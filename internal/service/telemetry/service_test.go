package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/repository"
	"github.com/mamadbah2/motofleet/internal/service/rules"
)

type memStore struct {
	mu       sync.Mutex
	raw      []map[string]any
	events   []models.Event
	statuses map[string]models.MotoStatus
}

func newMemStore() *memStore {
	return &memStore{statuses: map[string]models.MotoStatus{}}
}

func (m *memStore) InsertRawTelemetry(_ context.Context, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append(m.raw, doc)
	return nil
}

func (m *memStore) LatestTelemetry(context.Context, int) ([]models.Telemetry, error) {
	return nil, nil
}

func (m *memStore) InsertEvent(_ context.Context, event models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memStore) LatestEvents(context.Context, int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...), nil
}

func (m *memStore) GetStatus(_ context.Context, motoID string) (*models.MotoStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[motoID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &status, nil
}

func (m *memStore) UpsertStatus(_ context.Context, status models.MotoStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status.MotoID] = status
	return nil
}

func (m *memStore) ListStatus(context.Context, bool, int) ([]models.MotoStatus, error) {
	return nil, nil
}

type recordingNotifier struct {
	alerts []models.Alert
}

func (r *recordingNotifier) NotifyAlert(alert models.Alert) {
	r.alerts = append(r.alerts, alert)
}

var start = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memStore, *recordingNotifier, *clockwork.FakeClock) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	clock := clockwork.NewFakeClockAt(start)
	engine := rules.NewEngine(config.TelemetryConfig{MinLat: -23.57, MaxLat: -23.53, MinLon: -46.65, MaxLon: -46.61, BatteryThreshold: 20})
	return NewService(store, engine, notifier, clock, nil, nil), store, notifier, clock
}

func TestHandleMessageRejectsInvalidJSON(t *testing.T) {
	svc, store, _, _ := newService(t)

	err := svc.HandleMessage(context.Background(), "sensors/gps/MOTO1", []byte("not json"))
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, store.raw)

	err = svc.HandleMessage(context.Background(), "sensors/gps/MOTO1", []byte("[1,2]"))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestHandleMessageLowBattery(t *testing.T) {
	svc, store, notifier, clock := newService(t)
	ctx := context.Background()

	msg := []byte(`{"moto_id":"MOTO1","payload":{"battery":15}}`)
	require.NoError(t, svc.HandleMessage(ctx, "sensors/battery/MOTO1", msg))

	require.Len(t, store.raw, 1)
	assert.Equal(t, "sensors/battery/MOTO1", store.raw[0]["_topic"])
	assert.Equal(t, start, store.raw[0]["_received_at"])
	assert.Equal(t, models.TelemetryBattery, store.raw[0]["type"])

	status := store.statuses["MOTO1"]
	assert.Equal(t, models.StatusMaintenanceNeeded, status.Status)
	assert.Equal(t, []string{"battery_low (15.0%)"}, status.Reasons)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.EventMaintenanceAlert, store.events[0].Type)

	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, models.Alert{MotoID: "MOTO1", Status: models.StatusMaintenanceNeeded, Reason: "battery_low (15.0%)"}, notifier.alerts[0])

	clock.Advance(2 * time.Second)
	require.NoError(t, svc.HandleMessage(ctx, "sensors/battery/MOTO1", []byte(`{"moto_id":"MOTO1","payload":{"battery":14}}`)))
	assert.Len(t, notifier.alerts, 1, "no new alert while the status is unchanged")
	assert.Equal(t, start.Add(2*time.Second), store.statuses["MOTO1"].ReceivedAt)
}

func TestHandleMessageCVEventOnlyStoresEvent(t *testing.T) {
	svc, store, notifier, _ := newService(t)

	msg := []byte(`{"vehicle_id":"MOTO2","payload":{"label":"helmet_missing"}}`)
	require.NoError(t, svc.HandleMessage(context.Background(), "cv/camera1", msg))

	require.Len(t, store.events, 1)
	assert.Equal(t, models.TelemetryCVEvent, store.events[0].Type)
	assert.Equal(t, "MOTO2", store.events[0].MotoID)
	assert.Equal(t, "helmet_missing", store.events[0].Payload["label"])
	assert.Empty(t, store.statuses)
	assert.Empty(t, notifier.alerts)
}

func TestApplyCommand(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertStatus(ctx, models.MotoStatus{MotoID: "MOTO1", Status: models.StatusOK}))

	status, err := svc.ApplyCommand(ctx, "MOTO1", models.CommandForceMaintenance, "api")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusMaintenanceForced, status.Status)
	assert.Equal(t, models.StatusMaintenanceForced, store.statuses["MOTO1"].Status)

	require.Len(t, store.events, 1)
	assert.Equal(t, models.EventCommand, store.events[0].Type)
	assert.Equal(t, models.CommandForceMaintenance, store.events[0].Reason)

	// Non-maintenance commands are logged but leave the status alone.
	_, err = svc.ApplyCommand(ctx, "MOTO1", "blink_lights", "api")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenanceForced, store.statuses["MOTO1"].Status)
	assert.Len(t, store.events, 2)
}

func TestApplyCommandUnknownMotoCreatesNoStatus(t *testing.T) {
	svc, store, _, _ := newService(t)

	status, err := svc.ApplyCommand(context.Background(), "MOTO404", models.CommandForceMaintenance, "api")
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.Empty(t, store.statuses)

	require.Len(t, store.events, 1)
	assert.Equal(t, "MOTO404", store.events[0].MotoID)
}

func TestRecordManualAlert(t *testing.T) {
	svc, store, notifier, _ := newService(t)
	ctx := context.Background()

	_, err := svc.RecordManualAlert(ctx, "MOTO9", "pneu furado", "mobile")
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	require.NoError(t, store.UpsertStatus(ctx, models.MotoStatus{MotoID: "MOTO1", Status: models.StatusOK}))
	event, err := svc.RecordManualAlert(ctx, "MOTO1", "pneu furado", "mobile")
	require.NoError(t, err)

	assert.Equal(t, models.EventManualAlert, event.Type)
	assert.Equal(t, "mobile", event.Source)
	assert.Equal(t, start, event.CreatedAt)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, "pneu furado", notifier.alerts[0].Reason)
}

func TestStatusNotFound(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Status(context.Background(), "MOTO1")
	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, MessageMotoNotFound, structured.Message)
}

func TestListsAreNeverNil(t *testing.T) {
	svc, _, _, _ := newService(t)

	all, err := svc.AllStatus(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)

	tel, err := svc.LatestTelemetry(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, tel)
}
