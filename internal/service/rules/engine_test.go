package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/domain/models"
)

var (
	now    = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	engine = NewEngine(config.TelemetryConfig{
		MinLat: -23.57, MaxLat: -23.53, MinLon: -46.65, MaxLon: -46.61, BatteryThreshold: 20,
	})
)

func reading(kind string, payload map[string]any) models.Telemetry {
	return models.Telemetry{MotoID: "MOTO1", Type: kind, Payload: payload}
}

func TestBatteryLow(t *testing.T) {
	out := engine.Apply(models.MotoStatus{}, reading(models.TelemetryBattery, map[string]any{"battery": 12.34}), now)

	assert.Equal(t, models.StatusMaintenanceNeeded, out.Status.Status)
	assert.Equal(t, []string{"battery_low (12.3%)"}, out.Status.Reasons)
	assert.InDelta(t, 12.34, *out.Status.Battery, 0.0001)
	require.Len(t, out.Events, 1)
	assert.Equal(t, models.EventMaintenanceAlert, out.Events[0].Type)
	assert.Equal(t, "battery_low", out.Events[0].Reason)
	assert.Equal(t, now, out.Events[0].CreatedAt)
}

func TestBatteryRecoveredKeepsForcedMaintenance(t *testing.T) {
	forced := models.MotoStatus{MotoID: "MOTO1", Status: models.StatusMaintenanceForced, Reasons: []string{ReasonForcedByOperator}}
	out := engine.Apply(forced, reading(models.TelemetryBattery, map[string]any{"battery": 80.0}), now)
	assert.Equal(t, models.StatusMaintenanceForced, out.Status.Status)
	assert.Equal(t, []string{ReasonForcedByOperator}, out.Status.Reasons)

	needed := models.MotoStatus{MotoID: "MOTO1", Status: models.StatusMaintenanceNeeded, Reasons: []string{"battery_low (10.0%)"}}
	out = engine.Apply(needed, reading(models.TelemetryBattery, map[string]any{"battery": 80.0}), now)
	assert.Equal(t, models.StatusOK, out.Status.Status)
	assert.Empty(t, out.Status.Reasons)
	assert.Empty(t, out.Events)
}

func TestGeofence(t *testing.T) {
	outside := engine.Apply(models.MotoStatus{Status: models.StatusOK}, reading(models.TelemetryGPS, map[string]any{"lat": -23.60, "lon": -46.63, "speed": 30.5}), now)
	assert.Equal(t, models.StatusOutOfArea, outside.Status.Status)
	assert.Equal(t, []string{ReasonOutOfGeofence}, outside.Status.Reasons)
	assert.InDelta(t, 30.5, *outside.Status.Speed, 0.0001)
	require.Len(t, outside.Events, 1)
	assert.Equal(t, models.EventGeoAlert, outside.Events[0].Type)

	again := engine.Apply(outside.Status, reading(models.TelemetryGPS, map[string]any{"lat": -23.60, "lon": -46.63}), now)
	assert.Equal(t, []string{ReasonOutOfGeofence}, again.Status.Reasons, "reasons are de-duplicated")

	back := engine.Apply(again.Status, reading(models.TelemetryGPS, map[string]any{"lat": -23.55, "lon": -46.63}), now)
	assert.Equal(t, models.StatusOK, back.Status.Status)
	assert.Empty(t, back.Status.Reasons)
	assert.Empty(t, back.Events)
}

func TestInsideGeofenceDoesNotClearNonAlertStatus(t *testing.T) {
	prev := models.MotoStatus{Status: models.StatusCriticalFault, Reasons: []string{ReasonDiagnosticFault}}
	out := engine.Apply(prev, reading(models.TelemetryGPS, map[string]any{"lat": -23.55, "lon": -46.63}), now)
	assert.Equal(t, models.StatusCriticalFault, out.Status.Status)
}

func TestAccelMoving(t *testing.T) {
	out := engine.Apply(models.MotoStatus{}, reading(models.TelemetryAccel, map[string]any{"accel": 3.1}), now)
	assert.True(t, *out.Status.Moving)
	assert.Equal(t, models.StatusUnknown, out.Status.Status)

	out = engine.Apply(out.Status, reading(models.TelemetryAccel, map[string]any{"accel": 2.5}), now)
	assert.False(t, *out.Status.Moving)
}

func TestParkingMaintenanceSpot(t *testing.T) {
	out := engine.Apply(models.MotoStatus{Status: models.StatusOK}, reading(models.TelemetryParking, map[string]any{"spot_type": "maintenance"}), now)
	assert.Equal(t, models.StatusMaintenanceNeeded, out.Status.Status)
	assert.Equal(t, []string{ReasonMaintenanceSpot}, out.Status.Reasons)
	assert.Empty(t, out.Events)
}

func TestDiagnosticFault(t *testing.T) {
	out := engine.Apply(models.MotoStatus{}, reading(models.TelemetryDiagnostic, map[string]any{
		"fault": true, "code": "engine_fail", "severity": "high", "description": "Falha crítica no motor",
	}), now)

	assert.Equal(t, models.StatusCriticalFault, out.Status.Status)
	assert.Equal(t, "engine_fail", out.Status.DiagCode)
	assert.Equal(t, "high", out.Status.DiagSeverity)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "Falha crítica no motor", out.Events[0].Reason)

	noDesc := engine.Apply(models.MotoStatus{}, reading(models.TelemetryDiagnostic, map[string]any{"fault": true}), now)
	assert.Equal(t, "unknown_fault", noDesc.Events[0].Reason)

	healthy := engine.Apply(models.MotoStatus{Status: models.StatusOK}, reading(models.TelemetryDiagnostic, map[string]any{"fault": false}), now)
	assert.Equal(t, models.StatusOK, healthy.Status.Status)
	assert.False(t, *healthy.Status.Fault)
}

func TestApplyCommand(t *testing.T) {
	forced, ok := engine.ApplyCommand(models.MotoStatus{MotoID: "MOTO1", Status: models.StatusOK}, models.CommandForceMaintenance, now)
	require.True(t, ok)
	assert.Equal(t, models.StatusMaintenanceForced, forced.Status)
	assert.Equal(t, []string{ReasonForcedByOperator}, forced.Reasons)

	released, ok := engine.ApplyCommand(forced, models.CommandReleaseMaintenance, now)
	require.True(t, ok)
	assert.Equal(t, models.StatusOK, released.Status)
	assert.Empty(t, released.Reasons)

	_, ok = engine.ApplyCommand(forced, "honk", now)
	assert.False(t, ok)
}

func TestEnteredAlert(t *testing.T) {
	assert.True(t, EnteredAlert(models.StatusOK, models.StatusCriticalFault))
	assert.False(t, EnteredAlert(models.StatusCriticalFault, models.StatusCriticalFault))
	assert.False(t, EnteredAlert(models.StatusOK, models.StatusMaintenanceForced))
	assert.False(t, EnteredAlert(models.StatusOutOfArea, models.StatusOK))
}

func TestNumberCoercion(t *testing.T) {
	assert.Equal(t, 12.5, number("12.5"))
	assert.Equal(t, 3.0, number(int64(3)))
	assert.Equal(t, 0.0, number(nil))
	assert.True(t, truthy("true"))
	assert.True(t, truthy(1))
	assert.False(t, truthy(nil))
}
