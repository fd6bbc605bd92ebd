// Package rules derives a moto's consolidated status from its telemetry.
package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// Reasons attached to a status.
const (
	ReasonOutOfGeofence    = "out_of_geofence"
	ReasonMaintenanceSpot  = "parked_in_maintenance_spot"
	ReasonDiagnosticFault  = "diagnostic_fault_detected"
	ReasonForcedByOperator = "forced_by_operator"
	reasonBatteryLowEvent  = "battery_low"
	reasonUnknownFault     = "unknown_fault"
	spotTypeMaintenance    = "maintenance"
	defaultMovingAccel     = 2.5
)

// Engine applies the status rules.
type Engine struct {
	cfg         config.TelemetryConfig
	movingAccel float64
}

// NewEngine builds an engine from the geofence and battery thresholds.
func NewEngine(cfg config.TelemetryConfig) *Engine {
	return &Engine{cfg: cfg, movingAccel: defaultMovingAccel}
}

// Outcome is the new status plus the events the reading produced.
type Outcome struct {
	Status models.MotoStatus
	Events []models.Event
}

// Apply folds one telemetry reading into the previous status.
func (e *Engine) Apply(prev models.MotoStatus, t models.Telemetry, now time.Time) Outcome {
	next := prev
	next.MotoID = t.MotoID
	next.Reasons = append([]string(nil), prev.Reasons...)
	if next.Status == "" {
		next.Status = models.StatusUnknown
	}
	stamp := now.UTC().Format(models.TimestampLayout)
	next.LastUpdate = stamp
	next.ReceivedAt = now.UTC()

	var events []models.Event
	event := func(eventType, reason string, details map[string]any) {
		events = append(events, models.Event{
			MotoID:    t.MotoID,
			Type:      eventType,
			Reason:    reason,
			Details:   details,
			Timestamp: stamp,
			CreatedAt: now.UTC(),
		})
	}

	p := t.Payload
	switch t.Type {
	case models.TelemetryBattery:
		battery := number(p["battery"])
		next.Battery = &battery
		if battery < e.cfg.BatteryThreshold {
			next.Status = models.StatusMaintenanceNeeded
			next.Reasons = append(next.Reasons, fmt.Sprintf("battery_low (%.1f%%)", battery))
			event(models.EventMaintenanceAlert, reasonBatteryLowEvent, map[string]any{"battery": battery})
		} else if next.Status != models.StatusMaintenanceForced {
			next.Status = models.StatusOK
		}

	case models.TelemetryGPS:
		lat, lon := number(p["lat"]), number(p["lon"])
		next.Lat, next.Lon = &lat, &lon
		if v, ok := p["speed"]; ok && v != nil {
			speed := number(v)
			next.Speed = &speed
		}
		if !e.insideGeofence(lat, lon) {
			next.Status = models.StatusOutOfArea
			next.Reasons = append(next.Reasons, ReasonOutOfGeofence)
			event(models.EventGeoAlert, ReasonOutOfGeofence, map[string]any{"lat": lat, "lon": lon})
		} else if strings.HasPrefix(next.Status, "alert_") {
			next.Status = models.StatusOK
		}

	case models.TelemetryAccel:
		accel := number(p["accel"])
		moving := accel > e.movingAccel
		next.Accel = &accel
		next.Moving = &moving

	case models.TelemetryParking:
		spot, _ := p["spot_type"].(string)
		next.SpotType = spot
		if spot == spotTypeMaintenance {
			next.Status = models.StatusMaintenanceNeeded
			next.Reasons = append(next.Reasons, ReasonMaintenanceSpot)
		}

	case models.TelemetryDiagnostic:
		fault := truthy(p["fault"])
		next.Diagnostic = p
		next.Fault = &fault
		next.DiagCode, _ = p["code"].(string)
		next.DiagSeverity, _ = p["severity"].(string)
		if fault {
			next.Status = models.StatusCriticalFault
			next.Reasons = append(next.Reasons, ReasonDiagnosticFault)
			reason, _ := p["description"].(string)
			if reason == "" {
				reason = reasonUnknownFault
			}
			event(models.EventCriticalFault, reason, map[string]any{"code": next.DiagCode, "severity": next.DiagSeverity})
		}
	}

	next.Reasons = finalizeReasons(next.Status, next.Reasons)
	return Outcome{Status: next, Events: events}
}

// ApplyCommand updates the status for operator maintenance commands. It reports whether
// the command is one that changes the status.
func (e *Engine) ApplyCommand(prev models.MotoStatus, command string, now time.Time) (models.MotoStatus, bool) {
	next := prev
	next.Reasons = append([]string(nil), prev.Reasons...)

	switch command {
	case models.CommandForceMaintenance:
		next.Status = models.StatusMaintenanceForced
		next.Reasons = append(next.Reasons, ReasonForcedByOperator)
	case models.CommandReleaseMaintenance:
		next.Status = models.StatusOK
	default:
		return prev, false
	}

	next.LastUpdate = now.UTC().Format(models.TimestampLayout)
	next.Reasons = finalizeReasons(next.Status, next.Reasons)
	return next, true
}

func (e *Engine) insideGeofence(lat, lon float64) bool {
	return e.cfg.MinLat <= lat && lat <= e.cfg.MaxLat && e.cfg.MinLon <= lon && lon <= e.cfg.MaxLon
}

// IsAlerting reports whether status warrants notifying operators.
func IsAlerting(status string) bool {
	switch status {
	case models.StatusMaintenanceNeeded, models.StatusOutOfArea, models.StatusCriticalFault:
		return true
	default:
		return false
	}
}

// EnteredAlert reports whether the status moved into an alerting state.
func EnteredAlert(prev, next string) bool {
	return prev != next && IsAlerting(next)
}

// finalizeReasons de-duplicates in order; an ok status carries no reasons.
func finalizeReasons(status string, reasons []string) []string {
	if status == models.StatusOK {
		return []string{}
	}
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	case nil:
		return false
	default:
		return number(v) != 0
	}
}
