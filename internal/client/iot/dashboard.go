// Package iot builds the operator's telemetry dashboard from the IoT API.
package iot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/pkg/clients/iotapi"
)

const (
	telemetryLimit = 200
	eventLimit     = 50
	mapsURL        = "https://www.google.com/maps?q=%g,%g"
)

// Level is a traffic-light indicator for status and battery.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
	LevelUnknown  Level = "unknown"
)

// StatusLevel grades a consolidated status.
func StatusLevel(status string) Level {
	switch {
	case status == models.StatusOK || status == "active":
		return LevelOK
	case status == models.StatusMaintenanceNeeded, status == models.StatusMaintenanceForced, status == models.StatusCriticalFault:
		return LevelCritical
	case strings.HasPrefix(status, "alert"):
		return LevelWarning
	default:
		return LevelUnknown
	}
}

// BatteryLevel grades a battery percentage: 50 and up is ok, 20 and up a warning.
func BatteryLevel(battery *float64) Level {
	switch {
	case battery == nil:
		return LevelUnknown
	case *battery >= 50:
		return LevelOK
	case *battery >= 20:
		return LevelWarning
	default:
		return LevelCritical
	}
}

// View is what the dashboard shows for the selected moto.
type View struct {
	MotoID       string
	Status       *models.MotoStatus
	StatusLevel  Level
	Battery      *float64
	BatteryLevel Level
	Accel        *float64
	Lat          *float64
	Lon          *float64
	MapURL       string
	Events       []models.Event
}

// Dashboard caches the last load of statuses, telemetry and events.
type Dashboard struct {
	api    iotapi.Client
	tr     *i18n.Translator
	logger *zap.Logger

	mu        sync.Mutex
	statuses  []models.MotoStatus
	telemetry []models.Telemetry
	events    []models.Event
	selected  string
}

// NewDashboard returns an empty dashboard; call Load to fill it.
func NewDashboard(api iotapi.Client, tr *i18n.Translator, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("")
	}
	return &Dashboard{api: api, tr: tr, logger: logger}
}

// Load fetches statuses, telemetry and events concurrently. Nothing is replaced unless
// all three succeed. The first moto is selected when none is, or the selected one is gone.
func (d *Dashboard) Load(ctx context.Context) error {
	var (
		statuses  []models.MotoStatus
		telemetry []models.Telemetry
		events    []models.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = d.api.AllStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		telemetry, err = d.api.LatestTelemetry(gctx, telemetryLimit)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = d.api.LatestEvents(gctx, eventLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		d.logger.Warn("iot dashboard load failed", zap.Error(err))
		return apperrors.ExternalError(d.tr.T("iot.errors.load"), err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses, d.telemetry, d.events = statuses, telemetry, events
	if d.indexOf(d.selected) < 0 {
		d.selected = ""
		if len(statuses) > 0 {
			d.selected = statuses[0].MotoID
		}
	}
	return nil
}

// Motos lists the loaded statuses.
func (d *Dashboard) Motos() []models.MotoStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.MotoStatus(nil), d.statuses...)
}

// Selected returns the selected moto id, or "" when nothing is loaded.
func (d *Dashboard) Selected() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// Select picks a loaded moto.
func (d *Dashboard) Select(motoID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(motoID) < 0 {
		return apperrors.NotFoundError(d.tr.T("iot.errors.notFound"))
	}
	d.selected = motoID
	return nil
}

// Next moves the selection to the following moto, wrapping around.
func (d *Dashboard) Next() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.statuses) == 0 {
		return ""
	}
	i := d.indexOf(d.selected)
	d.selected = d.statuses[(i+1)%len(d.statuses)].MotoID
	return d.selected
}

// View assembles the selected moto's panel. Telemetry and events arrive newest first, so
// the first match of each type is the latest reading.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{MotoID: d.selected, StatusLevel: LevelUnknown, BatteryLevel: LevelUnknown}
	if d.selected == "" {
		return v
	}

	if i := d.indexOf(d.selected); i >= 0 {
		st := d.statuses[i]
		v.Status = &st
		v.StatusLevel = StatusLevel(st.Status)
	}

	var battery, accel, gps *models.Telemetry
	for i := range d.telemetry {
		t := &d.telemetry[i]
		if t.MotoID != d.selected {
			continue
		}
		switch t.Type {
		case models.TelemetryBattery:
			if battery == nil {
				battery = t
			}
		case models.TelemetryAccel:
			if accel == nil {
				accel = t
			}
		case models.TelemetryGPS:
			if gps == nil {
				gps = t
			}
		}
	}

	if battery != nil {
		v.Battery = payloadNumber(battery.Payload, "battery")
	}
	if v.Battery == nil && v.Status != nil {
		v.Battery = v.Status.Battery
	}
	v.BatteryLevel = BatteryLevel(v.Battery)

	if accel != nil {
		v.Accel = payloadNumber(accel.Payload, "accel")
	}

	if gps != nil {
		v.Lat, v.Lon = payloadNumber(gps.Payload, "lat"), payloadNumber(gps.Payload, "lon")
	}
	if (v.Lat == nil || v.Lon == nil) && v.Status != nil {
		v.Lat, v.Lon = v.Status.Lat, v.Status.Lon
	}
	if v.Lat != nil && v.Lon != nil {
		v.MapURL = fmt.Sprintf(mapsURL, *v.Lat, *v.Lon)
	}

	for _, e := range d.events {
		if e.MotoID == d.selected {
			v.Events = append(v.Events, e)
		}
	}
	return v
}

// SendAlert records a manual alert for the selected moto and reloads the dashboard so the
// alert shows among the events. An empty message uses the default alert text.
func (d *Dashboard) SendAlert(ctx context.Context, message string) (*models.AlertResult, error) {
	motoID := d.Selected()
	if motoID == "" {
		return nil, apperrors.NotFoundError(d.tr.T("iot.errors.notFound"))
	}
	if strings.TrimSpace(message) == "" {
		message = d.tr.T("iot.alertDefault", motoID)
	}

	res, err := d.api.SendAlert(ctx, motoID, message)
	if err != nil {
		d.logger.Warn("send alert failed", zap.String("moto_id", motoID), zap.Error(err))
		return nil, apperrors.ExternalError(d.tr.T("iot.errors.alert"), err)
	}

	if err := d.Load(ctx); err != nil {
		d.logger.Warn("reload after alert failed", zap.Error(err))
	}
	return res, nil
}

// SendCommand publishes a command to the selected moto.
func (d *Dashboard) SendCommand(ctx context.Context, command string, params map[string]any) (*models.CommandResult, error) {
	motoID := d.Selected()
	if motoID == "" {
		return nil, apperrors.NotFoundError(d.tr.T("iot.errors.notFound"))
	}

	res, err := d.api.SendCommand(ctx, motoID, models.CommandRequest{Command: command, Params: params})
	if err != nil {
		d.logger.Warn("send command failed", zap.String("moto_id", motoID), zap.String("command", command), zap.Error(err))
		return nil, apperrors.ExternalError(d.tr.T("iot.errors.command"), err)
	}
	return res, nil
}

// indexOf must be called with d.mu held.
func (d *Dashboard) indexOf(motoID string) int {
	if motoID == "" {
		return -1
	}
	for i, s := range d.statuses {
		if s.MotoID == motoID {
			return i
		}
	}
	return -1
}

func payloadNumber(payload map[string]any, key string) *float64 {
	switch n := payload[key].(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}
