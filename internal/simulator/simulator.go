// Package simulator generates moto telemetry for local testing of the ingestion
// pipeline and answers maintenance commands the way the motos do.
package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// Starting point of every moto, central São Paulo.
const (
	originLat = -23.550520
	originLon = -46.633308
	walkStep  = 0.0005
)

// CommandTopic is what the simulator subscribes to.
const CommandTopic = "commands/+"

// Publisher sends one MQTT message.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Reading is one message to publish.
type Reading struct {
	Topic     string
	Telemetry models.Telemetry
}

// Moto is the simulated state of one vehicle.
type Moto struct {
	ID string

	mu          sync.Mutex
	rnd         *rand.Rand
	lat, lon    float64
	battery     float64
	maintenance bool
}

// NewMoto places a moto near the origin with a random battery charge.
func NewMoto(id string, rnd *rand.Rand) *Moto {
	return &Moto{
		ID:      id,
		rnd:     rnd,
		lat:     originLat + (rnd.Float64()*2-1)*0.01,
		lon:     originLon + (rnd.Float64()*2-1)*0.01,
		battery: 30 + rnd.Float64()*70,
	}
}

// Maintenance reports whether an operator forced maintenance.
func (m *Moto) Maintenance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maintenance
}

// Battery returns the current charge.
func (m *Moto) Battery() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.battery
}

// Tick advances the moto one step: gps, accel, battery and diagnostic readings every
// time, a parking reading one tick in ten. Batteries drain faster in maintenance mode.
func (m *Moto) Tick(now time.Time) []Reading {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := now.UTC().Format(models.TimestampLayout)
	reading := func(topicKind, kind string, payload map[string]any) Reading {
		return Reading{
			Topic:     fmt.Sprintf("%s/%s", topicKind, m.ID),
			Telemetry: models.Telemetry{MotoID: m.ID, Type: kind, Timestamp: stamp, Payload: payload},
		}
	}

	m.lat += (m.rnd.Float64() - 0.5) * walkStep
	m.lon += (m.rnd.Float64() - 0.5) * walkStep

	drain := 0.01 + m.rnd.Float64()*0.19
	if m.maintenance {
		drain = 0.5 + m.rnd.Float64()
	}
	m.battery = math.Max(0, m.battery-drain)

	out := []Reading{
		reading("sensors/gps", models.TelemetryGPS, map[string]any{
			"lat": m.lat, "lon": m.lon, "speed": round2(m.rnd.Float64() * 40),
		}),
		reading("sensors/accel", models.TelemetryAccel, map[string]any{"accel": round2(m.rnd.Float64() * 3.5)}),
		reading("sensors/battery", models.TelemetryBattery, map[string]any{"battery": round2(m.battery)}),
	}

	if m.rnd.Float64() < 0.1 {
		spot := "normal"
		if m.rnd.Float64() < 0.05 {
			spot = "maintenance"
		}
		out = append(out, reading("parking/spot", models.TelemetryParking, map[string]any{"spot_type": spot}))
	}

	out = append(out, reading("sensors/diagnostic", models.TelemetryDiagnostic, m.diagnostic()))
	return out
}

// diagnostic reports a critical fault 5% of the time and a mild one 10% of the time.
func (m *Moto) diagnostic() map[string]any {
	r := m.rnd.Float64()
	switch {
	case r < 0.05:
		return map[string]any{"fault": true, "code": "engine_fail", "severity": "high", "description": "Falha crítica no motor"}
	case r < 0.15:
		return map[string]any{"fault": true, "code": "battery_degradation", "severity": "medium", "description": "Desgaste de bateria detectado"}
	default:
		return map[string]any{"fault": false}
	}
}

// Apply handles a command envelope. Unknown commands are ignored.
func (m *Moto) Apply(cmd models.CommandEnvelope) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch cmd.Command {
	case models.CommandForceMaintenance:
		m.maintenance = true
	case models.CommandReleaseMaintenance:
		m.maintenance = false
	default:
		return false
	}
	return true
}

// Fleet drives several motos from one ticker.
type Fleet struct {
	motos    map[string]*Moto
	order    []string
	pub      Publisher
	interval time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger
}

// NewFleet builds a fleet for ids. A nil clock uses the real clock.
func NewFleet(ids []string, pub Publisher, interval time.Duration, clock clockwork.Clock, seed int64, logger *zap.Logger) *Fleet {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rnd := rand.New(rand.NewSource(seed))

	f := &Fleet{motos: make(map[string]*Moto, len(ids)), pub: pub, interval: interval, clock: clock, logger: logger}
	for _, id := range ids {
		if _, dup := f.motos[id]; dup {
			continue
		}
		// each moto gets its own source so they can tick concurrently with commands
		f.motos[id] = NewMoto(id, rand.New(rand.NewSource(rnd.Int63())))
		f.order = append(f.order, id)
	}
	return f
}

// Moto returns the simulated moto with id, or nil.
func (f *Fleet) Moto(id string) *Moto {
	return f.motos[id]
}

// Step publishes one tick of every moto. Publish failures are logged and skipped.
func (f *Fleet) Step(ctx context.Context) int {
	now := f.clock.Now()
	sent := 0
	for _, id := range f.order {
		for _, r := range f.motos[id].Tick(now) {
			payload, err := json.Marshal(r.Telemetry)
			if err != nil {
				f.logger.Error("encode reading", zap.String("moto_id", id), zap.Error(err))
				continue
			}
			if err := f.pub.Publish(ctx, r.Topic, payload); err != nil {
				f.logger.Warn("publish reading failed", zap.String("topic", r.Topic), zap.Error(err))
				continue
			}
			f.logger.Debug("published", zap.String("topic", r.Topic), zap.ByteString("payload", payload))
			sent++
		}
	}
	return sent
}

// Run publishes a tick right away and then every interval until ctx is done.
func (f *Fleet) Run(ctx context.Context) error {
	ticker := f.clock.NewTicker(f.interval)
	defer ticker.Stop()

	f.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			f.Step(ctx)
		}
	}
}

// HandleCommand is the MQTT handler for commands/<moto_id>.
func (f *Fleet) HandleCommand(_ context.Context, topic string, payload []byte) error {
	id := strings.TrimPrefix(topic, "commands/")
	moto := f.motos[id]
	if moto == nil {
		return nil
	}

	var cmd models.CommandEnvelope
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode command for %s: %w", id, err)
	}
	if moto.Apply(cmd) {
		f.logger.Info("command applied", zap.String("moto_id", id), zap.String("command", cmd.Command))
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
