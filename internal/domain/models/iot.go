package models

import "time"

// TimestampLayout is the UTC timestamp format used in telemetry and event documents.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Telemetry types published by the motos and the yard sensors.
const (
	TelemetryGPS        = "gps"
	TelemetryBattery    = "battery"
	TelemetryAccel      = "accel"
	TelemetryParking    = "parking"
	TelemetryDiagnostic = "diagnostic"
	TelemetryCVEvent    = "cv_event"
	TelemetryUnknown    = "unknown"
)

// Consolidated moto statuses.
const (
	StatusUnknown           = "unknown"
	StatusOK                = "ok"
	StatusMaintenanceNeeded = "maintenance_needed"
	StatusMaintenanceForced = "maintenance_forced"
	StatusOutOfArea         = "alert_out_of_area"
	StatusCriticalFault     = "critical_fault"
)

// Event types.
const (
	EventMaintenanceAlert = "maintenance_alert"
	EventGeoAlert         = "geo_alert"
	EventCriticalFault    = "critical_fault"
	EventManualAlert      = "manual_alert"
	EventCommand          = "command"
)

// Commands understood by the motos.
const (
	CommandForceMaintenance   = "force_maintenance"
	CommandReleaseMaintenance = "release_maintenance"
)

// Telemetry is the standardized form of a sensor reading. ReceivedAt and Topic are
// set on stored documents only.
type Telemetry struct {
	MotoID     string         `json:"moto_id" bson:"moto_id"`
	Type       string         `json:"type" bson:"type"`
	Payload    map[string]any `json:"payload" bson:"payload"`
	Timestamp  string         `json:"timestamp" bson:"timestamp"`
	ReceivedAt time.Time      `json:"_received_at,omitempty" bson:"_received_at,omitempty"`
	Topic      string         `json:"_topic,omitempty" bson:"_topic,omitempty"`
}

// Event is a notable occurrence recorded for a moto (rule alerts, manual alerts, CV detections).
type Event struct {
	MotoID    string         `json:"moto_id" bson:"moto_id"`
	Type      string         `json:"type" bson:"type"`
	Reason    string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Source    string         `json:"source,omitempty" bson:"source,omitempty"`
	Details   map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	Payload   map[string]any `json:"payload,omitempty" bson:"payload,omitempty"`
	Timestamp string         `json:"timestamp" bson:"timestamp"`
	CreatedAt time.Time      `json:"_created_at" bson:"_created_at"`
}

// MotoStatus is the consolidated view of a moto built from its telemetry.
type MotoStatus struct {
	MotoID       string         `json:"moto_id" bson:"moto_id"`
	Status       string         `json:"status" bson:"status"`
	Reasons      []string       `json:"reasons" bson:"reasons"`
	Battery      *float64       `json:"battery,omitempty" bson:"battery,omitempty"`
	Lat          *float64       `json:"lat,omitempty" bson:"lat,omitempty"`
	Lon          *float64       `json:"lon,omitempty" bson:"lon,omitempty"`
	Speed        *float64       `json:"speed,omitempty" bson:"speed,omitempty"`
	Accel        *float64       `json:"accel,omitempty" bson:"accel,omitempty"`
	Moving       *bool          `json:"moving,omitempty" bson:"moving,omitempty"`
	SpotType     string         `json:"spot_type,omitempty" bson:"spot_type,omitempty"`
	Fault        *bool          `json:"fault,omitempty" bson:"fault,omitempty"`
	DiagCode     string         `json:"diag_code,omitempty" bson:"diag_code,omitempty"`
	DiagSeverity string         `json:"diag_severity,omitempty" bson:"diag_severity,omitempty"`
	Diagnostic   map[string]any `json:"diagnostic,omitempty" bson:"diagnostic,omitempty"`
	LastUpdate   string         `json:"last_update,omitempty" bson:"last_update,omitempty"`
	ReceivedAt   time.Time      `json:"_received_at" bson:"_received_at"`
}

// CommandRequest is sent by operators to a moto over MQTT.
type CommandRequest struct {
	Command string         `json:"command" binding:"required"`
	Params  map[string]any `json:"params"`
}

// CommandEnvelope is the MQTT payload delivered on commands/<moto_id>.
type CommandEnvelope struct {
	MotoID  string         `json:"moto_id"`
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// AlertRequest registers a manual alert for a moto.
type AlertRequest struct {
	Message string `json:"message" binding:"required"`
}

// Device is a push-capable device registered for alert delivery.
type Device struct {
	Token        string    `json:"token" bson:"token" binding:"required"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}

// CommandResult echoes a published command.
type CommandResult struct {
	OK      bool            `json:"ok"`
	Topic   string          `json:"topic"`
	Payload CommandEnvelope `json:"payload"`
}

// AlertResult returns a recorded manual alert.
type AlertResult struct {
	OK    bool  `json:"ok"`
	Event Event `json:"event"`
}
