package telemetry

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// Epoch values above this are taken as milliseconds.
const epochMillisCutoff = 1e12

// Standardize extracts the common telemetry shape from a decoded message.
//
// The type comes from the "type" field, else from the topic: sensors/<type>/...,
// parking/... and cv/... The moto id is the first of moto_id, id and vehicle_id.
// Numeric timestamps are read as Unix epoch seconds or milliseconds.
func Standardize(topic string, data map[string]any, now time.Time) models.Telemetry {
	t := models.Telemetry{
		MotoID:    firstString(data, "moto_id", "id", "vehicle_id"),
		Type:      stringField(data, "type"),
		Payload:   map[string]any{},
		Timestamp: timestampField(data),
	}

	if t.Type == "" {
		t.Type = typeFromTopic(topic)
	}
	if t.MotoID == "" {
		t.MotoID = "unknown"
	}
	if payload, ok := data["payload"].(map[string]any); ok && payload != nil {
		t.Payload = payload
	}
	if t.Timestamp == "" {
		t.Timestamp = now.UTC().Format(models.TimestampLayout)
	}
	return t
}

// rawDocument is the stored form of a message: every decoded field, with the
// standardized moto_id, type, timestamp and payload written over the originals.
// An original that differs is kept under a "_raw_" prefix.
func rawDocument(topic string, data map[string]any, t models.Telemetry, now time.Time) map[string]any {
	doc := make(map[string]any, len(data)+6)
	for k, v := range data {
		doc[k] = v
	}

	standard := map[string]any{
		"moto_id":   t.MotoID,
		"type":      t.Type,
		"timestamp": t.Timestamp,
		"payload":   t.Payload,
	}
	for key, value := range standard {
		if orig, ok := data[key]; ok && !reflect.DeepEqual(orig, value) {
			doc["_raw_"+key] = orig
		}
		doc[key] = value
	}

	doc["_received_at"] = now
	doc["_topic"] = topic
	return doc
}

func typeFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	switch {
	case parts[0] == "sensors" && len(parts) > 1 && parts[1] != "":
		return parts[1]
	case parts[0] == "parking":
		return models.TelemetryParking
	case parts[0] == "cv":
		return models.TelemetryCVEvent
	default:
		return models.TelemetryUnknown
	}
}

func timestampField(data map[string]any) string {
	epoch, ok := data["timestamp"].(float64)
	if !ok {
		return stringField(data, "timestamp")
	}
	if epoch > epochMillisCutoff {
		return time.UnixMilli(int64(epoch)).UTC().Format(models.TimestampLayout)
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Format(models.TimestampLayout)
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(data, key); v != "" {
			return v
		}
	}
	return ""
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
