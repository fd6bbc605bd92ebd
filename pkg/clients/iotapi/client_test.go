package iotapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

func newServer(t *testing.T, mux *http.ServeMux) *APIClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestLatestTelemetryPassesLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/telemetry/latest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `[{"moto_id":"MOTO1","type":"battery","payload":{"battery":55.5},"timestamp":"2024-01-01T00:00:00"}]`)
	})

	out, err := newServer(t, mux).LatestTelemetry(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 55.5, out[0].Payload["battery"])
}

func TestStatusNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status/MOTO9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"Moto não encontrada","type":"not_found"}`)
	})

	_, err := newServer(t, mux).Status(context.Background(), "MOTO9")
	require.ErrorIs(t, err, ErrMotoNotFound)
	assert.Contains(t, err.Error(), "Moto não encontrada")
}

func TestSendCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/motos/MOTO1/command", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req models.CommandRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.CommandForceMaintenance, req.Command)

		writeJSON(w, http.StatusOK, `{"ok":true,"topic":"commands/MOTO1","payload":{"moto_id":"MOTO1","command":"force_maintenance","params":{}}}`)
	})

	resp, err := newServer(t, mux).SendCommand(context.Background(), "MOTO1", models.CommandRequest{Command: models.CommandForceMaintenance})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "commands/MOTO1", resp.Topic)
}

func TestSendAlertServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/motos/MOTO1/alert", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"Erro ao registrar alerta no banco","type":"internal"}`)
	})

	_, err := newServer(t, mux).SendAlert(context.Background(), "MOTO1", "pneu furado")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
}

func TestRegisterDeviceSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer id-token" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"token inválido","type":"unauthorized"}`)
			return
		}
		var device models.Device
		require.NoError(t, json.NewDecoder(r.Body).Decode(&device))
		assert.Equal(t, "ExponentPushToken[abc]", device.Token)
		writeJSON(w, http.StatusCreated, `{"token":"ExponentPushToken[abc]"}`)
	})

	client := newServer(t, mux)
	require.NoError(t, client.RegisterDevice(context.Background(), "id-token", models.Device{Token: "ExponentPushToken[abc]"}))

	err := client.RegisterDevice(context.Background(), "", models.Device{Token: "ExponentPushToken[abc]"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
}
