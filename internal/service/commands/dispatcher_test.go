package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, payload: payload})
	return nil
}

type fakeStatus struct {
	statuses map[string]models.MotoStatus
	commands []string
	alerts   []string
	sources  []string
	applyErr error
}

func (f *fakeStatus) ApplyCommand(_ context.Context, motoID, command, source string) (*models.MotoStatus, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.commands = append(f.commands, motoID+":"+command)
	f.sources = append(f.sources, source)
	st := f.statuses[motoID]
	return &st, nil
}

func (f *fakeStatus) RecordManualAlert(_ context.Context, motoID, message, source string) (*models.Event, error) {
	if _, ok := f.statuses[motoID]; !ok {
		return nil, apperrors.NotFoundError("Moto não encontrada")
	}
	f.alerts = append(f.alerts, motoID+":"+message)
	f.sources = append(f.sources, source)
	return &models.Event{MotoID: motoID, Type: models.EventManualAlert, Reason: message}, nil
}

func (f *fakeStatus) Status(_ context.Context, motoID string) (*models.MotoStatus, error) {
	st, ok := f.statuses[motoID]
	if !ok {
		return nil, apperrors.NotFoundError("Moto não encontrada")
	}
	return &st, nil
}

func (f *fakeStatus) AllStatus(context.Context) ([]models.MotoStatus, error) {
	out := make([]models.MotoStatus, 0, len(f.statuses))
	for _, st := range f.statuses {
		out = append(out, st)
	}
	return out, nil
}

type fakeReports struct{ err error }

func (f fakeReports) GenerateDailyReport(context.Context) (string, error) {
	return "Relatório", f.err
}

func newDispatcher() (*Service, *fakePublisher, *fakeStatus) {
	battery := 12.0
	pub := &fakePublisher{}
	status := &fakeStatus{statuses: map[string]models.MotoStatus{
		"MOTO1": {MotoID: "MOTO1", Status: models.StatusMaintenanceNeeded, Battery: &battery, Reasons: []string{"battery_low (12.0%)"}},
	}}
	return NewService(pub, status, fakeReports{}, i18n.New("pt"), nil), pub, status
}

func TestSendMotoCommandPublishesEnvelope(t *testing.T) {
	svc, pub, status := newDispatcher()

	res, err := svc.SendMotoCommand(context.Background(), "MOTO1", models.CommandRequest{Command: "force_maintenance"}, "api")
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, "commands/MOTO1", res.Topic)
	assert.Equal(t, map[string]any{}, res.Payload.Params)

	require.Len(t, pub.sent, 1)
	var envelope models.CommandEnvelope
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &envelope))
	assert.Equal(t, "MOTO1", envelope.MotoID)
	assert.Equal(t, "force_maintenance", envelope.Command)
	assert.Equal(t, []string{"MOTO1:force_maintenance"}, status.commands)
}

func TestSendMotoCommandErrors(t *testing.T) {
	svc, pub, status := newDispatcher()

	_, err := svc.SendMotoCommand(context.Background(), "MOTO1", models.CommandRequest{Command: " "}, "api")
	assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))

	pub.err = errors.New("broker offline")
	_, err = svc.SendMotoCommand(context.Background(), "MOTO1", models.CommandRequest{Command: "beep"}, "api")
	assert.True(t, apperrors.IsType(err, apperrors.TypeExternal))
	assert.Empty(t, status.commands)
}

func TestSendMotoCommandSurvivesStatusFailure(t *testing.T) {
	svc, pub, status := newDispatcher()
	status.applyErr = apperrors.InternalError("failed to update status", errors.New("mongo down"))

	res, err := svc.SendMotoCommand(context.Background(), "MOTO1", models.CommandRequest{Command: "force_maintenance"}, "api")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Len(t, pub.sent, 1)
}

func TestHandleCommand(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		contains string
		wantErr  error
	}{
		{name: "help", text: "hello", contains: "Comandos:"},
		{name: "status", text: "/status moto1", contains: "MOTO1: maintenance_needed"},
		{name: "status reasons", text: "/status MOTO1", contains: "Motivos: battery_low"},
		{name: "fleet summary", text: "/status", contains: "MOTO1: maintenance_needed"},
		{name: "maintenance", text: "/maintenance MOTO1", contains: "Comando force_maintenance enviado para MOTO1."},
		{name: "release", text: "/release MOTO1", contains: "release_maintenance"},
		{name: "alert", text: "/alert MOTO1 pneu furado", contains: "Alerta registrado para MOTO1."},
		{name: "report", text: "/report", contains: "Relatório"},
		{name: "missing moto", text: "/maintenance", contains: "Informe a moto", wantErr: ErrInvalidArguments},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newDispatcher()
			reply, err := svc.HandleCommand(context.Background(), models.ParseOperatorCommand(tc.text), "5511")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, reply, tc.contains)
		})
	}
}

func TestHandleCommandUnknownMoto(t *testing.T) {
	svc, _, status := newDispatcher()

	reply, err := svc.HandleCommand(context.Background(), models.ParseOperatorCommand("/alert MOTO9"), "5511")
	require.Error(t, err)
	assert.Equal(t, "Moto MOTO9 não encontrada.", reply)
	assert.Empty(t, status.alerts)
}

func TestHandleCommandAlertDefaultsMessageAndSource(t *testing.T) {
	svc, _, status := newDispatcher()

	_, err := svc.HandleCommand(context.Background(), models.ParseOperatorCommand("/alert MOTO1"), "5511")
	require.NoError(t, err)
	assert.Equal(t, []string{"MOTO1:Alerta enviado pelo operador via WhatsApp."}, status.alerts)
	assert.Equal(t, []string{"whatsapp:5511"}, status.sources)
}

func TestHandleCommandReportFailure(t *testing.T) {
	svc := NewService(&fakePublisher{}, &fakeStatus{}, fakeReports{err: errors.New("mongo down")}, nil, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseOperatorCommand("/report"), "5511")
	require.Error(t, err)
	assert.Equal(t, "Não foi possível executar o comando.", reply)
}
