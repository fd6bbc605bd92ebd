package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// CommandTopicPrefix is the MQTT topic prefix motos subscribe to.
const CommandTopicPrefix = "commands/"

// Publisher sends a payload to the broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// FleetStatus is the subset of the telemetry service the dispatcher drives.
type FleetStatus interface {
	ApplyCommand(ctx context.Context, motoID, command, source string) (*models.MotoStatus, error)
	RecordManualAlert(ctx context.Context, motoID, message, source string) (*models.Event, error)
	Status(ctx context.Context, motoID string) (*models.MotoStatus, error)
	AllStatus(ctx context.Context) ([]models.MotoStatus, error)
}

// ReportGenerator renders the fleet report on demand.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context) (string, error)
}

// Dispatcher executes operator commands coming from the API and from WhatsApp.
type Dispatcher interface {
	SendMotoCommand(ctx context.Context, motoID string, req models.CommandRequest, source string) (*models.CommandResult, error)
	HandleCommand(ctx context.Context, cmd models.OperatorCommand, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	publisher Publisher
	status    FleetStatus
	reports   ReportGenerator
	tr        *i18n.Translator
	logger    *zap.Logger
}

// NewService constructs a command dispatcher. reports may be nil.
func NewService(publisher Publisher, status FleetStatus, reports ReportGenerator, tr *i18n.Translator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("pt")
	}
	return &Service{
		publisher: publisher,
		status:    status,
		reports:   reports,
		tr:        tr,
		logger:    logger,
	}
}

// SendMotoCommand publishes a command on commands/<moto_id> and applies it to the moto status.
func (s *Service) SendMotoCommand(ctx context.Context, motoID string, req models.CommandRequest, source string) (*models.CommandResult, error) {
	motoID = strings.TrimSpace(motoID)
	command := strings.TrimSpace(req.Command)
	if motoID == "" || command == "" {
		return nil, apperrors.ValidationError("moto_id and command are required")
	}

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	envelope := models.CommandEnvelope{MotoID: motoID, Command: command, Params: params}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, apperrors.ValidationError("params must be JSON serializable")
	}

	topic := CommandTopicPrefix + motoID
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		return nil, apperrors.ExternalError("failed to publish command", err)
	}

	s.logger.Info("command published", zap.String("moto_id", motoID), zap.String("command", command), zap.String("source", source))

	// The moto already has the command, so a status failure does not fail the request.
	if _, err := s.status.ApplyCommand(ctx, motoID, command, source); err != nil {
		s.logger.Error("failed to apply command to status", zap.String("moto_id", motoID), zap.String("command", command), zap.Error(err))
	}

	return &models.CommandResult{OK: true, Topic: topic, Payload: envelope}, nil
}

// HandleCommand runs an operator command and returns the reply to send back. The reply is
// set even when an error is returned.
func (s *Service) HandleCommand(ctx context.Context, cmd models.OperatorCommand, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.String("moto_id", cmd.MotoID))

	if cmd.NeedsMoto() && cmd.MotoID == "" {
		return s.tr.T("ops.missingMoto"), ErrInvalidArguments
	}
	source := "whatsapp:" + sender

	switch cmd.Type {
	case models.OperatorUnknown:
		return s.tr.T("ops.help"), nil
	case models.OperatorStatus:
		if cmd.MotoID == "" {
			return s.fleetSummary(ctx)
		}
		return s.motoStatus(ctx, cmd.MotoID)
	case models.OperatorMaintenance:
		return s.sendCommand(ctx, cmd.MotoID, models.CommandForceMaintenance, source)
	case models.OperatorRelease:
		return s.sendCommand(ctx, cmd.MotoID, models.CommandReleaseMaintenance, source)
	case models.OperatorAlert:
		message := strings.Join(cmd.Args, " ")
		if message == "" {
			message = s.tr.T("ops.alertDefault")
		}
		if _, err := s.status.RecordManualAlert(ctx, cmd.MotoID, message, source); err != nil {
			return s.failure(cmd.MotoID, err)
		}
		return s.tr.T("ops.alertRecorded", cmd.MotoID), nil
	case models.OperatorReport:
		if s.reports == nil {
			return s.tr.T("ops.failed"), ErrUnsupportedCommand
		}
		report, err := s.reports.GenerateDailyReport(ctx)
		if err != nil {
			return s.tr.T("ops.failed"), fmt.Errorf("generate report: %w", err)
		}
		return report, nil
	default:
		return s.tr.T("ops.help"), ErrUnsupportedCommand
	}
}

func (s *Service) sendCommand(ctx context.Context, motoID, command, source string) (string, error) {
	if _, err := s.SendMotoCommand(ctx, motoID, models.CommandRequest{Command: command}, source); err != nil {
		return s.failure(motoID, err)
	}
	return s.tr.T("ops.commandSent", command, motoID), nil
}

func (s *Service) motoStatus(ctx context.Context, motoID string) (string, error) {
	status, err := s.status.Status(ctx, motoID)
	if err != nil {
		return s.failure(motoID, err)
	}
	return s.describe(*status), nil
}

func (s *Service) fleetSummary(ctx context.Context) (string, error) {
	statuses, err := s.status.AllStatus(ctx)
	if err != nil {
		return s.tr.T("ops.failed"), err
	}
	if len(statuses) == 0 {
		return s.tr.T("ops.empty"), nil
	}

	lines := make([]string, 0, len(statuses))
	for _, st := range statuses {
		lines = append(lines, s.tr.T("ops.status", st.MotoID, st.Status))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) describe(status models.MotoStatus) string {
	lines := []string{s.tr.T("ops.status", status.MotoID, status.Status)}
	if status.Battery != nil {
		lines = append(lines, s.tr.T("ops.battery", *status.Battery))
	}
	if len(status.Reasons) > 0 {
		lines = append(lines, s.tr.T("ops.reasons", strings.Join(status.Reasons, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) failure(motoID string, err error) (string, error) {
	if apperrors.IsType(err, apperrors.TypeNotFound) {
		return s.tr.T("ops.notFound", motoID), err
	}
	return s.tr.T("ops.failed"), err
}
