package models

import "strings"

// OperatorCommandType enumerates the commands operators can send over WhatsApp.
type OperatorCommandType string

const (
	OperatorStatus      OperatorCommandType = "status"
	OperatorMaintenance OperatorCommandType = "maintenance"
	OperatorRelease     OperatorCommandType = "release"
	OperatorAlert       OperatorCommandType = "alert"
	OperatorReport      OperatorCommandType = "report"
	OperatorUnknown     OperatorCommandType = "unknown"
)

// OperatorCommand represents a parsed instruction extracted from WhatsApp text.
type OperatorCommand struct {
	Type   OperatorCommandType
	Raw    string
	MotoID string
	Args   []string
}

// ParseOperatorCommand derives an OperatorCommand from free-form text messages.
// Moto identifiers are upper-cased; everything after the moto id is kept as arguments.
func ParseOperatorCommand(message string) OperatorCommand {
	cmd := OperatorCommand{Type: OperatorUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch OperatorCommandType(head) {
	case OperatorStatus, OperatorMaintenance, OperatorRelease, OperatorAlert, OperatorReport:
		cmd.Type = OperatorCommandType(head)
	default:
		return cmd
	}

	if len(tokens) > 1 {
		cmd.MotoID = strings.ToUpper(tokens[1])
	}
	if len(tokens) > 2 {
		cmd.Args = tokens[2:]
	}

	return cmd
}

// NeedsMoto reports whether the command targets a specific moto.
func (c OperatorCommand) NeedsMoto() bool {
	switch c.Type {
	case OperatorMaintenance, OperatorRelease, OperatorAlert:
		return true
	default:
		return false
	}
}
