package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldServer     = "server"
	FieldTool       = "tool"
	FieldMode       = "mode"
	FieldReason     = "reason"
	FieldRequestID  = "request_id"
	FieldDurationMs = "duration_ms"
)

const (
	EventConnectAttempt    = "connect_attempt"
	EventConnectSuccess    = "connect_success"
	EventConnectExcluded   = "connect_excluded"
	EventCredentialMissing = "credential_missing"
	EventDiscovery         = "discovery"
	EventExecute           = "execute"
	EventExecuteError      = "execute_error"
)

const (
	ModeReal      = "real"
	ModeSimulated = "simulated"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ServerField(server string) zap.Field {
	return zap.String(FieldServer, server)
}

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func ModeField(mode string) zap.Field {
	return zap.String(FieldMode, mode)
}

func ReasonField(reason string) zap.Field {
	return zap.String(FieldReason, reason)
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}
