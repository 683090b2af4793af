package domain

import (
	"context"
	"time"
)

// ServerDefinition is one entry of the bridge configuration. Definitions are
// immutable once loaded; the runtime state lives on ServerConnection.
type ServerDefinition struct {
	Name        string            `json:"name"`
	Command     []string          `json:"command"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	// Env maps internal config keys to the environment variable that
	// supplies their value, e.g. apiKey -> BRAVE_API_KEY.
	Env map[string]string `json:"env,omitempty"`
}

type ConnectionStatus string

const (
	StatusConnecting ConnectionStatus = "connecting"
	StatusReady      ConnectionStatus = "ready"
	StatusExcluded   ConnectionStatus = "excluded"
)

// ServerConnection is the runtime companion of a ServerDefinition. It is
// built once during the startup sweep and read-only afterwards; there is no
// reconnection path.
type ServerConnection struct {
	Definition ServerDefinition
	Status     ConnectionStatus
	// Identity is the strategy key the server resolved to, set during
	// catalog discovery. Unrecognized servers keep their own name.
	Identity string
	// Credentials holds resolved env values keyed by config key. A declared
	// credential that was absent from the environment is simply missing here.
	Credentials map[string]string
	Tools       []Tool
	// Retries is reserved for a future reconnect path and never used.
	Retries int
}

// HasTool reports whether the discovered catalog contains name.
func (c *ServerConnection) HasTool(name string) bool {
	for _, t := range c.Tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Credential returns the resolved value for a config key, empty when the
// environment variable was not set at connect time.
func (c *ServerConnection) Credential(key string) string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials[key]
}

// Tool is one named operation exposed by a server. Names are unique within
// their server.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ExecutionRequest struct {
	Server string         `json:"server"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
}

// ExecutionResult is the uniform response shape for every execute call.
// Strategy failures are carried in Success/Error; the transport level only
// fails on structural problems (unknown server, unknown tool).
type ExecutionResult struct {
	RequestID  string               `json:"requestId"`
	Success    bool                 `json:"success"`
	Server     string               `json:"server"`
	Tool       string               `json:"tool"`
	Args       map[string]any       `json:"args,omitempty"`
	Payload    map[string]any       `json:"payload,omitempty"`
	Error      string               `json:"error,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	Duration   time.Duration        `json:"duration"`
	Simulation SimulationAnnotation `json:"simulation"`
}

type SimulationReason string

const (
	ReasonNone                SimulationReason = "none"
	ReasonForcedMockMode      SimulationReason = "forced_mock_mode"
	ReasonMissingCredential   SimulationReason = "missing_credential"
	ReasonPassthroughFallback SimulationReason = "passthrough_fallback"
)

type Confidence string

const (
	ConfidenceRealData Confidence = "real_data"
	ConfidenceMockData Confidence = "mock_data"
)

type ServerHealth string

const (
	ServerOperational ServerHealth = "operational"
	ServerDegraded    ServerHealth = "degraded"
)

// SimulationAnnotation tells the caller whether a result came from a real
// backend or the synthetic path, and why. Every ExecutionResult carries
// exactly one.
type SimulationAnnotation struct {
	Simulated    bool             `json:"isSimulated"`
	Reason       SimulationReason `json:"reason"`
	Confidence   Confidence       `json:"confidence"`
	ServerStatus ServerHealth     `json:"serverStatus"`
	Warning      string           `json:"warning,omitempty"`
	Guidance     string           `json:"guidance,omitempty"`
}

// SimulationDecision is the outcome of the routing decision, separate from
// the dispatch so both can be tested on their own.
type SimulationDecision struct {
	Simulated bool
	Reason    SimulationReason
	Guidance  string
}

// Strategy is a concrete real integration for one server identity.
// Discover returns the authoritative tool list; Execute runs one tool and
// reports operation failures through the error return, which the router
// folds into the result instead of propagating.
type Strategy interface {
	Discover(conn *ServerConnection) []Tool
	Execute(ctx context.Context, req ExecutionRequest, conn *ServerConnection) (map[string]any, error)
}

// Metrics abstracts the telemetry backend so tests can run without a
// prometheus registry.
type Metrics interface {
	ObserveExecution(server, mode string, duration time.Duration, err error)
	ObserveConnect(server string, duration time.Duration, err error)
	SetReadyServers(count int)
}
