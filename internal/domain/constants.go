package domain

// PassthroughToolName is the universal fallback operation advertised for
// servers without a specific catalog. Calls to it are always simulated.
const PassthroughToolName = "passthrough"

// ForceSimulationEnvVar switches every execution onto the simulated path
// when set to a truthy value. It is read once at startup and handed to the
// router as an explicit option.
const ForceSimulationEnvVar = "FORCE_MOCK_MODE"

// Known server identities with a real integration.
const (
	IdentityFilesystem = "filesystem"
	IdentityWebSearch  = "web-search"
	IdentityMemory     = "memory"
)

const (
	DefaultConfigPath            = "conduit.yaml"
	DefaultGatewayListenAddress  = "127.0.0.1:3001"
	DefaultMetricsListenAddress  = "127.0.0.1:9464"
	DefaultConnectTimeoutSeconds = 10
	DefaultConnectConcurrency    = 4
	DefaultSimulatedLatencyMinMs = 50
	DefaultSimulatedLatencyMaxMs = 200
)
