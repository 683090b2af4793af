package domain

// RuntimeConfig carries the non-server sections of the configuration file.
// Every field is defaulted by the loader, so zero values never leak past it.
type RuntimeConfig struct {
	ConnectTimeoutSeconds int                 `json:"connectTimeoutSeconds"`
	ConnectConcurrency    int                 `json:"connectConcurrency"`
	Gateway               GatewayConfig       `json:"gateway"`
	Observability         ObservabilityConfig `json:"observability"`
	Simulation            SimulationConfig    `json:"simulation"`
	Memory                MemoryConfig        `json:"memory"`
}

type GatewayConfig struct {
	ListenAddress string `json:"listenAddress"`
}

type ObservabilityConfig struct {
	ListenAddress string `json:"listenAddress"`
}

// SimulationConfig bounds the artificial latency window of the synthetic
// execution path.
type SimulationConfig struct {
	MinLatencyMs int `json:"minLatencyMs"`
	MaxLatencyMs int `json:"maxLatencyMs"`
}

type MemoryConfig struct {
	Path string `json:"path"`
}
