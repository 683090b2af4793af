package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"conduit/internal/domain"
)

// Config is the result of one load: the declarative server map plus the
// runtime sections, along with where the file was (not) found.
type Config struct {
	Definitions map[string]domain.ServerDefinition
	Runtime     domain.RuntimeConfig
	Path        string
	Exists      bool
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("connectTimeoutSeconds", domain.DefaultConnectTimeoutSeconds)
	v.SetDefault("connectConcurrency", domain.DefaultConnectConcurrency)
	v.SetDefault("gateway.listenAddress", domain.DefaultGatewayListenAddress)
	v.SetDefault("observability.listenAddress", domain.DefaultMetricsListenAddress)
	v.SetDefault("simulation.minLatencyMs", domain.DefaultSimulatedLatencyMinMs)
	v.SetDefault("simulation.maxLatencyMs", domain.DefaultSimulatedLatencyMaxMs)
	v.SetDefault("memory.path", "conduit-memory.db")
}

type rawConfig struct {
	Servers map[string]rawServerDefinition `mapstructure:"servers"`
	Runtime rawRuntimeConfig               `mapstructure:",squash"`
}

type rawServerDefinition struct {
	Command     []string          `mapstructure:"command"`
	Description string            `mapstructure:"description"`
	Tags        []string          `mapstructure:"tags"`
	Env         map[string]string `mapstructure:"env"`
}

type rawRuntimeConfig struct {
	ConnectTimeoutSeconds int                    `mapstructure:"connectTimeoutSeconds"`
	ConnectConcurrency    int                    `mapstructure:"connectConcurrency"`
	Gateway               rawListenConfig        `mapstructure:"gateway"`
	Observability         rawListenConfig        `mapstructure:"observability"`
	Simulation            rawSimulationConfig    `mapstructure:"simulation"`
	Memory                rawMemoryConfig        `mapstructure:"memory"`
}

type rawListenConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type rawSimulationConfig struct {
	MinLatencyMs int `mapstructure:"minLatencyMs"`
	MaxLatencyMs int `mapstructure:"maxLatencyMs"`
}

type rawMemoryConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads the configuration once. An absent file is not an error: the
// bridge starts with an empty server map and a warning. A present but
// malformed file is the only fatal load outcome.
func (l *Loader) Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		path = domain.DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("config file not found, starting with no servers", zap.String("path", path))
			return Config{
				Definitions: map[string]domain.ServerDefinition{},
				Runtime:     defaultRuntime(),
				Path:        path,
			}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return Config{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg rawConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	defs := make(map[string]domain.ServerDefinition, len(cfg.Servers))
	var validationErrors []string
	runtime, runtimeErrs := normalizeRuntime(cfg.Runtime)
	validationErrors = append(validationErrors, runtimeErrs...)

	for name, raw := range cfg.Servers {
		def := normalizeDefinition(name, raw)
		if errs := validateDefinition(def); len(errs) > 0 {
			validationErrors = append(validationErrors, errs...)
			continue
		}
		defs[name] = def
	}

	if len(validationErrors) > 0 {
		return Config{}, errors.New(strings.Join(validationErrors, "; "))
	}

	return Config{
		Definitions: defs,
		Runtime:     runtime,
		Path:        path,
		Exists:      true,
	}, nil
}

func defaultRuntime() domain.RuntimeConfig {
	v := newConfigViper()
	var cfg rawRuntimeConfig
	// Defaults only, nothing to read; Unmarshal cannot fail on them.
	_ = v.Unmarshal(&cfg)
	runtime, _ := normalizeRuntime(cfg)
	return runtime
}

func normalizeDefinition(name string, raw rawServerDefinition) domain.ServerDefinition {
	tags := make([]string, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}
	return domain.ServerDefinition{
		Name:        strings.TrimSpace(name),
		Command:     raw.Command,
		Description: strings.TrimSpace(raw.Description),
		Tags:        tags,
		Env:         raw.Env,
	}
}

func validateDefinition(def domain.ServerDefinition) []string {
	var errs []string

	if def.Name == "" {
		errs = append(errs, "servers: name must not be empty")
	}
	for configKey, envVar := range def.Env {
		if strings.TrimSpace(configKey) == "" {
			errs = append(errs, fmt.Sprintf("servers.%s.env: config key must not be empty", def.Name))
		}
		if strings.TrimSpace(envVar) == "" {
			errs = append(errs, fmt.Sprintf("servers.%s.env.%s: environment variable name must not be empty", def.Name, configKey))
		}
	}
	// An empty command is accepted here; the connection manager excludes
	// such servers at connect time without failing the load.
	return errs
}

func normalizeRuntime(cfg rawRuntimeConfig) (domain.RuntimeConfig, []string) {
	var errs []string

	if cfg.ConnectTimeoutSeconds <= 0 {
		errs = append(errs, "connectTimeoutSeconds must be > 0")
	}
	if cfg.ConnectConcurrency <= 0 {
		errs = append(errs, "connectConcurrency must be > 0")
	}
	if cfg.Simulation.MinLatencyMs < 0 {
		errs = append(errs, "simulation.minLatencyMs must be >= 0")
	}
	if cfg.Simulation.MaxLatencyMs < cfg.Simulation.MinLatencyMs {
		errs = append(errs, "simulation.maxLatencyMs must be >= simulation.minLatencyMs")
	}

	gatewayAddr := strings.TrimSpace(cfg.Gateway.ListenAddress)
	if gatewayAddr == "" {
		gatewayAddr = domain.DefaultGatewayListenAddress
	}
	metricsAddr := strings.TrimSpace(cfg.Observability.ListenAddress)
	if metricsAddr == "" {
		metricsAddr = domain.DefaultMetricsListenAddress
	}

	return domain.RuntimeConfig{
		ConnectTimeoutSeconds: cfg.ConnectTimeoutSeconds,
		ConnectConcurrency:    cfg.ConnectConcurrency,
		Gateway:               domain.GatewayConfig{ListenAddress: gatewayAddr},
		Observability:         domain.ObservabilityConfig{ListenAddress: metricsAddr},
		Simulation: domain.SimulationConfig{
			MinLatencyMs: cfg.Simulation.MinLatencyMs,
			MaxLatencyMs: cfg.Simulation.MaxLatencyMs,
		},
		Memory: domain.MemoryConfig{Path: strings.TrimSpace(cfg.Memory.Path)},
	}, errs
}
