package catalog

import (
	"go.uber.org/zap"

	"conduit/internal/domain"
	"conduit/internal/infra/strategy"
	"conduit/internal/infra/telemetry"
)

// Catalog resolves each ready server's tool list through a two-tier lookup:
// a registered real strategy first, then a static generic catalog, finally
// the universal passthrough tool. Adding a real integration means adding a
// registry entry; anything else degrades safely without touching other code.
type Catalog struct {
	registry *strategy.Registry
	static   map[string][]domain.Tool
	logger   *zap.Logger
}

func New(registry *strategy.Registry, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		registry: registry,
		static:   defaultStaticCatalogs(),
		logger:   logger.Named("catalog"),
	}
}

// defaultStaticCatalogs lists known identities without a real integration
// yet. Their tools always run on the simulated path.
func defaultStaticCatalogs() map[string][]domain.Tool {
	return map[string][]domain.Tool{
		"taskmaster-ai": {
			{Name: "plan_task", Description: "Break a task description into an ordered plan"},
		},
		"scout": {
			{Name: "research", Description: "Research a topic and summarize findings"},
		},
	}
}

// Identify maps a server definition onto a strategy key: the server's own
// name when it is known, else the first known capability tag, else the name
// itself (an unrecognized identity).
func (c *Catalog) Identify(def domain.ServerDefinition) string {
	if c.known(def.Name) {
		return def.Name
	}
	for _, tag := range def.Tags {
		if c.known(tag) {
			return tag
		}
	}
	return def.Name
}

func (c *Catalog) known(identity string) bool {
	if c.registry.Has(identity) {
		return true
	}
	_, ok := c.static[identity]
	return ok
}

// Discover fills in the connection's identity and tool list. A non-empty
// real discovery is authoritative; the static tier and the passthrough
// default only apply below it.
func (c *Catalog) Discover(conn *domain.ServerConnection) {
	identity := c.Identify(conn.Definition)
	conn.Identity = identity

	tier := "passthrough"
	tools := []domain.Tool{
		{Name: domain.PassthroughToolName, Description: "Generic fallback operation, always simulated"},
	}

	if entry, ok := c.registry.Lookup(identity); ok {
		if discovered := entry.Strategy.Discover(conn); len(discovered) > 0 {
			tier = "real"
			tools = discovered
		}
	}
	if tier == "passthrough" {
		if static, ok := c.static[identity]; ok {
			tier = "static"
			tools = append([]domain.Tool(nil), static...)
		}
	}

	conn.Tools = tools
	c.logger.Info("tools discovered",
		telemetry.EventField(telemetry.EventDiscovery),
		telemetry.ServerField(conn.Definition.Name),
		zap.String("identity", identity),
		zap.String("tier", tier),
		zap.Int("tools", len(tools)),
	)
}

// DiscoverAll populates every ready connection in the startup map.
// Excluded connections keep an empty catalog.
func (c *Catalog) DiscoverAll(conns map[string]*domain.ServerConnection) {
	for _, conn := range conns {
		if conn.Status != domain.StatusReady {
			continue
		}
		c.Discover(conn)
	}
}
