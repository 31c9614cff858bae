package collector

import (
	"context"
	"fmt"
	"time"

	"statreporter/internal/config"
	"statreporter/internal/network"
	"statreporter/internal/source"
)

const (
	defaultProbeHost    = "127.0.0.1"
	defaultProbeTimeout = 500 * time.Millisecond
	maxProbeTimeout     = time.Second
)

var defaultPorts = []int{80, 443}

// WebPortCollector probes local TCP ports for a listening service.
type WebPortCollector struct {
	BaseCollector
	ports   []int
	host    string
	timeout time.Duration
	probe   func(ctx context.Context, host string, port int, timeout time.Duration) (network.ProbeState, error)
}

// NewWebPortCollector creates a new web port collector.
func NewWebPortCollector(env *Env) *WebPortCollector {
	return &WebPortCollector{
		BaseCollector: NewBaseCollector("webport", env),
		ports:         defaultPorts,
		host:          defaultProbeHost,
		timeout:       defaultProbeTimeout,
		probe:         network.ProbeTCP,
	}
}

// DefaultConfig returns the default CollectorConfig for this collector.
func (c *WebPortCollector) DefaultConfig() config.CollectorConfig {
	return config.CollectorConfig{
		Enabled:      true,
		Ports:        defaultPorts,
		ProbeHost:    defaultProbeHost,
		ProbeTimeout: defaultProbeTimeout,
	}
}

// Configure applies the configuration to the collector.
func (c *WebPortCollector) Configure(cfg config.CollectorConfig) error {
	for _, p := range cfg.Ports {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid port %d", p)
		}
	}

	c.SetEnabled(cfg.Enabled)
	c.ports = defaultPorts
	if len(cfg.Ports) > 0 {
		c.ports = cfg.Ports
	}
	c.host = defaultProbeHost
	if cfg.ProbeHost != "" {
		c.host = cfg.ProbeHost
	}
	c.timeout = defaultProbeTimeout
	if cfg.ProbeTimeout > 0 {
		c.timeout = min(cfg.ProbeTimeout, maxProbeTimeout)
	}
	return nil
}

// Collect probes each configured port in order.
func (c *WebPortCollector) Collect(ctx context.Context) (*MetricData, error) {
	ports := make([]PortStatus, 0, len(c.ports))
	for _, port := range c.ports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ports = append(ports, c.probePort(ctx, port))
	}
	return c.metric(WebPortInfo{Ports: source.OK(ports)}), nil
}

// Fallback returns a WebPortInfo with the port list failed.
func (c *WebPortCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(WebPortFallback(reason, detail))
}

// WebPortFallback builds a WebPortInfo that carries reason.
func WebPortFallback(reason source.Reason, detail string) WebPortInfo {
	return WebPortInfo{Ports: source.Fail[[]PortStatus](reason, detail)}
}

func (c *WebPortCollector) probePort(ctx context.Context, port int) PortStatus {
	state, err := c.probe(ctx, c.host, port, c.timeout)
	status := PortStatus{Port: port}
	switch state {
	case network.ProbeOpen:
		status.State = PortOpen
	case network.ProbeClosed:
		status.State = PortClosed
	default:
		status.State = PortError
	}
	if err != nil && status.State == PortError {
		status.Detail = err.Error()
	}
	return status
}
