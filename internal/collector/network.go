package collector

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

var (
	ipLinkLine = regexp.MustCompile(`^\d+:\s+([^:]+):\s+<([^>]*)>`)
	ipInetLine = regexp.MustCompile(`^\s+inet\s+(\d+\.\d+\.\d+\.\d+/\d+)`)
)

// NetworkCollector merges sysfs interface counters with the address list
// from the configured interface command, plus the current WiFi SSID.
type NetworkCollector struct {
	BaseCollector
	interfaces []string // interface names to keep; empty means all but lo
}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector(env *Env) *NetworkCollector {
	return &NetworkCollector{
		BaseCollector: NewBaseCollector("network", env),
	}
}

// Configure applies the configuration to the collector.
func (c *NetworkCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	c.interfaces = cfg.Interfaces
	return nil
}

// Collect gathers interface state, addresses, counters and the WiFi SSID.
func (c *NetworkCollector) Collect(ctx context.Context) (*MetricData, error) {
	info := NetworkInfo{
		Interfaces: c.collectInterfaces(ctx),
		WiFi:       c.collectWiFi(ctx),
	}
	return c.metric(info), nil
}

// Fallback returns a NetworkInfo with both fields failed.
func (c *NetworkCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(NetworkFallback(reason, detail))
}

// NetworkFallback builds a NetworkInfo that carries reason.
func NetworkFallback(reason source.Reason, detail string) NetworkInfo {
	return NetworkInfo{
		Interfaces: source.Fail[[]NetworkInterface](reason, detail),
		WiFi:       source.Fail[string](reason, detail),
	}
}

// ipLink is one interface as listed by "ip a".
type ipLink struct {
	name string
	up   bool
	ipv4 string
}

func (c *NetworkCollector) collectInterfaces(ctx context.Context) source.Result[[]NetworkInterface] {
	entries := c.env.list(c.env.Sys("class", "net"))
	ipOut := c.env.run(ctx, c.env.Commands.InterfaceList)
	if !entries.Ok() && !ipOut.Ok() {
		return source.Fail[[]NetworkInterface](entries.Reason, entries.Detail)
	}

	var links []ipLink
	if out, ok := ipOut.Get(); ok {
		links = parseIPAddr(out)
	}
	byName := make(map[string]ipLink, len(links))
	for _, l := range links {
		byName[l.name] = l
	}

	var result []NetworkInterface
	seen := make(map[string]bool)
	for _, name := range entries.Value {
		if name == "lo" || !c.shouldInclude(name) {
			continue
		}
		seen[name] = true
		result = append(result, c.readInterface(ctx, name, byName, ipOut))
	}
	for _, l := range links {
		if seen[l.name] || l.name == "lo" || !c.shouldInclude(l.name) {
			continue
		}
		seen[l.name] = true
		iface := NetworkInterface{
			Name:    l.name,
			State:   stateText(l.up),
			IPv4:    source.OK(l.ipv4),
			RxBytes: source.Fail[uint64](source.SourceNotFound, "no sysfs entry"),
			TxBytes: source.Fail[uint64](source.SourceNotFound, "no sysfs entry"),
		}
		result = append(result, iface)
	}

	if result == nil {
		result = []NetworkInterface{}
	}
	return source.OK(result)
}

func (c *NetworkCollector) readInterface(ctx context.Context, name string, links map[string]ipLink, ipOut source.Result[string]) NetworkInterface {
	attr := func(elem ...string) source.Result[string] {
		return c.env.read(ctx, c.env.Sys(append([]string{"class", "net", name}, elem...)...))
	}

	iface := NetworkInterface{
		Name:    name,
		RxBytes: source.Then(attr("statistics", "rx_bytes"), source.ParseUint),
		TxBytes: source.Then(attr("statistics", "tx_bytes"), source.ParseUint),
	}
	operstate, operOK := attr("operstate").Get()
	if operOK {
		iface.Operstate = operstate
	}

	switch l, ok := links[name]; {
	case ok:
		iface.State = stateText(l.up)
		iface.IPv4 = source.OK(l.ipv4)
	case ipOut.Ok():
		// Listed in sysfs but not by ip: treat as down without an address.
		iface.State = stateText(operOK && operstate == "up")
		iface.IPv4 = source.OK("")
	default:
		iface.State = stateText(operOK && operstate == "up")
		iface.IPv4 = source.Fail[string](ipOut.Reason, ipOut.Detail)
	}
	return iface
}

func (c *NetworkCollector) collectWiFi(ctx context.Context) source.Result[string] {
	out := c.env.run(ctx, c.env.Commands.WiFiSSID)
	if !out.Ok() && out.Reason == source.CommandFailed {
		// iwgetid exits non-zero when no wireless link is associated.
		return source.OK("")
	}
	return out
}

func (c *NetworkCollector) shouldInclude(name string) bool {
	if len(c.interfaces) == 0 {
		return true
	}
	for _, n := range c.interfaces {
		if n == name {
			return true
		}
	}
	return false
}

// parseIPAddr extracts interface names, UP flags and the first IPv4 address
// from "ip a" output. Link suffixes such as "@if12" are stripped.
func parseIPAddr(text string) []ipLink {
	var links []ipLink
	var cur *ipLink
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if m := ipLinkLine.FindStringSubmatch(line); m != nil {
			name, _, _ := strings.Cut(strings.TrimSpace(m[1]), "@")
			links = append(links, ipLink{name: name, up: hasFlag(m[2], "UP")})
			cur = &links[len(links)-1]
			continue
		}
		if cur == nil || cur.ipv4 != "" {
			continue
		}
		if m := ipInetLine.FindStringSubmatch(line); m != nil {
			cur.ipv4 = m[1]
		}
	}
	return links
}

func hasFlag(flags, flag string) bool {
	for _, f := range strings.Split(flags, ",") {
		if f == flag {
			return true
		}
	}
	return false
}

func stateText(up bool) string {
	if up {
		return "UP"
	}
	return "DOWN"
}
