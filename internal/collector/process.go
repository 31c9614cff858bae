package collector

import (
	"bufio"
	"context"
	"iter"
	"sort"
	"strconv"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

const defaultTopN = 30

// ProcessCollector lists the processes using the most resident memory.
type ProcessCollector struct {
	BaseCollector
	topN int
}

// NewProcessCollector creates a new process collector.
func NewProcessCollector(env *Env) *ProcessCollector {
	return &ProcessCollector{
		BaseCollector: NewBaseCollector("process", env),
		topN:          defaultTopN,
	}
}

// DefaultConfig returns the default CollectorConfig for this collector.
func (c *ProcessCollector) DefaultConfig() config.CollectorConfig {
	return config.CollectorConfig{Enabled: true, TopN: defaultTopN}
}

// Configure applies the configuration to the collector.
func (c *ProcessCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	c.topN = defaultTopN
	if cfg.TopN > 0 {
		c.topN = cfg.TopN
	}
	return nil
}

// Collect gathers the top processes by RSS. Processes that exit while
// being read are skipped.
func (c *ProcessCollector) Collect(ctx context.Context) (*MetricData, error) {
	names := c.env.list(c.env.ProcRoot)
	if !names.Ok() {
		list := source.Fail[[]ProcessEntry](names.Reason, names.Detail)
		return c.metric(ProcessInfo{Processes: list}), nil
	}

	var entries []ProcessEntry
	for pid := range PIDs(names.Value) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok := c.readProcess(ctx, pid)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RSSKiB != entries[j].RSSKiB {
			return entries[i].RSSKiB > entries[j].RSSKiB
		}
		return entries[i].PID < entries[j].PID
	})
	if len(entries) > c.topN {
		entries = entries[:c.topN]
	}

	users := make(map[string]string) // uid -> user name
	for i := range entries {
		entries[i].User = c.lookupUser(ctx, users, entries[i].UID)
	}

	if entries == nil {
		entries = []ProcessEntry{}
	}
	return c.metric(ProcessInfo{Processes: source.OK(entries)}), nil
}

// Fallback returns a ProcessInfo with the list failed.
func (c *ProcessCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(ProcessFallback(reason, detail))
}

// ProcessFallback builds a ProcessInfo that carries reason.
func ProcessFallback(reason source.Reason, detail string) ProcessInfo {
	return ProcessInfo{Processes: source.Fail[[]ProcessEntry](reason, detail)}
}

// PIDs yields the positive numeric names of a proc root listing, in order.
func PIDs(names []string) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, name := range names {
			pid, err := strconv.Atoi(name)
			if err != nil || pid <= 0 {
				continue
			}
			if !yield(pid) {
				return
			}
		}
	}
}

func (c *ProcessCollector) readProcess(ctx context.Context, pid int) (ProcessEntry, bool) {
	status, ok := c.env.read(ctx, c.env.Proc(strconv.Itoa(pid), "status")).Get()
	if !ok {
		return ProcessEntry{}, false
	}
	entry, ok := parseProcStatus(status)
	if !ok {
		return ProcessEntry{}, false
	}
	entry.PID = pid
	entry.CPUPercent = source.Fail[float64](source.NotAvailable, "per-process CPU usage is not computed")
	return entry, true
}

// parseProcStatus reads Name, the real Uid and VmRSS. Kernel threads have
// no VmRSS and report zero.
func parseProcStatus(text string) (ProcessEntry, bool) {
	var e ProcessEntry
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			e.Name = value
		case "Uid":
			if fields := strings.Fields(value); len(fields) > 0 {
				e.UID = fields[0]
			}
		case "VmRSS":
			if fields := strings.Fields(value); len(fields) > 0 {
				if kib, err := source.ParseUint(fields[0]); err == nil {
					e.RSSKiB = kib
				}
			}
		}
	}
	return e, e.Name != ""
}

// lookupUser resolves uid with the user lookup command. Answers are kept
// in users for the rest of one collection; the uid itself is returned when
// the lookup fails.
func (c *ProcessCollector) lookupUser(ctx context.Context, users map[string]string, uid string) string {
	if uid == "" {
		return ""
	}
	if name, ok := users[uid]; ok {
		return name
	}

	name := uid
	if out, ok := c.env.run(ctx, c.env.Commands.UserLookup, uid).Get(); ok && out != "" {
		name = out
	}
	users[uid] = name
	return name
}
