// Package report turns a Snapshot into a renderer-neutral page and writes
// it as a static HTML report.
package report

import (
	"fmt"
	"math"
	"strconv"

	"statreporter/internal/collector"
	"statreporter/internal/snapshot"
	"statreporter/internal/source"
)

// CSS classes shared by the HTML report and the live view styles.
const (
	ClassError    = "message-erreur"
	ClassCritical = "etat-critique"
	ClassWarning  = "etat-avertissement"
	ClassOK       = "etat-ok"
	ClassMuted    = "non-disponible"
)

// TimeLayout is how the collection time is shown.
const TimeLayout = "2006-01-02 15:04:05"

// Field is one labeled value.
type Field struct {
	Label string
	Value string
	Class string
}

// Cell is one table cell.
type Cell struct {
	Text  string
	Class string
}

// Table is a header plus rows. Empty holds the message shown instead of
// rows when there are none; it is rendered in the error style.
type Table struct {
	Headers []string
	Rows    [][]Cell
	Empty   string
}

// Gauge is a usage percentage drawn as a bar.
type Gauge struct {
	Label   string
	Percent float64
	Text    string
	Class   string
}

// Page is everything a renderer shows for one snapshot.
type Page struct {
	Generated    string
	Hostname     string
	General      []Field
	Memory       []Gauge
	MemoryError  string
	Temperatures []Field
	Power        []Field
	Storage      Table
	Disks        Table
	Network      []Field
	Interfaces   []Field
	Processes    Table
	WebPorts     []Field
}

// Build derives the page for snap.
func Build(snap *snapshot.Snapshot) Page {
	p := Page{
		Generated: snap.Timestamp.Local().Format(TimeLayout),
		Hostname:  snap.General.Hostname.Or("unknown host"),
	}
	p.General = generalFields(snap.General)
	p.Memory, p.MemoryError = memoryGauges(snap.Memory)
	p.Temperatures = temperatureFields(snap.Temperatures)
	p.Power = powerFields(snap.Power)
	p.Storage = storageTable(snap.Storage)
	p.Disks = diskTable(snap.Disks)
	p.Network, p.Interfaces = networkFields(snap.Network)
	p.Processes = processTable(snap.Processes, snap.Memory)
	p.WebPorts = webPortFields(snap.WebPorts)
	return p
}

func resultField[T any](label string, r source.Result[T], format func(T) string) Field {
	if v, ok := r.Get(); ok {
		return Field{Label: label, Value: format(v)}
	}
	return Field{Label: label, Value: r.Error(), Class: ClassError}
}

func resultCell[T any](r source.Result[T], format func(T) string) Cell {
	if v, ok := r.Get(); ok {
		return Cell{Text: format(v)}
	}
	if r.Reason == source.NotAvailable {
		return Cell{Text: "N/D", Class: ClassMuted}
	}
	return Cell{Text: r.Reason.Message(), Class: ClassError}
}

// partText formats one part of a composite value. A failed part shows its
// reason message and reports false.
func partText[T any](r source.Result[T], format func(T) string) (string, bool) {
	if v, ok := r.Get(); ok {
		return format(v), true
	}
	return r.Reason.Message(), false
}

func text(s string) string { return s }

func mAh(v float64) string { return fmt.Sprintf("%.0f", v) }

func mib(v float64) string { return fmt.Sprintf("%.1f MiB", v) }

func generalFields(g collector.GeneralInfo) []Field {
	uptime := Field{Label: "Uptime", Value: g.UptimeText}
	if !g.Uptime.Ok() {
		uptime.Class = ClassError
	}
	return []Field{
		resultField("Hostname", g.Hostname, text),
		resultField("Kernel", g.Kernel, text),
		uptime,
	}
}

func memoryGauges(m collector.MemoryInfo) ([]Gauge, string) {
	s, ok := m.Stats.Get()
	if !ok {
		return nil, m.Stats.Error()
	}
	return []Gauge{
		{
			Label:   "RAM",
			Percent: s.UsedPercent,
			Text:    fmt.Sprintf("%.1f%% of %.2f GiB (used %.2f GiB, cache %.2f GiB)", s.UsedPercent, s.TotalGiB, s.UsedGiB, s.CachedGiB),
			Class:   percentClass(s.UsedPercent),
		},
		{
			Label:   "Swap",
			Percent: s.SwapPercent,
			Text:    fmt.Sprintf("%.1f%% of %.2f GiB", s.SwapPercent, s.SwapTotalGiB),
			Class:   percentClass(s.SwapPercent),
		},
	}, ""
}

func temperatureFields(t collector.TemperatureInfo) []Field {
	var fields []Field
	appendReadings := func(label string, r source.Result[[]collector.TemperatureReading]) {
		readings, ok := r.Get()
		if !ok {
			text := r.Error()
			if label == "GPU" && r.Reason == source.CommandUnavailable {
				text = "GPU not detected (" + text + ")"
			}
			fields = append(fields, Field{Label: label, Value: text, Class: ClassError})
			return
		}
		for _, reading := range readings {
			f := Field{Label: reading.Label, Value: reading.Text()}
			if !reading.Celsius.Ok() {
				f.Class = ClassError
			}
			fields = append(fields, f)
		}
	}
	appendReadings("Sensors", t.Sensors)
	appendReadings("GPU", t.GPU)
	return fields
}

func powerFields(p collector.PowerInfo) []Field {
	supplies, ok := p.Supplies.Get()
	if !ok {
		return []Field{{Label: "Power", Value: p.Supplies.Error(), Class: ClassError}}
	}

	var fields []Field
	for _, b := range supplies.Batteries {
		fields = append(fields,
			resultField(b.Name+" status", b.Status, func(s collector.BatteryStatus) string { return string(s) }),
			resultField(b.Name+" level", b.Percent, func(v int) string { return strconv.Itoa(v) + "%" }),
		)
		now, nowOK := partText(b.ChargeNowMAh, mAh)
		full, fullOK := partText(b.ChargeFullMAh, mAh)
		charge := Field{Label: b.Name + " charge", Value: now + " / " + full + " mAh"}
		if !nowOK || !fullOK {
			charge.Class = ClassError
		}
		fields = append(fields, charge)
	}
	for _, a := range supplies.Adapters {
		fields = append(fields, resultField(a.Name, a.Online, func(online bool) string {
			if online {
				return "online"
			}
			return "offline"
		}))
	}
	return fields
}

func storageTable(s collector.StorageInfo) Table {
	t := Table{Headers: []string{"Device", "Model", "Size", "Type"}}
	devices, ok := s.Devices.Get()
	if !ok {
		t.Empty = s.Devices.Error()
		return t
	}
	for _, d := range devices {
		t.Rows = append(t.Rows, []Cell{
			{Text: d.Name},
			resultCell(d.Model, text),
			resultCell(d.SizeGB, func(v float64) string { return fmt.Sprintf("%.1f GB", v) }),
			{Text: d.Kind()},
		})
	}
	return t
}

func diskTable(d collector.DiskUsageInfo) Table {
	t := Table{Headers: []string{"Mount point", "Size", "Used", "Available", "Use%"}}
	entries, ok := d.Entries.Get()
	if !ok {
		t.Empty = d.Entries.Error()
		return t
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []Cell{
			{Text: fmt.Sprintf("%s (%s)", e.Target, e.FSType)},
			{Text: e.Size},
			{Text: e.Used},
			{Text: e.Avail},
			{Text: e.Percent, Class: SeverityClass(e.Severity)},
		})
	}
	if len(t.Rows) == 0 {
		t.Empty = "No mounted filesystem reported."
	}
	return t
}

func networkFields(n collector.NetworkInfo) ([]Field, []Field) {
	status := Field{Label: "Status", Value: n.Status(), Class: ClassOK}
	if !n.Active() {
		status.Class = ClassError
	}
	wifi := Field{Label: "WiFi", Value: n.WiFiText()}
	if _, ok := n.WiFi.Get(); !ok {
		wifi.Class = ClassError
	}

	ifaces, ok := n.Interfaces.Get()
	if !ok {
		return []Field{status, wifi}, []Field{{Label: "Interfaces", Value: n.Interfaces.Error(), Class: ClassError}}
	}

	var list []Field
	for _, iface := range ifaces {
		f := Field{Label: iface.Name, Value: iface.State}
		if ip, ok := iface.IPv4.Get(); ok && ip != "" {
			f.Value += " " + ip
		} else if !ok {
			f.Value += " (" + iface.IPv4.Reason.Message() + ")"
		}
		rx, rxOK := partText(iface.RxMiB(), mib)
		tx, txOK := partText(iface.TxMiB(), mib)
		f.Value += ", rx " + rx + " / tx " + tx
		switch {
		case !rxOK || !txOK:
			f.Class = ClassError
		case iface.Active():
			f.Class = ClassOK
		}
		list = append(list, f)
	}
	return []Field{status, wifi}, list
}

func processTable(p collector.ProcessInfo, m collector.MemoryInfo) Table {
	t := Table{Headers: []string{"PID", "User", "CPU%", "MEM%", "Name"}}
	procs, ok := p.Processes.Get()
	if !ok {
		t.Empty = p.Processes.Error()
		return t
	}

	totalKiB := m.Stats.Or(collector.MemoryStats{}).TotalKiB
	for _, e := range procs {
		mem := Cell{Text: "N/D", Class: ClassMuted}
		if totalKiB > 0 {
			mem = Cell{Text: fmt.Sprintf("%.1f%%", MemoryShare(e.RSSKiB, totalKiB))}
		}
		t.Rows = append(t.Rows, []Cell{
			{Text: strconv.Itoa(e.PID)},
			{Text: e.User},
			resultCell(e.CPUPercent, func(v float64) string { return fmt.Sprintf("%.1f", v) }),
			mem,
			{Text: e.Name},
		})
	}
	if len(t.Rows) == 0 {
		t.Empty = "No running process found."
	}
	return t
}

func webPortFields(w collector.WebPortInfo) []Field {
	ports, ok := w.Ports.Get()
	if !ok {
		return []Field{{Label: "Web services", Value: w.Ports.Error(), Class: ClassError}}
	}
	fields := make([]Field, 0, len(ports))
	for _, p := range ports {
		f := Field{Label: "Port " + strconv.Itoa(p.Port), Value: p.Text()}
		switch p.State {
		case collector.PortOpen:
			f.Class = ClassOK
		case collector.PortError:
			f.Class = ClassError
			if p.Detail != "" {
				f.Value += " (" + p.Detail + ")"
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// MemoryShare returns rss as a percentage of total, rounded to 0.1.
func MemoryShare(rssKiB, totalKiB uint64) float64 {
	if totalKiB == 0 {
		return 0
	}
	v := float64(rssKiB) / float64(totalKiB) * 100
	return math.Round(v*10) / 10
}

// SeverityClass maps a disk severity to its CSS class.
func SeverityClass(s collector.Severity) string {
	switch s {
	case collector.SeverityCritical:
		return ClassCritical
	case collector.SeverityWarning:
		return ClassWarning
	case collector.SeverityOK:
		return ClassOK
	default:
		return ClassMuted
	}
}

func percentClass(v float64) string {
	switch {
	case v > 90:
		return ClassCritical
	case v > 70:
		return ClassWarning
	default:
		return ClassOK
	}
}
