package collector

import (
	"fmt"
	"math"
	"time"

	"statreporter/internal/source"
)

// GeneralInfo identifies the host.
type GeneralInfo struct {
	Hostname   source.Result[string]        `json:"hostname"`
	Kernel     source.Result[string]        `json:"kernel"`
	Uptime     source.Result[time.Duration] `json:"uptime"`
	UptimeText string                       `json:"uptime_text"`
}

// TemperatureReading is one sensor's value in degrees Celsius, rounded to 0.1.
type TemperatureReading struct {
	Label   string                 `json:"label"`
	Zone    string                 `json:"zone,omitempty"`
	Celsius source.Result[float64] `json:"celsius"`
}

// Text renders the reading as "45.5°C".
func (r TemperatureReading) Text() string {
	if !r.Celsius.Ok() {
		return r.Celsius.Error()
	}
	return fmt.Sprintf("%.1f°C", r.Celsius.Value)
}

// TemperatureInfo holds thermal zone and GPU readings. A failed list means
// no sensor could be enumerated at all.
type TemperatureInfo struct {
	Sensors source.Result[[]TemperatureReading] `json:"sensors"`
	GPU     source.Result[[]TemperatureReading] `json:"gpu"`
}

// BatteryStatus is the normalized charge state of a battery.
type BatteryStatus string

const (
	BatteryCharging    BatteryStatus = "charging"
	BatteryDischarging BatteryStatus = "discharging"
	BatteryFull        BatteryStatus = "full"
	BatteryNotPresent  BatteryStatus = "not-present"
	BatteryUnknown     BatteryStatus = "unknown"
)

// Battery is one battery power supply.
type Battery struct {
	Name          string                       `json:"name"`
	Status        source.Result[BatteryStatus] `json:"status"`
	Percent       source.Result[int]           `json:"percent"`
	ChargeNowMAh  source.Result[float64]       `json:"charge_now_mah"`
	ChargeFullMAh source.Result[float64]       `json:"charge_full_mah"`
}

// ACAdapter is one mains power supply.
type ACAdapter struct {
	Name   string              `json:"name"`
	Online source.Result[bool] `json:"online"`
}

// PowerSupplies lists every detected battery and adapter.
type PowerSupplies struct {
	Batteries []Battery   `json:"batteries"`
	Adapters  []ACAdapter `json:"adapters"`
}

// PowerInfo fails as a whole when no power supply was detected.
type PowerInfo struct {
	Supplies source.Result[PowerSupplies] `json:"supplies"`
}

// MemoryStats holds raw KiB figures and their derived GiB and percent values.
type MemoryStats struct {
	TotalKiB     uint64 `json:"total_kib"`
	AvailableKiB uint64 `json:"available_kib"`
	UsedKiB      uint64 `json:"used_kib"`
	CachedKiB    uint64 `json:"cached_kib"`
	SwapTotalKiB uint64 `json:"swap_total_kib"`
	SwapFreeKiB  uint64 `json:"swap_free_kib"`
	SwapUsedKiB  uint64 `json:"swap_used_kib"`

	TotalGiB     float64 `json:"total_gib"`
	AvailableGiB float64 `json:"available_gib"`
	UsedGiB      float64 `json:"used_gib"`
	CachedGiB    float64 `json:"cached_gib"`
	SwapTotalGiB float64 `json:"swap_total_gib"`
	SwapUsedGiB  float64 `json:"swap_used_gib"`

	UsedPercent float64 `json:"used_percent"`
	SwapPercent float64 `json:"swap_percent"`
}

// MemoryInfo fails as a whole when meminfo is unusable.
type MemoryInfo struct {
	Stats source.Result[MemoryStats] `json:"stats"`
}

// BlockDevice is a whole disk (never a partition).
type BlockDevice struct {
	Name       string                 `json:"name"`
	Model      source.Result[string]  `json:"model"`
	SizeGB     source.Result[float64] `json:"size_gb"`
	Rotational source.Result[bool]    `json:"rotational"`
}

// Kind returns "HDD", "SSD/NVMe" or "unknown".
func (d BlockDevice) Kind() string {
	rotational, ok := d.Rotational.Get()
	switch {
	case !ok:
		return "unknown"
	case rotational:
		return "HDD"
	default:
		return "SSD/NVMe"
	}
}

// StorageInfo lists block devices.
type StorageInfo struct {
	Devices source.Result[[]BlockDevice] `json:"devices"`
}

// Severity ranks disk usage.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// DiskUsageEntry is one mounted filesystem as reported by df.
type DiskUsageEntry struct {
	Source   string   `json:"source"`
	FSType   string   `json:"fstype"`
	Size     string   `json:"size"`
	Used     string   `json:"used"`
	Avail    string   `json:"avail"`
	Percent  string   `json:"percent"`
	Target   string   `json:"target"`
	Severity Severity `json:"severity"`
}

// DiskUsageInfo lists mounted filesystems.
type DiskUsageInfo struct {
	Entries source.Result[[]DiskUsageEntry] `json:"entries"`
}

// NetworkInterface merges sysfs counters with the address list.
type NetworkInterface struct {
	Name      string                `json:"name"`
	State     string                `json:"state"` // "UP" or "DOWN"
	Operstate string                `json:"operstate,omitempty"`
	IPv4      source.Result[string] `json:"ipv4"` // "" when none is assigned
	RxBytes   source.Result[uint64] `json:"rx_bytes"`
	TxBytes   source.Result[uint64] `json:"tx_bytes"`
}

// Active reports whether the interface is up with an IPv4 address.
func (n NetworkInterface) Active() bool {
	ip, ok := n.IPv4.Get()
	return n.State == "UP" && ok && ip != ""
}

// RxMiB returns received traffic in MiB, rounded to 0.1.
func (n NetworkInterface) RxMiB() source.Result[float64] {
	return source.Map(n.RxBytes, bytesToMiB)
}

// TxMiB returns sent traffic in MiB, rounded to 0.1.
func (n NetworkInterface) TxMiB() source.Result[float64] {
	return source.Map(n.TxBytes, bytesToMiB)
}

// NetworkInfo lists interfaces and the WiFi SSID. WiFi holds "" when not connected.
type NetworkInfo struct {
	Interfaces source.Result[[]NetworkInterface] `json:"interfaces"`
	WiFi       source.Result[string]             `json:"wifi"`
}

// Active reports whether any interface is active.
func (n NetworkInfo) Active() bool {
	for _, iface := range n.Interfaces.Value {
		if iface.Active() {
			return true
		}
	}
	return false
}

// Status returns "network active" or "network inactive".
func (n NetworkInfo) Status() string {
	if n.Active() {
		return "network active"
	}
	return "network inactive"
}

// WiFiText returns the SSID, "not connected" or the failure text.
func (n NetworkInfo) WiFiText() string {
	ssid, ok := n.WiFi.Get()
	switch {
	case ok && ssid != "":
		return ssid
	case ok:
		return "not connected"
	case n.WiFi.Reason == source.CommandUnavailable:
		return "command unavailable"
	default:
		return n.WiFi.Error()
	}
}

// ProcessEntry is one process of the top-N memory list.
type ProcessEntry struct {
	PID        int                    `json:"pid"`
	User       string                 `json:"user"`
	UID        string                 `json:"uid"`
	RSSKiB     uint64                 `json:"rss_kib"`
	Name       string                 `json:"name"`
	CPUPercent source.Result[float64] `json:"cpu_percent"`
}

// ProcessInfo is sorted by RSS descending. An empty list is not a failure.
type ProcessInfo struct {
	Processes source.Result[[]ProcessEntry] `json:"processes"`
}

// PortState is the outcome of a TCP probe.
type PortState string

const (
	PortOpen   PortState = "open"
	PortClosed PortState = "closed"
	PortError  PortState = "error"
)

// PortStatus is one probed local port.
type PortStatus struct {
	Port   int       `json:"port"`
	State  PortState `json:"state"`
	Detail string    `json:"detail,omitempty"`
}

// Text returns the label shown for the port.
func (p PortStatus) Text() string {
	switch p.State {
	case PortOpen:
		return "service active"
	case PortClosed:
		return "unavailable"
	default:
		return "socket error"
	}
}

// WebPortInfo lists the probed ports in configuration order.
type WebPortInfo struct {
	Ports source.Result[[]PortStatus] `json:"ports"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func bytesToMiB(b uint64) float64 {
	return round1(float64(b) / (1024 * 1024))
}
