// Package config provides configuration management for statreporter.
package config

import (
	"time"
)

// Config is the root configuration structure (StatReporter.json).
type Config struct {
	Paths           PathsConfig    `json:"Paths"`
	CommandTimeout  time.Duration  `json:"CommandTimeout"`
	RefreshInterval time.Duration  `json:"RefreshInterval"`
	ReportPath      string         `json:"ReportPath"`
	Commands        CommandsConfig `json:"Commands"`
	SenderType      string         `json:"SenderType"` // "none", "file", "kafka" or "redis"
	File            FileConfig     `json:"File"`
	Kafka           KafkaConfig    `json:"Kafka"`
	Redis           RedisConfig    `json:"Redis"`
	SOCKSProxy      SOCKSConfig    `json:"SocksProxy"`
}

// PathsConfig locates the kernel pseudo-filesystems.
type PathsConfig struct {
	ProcRoot string `json:"ProcRoot" yaml:"ProcRoot"`
	SysRoot  string `json:"SysRoot" yaml:"SysRoot"`
}

// CommandsConfig holds the argv of every helper command.
type CommandsConfig struct {
	GPUTemperature []string `json:"GPUTemperature" yaml:"GPUTemperature"`
	WiFiSSID       []string `json:"WiFiSSID" yaml:"WiFiSSID"`
	UserLookup     []string `json:"UserLookup" yaml:"UserLookup"` // the uid is appended
	DiskUsage      []string `json:"DiskUsage" yaml:"DiskUsage"`
	InterfaceList  []string `json:"InterfaceList" yaml:"InterfaceList"`
}

// FileConfig contains settings for the file sender.
type FileConfig struct {
	FilePath   string `json:"FilePath" yaml:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB" yaml:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups" yaml:"MaxBackups"`
	Pretty     bool   `json:"Pretty" yaml:"Pretty"`
}

// KafkaConfig contains Kafka connection settings.
type KafkaConfig struct {
	Brokers        []string      `json:"Brokers"`
	Topic          string        `json:"Topic"`
	Compression    string        `json:"Compression"`
	RequiredAcks   int           `json:"RequiredAcks"`
	MaxRetries     int           `json:"MaxRetries"`
	RetryBackoff   time.Duration `json:"RetryBackoff"`
	FlushFrequency time.Duration `json:"FlushFrequency"`
	Timeout        time.Duration `json:"Timeout"`
	EnableTLS      bool          `json:"EnableTLS"`
	TLSCertFile    string        `json:"TLSCertFile"`
	TLSKeyFile     string        `json:"TLSKeyFile"`
	TLSCAFile      string        `json:"TLSCAFile"`
	SASLEnabled    bool          `json:"SASLEnabled"`
	SASLMechanism  string        `json:"SASLMechanism"`
	SASLUser       string        `json:"SASLUser"`
	SASLPassword   string        `json:"SASLPassword"`
}

// RedisConfig contains settings for the Redis sender.
type RedisConfig struct {
	Address   string        `json:"Address"`
	Password  string        `json:"Password"`
	DB        int           `json:"DB"`
	KeyPrefix string        `json:"KeyPrefix"`
	TTL       time.Duration `json:"TTL"`
}

// SOCKSConfig contains SOCKS5 proxy settings.
type SOCKSConfig struct {
	Host string `json:"Host" yaml:"Host"`
	Port int    `json:"Port" yaml:"Port"`
}

// Enabled reports whether a proxy is configured.
func (s SOCKSConfig) Enabled() bool {
	return s.Host != "" && s.Port > 0
}

// CollectorConfig contains settings for individual collectors.
type CollectorConfig struct {
	Enabled         bool          `json:"Enabled"`
	TopN            int           `json:"TopN,omitempty"`
	Ports           []int         `json:"Ports,omitempty"`
	ProbeHost       string        `json:"ProbeHost,omitempty"`
	ProbeTimeout    time.Duration `json:"ProbeTimeout,omitempty"`
	IncludeZones    []string      `json:"IncludeZones,omitempty"`
	Interfaces      []string      `json:"Interfaces,omitempty"`
	BatteryPrefixes []string      `json:"BatteryPrefixes,omitempty"`
	ACPrefixes      []string      `json:"ACPrefixes,omitempty"`
}

// DefaultConfig returns a configuration that works on a stock Linux host.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ProcRoot: "/proc",
			SysRoot:  "/sys",
		},
		CommandTimeout:  5 * time.Second,
		RefreshInterval: 1500 * time.Millisecond,
		ReportPath:      "rapport_etat_systeme.html",
		Commands:        DefaultCommands(),
		SenderType:      "none",
		File: FileConfig{
			FilePath:   "log/statreporter/snapshots.jsonl",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Kafka: KafkaConfig{
			Brokers:        []string{"localhost:9092"},
			Topic:          "host-telemetry",
			Compression:    "snappy",
			RequiredAcks:   1,
			MaxRetries:     3,
			RetryBackoff:   100 * time.Millisecond,
			FlushFrequency: 500 * time.Millisecond,
			Timeout:        10 * time.Second,
		},
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "statreporter:snapshot:",
			TTL:       time.Minute,
		},
	}
}

// DefaultCommands returns the stock helper command lines.
func DefaultCommands() CommandsConfig {
	return CommandsConfig{
		GPUTemperature: []string{"nvidia-smi", "--query-gpu=temperature.gpu", "--format=csv,noheader,nounits"},
		WiFiSSID:       []string{"iwgetid", "-r"},
		UserLookup:     []string{"id", "-un"},
		DiskUsage: []string{"df", "-h", "--exclude-type=tmpfs", "--exclude-type=devtmpfs",
			"--output=source,fstype,size,used,avail,pcent,target"},
		InterfaceList: []string{"ip", "a"},
	}
}

// Merge applies non-zero values from other to this config.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Paths.ProcRoot != "" {
		c.Paths.ProcRoot = other.Paths.ProcRoot
	}
	if other.Paths.SysRoot != "" {
		c.Paths.SysRoot = other.Paths.SysRoot
	}
	if other.CommandTimeout != 0 {
		c.CommandTimeout = other.CommandTimeout
	}
	if other.RefreshInterval != 0 {
		c.RefreshInterval = other.RefreshInterval
	}
	if other.ReportPath != "" {
		c.ReportPath = other.ReportPath
	}

	// Commands replace the whole argv
	mergeArgv(&c.Commands.GPUTemperature, other.Commands.GPUTemperature)
	mergeArgv(&c.Commands.WiFiSSID, other.Commands.WiFiSSID)
	mergeArgv(&c.Commands.UserLookup, other.Commands.UserLookup)
	mergeArgv(&c.Commands.DiskUsage, other.Commands.DiskUsage)
	mergeArgv(&c.Commands.InterfaceList, other.Commands.InterfaceList)

	if other.SenderType != "" {
		c.SenderType = other.SenderType
	}

	if other.File.FilePath != "" {
		c.File.FilePath = other.File.FilePath
	}
	if other.File.MaxSizeMB != 0 {
		c.File.MaxSizeMB = other.File.MaxSizeMB
	}
	if other.File.MaxBackups != 0 {
		c.File.MaxBackups = other.File.MaxBackups
	}
	c.File.Pretty = other.File.Pretty

	if len(other.Kafka.Brokers) > 0 {
		c.Kafka.Brokers = other.Kafka.Brokers
	}
	if other.Kafka.Topic != "" {
		c.Kafka.Topic = other.Kafka.Topic
	}
	if other.Kafka.Compression != "" {
		c.Kafka.Compression = other.Kafka.Compression
	}
	if other.Kafka.RequiredAcks != 0 {
		c.Kafka.RequiredAcks = other.Kafka.RequiredAcks
	}
	if other.Kafka.MaxRetries != 0 {
		c.Kafka.MaxRetries = other.Kafka.MaxRetries
	}
	if other.Kafka.RetryBackoff != 0 {
		c.Kafka.RetryBackoff = other.Kafka.RetryBackoff
	}
	if other.Kafka.FlushFrequency != 0 {
		c.Kafka.FlushFrequency = other.Kafka.FlushFrequency
	}
	if other.Kafka.Timeout != 0 {
		c.Kafka.Timeout = other.Kafka.Timeout
	}
	c.Kafka.EnableTLS = other.Kafka.EnableTLS
	if other.Kafka.TLSCertFile != "" {
		c.Kafka.TLSCertFile = other.Kafka.TLSCertFile
	}
	if other.Kafka.TLSKeyFile != "" {
		c.Kafka.TLSKeyFile = other.Kafka.TLSKeyFile
	}
	if other.Kafka.TLSCAFile != "" {
		c.Kafka.TLSCAFile = other.Kafka.TLSCAFile
	}
	c.Kafka.SASLEnabled = other.Kafka.SASLEnabled
	if other.Kafka.SASLMechanism != "" {
		c.Kafka.SASLMechanism = other.Kafka.SASLMechanism
	}
	if other.Kafka.SASLUser != "" {
		c.Kafka.SASLUser = other.Kafka.SASLUser
	}
	if other.Kafka.SASLPassword != "" {
		c.Kafka.SASLPassword = other.Kafka.SASLPassword
	}

	if other.Redis.Address != "" {
		c.Redis.Address = other.Redis.Address
	}
	if other.Redis.Password != "" {
		c.Redis.Password = other.Redis.Password
	}
	if other.Redis.DB != 0 {
		c.Redis.DB = other.Redis.DB
	}
	if other.Redis.KeyPrefix != "" {
		c.Redis.KeyPrefix = other.Redis.KeyPrefix
	}
	if other.Redis.TTL != 0 {
		c.Redis.TTL = other.Redis.TTL
	}

	if other.SOCKSProxy.Host != "" {
		c.SOCKSProxy.Host = other.SOCKSProxy.Host
	}
	if other.SOCKSProxy.Port != 0 {
		c.SOCKSProxy.Port = other.SOCKSProxy.Port
	}
}

func mergeArgv(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// MonitorConfig holds collectors-only configuration (Monitor.json).
type MonitorConfig struct {
	Collectors map[string]CollectorConfig `json:"Collectors"`
}

// DefaultMonitorConfig returns a MonitorConfig with empty defaults.
// Use ApplyDefaults() with registry-provided defaults for full initialization.
func DefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Collectors: make(map[string]CollectorConfig),
	}
}

// ApplyDefaults fills in missing collector entries from the provided defaults.
// Existing entries are not overwritten.
func (mc *MonitorConfig) ApplyDefaults(defaults map[string]CollectorConfig) {
	for name, defCfg := range defaults {
		if _, exists := mc.Collectors[name]; !exists {
			mc.Collectors[name] = defCfg
		}
	}
}

// Merge applies non-zero values from other to this MonitorConfig.
func (mc *MonitorConfig) Merge(other *MonitorConfig) {
	if other == nil {
		return
	}
	for name, collectorCfg := range other.Collectors {
		existing, ok := mc.Collectors[name]
		if !ok {
			mc.Collectors[name] = collectorCfg
			continue
		}

		existing.Enabled = collectorCfg.Enabled
		if collectorCfg.TopN != 0 {
			existing.TopN = collectorCfg.TopN
		}
		if len(collectorCfg.Ports) > 0 {
			existing.Ports = collectorCfg.Ports
		}
		if collectorCfg.ProbeHost != "" {
			existing.ProbeHost = collectorCfg.ProbeHost
		}
		if collectorCfg.ProbeTimeout != 0 {
			existing.ProbeTimeout = collectorCfg.ProbeTimeout
		}
		if len(collectorCfg.IncludeZones) > 0 {
			existing.IncludeZones = collectorCfg.IncludeZones
		}
		if len(collectorCfg.Interfaces) > 0 {
			existing.Interfaces = collectorCfg.Interfaces
		}
		if len(collectorCfg.BatteryPrefixes) > 0 {
			existing.BatteryPrefixes = collectorCfg.BatteryPrefixes
		}
		if len(collectorCfg.ACPrefixes) > 0 {
			existing.ACPrefixes = collectorCfg.ACPrefixes
		}
		mc.Collectors[name] = existing
	}
}
