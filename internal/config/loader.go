package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"statreporter/internal/logger"
)

// Format is the encoding of a configuration file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension; JSON is the default.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func decode(format Format, data []byte, v interface{}) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// rawConfig is used for unmarshaling with duration strings.
type rawConfig struct {
	Paths           PathsConfig    `json:"Paths" yaml:"Paths"`
	CommandTimeout  string         `json:"CommandTimeout" yaml:"CommandTimeout"`
	RefreshInterval string         `json:"RefreshInterval" yaml:"RefreshInterval"`
	ReportPath      string         `json:"ReportPath" yaml:"ReportPath"`
	Commands        CommandsConfig `json:"Commands" yaml:"Commands"`
	SenderType      string         `json:"SenderType" yaml:"SenderType"`
	File            FileConfig     `json:"File" yaml:"File"`
	Kafka           rawKafkaConfig `json:"Kafka" yaml:"Kafka"`
	Redis           rawRedisConfig `json:"Redis" yaml:"Redis"`
	SOCKSProxy      SOCKSConfig    `json:"SocksProxy" yaml:"SocksProxy"`
}

type rawKafkaConfig struct {
	Brokers        []string `json:"Brokers" yaml:"Brokers"`
	Topic          string   `json:"Topic" yaml:"Topic"`
	Compression    string   `json:"Compression" yaml:"Compression"`
	RequiredAcks   int      `json:"RequiredAcks" yaml:"RequiredAcks"`
	MaxRetries     int      `json:"MaxRetries" yaml:"MaxRetries"`
	RetryBackoff   string   `json:"RetryBackoff" yaml:"RetryBackoff"`
	FlushFrequency string   `json:"FlushFrequency" yaml:"FlushFrequency"`
	Timeout        string   `json:"Timeout" yaml:"Timeout"`
	EnableTLS      bool     `json:"EnableTLS" yaml:"EnableTLS"`
	TLSCertFile    string   `json:"TLSCertFile" yaml:"TLSCertFile"`
	TLSKeyFile     string   `json:"TLSKeyFile" yaml:"TLSKeyFile"`
	TLSCAFile      string   `json:"TLSCAFile" yaml:"TLSCAFile"`
	SASLEnabled    bool     `json:"SASLEnabled" yaml:"SASLEnabled"`
	SASLMechanism  string   `json:"SASLMechanism" yaml:"SASLMechanism"`
	SASLUser       string   `json:"SASLUser" yaml:"SASLUser"`
	SASLPassword   string   `json:"SASLPassword" yaml:"SASLPassword"`
}

type rawRedisConfig struct {
	Address   string `json:"Address" yaml:"Address"`
	Password  string `json:"Password" yaml:"Password"`
	DB        int    `json:"DB" yaml:"DB"`
	KeyPrefix string `json:"KeyPrefix" yaml:"KeyPrefix"`
	TTL       string `json:"TTL" yaml:"TTL"`
}

type rawCollectorConfig struct {
	Enabled         bool     `json:"Enabled" yaml:"Enabled"`
	TopN            int      `json:"TopN,omitempty" yaml:"TopN,omitempty"`
	Ports           []int    `json:"Ports,omitempty" yaml:"Ports,omitempty"`
	ProbeHost       string   `json:"ProbeHost,omitempty" yaml:"ProbeHost,omitempty"`
	ProbeTimeout    string   `json:"ProbeTimeout,omitempty" yaml:"ProbeTimeout,omitempty"`
	IncludeZones    []string `json:"IncludeZones,omitempty" yaml:"IncludeZones,omitempty"`
	Interfaces      []string `json:"Interfaces,omitempty" yaml:"Interfaces,omitempty"`
	BatteryPrefixes []string `json:"BatteryPrefixes,omitempty" yaml:"BatteryPrefixes,omitempty"`
	ACPrefixes      []string `json:"ACPrefixes,omitempty" yaml:"ACPrefixes,omitempty"`
}

type rawLoggingConfig struct {
	Level      string `json:"Level" yaml:"Level"`
	FilePath   string `json:"FilePath" yaml:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB" yaml:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups" yaml:"MaxBackups"`
	MaxAgeDays int    `json:"MaxAgeDays" yaml:"MaxAgeDays"`
	Compress   bool   `json:"Compress" yaml:"Compress"`
	Console    bool   `json:"Console" yaml:"Console"`
	Format     string `json:"Format" yaml:"Format"`
}

// rawMonitorConfig is used for unmarshaling of Monitor.json.
type rawMonitorConfig struct {
	Collectors map[string]rawCollectorConfig `json:"Collectors" yaml:"Collectors"`
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", field, err)
	}
	return d, nil
}

// Load reads configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseFormat(data, FormatFor(path))
}

// Parse parses configuration from JSON bytes.
func Parse(data []byte) (*Config, error) {
	return ParseFormat(data, FormatJSON)
}

// ParseFormat parses configuration in the given encoding.
func ParseFormat(data []byte, format Format) (*Config, error) {
	var raw rawConfig
	if err := decode(format, data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", format, err)
	}

	parsed, err := convertRawConfig(&raw)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Merge(parsed)
	return cfg, nil
}

func convertRawConfig(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		Paths:      raw.Paths,
		ReportPath: raw.ReportPath,
		Commands:   raw.Commands,
		SenderType: raw.SenderType,
		File:       raw.File,
		SOCKSProxy: raw.SOCKSProxy,
	}

	var err error
	if cfg.CommandTimeout, err = parseDuration("CommandTimeout", raw.CommandTimeout); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = parseDuration("RefreshInterval", raw.RefreshInterval); err != nil {
		return nil, err
	}

	kafka, err := convertRawKafka(&raw.Kafka)
	if err != nil {
		return nil, err
	}
	cfg.Kafka = *kafka

	cfg.Redis = RedisConfig{
		Address:   raw.Redis.Address,
		Password:  raw.Redis.Password,
		DB:        raw.Redis.DB,
		KeyPrefix: raw.Redis.KeyPrefix,
	}
	if cfg.Redis.TTL, err = parseDuration("Redis.TTL", raw.Redis.TTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func convertRawKafka(raw *rawKafkaConfig) (*KafkaConfig, error) {
	kafka := &KafkaConfig{
		Brokers:       raw.Brokers,
		Topic:         raw.Topic,
		Compression:   raw.Compression,
		RequiredAcks:  raw.RequiredAcks,
		MaxRetries:    raw.MaxRetries,
		EnableTLS:     raw.EnableTLS,
		TLSCertFile:   raw.TLSCertFile,
		TLSKeyFile:    raw.TLSKeyFile,
		TLSCAFile:     raw.TLSCAFile,
		SASLEnabled:   raw.SASLEnabled,
		SASLMechanism: raw.SASLMechanism,
		SASLUser:      raw.SASLUser,
		SASLPassword:  raw.SASLPassword,
	}

	var err error
	if kafka.RetryBackoff, err = parseDuration("RetryBackoff", raw.RetryBackoff); err != nil {
		return nil, err
	}
	if kafka.FlushFrequency, err = parseDuration("FlushFrequency", raw.FlushFrequency); err != nil {
		return nil, err
	}
	if kafka.Timeout, err = parseDuration("Timeout", raw.Timeout); err != nil {
		return nil, err
	}
	return kafka, nil
}

func convertRawCollector(name string, raw *rawCollectorConfig) (*CollectorConfig, error) {
	coll := &CollectorConfig{
		Enabled:         raw.Enabled,
		TopN:            raw.TopN,
		Ports:           raw.Ports,
		ProbeHost:       raw.ProbeHost,
		IncludeZones:    raw.IncludeZones,
		Interfaces:      raw.Interfaces,
		BatteryPrefixes: raw.BatteryPrefixes,
		ACPrefixes:      raw.ACPrefixes,
	}

	if raw.ProbeTimeout != "" {
		d, err := time.ParseDuration(raw.ProbeTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid probe timeout for collector %s: %w", name, err)
		}
		coll.ProbeTimeout = d
	}

	return coll, nil
}

// LoadMonitor reads monitor configuration from the specified file path.
func LoadMonitor(path string) (*MonitorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read monitor config file: %w", err)
	}
	return ParseMonitorFormat(data, FormatFor(path))
}

// ParseMonitor parses monitor configuration from JSON bytes.
func ParseMonitor(data []byte) (*MonitorConfig, error) {
	return ParseMonitorFormat(data, FormatJSON)
}

// ParseMonitorFormat parses monitor configuration in the given encoding.
func ParseMonitorFormat(data []byte, format Format) (*MonitorConfig, error) {
	var raw rawMonitorConfig
	if err := decode(format, data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse monitor config %s: %w", format, err)
	}

	mc := DefaultMonitorConfig()
	if len(raw.Collectors) == 0 {
		return mc, nil
	}

	parsed := &MonitorConfig{
		Collectors: make(map[string]CollectorConfig, len(raw.Collectors)),
	}
	for name, rawColl := range raw.Collectors {
		coll, err := convertRawCollector(name, &rawColl)
		if err != nil {
			return nil, err
		}
		parsed.Collectors[name] = *coll
	}
	mc.Merge(parsed)
	return mc, nil
}

// LoadLogging reads logging configuration from the specified file path.
func LoadLogging(path string) (*logger.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logging config file: %w", err)
	}
	return ParseLoggingFormat(data, FormatFor(path))
}

// ParseLogging parses logging configuration from JSON bytes.
func ParseLogging(data []byte) (*logger.Config, error) {
	return ParseLoggingFormat(data, FormatJSON)
}

// ParseLoggingFormat parses logging configuration in the given encoding.
func ParseLoggingFormat(data []byte, format Format) (*logger.Config, error) {
	var raw rawLoggingConfig
	if err := decode(format, data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse logging config %s: %w", format, err)
	}

	def := logger.DefaultConfig()
	if raw.Level != "" {
		def.Level = raw.Level
	}
	if raw.FilePath != "" {
		def.FilePath = raw.FilePath
	}
	if raw.MaxSizeMB != 0 {
		def.MaxSizeMB = raw.MaxSizeMB
	}
	if raw.MaxBackups != 0 {
		def.MaxBackups = raw.MaxBackups
	}
	if raw.MaxAgeDays != 0 {
		def.MaxAgeDays = raw.MaxAgeDays
	}
	if raw.Format != "" {
		def.Format = raw.Format
	}
	def.Compress = raw.Compress
	def.Console = raw.Console

	return &def, nil
}

// LoadSplit loads configuration from three separate files:
// configPath (StatReporter.json), monitorPath (Monitor.json), loggingPath (Logging.json).
// A missing file yields that file's defaults; any other read or parse error is returned.
func LoadSplit(configPath, monitorPath, loggingPath string) (*Config, *MonitorConfig, *logger.Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	mc, err := LoadMonitor(monitorPath)
	if errors.Is(err, fs.ErrNotExist) {
		mc, err = DefaultMonitorConfig(), nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load monitor config: %w", err)
	}

	lc, err := LoadLogging(loggingPath)
	if errors.Is(err, fs.ErrNotExist) {
		def := logger.DefaultConfig()
		lc, err = &def, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load logging config: %w", err)
	}

	return cfg, mc, lc, nil
}
