package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type MQTT struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	Retained    bool   `json:"retained"`
}

type Config struct {
	ConfigFile  string
	CaptureFile string
	DBPath      string
	LogLevel    zerolog.Level

	LogFile               string `json:"log_file"`
	SnapshotFile          string `json:"snapshot_file"`
	ReplayIntervalSeconds int    `json:"replay_interval_seconds"`
	APIPort               int    `json:"api_port"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	NtfyTopic string `json:"ntfy_topic"`

	MQTT MQTT `json:"mqtt"`
}

func Load() Config {
	var (
		configFile  string
		captureFile string
		dbPath      string
		logLevel    string
	)

	flag.StringVar(&configFile, "config-file", "config.json", "Path to replay config file")
	flag.StringVar(&captureFile, "capture", "data/capture.json", "Path to recorded cloud responses")
	flag.StringVar(&dbPath, "db", "data/airzone.db", "Path to the SQLite snapshot database")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := LoadFile(configFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	cfg.ConfigFile = configFile
	cfg.CaptureFile = captureFile
	cfg.DBPath = dbPath
	cfg.LogLevel = parseLogLevel(logLevel)
	return cfg
}

// LoadFile decodes and validates a JSON config file.
func LoadFile(path string) (Config, error) {
	var cfg Config

	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.validate()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.DDAgentAddr == "" {
		cfg.DDAgentAddr = "127.0.0.1:8125"
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "airzone."
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "airzone"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "airzone-replay"
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var problems []string

	if cfg.APIPort < 0 || cfg.APIPort > 65535 {
		problems = append(problems, fmt.Sprintf("api_port %d out of range", cfg.APIPort))
	}
	if cfg.ReplayIntervalSeconds < 0 {
		problems = append(problems, "replay_interval_seconds must not be negative")
	}
	if cfg.MQTT.Broker != "" && strings.ContainsAny(cfg.MQTT.TopicPrefix, "#+") {
		problems = append(problems, "mqtt.topic_prefix must not contain wildcards")
	}

	if len(problems) > 0 {
		panic("Invalid config: " + strings.Join(problems, ", "))
	}
}
