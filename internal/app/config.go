package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"asterix034/internal/logging"
	"asterix034/internal/output"
)

// Default configuration constants
const (
	DefaultListenAddr    = ":8600"
	DefaultArchiveDir    = "./archive"
	DefaultQueueSize     = 100
	DefaultStatsInterval = 30 * time.Second
	DefaultMQTTTopic     = "asterix/cat034"
	DefaultMQTTClientID  = "cat034-listener"
)

// Config holds application configuration
type Config struct {
	ListenAddr    string             `yaml:"listen"`
	ArchiveDir    string             `yaml:"archive_dir"`
	ArchiveUTC    bool               `yaml:"archive_utc"`
	RetentionDays int                `yaml:"retention_days"`
	Validate      bool               `yaml:"validate"`
	DropInvalid   bool               `yaml:"drop_invalid"`
	Stdout        bool               `yaml:"stdout"`
	QueueSize     int                `yaml:"queue_size"`
	StatsInterval time.Duration      `yaml:"stats_interval"`
	Verbose       bool               `yaml:"verbose"`
	Logs          logging.FileConfig `yaml:"logs"`
	MQTT          output.MQTTConfig  `yaml:"mqtt"`
	ShowVersion   bool               `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		ListenAddr:    DefaultListenAddr,
		ArchiveDir:    DefaultArchiveDir,
		ArchiveUTC:    true,
		Validate:      true,
		Stdout:        true,
		QueueSize:     DefaultQueueSize,
		StatsInterval: DefaultStatsInterval,
		Logs: logging.FileConfig{
			MaxSizeMB:  50,
			MaxAgeDays: 14,
			MaxBackups: 5,
			Compress:   true,
		},
		MQTT: output.MQTTConfig{
			ClientID: DefaultMQTTClientID,
			Topic:    DefaultMQTTTopic,
			Timeout:  5 * time.Second,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Relative directories are
// resolved against the directory of the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.ArchiveDir = resolve(cfg.ArchiveDir)
	cfg.Logs.Directory = resolve(cfg.Logs.Directory)

	return cfg, cfg.Check()
}

// Check reports the first invalid setting
func (c Config) Check() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must not be negative")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}
	if c.DropInvalid && !c.Validate {
		return fmt.Errorf("drop_invalid requires validate")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt topic is required when a broker is set")
	}
	return nil
}
