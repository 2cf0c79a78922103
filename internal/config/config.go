package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration shared by the server and poller
// binaries. It mirrors config/config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Poller   PollerConfig   `yaml:"poller"`
}

type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MQTTConfig configures the optional ingest bridge. When Enabled the
// server subscribes to Topic and feeds published measurements into the
// same ingestion path as the HTTP API.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QOS      byte   `yaml:"qos"`
}

// PollerConfig drives the edge poller binary: which Modbus relays to
// connect to, which devices sit behind them and which registers to read.
type PollerConfig struct {
	ServerURL  string      `yaml:"server_url"`
	MaxWorkers int         `yaml:"max_workers"`
	Relays     []RelayPoll `yaml:"relays"`
}

// RelayPoll describes one reachable Modbus TCP endpoint. The physical
// and network addresses identify the relay to the backend on ingestion.
type RelayPoll struct {
	PhysicalAddress string        `yaml:"physical_address"`
	NetworkAddress  string        `yaml:"network_address"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Timeout         time.Duration `yaml:"timeout"`
	RetryCount      int           `yaml:"retry_count"`
	Enabled         bool          `yaml:"enabled"`
	Devices         []DevicePoll  `yaml:"devices"`
}

// DevicePoll describes one polled device behind a relay.
type DevicePoll struct {
	Address      string        `yaml:"address"`
	SlaveID      uint8         `yaml:"slave_id"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Points       []PointPoll   `yaml:"points"`
}

// PointPoll maps one Modbus register to a telemetry data type.
type PointPoll struct {
	Register     uint16  `yaml:"register"`
	RegisterType string  `yaml:"register_type"` // holding | input
	Encoding     string  `yaml:"encoding"`      // uint16 | int16 | float32
	ByteOrder    string  `yaml:"byte_order"`    // ABCD | CDAB
	Scale        float64 `yaml:"scale"`
	Offset       float64 `yaml:"offset"`
	DataType     uint    `yaml:"data_type"`
}

// Load reads and validates the YAML configuration file, filling in
// defaults for anything left unset.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	// Defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "iot.sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Poller.MaxWorkers <= 0 {
		cfg.Poller.MaxWorkers = 10
	}
	if cfg.Poller.ServerURL == "" {
		cfg.Poller.ServerURL = "http://localhost:8080"
	}

	// Basic validation
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return Config{}, fmt.Errorf("mqtt.broker must be set when the bridge is enabled")
		}
		if cfg.MQTT.Topic == "" {
			return Config{}, fmt.Errorf("mqtt.topic must be set when the bridge is enabled")
		}
	}
	for i, r := range cfg.Poller.Relays {
		if r.PhysicalAddress == "" {
			return Config{}, fmt.Errorf("poller.relays[%d]: physical_address must be set", i)
		}
		if r.Host == "" {
			return Config{}, fmt.Errorf("poller.relays[%d]: host must be set", i)
		}
	}

	return cfg, nil
}
