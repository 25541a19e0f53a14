// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads receiver settings from a YAML or TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"gopkg.in/yaml.v3"
)

// Config is the receiver configuration
type Config struct {
	Frequency  string   `yaml:"frequency" toml:"frequency"`
	Preset     string   `yaml:"preset" toml:"preset"`
	Hop        []string `yaml:"hop" toml:"hop"`
	Protocols  []string `yaml:"protocols" toml:"protocols"`
	CaptureDir string   `yaml:"capture_dir" toml:"capture_dir"`
	LogLevel   string   `yaml:"log_level" toml:"log_level"`
	MQTT       MQTT     `yaml:"mqtt" toml:"mqtt"`
	Metrics    Metrics  `yaml:"metrics" toml:"metrics"`
}

// MQTT holds broker settings
type MQTT struct {
	Broker   string `yaml:"broker" toml:"broker"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
	QoS      int    `yaml:"qos" toml:"qos"`
	Retain   bool   `yaml:"retain" toml:"retain"`
}

// Metrics holds the Prometheus listener settings
type Metrics struct {
	Listen string `yaml:"listen" toml:"listen"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Frequency:  "433.92",
		Preset:     radio.PresetAM650,
		Hop:        []string{"315.00", "433.92"},
		CaptureDir: "captures",
		LogLevel:   "info",
		MQTT: MQTT{
			Prefix: "tirestat",
		},
		Metrics: Metrics{
			Listen: ":9464",
		},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field that has a constrained value
func (c Config) Validate() error {
	if _, err := c.ReceivePreset(); err != nil {
		return err
	}
	if _, err := c.HopFrequencies(); err != nil {
		return err
	}
	if _, err := c.ProtocolSet(); err != nil {
		return err
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// ReceivePreset returns the fixed receive frequency and preset
func (c Config) ReceivePreset() (radio.Preset, error) {
	if !radio.IsPreset(c.Preset) {
		return radio.Preset{}, fmt.Errorf("unknown preset %q", c.Preset)
	}
	hz, err := parseReceivable(c.Frequency)
	if err != nil {
		return radio.Preset{}, err
	}
	return radio.Preset{Name: c.Preset, Frequency: hz}, nil
}

// HopFrequencies returns the hopper list in Hz
func (c Config) HopFrequencies() ([]uint32, error) {
	out := make([]uint32, 0, len(c.Hop))
	for _, s := range c.Hop {
		hz, err := parseReceivable(s)
		if err != nil {
			return nil, fmt.Errorf("hop: %w", err)
		}
		out = append(out, hz)
	}
	return out, nil
}

// ProtocolSet resolves the protocol filter. An empty filter selects every
// registered protocol.
func (c Config) ProtocolSet() ([]*tpms.Protocol, error) {
	if len(c.Protocols) == 0 {
		return tpms.Registry, nil
	}

	out := make([]*tpms.Protocol, 0, len(c.Protocols))
	for _, name := range c.Protocols {
		p := tpms.LookupProtocol(strings.TrimSpace(name))
		if p == nil {
			return nil, fmt.Errorf("unknown protocol %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseReceivable(s string) (uint32, error) {
	hz, err := radio.ParseFrequency(s)
	if err != nil {
		return 0, err
	}
	if !radio.ValidFrequency(hz) {
		return 0, fmt.Errorf("frequency %s MHz is outside the receivable bands", radio.FormatFrequency(hz))
	}
	return hz, nil
}
