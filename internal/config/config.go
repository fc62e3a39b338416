// Package config loads scribbly settings from YAML and persisted overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ayusman/scribbly/internal/capture"
	"github.com/ayusman/scribbly/internal/detector"
	"github.com/ayusman/scribbly/internal/interact"
	"gopkg.in/yaml.v3"
)

// ErrUnknownSetting is returned for override keys that map to no field.
var ErrUnknownSetting = errors.New("unknown setting")

// DefaultDirName is the data directory under the user's home.
const DefaultDirName = ".scribbly"

// Interaction holds the tunable interaction parameters. Palette and
// layout are fixed.
type Interaction struct {
	Alpha       float64       `yaml:"alpha"`
	Dwell       time.Duration `yaml:"dwell"`
	MinSize     int           `yaml:"min_size"`
	MaxSize     int           `yaml:"max_size"`
	DefaultSize int           `yaml:"default_size"`
}

// Server configures the HTTP interface.
type Server struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Display configures the local window and tray.
type Display struct {
	Window bool   `yaml:"window"`
	Title  string `yaml:"title"`
	Tray   bool   `yaml:"tray"`
}

// Config is the complete application configuration.
type Config struct {
	DataDir     string          `yaml:"data_dir"`
	Camera      capture.Config  `yaml:"camera"`
	Detector    detector.Config `yaml:"detector"`
	Interaction Interaction     `yaml:"interaction"`
	Server      Server          `yaml:"server"`
	Display     Display         `yaml:"display"`
}

// Default returns the built-in configuration.
func Default() Config {
	ic := interact.DefaultConfig()

	dataDir := DefaultDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, DefaultDirName)
	}

	return Config{
		DataDir:  dataDir,
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Interaction: Interaction{
			Alpha:       ic.Alpha,
			Dwell:       ic.Dwell,
			MinSize:     ic.MinSize,
			MaxSize:     ic.MaxSize,
			DefaultSize: ic.DefaultSize,
		},
		Server: Server{
			Enabled: true,
			Addr:    ":8080",
		},
		Display: Display{
			Window: true,
			Title:  "Scribbly",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// DBPath returns the settings database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "scribbly.db")
}

// Engine returns the interaction engine configuration.
func (c Config) Engine() interact.Config {
	ic := interact.DefaultConfig()
	ic.Alpha = c.Interaction.Alpha
	ic.Dwell = c.Interaction.Dwell
	ic.MinSize = c.Interaction.MinSize
	ic.MaxSize = c.Interaction.MaxSize
	ic.DefaultSize = c.Interaction.DefaultSize
	return ic
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("interaction: %w", err)
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if c.Camera.DeviceID < 0 {
		return fmt.Errorf("camera: device id %d is negative", c.Camera.DeviceID)
	}
	if c.Camera.ProbeLimit < 0 {
		return fmt.Errorf("camera: probe limit %d is negative", c.Camera.ProbeLimit)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server: addr is required")
	}
	return nil
}

// setter applies one string override.
type setter func(c *Config, v string) error

var setters = map[string]setter{
	"camera.device":            intField(func(c *Config) *int { return &c.Camera.DeviceID }),
	"camera.fps":               intField(func(c *Config) *int { return &c.Camera.FPS }),
	"camera.mirror":            boolField(func(c *Config) *bool { return &c.Camera.Mirror }),
	"detector.min_confidence":  floatField(func(c *Config) *float64 { return &c.Detector.MinConfidence }),
	"detector.min_tracking":    floatField(func(c *Config) *float64 { return &c.Detector.MinTrackingConf }),
	"interaction.alpha":        floatField(func(c *Config) *float64 { return &c.Interaction.Alpha }),
	"interaction.dwell":        durationField(func(c *Config) *time.Duration { return &c.Interaction.Dwell }),
	"interaction.min_size":     intField(func(c *Config) *int { return &c.Interaction.MinSize }),
	"interaction.max_size":     intField(func(c *Config) *int { return &c.Interaction.MaxSize }),
	"interaction.default_size": intField(func(c *Config) *int { return &c.Interaction.DefaultSize }),
	"display.window":           boolField(func(c *Config) *bool { return &c.Display.Window }),
}

// SettingKeys lists the keys accepted by ApplySettings, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckSetting reports whether key=value applies cleanly together with the
// overrides already persisted in current.
func CheckSetting(current map[string]string, key, value string) error {
	merged := make(map[string]string, len(current)+1)
	for k, v := range current {
		merged[k] = v
	}
	merged[key] = value

	cfg := Default()
	return cfg.ApplySettings(merged)
}

// ApplySettings applies persisted overrides and revalidates. On error c
// is left unchanged.
func (c *Config) ApplySettings(settings map[string]string) error {
	next := *c
	for k, v := range settings {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, k)
		}
		if err := set(&next, v); err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func intField(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func floatField(field func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func boolField(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationField(field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}
