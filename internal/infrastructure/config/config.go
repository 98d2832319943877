package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/model"
)

// Config is the root configuration, loaded from YAML with environment
// variable overrides for the values that usually live outside the file.
type Config struct {
	HomeAssistant HomeAssistantConfig `yaml:"home_assistant"`
	Here          HereConfig          `yaml:"here"`
	Server        ServerConfig        `yaml:"server"`
	Update        UpdateConfig        `yaml:"update"`
	Logging       LoggingConfig       `yaml:"logging"`
	Sensors       []SensorConfig      `yaml:"sensors"`
}

// HomeAssistantConfig contains the host connection settings.
type HomeAssistantConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// HereConfig contains shared HERE API credentials. Sensors without their
// own app_id/app_code inherit these.
type HereConfig struct {
	AppID   string `yaml:"app_id"`
	AppCode string `yaml:"app_code"`
}

// ServerConfig contains the service-call HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// UpdateConfig contains the periodic update settings. ScanInterval is how
// often sensors are visited; Throttle is the minimum interval between
// remote calls per sensor.
type UpdateConfig struct {
	ScanIntervalSeconds int `yaml:"scan_interval"`
	ThrottleSeconds     int `yaml:"throttle"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SensorConfig is one travel-time sensor entry.
type SensorConfig struct {
	Name            string `yaml:"name"`
	AppID           string `yaml:"app_id"`
	AppCode         string `yaml:"app_code"`
	Origin          string `yaml:"origin"`
	Destination     string `yaml:"destination"`
	MinimumDistance *int   `yaml:"minimum_distance"`
}

// Load reads, defaults, overrides and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8156
	}
	if c.Update.ScanIntervalSeconds == 0 {
		c.Update.ScanIntervalSeconds = 60
	}
	if c.Update.ThrottleSeconds == 0 {
		c.Update.ThrottleSeconds = 300
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// applyEnvOverrides lets connection settings and credentials come from the
// environment (or a .env file loaded by the composition root).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HASS_URL"); v != "" {
		c.HomeAssistant.URL = v
	}
	if v := os.Getenv("HASS_TOKEN"); v != "" {
		c.HomeAssistant.Token = v
	}
	if v := os.Getenv("HERE_APP_ID"); v != "" {
		c.Here.AppID = v
	}
	if v := os.Getenv("HERE_APP_CODE"); v != "" {
		c.Here.AppCode = v
	}
}

// Validate checks host settings and every sensor entry.
func (c *Config) Validate() error {
	if c.HomeAssistant.URL == "" {
		return fmt.Errorf("config: home_assistant.url is required")
	}
	if c.HomeAssistant.Token == "" {
		return fmt.Errorf("config: home_assistant.token is required")
	}
	if len(c.Sensors) == 0 {
		return fmt.Errorf("config: at least one sensor is required")
	}
	for i := range c.Sensors {
		if err := c.SensorModel(i).Validate(); err != nil {
			return fmt.Errorf("config: sensor %d: %w", i, err)
		}
	}
	return nil
}

// SensorModel converts the i-th sensor entry to the domain configuration,
// applying credential inheritance and the minimum-distance default.
func (c *Config) SensorModel(i int) model.SensorConfig {
	sc := c.Sensors[i]

	appID := sc.AppID
	if appID == "" {
		appID = c.Here.AppID
	}
	appCode := sc.AppCode
	if appCode == "" {
		appCode = c.Here.AppCode
	}

	minDistance := model.DefaultMinimumDistance
	if sc.MinimumDistance != nil {
		minDistance = *sc.MinimumDistance
	}

	return model.SensorConfig{
		Name:                  sc.Name,
		AppID:                 appID,
		AppCode:               appCode,
		Origin:                sc.Origin,
		Destination:           sc.Destination,
		MinimumDistanceMeters: minDistance,
	}
}

// ScanInterval returns the periodic update interval.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Update.ScanIntervalSeconds) * time.Second
}

// Throttle returns the per-sensor minimum interval between remote calls.
func (c *Config) Throttle() time.Duration {
	return time.Duration(c.Update.ThrottleSeconds) * time.Second
}

// ListenAddr returns the host:port the service-call server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
