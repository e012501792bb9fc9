package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SaunaCfg *SaunaConfig
	MqttCfg  *MqttConfig
	Preheat  *PreheatConfig
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
}

type SaunaConfig struct {
	// Host is a literal IPv4 address, a hostname, or a .local multicast
	// name. ffes.local is what the vendor ships.
	Host             string        `env:"SAUNA_HOST" envDefault:"ffes.local"`
	Port             int           `env:"SAUNA_PORT" envDefault:"502"`
	UnitID           uint8         `env:"SAUNA_UNIT_ID" envDefault:"1"`
	PollInterval     time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	FailureThreshold int           `env:"FAILURE_THRESHOLD" envDefault:"3"`
}

type MqttConfig struct {
	Host     string `env:"MQTT_HOST"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
}

// PreheatConfig describes the optional scheduled session. Empty Cron
// disables it.
type PreheatConfig struct {
	Cron            string `env:"PREHEAT_CRON"`
	Profile         int    `env:"PREHEAT_PROFILE" envDefault:"2"`
	Temperature     int    `env:"PREHEAT_TEMPERATURE" envDefault:"80"`
	SessionTime     string `env:"PREHEAT_SESSION_TIME" envDefault:"01:00"`
	VentilationTime string `env:"PREHEAT_VENTILATION_TIME" envDefault:"00:15"`
	Aroma           int    `env:"PREHEAT_AROMA" envDefault:"0"`
	Humidity        int    `env:"PREHEAT_HUMIDITY" envDefault:"0"`
}

// FromEnv loads the whole configuration from the environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		SaunaCfg: &SaunaConfig{},
		MqttCfg:  &MqttConfig{},
		Preheat:  &PreheatConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.SaunaCfg.Normalize()
	return cfg, nil
}

const (
	defaultPollInterval = 15 * time.Second
	minPollInterval     = 5 * time.Second
	maxPollInterval     = 300 * time.Second
)

// Normalize clamps the poll interval into its supported range and fills in
// missing defaults.
func (c *SaunaConfig) Normalize() {
	switch {
	case c.PollInterval == 0:
		c.PollInterval = defaultPollInterval
	case c.PollInterval < minPollInterval:
		c.PollInterval = minPollInterval
	case c.PollInterval > maxPollInterval:
		c.PollInterval = maxPollInterval
	}
	if c.Port <= 0 {
		c.Port = 502
	}
	if c.UnitID == 0 {
		c.UnitID = 1
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.Host == "" {
		c.Host = "ffes.local"
	}
}
