package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL      string `yaml:"ttl"`
		PerCycle int    `yaml:"per_cycle"`
	} `yaml:"questions"`
	// Stages are countdowns in seconds; zero means "use the default", so a
	// partial config never leaves a stage without a duration.
	Stages struct {
		Registration     int `yaml:"registration"`
		AutoRegistration int `yaml:"auto_registration"`
		Preparation      int `yaml:"preparation"`
		Quiz             int `yaml:"quiz"`
		Pause            int `yaml:"pause"`
		Results          int `yaml:"results"`
		Waiting          int `yaml:"waiting"`
	} `yaml:"stages"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
