package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	POS POS `yaml:"pos"`
}

type Server struct {
	Address string `yaml:"address"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// POS holds restaurant-level settings for billing and floor management
type POS struct {
	RestaurantName    string  `yaml:"restaurant_name"`
	Currency          string  `yaml:"currency"`
	GSTRatePercent    float64 `yaml:"gst_rate_percent"`
	DefaultStation    string  `yaml:"default_station"`
	TargetTurnMinutes int     `yaml:"target_turn_minutes"`
}

func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		c.JWT.ExpiresIn = 12
	}
	if c.POS.Currency == "" {
		c.POS.Currency = "INR"
	}
	if c.POS.DefaultStation == "" {
		c.POS.DefaultStation = "KITCHEN"
	}
	if c.POS.TargetTurnMinutes <= 0 {
		c.POS.TargetTurnMinutes = 60
	}
	return nil
}
