package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default pricing applied when the config file does not override it.
const (
	DefaultDeliveryFee    = 5.0
	DefaultServiceFeeRate = 0.10
	DefaultPort           = 3000
)

// Config holds all configuration for the pizzeria system
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Pricing  PricingConfig   `yaml:"pricing"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
	RabbitMQ *RabbitMQConfig `yaml:"rabbitmq,omitempty"`
	Menu     []MenuEntry     `yaml:"menu,omitempty"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port"`
}

// PricingConfig holds the fees applied to every order total
type PricingConfig struct {
	DeliveryFee    *float64 `yaml:"delivery_fee"`
	ServiceFeeRate *float64 `yaml:"service_fee_rate"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
// When absent, orders are kept in memory.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// When absent, status updates are not published to the broker.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// MenuEntry is one catalog item in the config file; when the menu
// section is present it replaces the built-in catalog entirely.
type MenuEntry struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// Default returns a configuration with built-in defaults and no
// database or broker attached.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file and fills in defaults
// for anything the file leaves unset.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Pricing.DeliveryFee == nil {
		fee := DefaultDeliveryFee
		c.Pricing.DeliveryFee = &fee
	}
	if c.Pricing.ServiceFeeRate == nil {
		rate := DefaultServiceFeeRate
		c.Pricing.ServiceFeeRate = &rate
	}
	if c.Database != nil && c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.RabbitMQ != nil && c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
