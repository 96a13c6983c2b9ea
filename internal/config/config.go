// Package config loads server settings from the environment
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds server settings
type Config struct {
	Port                 int    `mapstructure:"port"`
	StripeSecretKey      string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret  string `mapstructure:"stripe_webhook_secret"`
	StripePublishableKey string `mapstructure:"stripe_publishable_key"`
	UploadDir            string `mapstructure:"upload_dir"`
	CatalogFile          string `mapstructure:"catalog_file"`
	Currency             string `mapstructure:"currency"`
	MinAmount            int64  `mapstructure:"min_amount"`
	PublicURL            string `mapstructure:"public_url"`
	Headless             bool   `mapstructure:"headless"`
}

// Defaults
const (
	DefaultPort      = 3000
	DefaultUploadDir = "uploads"
	DefaultCurrency  = "usd"
	DefaultMinAmount = 50
)

var keys = []string{
	"port",
	"stripe_secret_key",
	"stripe_webhook_secret",
	"stripe_publishable_key",
	"upload_dir",
	"catalog_file",
	"currency",
	"min_amount",
	"public_url",
	"headless",
}

// Load reads .env (outside production) and then the process environment
func Load() (*Config, error) {
	if os.Getenv("ENV") != "production" {
		// .env values override the process environment in development
		if err := godotenv.Overload(".env"); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("⚠️  Failed to load .env: %v", err)
			}
		} else {
			log.Printf("Loaded environment variables from .env")
		}
	}

	return FromEnv()
}

// FromEnv binds settings from environment variables only
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("currency", DefaultCurrency)
	v.SetDefault("min_amount", DefaultMinAmount)
	v.SetDefault("headless", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.PublicURL == "" {
		cfg.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.Currency = strings.ToLower(cfg.Currency)

	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.MinAmount < 1 {
		return fmt.Errorf("MIN_AMOUNT must be positive, got %d", c.MinAmount)
	}
	return nil
}

// Warnings lists settings that are missing but not fatal at startup
func (c *Config) Warnings() []string {
	var w []string
	if c.StripeSecretKey == "" {
		w = append(w, "STRIPE_SECRET_KEY is not set; payment requests will fail")
	}
	if c.StripeWebhookSecret == "" {
		w = append(w, "STRIPE_WEBHOOK_SECRET is not set; webhooks will be rejected")
	}
	return w
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
