// Package config reads the storefront service configuration.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration. Environment variables win over
// command-line flags.
type Config struct {
	RunAddress      string `env:"RUN_ADDRESS"`
	DatabaseURI     string `env:"DATABASE_URI"`
	VerifierAddress string `env:"PAYMENT_VERIFIER_ADDRESS"`
	CDNUploadURL    string `env:"CDN_UPLOAD_URL"`
	AuthSecret      string `env:"AUTH_SECRET"`
	WhatsAppNumber  string `env:"WHATSAPP_NUMBER"`
	FallbackDir     string `env:"FALLBACK_DIR"`
}

// Parse reads the configuration from command-line flags and environment
// variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envVerifier := cfg.VerifierAddress
	envCDN := cfg.CDNUploadURL
	envSecret := cfg.AuthSecret
	envWhatsApp := cfg.WhatsAppNumber
	envFallbackDir := cfg.FallbackDir

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.VerifierAddress, "v", "", "payment verifier address")
	flag.StringVar(&cfg.CDNUploadURL, "c", "", "CDN upload endpoint")
	flag.StringVar(&cfg.AuthSecret, "s", "", "auth cookie signing secret")
	flag.StringVar(&cfg.WhatsAppNumber, "w", "", "WhatsApp business number for order handoff")
	flag.StringVar(&cfg.FallbackDir, "f", "", "directory for guest fallback order records")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envVerifier != "" {
		cfg.VerifierAddress = envVerifier
	}
	if envCDN != "" {
		cfg.CDNUploadURL = envCDN
	}
	if envSecret != "" {
		cfg.AuthSecret = envSecret
	}
	if envWhatsApp != "" {
		cfg.WhatsAppNumber = envWhatsApp
	}
	if envFallbackDir != "" {
		cfg.FallbackDir = envFallbackDir
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.FallbackDir == "" {
		cfg.FallbackDir = "./fallback"
	}

	return cfg, nil
}
