package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
)

type Config struct {
	Logger  Logger  `envPrefix:"PDF_ORGANIZER_LOG_"`
	PDF     PDF     `envPrefix:"PDF_ORGANIZER_PDF_"`
	Staging Staging `envPrefix:"PDF_ORGANIZER_STAGING_"`
	Fetch   Fetch   `envPrefix:"PDF_ORGANIZER_FETCH_"`
	Zotero  Zotero  `envPrefix:"ZOTERO_"`
}

type Logger struct {
	Output   string `env:"OUTPUT"`
	Level    string `env:"LEVEL" envDefault:"info"`
	FilePath string `env:"FILE_PATH"`
}

type PDF struct {
	// ValidationMode is "relaxed" or "strict"
	ValidationMode   string `env:"VALIDATION_MODE" envDefault:"relaxed"`
	DisableConfigDir bool   `env:"DISABLE_CONFIG_DIR" envDefault:"true"`
}

type Staging struct {
	// Dir receives downloaded sources; empty means os.TempDir()
	Dir string `env:"DIR"`
}

type Fetch struct {
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	Burst             int           `env:"BURST" envDefault:"4"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"60s"`
	MaxRetries        int           `env:"MAX_RETRIES" envDefault:"3"`
}

type Zotero struct {
	APIKey    string `env:"API_KEY"`
	LibraryID string `env:"LIBRARY_ID"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.PDF.ValidationMode) {
	case "relaxed", "strict":
	default:
		return fmt.Errorf("invalid PDF validation mode: %s (expected 'relaxed' or 'strict')", c.PDF.ValidationMode)
	}

	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("fetch rate must be positive, got %v", c.Fetch.RequestsPerSecond)
	}
	if c.Fetch.Burst < 1 {
		return fmt.Errorf("fetch burst must be at least 1, got %d", c.Fetch.Burst)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch retries cannot be negative, got %d", c.Fetch.MaxRetries)
	}

	return nil
}

// LogConfig maps the logger section onto logger.LogConfig.
func (c *Config) LogConfig() logger.LogConfig {
	return logger.LogConfig{
		Output:   c.Logger.Output,
		Level:    c.Logger.Level,
		FilePath: c.Logger.FilePath,
	}
}

// StagingDir returns the directory used for downloaded sources.
func (c *Config) StagingDir() string {
	if c.Staging.Dir != "" {
		return c.Staging.Dir
	}
	return filepath.Join(os.TempDir(), "pdf-organizer")
}

// Configuration builds the pdfcpu configuration shared by every operation.
// pdfcpu keeps a user config directory by default; it is disabled unless
// explicitly requested so runs never touch the home directory.
func (p PDF) Configuration() *model.Configuration {
	if p.DisableConfigDir {
		api.DisableConfigDir()
	}

	conf := model.NewDefaultConfiguration()
	if strings.EqualFold(p.ValidationMode, "strict") {
		conf.ValidationMode = model.ValidationStrict
	} else {
		conf.ValidationMode = model.ValidationRelaxed
	}
	return conf
}
