package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region config
// Config carries every setting the evaluation core used to read from globals.
type Config struct {
	ReferenceYear      int              `yaml:"reference_year"`       // calendar year of offset 0
	DiscountRate       float64          `yaml:"discount_rate"`        // annual, for total risk
	RiskHorizon        int              `yaml:"risk_horizon"`         // years summed in total risk
	ProgramStartYear   int              `yaml:"program_start_year"`   // first calendar year of a program curve
	ProgramHorizonYear int              `yaml:"program_horizon_year"` // last calendar year of a program curve
	DefaultStrategy    traject.Strategy `yaml:"default_strategy"`

	DBPath      string `yaml:"db_path"`
	LogLevel    string `yaml:"log_level"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		ReferenceYear:      2025,
		DiscountRate:       0.03,
		RiskHorizon:        100,
		ProgramStartYear:   2025,
		ProgramHorizonYear: 2100,
		DefaultStrategy:    traject.VR,
		DBPath:             "vrcore.db",
		LogLevel:           "info",
		ListenAddr:         "localhost:50061",
		MetricsAddr:        "localhost:9464",
	}
}

// #endregion config

// #region load
// Load reads a YAML file over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.DBPath = envOr("VRCORE_DB", cfg.DBPath)
	cfg.ListenAddr = envOr("VRCORE_ADDR", cfg.ListenAddr)
	cfg.LogLevel = envOr("VRCORE_LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate
// Validate rejects settings that make the computations meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.DiscountRate <= -1 {
		errs = append(errs, fmt.Errorf("discount_rate %v must exceed -1", c.DiscountRate))
	}
	if c.RiskHorizon <= 0 {
		errs = append(errs, fmt.Errorf("risk_horizon %d must be positive", c.RiskHorizon))
	}
	if c.ProgramHorizonYear < c.ProgramStartYear {
		errs = append(errs, fmt.Errorf("program_horizon_year %d before program_start_year %d", c.ProgramHorizonYear, c.ProgramStartYear))
	}
	if !c.DefaultStrategy.Valid() {
		errs = append(errs, fmt.Errorf("default_strategy: %w: %q", traject.ErrUnknownStrategy, c.DefaultStrategy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// #endregion validate
