// Package conf layers tool configuration: built-in defaults, then a
// taucheck.toml from the user config directory, then one from the
// working directory, then TAUCHECK_* environment variables (with a
// .env file honored when present). Command-line flags override all of
// these and are applied by the caller.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Outputs   string  `toml:"outputs"`
	Order     string  `toml:"order"`
	Verify    string  `toml:"verify"`
	Checker   string  `toml:"checker"`
	Timeout   float64 `toml:"timeout"`
	Processes int     `toml:"processes"`
	Fatal     bool    `toml:"fatal"`

	NatsURL     string `toml:"nats_url"`
	NatsSubject string `toml:"nats_subject"`
	SqsQueueURL string `toml:"sqs_queue_url"`
}

func Default() Config {
	return Config{
		Order:       "natural",
		Verify:      "loose",
		Processes:   1,
		NatsSubject: "taucheck.results",
	}
}

func Load(configDir string) (Config, error) {
	cfg := Default()

	for _, path := range []string{
		filepath.Join(configDir, "taucheck.toml"),
		"taucheck.toml",
	} {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env file: %w", err)
	}
	applyEnv(&cfg)

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	slog.Debug("loaded configuration file", "path", path)
	return nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("TAUCHECK_OUTPUTS", &cfg.Outputs)
	str("TAUCHECK_ORDER", &cfg.Order)
	str("TAUCHECK_VERIFY", &cfg.Verify)
	str("TAUCHECK_CHECKER", &cfg.Checker)
	str("TAUCHECK_NATS_URL", &cfg.NatsURL)
	str("TAUCHECK_NATS_SUBJECT", &cfg.NatsSubject)
	str("TAUCHECK_SQS_QUEUE_URL", &cfg.SqsQueueURL)

	if v := os.Getenv("TAUCHECK_TIMEOUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeout = f
		} else {
			slog.Warn("ignoring invalid TAUCHECK_TIMEOUT", "value", v)
		}
	}
	if v := os.Getenv("TAUCHECK_PROCESSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Processes = n
		} else {
			slog.Warn("ignoring invalid TAUCHECK_PROCESSES", "value", v)
		}
	}
	if v := os.Getenv("TAUCHECK_FATAL"); v != "" {
		cfg.Fatal = v == "1" || strings.EqualFold(v, "true")
	}
}
