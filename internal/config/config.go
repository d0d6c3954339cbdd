package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dgallion1/doctoc/internal/outline"
	"github.com/dgallion1/doctoc/internal/parser"
)

// EnvPrefix is stripped from environment overrides: DOCTOC_WORKER_COUNT -> worker_count.
const EnvPrefix = "DOCTOC_"

type Config struct {
	Port string `koanf:"port"`

	// Auth. Empty disables the bearer check.
	APIKey string `koanf:"api_key"`

	// Document contract
	OutlineID string `koanf:"outline_id"`
	BodyID    string `koanf:"body_id"`
	ControlID string `koanf:"control_id"`
	Strict    bool   `koanf:"strict"`
	Sanitize  bool   `koanf:"sanitize"`

	// Worker pool
	WorkerCount  int `koanf:"worker_count"`
	MaxQueueSize int `koanf:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `koanf:"job_ttl"`

	LogLevel    string   `koanf:"log_level"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:           "8090",
		OutlineID:      "toc",
		BodyID:         "content",
		ControlID:      "toc-toggle",
		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxUploadBytes: 10485760, // 10MB
		JobTTL:         1 * time.Hour,
		LogLevel:       "info",
		CORSOrigins:    []string{"*"},
	}
}

// Load starts from Default, applies the YAML file at path when it exists,
// then overlays DOCTOC_* environment variables. An empty path skips the
// file.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config: %w", err)
	}

	def := Default()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.Port == "" {
		cfg.Port = def.Port
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.OutlineID == "" {
		return fmt.Errorf("outline_id is required")
	}
	if c.BodyID == "" {
		return fmt.Errorf("body_id is required")
	}
	if c.OutlineID == c.BodyID {
		return fmt.Errorf("outline_id and body_id must differ (both %q)", c.OutlineID)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Policy maps the strict flag onto the outline policy.
func (c Config) Policy() outline.Policy {
	if c.Strict {
		return outline.PolicyStrict
	}
	return outline.PolicyLenient
}

// ParserOptions returns the document loading options.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{
		Sanitize:  c.Sanitize,
		OutlineID: c.OutlineID,
		BodyID:    c.BodyID,
		ControlID: c.ControlID,
	}
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return l, nil
}
