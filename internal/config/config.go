package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/logging"
)

// Config is the attrctl runtime configuration.
type Config struct {
	LineLimit int
	Policy    attr.Policy
	LogLevel  string
	Server    ServerConfig
}

type ServerConfig struct {
	Name        string
	Addr        string
	CorsOrigins []string
}

type fileConfig struct {
	LineLimit     int    `toml:"line_limit"`
	WarnOnMissing bool   `toml:"warn_on_missing"`
	AbortOnExtra  bool   `toml:"abort_on_extra"`
	LogLevel      string `toml:"log_level"`
	Server        struct {
		Name        string   `toml:"name"`
		Addr        string   `toml:"addr"`
		CorsOrigins []string `toml:"cors_origins"`
	} `toml:"server"`
}

func Default() Config {
	return Config{
		LineLimit: attr.DefaultLineLimit,
		LogLevel:  "info",
		Server: ServerConfig{
			Name:        "attrwire",
			Addr:        "127.0.0.1:9300",
			CorsOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Codec returns the codec limits for this configuration.
func (c Config) Codec() attr.Config {
	return attr.Config{LineLimit: c.LineLimit}
}

// Load overlays the keys defined in the TOML file at path onto Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("line_limit") {
		cfg.LineLimit = raw.LineLimit
	}
	if meta.IsDefined("warn_on_missing") {
		cfg.Policy.WarnOnMissing = raw.WarnOnMissing
	}
	if meta.IsDefined("abort_on_extra") {
		cfg.Policy.AbortOnExtra = raw.AbortOnExtra
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("server", "name") {
		cfg.Server.Name = strings.TrimSpace(raw.Server.Name)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.LineLimit <= 0 {
		return fmt.Errorf("line_limit must be positive, got %d", cfg.LineLimit)
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	if strings.TrimSpace(cfg.Server.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
