package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attrwire.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
abort_on_extra = true

[server]
addr = " 0.0.0.0:9400 "
cors_origins = ["", "http://example.test"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LineLimit != attr.DefaultLineLimit {
		t.Fatalf("unexpected line limit: %d", cfg.LineLimit)
	}
	if !cfg.Policy.AbortOnExtra || cfg.Policy.WarnOnMissing {
		t.Fatalf("unexpected policy: %+v", cfg.Policy)
	}
	if cfg.Server.Name != "attrwire" {
		t.Fatalf("unexpected name: %q", cfg.Server.Name)
	}
	if cfg.Server.Addr != "0.0.0.0:9400" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CorsOrigins) != 1 || cfg.Server.CorsOrigins[0] != "http://example.test" {
		t.Fatalf("unexpected origins: %+v", cfg.Server.CorsOrigins)
	}
	if cfg.Codec().LineLimit != attr.DefaultLineLimit {
		t.Fatalf("unexpected codec config: %+v", cfg.Codec())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"zero line limit": "line_limit = 0\n",
		"bad log level":   "log_level = \"loud\"\n",
		"empty addr":      "[server]\naddr = \"  \"\n",
		"unknown key":     "line_limt = 10\n",
		"bad syntax":      "line_limit = \n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "missing.toml") {
		t.Fatalf("expected load error naming the file, got %v", err)
	}
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "attrwire.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := Default()
	if cfg.LineLimit != def.LineLimit || cfg.Policy != def.Policy || cfg.Server.Addr != def.Server.Addr {
		t.Fatalf("template drifted from defaults: %+v vs %+v", cfg, def)
	}
}
