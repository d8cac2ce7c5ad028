package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if resolved == "" {
		t.Error("resolved path is empty")
	}
	if cfg.Checkpoint.Backend != config.BackendSQLite {
		t.Errorf("Checkpoint.Backend = %q, want sqlite", cfg.Checkpoint.Backend)
	}
	if cfg.Generator.Mode != config.GeneratorStatic {
		t.Errorf("Generator.Mode = %q, want static", cfg.Generator.Mode)
	}
	if cfg.Workflow.RetryCeiling != 3 {
		t.Errorf("Workflow.RetryCeiling = %d, want 3", cfg.Workflow.RetryCeiling)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
data_dir = "~/loomdata"

[checkpoint]
backend = "Memory"

[workflow]
retry_ceiling = 5

[logging]
format = "JSON"
level = "Debug"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("exists = false for present file")
	}
	if cfg.Checkpoint.Backend != config.BackendMemory {
		t.Errorf("Checkpoint.Backend = %q, want memory", cfg.Checkpoint.Backend)
	}
	if cfg.Workflow.RetryCeiling != 5 {
		t.Errorf("Workflow.RetryCeiling = %d, want 5", cfg.Workflow.RetryCeiling)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging not lowercased: %+v", cfg.Logging)
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Errorf("data_dir not expanded: %q", cfg.Paths.DataDir)
	}
	if !filepath.IsAbs(cfg.Checkpoint.SQLitePath) {
		t.Errorf("sqlite_path not absolute: %q", cfg.Checkpoint.SQLitePath)
	}
	if filepath.Dir(cfg.Library.Path) != cfg.Paths.DataDir {
		t.Errorf("library path %q not derived from data dir %q", cfg.Library.Path, cfg.Paths.DataDir)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[checkpoint]
backend = "etcd"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted unknown checkpoint backend")
	}
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	path := writeConfig(t, `
[checkpoint]
backend = "redis"
redis_addr = " "
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted redis backend without an address")
	}
}

func TestLoadLLMModeRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	path := writeConfig(t, `
[generator]
mode = "llm"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted llm mode without an api key")
	}
}

func TestLoadLLMModeFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	path := writeConfig(t, `
[generator]
mode = "llm"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetLLM().APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.GetLLM().APIKey)
	}
}

func TestLoadRejectsRetryCeilingOutOfRange(t *testing.T) {
	path := writeConfig(t, `
[workflow]
retry_ceiling = 25
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted out-of-range retry ceiling")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load of sample failed: exists=%v err=%v", exists, err)
	}
}
