package daemon

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"loom/internal/config"
	"loom/internal/learning"
	"loom/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Checkpoint.Backend = config.BackendMemory
	cfg.Library.Path = filepath.Join(dir, "library.db")
	cfg.Checkpoint.SQLitePath = filepath.Join(dir, "checkpoints.db")
	cfg.Generator.Mode = config.GeneratorStatic
	return &cfg
}

func TestDaemonStartStop(t *testing.T) {
	d, err := New(testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	resp, err := http.Get("http://" + d.APIAddr() + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}

	d.Stop()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
	d.Stop()
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New first: %v", err)
	}
	defer first.Close()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start first: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	defer second.Close()
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("second instance should fail to acquire lock")
	}
}

func TestDaemonEngineRunsWorkflow(t *testing.T) {
	d, err := New(testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	result := d.Engine().Run(context.Background(), learning.LearnerProfile{
		ID:             "learner-1",
		Name:           "Ada",
		Subject:        "calculus",
		LearningStyle:  "visual",
		KnowledgeLevel: 2,
		WeakAreas:      []string{"limits"},
	})
	if result.Err != nil {
		t.Fatalf("Run: %v", result.Err)
	}
	if !result.Completed {
		t.Fatalf("workflow did not complete: final stage %s", result.FinalStage)
	}
	if result.Package == nil {
		t.Fatal("expected assembled package")
	}
}

func TestOpenCheckpointStoreUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Checkpoint.Backend = "etcd"
	if _, err := OpenCheckpointStore(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
