package config

import (
	"os"
	"testing"
)

func TestConfigLoad_PlannerDefaults(t *testing.T) {
	_ = os.Unsetenv("ASSISTANT_PLANNER_MODEL")
	_ = os.Unsetenv("ASSISTANT_PLANNER_TIMEOUT_SECONDS")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.PlannerModel != "gpt-4o-mini" || cfg.PlannerTimeoutSeconds != 30 {
		t.Fatalf("unexpected default planner config: %+v", cfg)
	}
}

func TestConfigLoad_PlannerEnvOverride(t *testing.T) {
	_ = os.Setenv("ASSISTANT_PLANNER_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("ASSISTANT_PLANNER_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.PlannerModel != "test-model" {
		t.Fatalf("planner model env override failed, got %s", cfg.PlannerModel)
	}
}

func TestConfigLoad_HTTPPortDefault(t *testing.T) {
	_ = os.Unsetenv("ASSISTANT_HTTP_PORT")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default http port: %d", cfg.HTTPPort)
	}
}
