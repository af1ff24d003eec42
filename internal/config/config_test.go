package config

import (
	"os"
	"runtime"
	"testing"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	cfg := LoadConfig()

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Expected Workers %d, got %d", runtime.NumCPU(), cfg.Workers)
	}
	if cfg.QueueDepth != 64 {
		t.Errorf("Expected QueueDepth 64, got %d", cfg.QueueDepth)
	}
	if cfg.MaxLineBytes != 1<<20 {
		t.Errorf("Expected MaxLineBytes %d, got %d", 1<<20, cfg.MaxLineBytes)
	}
}

func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("CONLLU_WORKERS", "4")
	os.Setenv("CONLLU_QUEUE_DEPTH", "128")
	os.Setenv("CONLLU_MAX_LINE_BYTES", "2048")

	cfg := LoadConfig()

	if cfg.Workers != 4 {
		t.Errorf("Expected Workers 4, got %d", cfg.Workers)
	}
	if cfg.QueueDepth != 128 {
		t.Errorf("Expected QueueDepth 128, got %d", cfg.QueueDepth)
	}
	if cfg.MaxLineBytes != 2048 {
		t.Errorf("Expected MaxLineBytes 2048, got %d", cfg.MaxLineBytes)
	}
}

func TestLoadConfig_InvalidIntegerValuesFallBackToDefaults(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("CONLLU_WORKERS", "not-a-number")
	os.Setenv("CONLLU_QUEUE_DEPTH", "abc")
	os.Setenv("CONLLU_MAX_LINE_BYTES", "abc")

	cfg := LoadConfig()

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Expected Workers %d (default), got %d", runtime.NumCPU(), cfg.Workers)
	}
	if cfg.QueueDepth != 64 {
		t.Errorf("Expected QueueDepth 64 (default), got %d", cfg.QueueDepth)
	}
	if cfg.MaxLineBytes != 1<<20 {
		t.Errorf("Expected MaxLineBytes default, got %d", cfg.MaxLineBytes)
	}
}

func TestLoadConfig_NonPositiveValuesFallBackToDefaults(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("CONLLU_WORKERS", "0")
	os.Setenv("CONLLU_QUEUE_DEPTH", "-10")
	os.Setenv("CONLLU_MAX_LINE_BYTES", "-1")

	cfg := LoadConfig()

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Expected Workers default for non-positive input, got %d", cfg.Workers)
	}
	if cfg.QueueDepth != 64 {
		t.Errorf("Expected QueueDepth default for negative input, got %d", cfg.QueueDepth)
	}
	if cfg.MaxLineBytes != 1<<20 {
		t.Errorf("Expected MaxLineBytes default for negative input, got %d", cfg.MaxLineBytes)
	}
}

func clearConfigEnvVars() {
	for _, envVar := range []string{"CONLLU_WORKERS", "CONLLU_QUEUE_DEPTH", "CONLLU_MAX_LINE_BYTES"} {
		os.Unsetenv(envVar)
	}
}
