package config

import "testing"

func TestNewDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestValidateRejectsBadCodecLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Codec.Level = "turbo"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid codec level")
	}
}

func TestValidateRequiresMetricsAddrWhenEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when metrics enabled without an address")
	}
}

func TestExpandHomeDirTilde(t *testing.T) {
	got := ExpandHomeDir("~/config.yaml")
	if got == "~/config.yaml" {
		t.Error("expected ~ to be expanded")
	}
}

func TestGetOptimalWorkerCountAtLeastTwo(t *testing.T) {
	if n := GetOptimalWorkerCount(); n < 2 {
		t.Errorf("GetOptimalWorkerCount() = %d, want at least 2", n)
	}
}
