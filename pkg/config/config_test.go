package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() should validate, got: %v", err)
	}
}

func TestValidateSubsampleRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantErr bool
	}{
		{"zero is invalid", 0, true},
		{"negative is invalid", -0.5, true},
		{"above one is invalid", 1.01, true},
		{"one is valid", 1.0, false},
		{"mid-range is valid", 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SubsampleRate = tt.rate
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateQueueMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueMode = "SOMETHING_ELSE"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for unknown queue mode")
	}
}

func TestValidateStripsTrailingSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceURL = "https://example.com/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if cfg.ServiceURL != "https://example.com" {
		t.Errorf("ServiceURL = %q, want trailing slash stripped", cfg.ServiceURL)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("EVBATCH_SUBSAMPLE_RATE", "0.25")
	t.Setenv("EVBATCH_QUEUE_MODE", "DROP")
	t.Setenv("EVBATCH_SEND_HIGH_WATER_MARK", "4096")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
	}
	if cfg.SubsampleRate != 0.25 {
		t.Errorf("SubsampleRate = %v, want 0.25", cfg.SubsampleRate)
	}
	if cfg.QueueMode != QueueModeDrop {
		t.Errorf("QueueMode = %v, want DROP", cfg.QueueMode)
	}
	if cfg.SendHighWaterMark != 4096 {
		t.Errorf("SendHighWaterMark = %v, want 4096", cfg.SendHighWaterMark)
	}
}

func TestApplyEnvConfigRespectsChanged(t *testing.T) {
	t.Setenv("EVBATCH_QUEUE_MODE", "DROP")

	cfg := DefaultConfig()
	cfg.QueueMode = QueueModeBlock
	changed := map[string]bool{"queue-mode": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
	}
	if cfg.QueueMode != QueueModeBlock {
		t.Errorf("QueueMode = %v, want BLOCK (flag should win)", cfg.QueueMode)
	}
}

func TestApplyEnvConfigInvalidQueueMode(t *testing.T) {
	t.Setenv("EVBATCH_QUEUE_MODE", "MAYBE")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("ApplyEnvConfig() expected error for invalid queue mode")
	}
}

func TestApplyFileConfigPrecedence(t *testing.T) {
	fc := FileConfig{
		QueueMode:     "DROP",
		SubsampleRate: 0.1,
	}
	changed := map[string]bool{"queue-mode": true}

	cfg := DefaultConfig()
	cfg.QueueMode = QueueModeBlock

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
	}
	if cfg.QueueMode != QueueModeBlock {
		t.Errorf("QueueMode = %v, want BLOCK (flag should win over file)", cfg.QueueMode)
	}
	if cfg.SubsampleRate != 0.1 {
		t.Errorf("SubsampleRate = %v, want 0.1 (file should apply)", cfg.SubsampleRate)
	}
}
