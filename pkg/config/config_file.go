package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but keeps enums and intervals as strings
// so a hand-edited TOML file reads naturally.
type FileConfig struct {
	ServiceURL string `toml:"service_url"`
	AuthKey    string `toml:"auth_key"`

	SendHighWaterMark    int     `toml:"send_high_water_mark"`
	SendBatchIntervalMS  int     `toml:"send_batch_interval_ms"`
	SendQueueMaxCapacity int     `toml:"send_queue_max_capacity"`
	QueueMode            string  `toml:"queue_mode"`
	SubsampleRate        float64 `toml:"subsample_rate"`
	EventsCounterStatus  string  `toml:"events_counter_status"`
	BatchContentEncoding string  `toml:"batch_content_encoding"`
	HTTPTimeout          string  `toml:"http_timeout"`
}

// LoadFileConfig reads and parses a TOML config file from path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.evbatch/config.toml, or "" if the home
// directory can't be resolved.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".evbatch", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc onto cfg, respecting flags already set at
// a higher-precedence layer (recorded in changed).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("batch-content-encoding", fc.BatchContentEncoding, &cfg.BatchContentEncoding)

	s.setInt("send-high-water-mark", fc.SendHighWaterMark, &cfg.SendHighWaterMark)
	s.setInt("send-batch-interval-ms", fc.SendBatchIntervalMS, &cfg.SendBatchIntervalMS)
	s.setInt("send-queue-max-capacity", fc.SendQueueMaxCapacity, &cfg.SendQueueMaxCapacity)
	s.setFloat("subsample-rate", fc.SubsampleRate, &cfg.SubsampleRate)

	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	if fc.QueueMode != "" && !changed["queue-mode"] {
		mode := QueueMode(fc.QueueMode)
		if mode != QueueModeBlock && mode != QueueModeDrop {
			return fmt.Errorf("config file: queue_mode %q must be BLOCK or DROP", fc.QueueMode)
		}
		cfg.QueueMode = mode
	}

	if fc.EventsCounterStatus != "" && !changed["events-counter-status"] {
		status := CounterStatus(fc.EventsCounterStatus)
		if status != CounterEnable && status != CounterDisable {
			return fmt.Errorf("config file: events_counter_status %q must be ENABLE or DISABLE", fc.EventsCounterStatus)
		}
		cfg.EventsCounterStatus = status
	}

	return nil
}

// FileExists reports whether a file exists at p.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
