package config

import (
	"fmt"
	"os"
	"time"
)

// ApplyEnvConfig overlays EVBATCH_* environment variables onto cfg,
// skipping any field whose flag name is already marked changed (i.e.
// set at a higher-precedence layer). Mirrors the env-var naming
// convention of the teacher's WALSHIP_* variables, one prefix per
// project.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("EVBATCH_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("EVBATCH_AUTH_KEY"), &cfg.AuthKey)

	if err := s.setIntFromString("send-high-water-mark", os.Getenv("EVBATCH_SEND_HIGH_WATER_MARK"), &cfg.SendHighWaterMark); err != nil {
		return err
	}
	if err := s.setIntFromString("send-batch-interval-ms", os.Getenv("EVBATCH_SEND_BATCH_INTERVAL_MS"), &cfg.SendBatchIntervalMS); err != nil {
		return err
	}
	if err := s.setIntFromString("send-queue-max-capacity", os.Getenv("EVBATCH_SEND_QUEUE_MAX_CAPACITY"), &cfg.SendQueueMaxCapacity); err != nil {
		return err
	}
	if err := s.setFloatFromString("subsample-rate", os.Getenv("EVBATCH_SUBSAMPLE_RATE"), &cfg.SubsampleRate); err != nil {
		return err
	}

	if v := os.Getenv("EVBATCH_QUEUE_MODE"); v != "" && !changed["queue-mode"] {
		mode := QueueMode(v)
		if mode != QueueModeBlock && mode != QueueModeDrop {
			return fmt.Errorf("parse queue-mode: %q must be BLOCK or DROP", v)
		}
		cfg.QueueMode = mode
	}

	if v := os.Getenv("EVBATCH_EVENTS_COUNTER_STATUS"); v != "" && !changed["events-counter-status"] {
		status := CounterStatus(v)
		if status != CounterEnable && status != CounterDisable {
			return fmt.Errorf("parse events-counter-status: %q must be ENABLE or DISABLE", v)
		}
		cfg.EventsCounterStatus = status
	}

	s.setString("batch-content-encoding", os.Getenv("EVBATCH_BATCH_CONTENT_ENCODING"), &cfg.BatchContentEncoding)

	if v := os.Getenv("EVBATCH_HTTP_TIMEOUT"); v != "" && !changed["http-timeout"] {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse http-timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	return nil
}
