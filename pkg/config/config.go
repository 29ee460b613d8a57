// Package config holds the batcher's recognized options from spec.md
// §6 and the precedence machinery (flags > env > file > defaults) the
// teacher's internal/cliconfig uses for walship's own configuration.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// QueueMode selects the overflow policy once the event queue reaches
// SendQueueMaxCapacity.
type QueueMode string

const (
	// QueueModeBlock waits on a condition variable until space opens.
	QueueModeBlock QueueMode = "BLOCK"

	// QueueModeDrop prunes the queue with a 0.5 pass probability
	// instead of blocking the calling producer.
	QueueModeDrop QueueMode = "DROP"
)

// CounterStatus toggles whether the batcher assigns and reports
// event_index/original_count bookkeeping.
type CounterStatus string

const (
	CounterDisable CounterStatus = "DISABLE"
	CounterEnable  CounterStatus = "ENABLE"
)

// Config holds every option the batcher reads at construction time.
type Config struct {
	ServiceURL string
	AuthKey    string

	SendHighWaterMark    int
	SendBatchIntervalMS  int
	SendQueueMaxCapacity int
	QueueMode            QueueMode
	SubsampleRate        float64
	EventsCounterStatus  CounterStatus
	BatchContentEncoding string

	HTTPTimeout time.Duration
}

// DefaultConfig returns the option defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		SendHighWaterMark:    256 << 10, // 256 KiB
		SendBatchIntervalMS:  1000,
		SendQueueMaxCapacity: 8192,
		QueueMode:            QueueModeBlock,
		SubsampleRate:        1.0,
		EventsCounterStatus:  CounterDisable,
		BatchContentEncoding: "identity",
		HTTPTimeout:          15 * time.Second,
	}
}

// Validate checks the configuration against spec.md §4.1's init()
// contract and returns invalid_argument-shaped errors for anything out
// of range.
func (c *Config) Validate() error {
	if c.SubsampleRate <= 0 || c.SubsampleRate > 1 {
		return fmt.Errorf("subsample-rate must be in (0, 1], got %v", c.SubsampleRate)
	}
	if c.SendHighWaterMark <= 0 {
		return fmt.Errorf("send-high-water-mark must be positive")
	}
	if c.SendBatchIntervalMS <= 0 {
		return fmt.Errorf("send-batch-interval-ms must be positive")
	}
	if c.SendQueueMaxCapacity <= 0 {
		return fmt.Errorf("send-queue-max-capacity must be positive")
	}
	switch c.QueueMode {
	case QueueModeBlock, QueueModeDrop:
	default:
		return fmt.Errorf("queue-mode must be BLOCK or DROP, got %q", c.QueueMode)
	}
	switch c.EventsCounterStatus {
	case CounterEnable, CounterDisable:
	default:
		return fmt.Errorf("events-counter-status must be ENABLE or DISABLE, got %q", c.EventsCounterStatus)
	}
	if c.ServiceURL != "" && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}
	return nil
}

// BatchInterval returns SendBatchIntervalMS as a time.Duration.
func (c *Config) BatchInterval() time.Duration {
	return time.Duration(c.SendBatchIntervalMS) * time.Millisecond
}

// configSetter applies configuration values while respecting flag
// precedence: a field is only overwritten if the flag that owns it
// hasn't already been set at a higher-precedence layer.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setEnum(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}
