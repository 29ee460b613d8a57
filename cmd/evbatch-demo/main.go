// Command evbatch-demo wires the batcher to a synthetic event
// producer and either an HTTP transport or an in-memory one, the same
// way cmd/walship wires the WAL-shipping agent: config loaded with
// file/env/flag precedence, a zerolog-backed logger, graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/banditml/evbatch/pkg/batcher"
	"github.com/banditml/evbatch/pkg/config"
	"github.com/banditml/evbatch/pkg/event"
	"github.com/banditml/evbatch/pkg/log"
	"github.com/banditml/evbatch/pkg/serializer"
	"github.com/banditml/evbatch/pkg/transport"
	"github.com/banditml/evbatch/plugins/ratewatcher"
)

var exampleUsage = `
  evbatch-demo --service-url https://ingest.example.com --auth-key <api-key>
  evbatch-demo --rate-file ./rate.toml --subsample-rate 0.5
`

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string
	var produceIntervalMS int
	var rateFilePath string

	logger := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:     "evbatch-demo",
		Short:   "Produce synthetic events through the batcher pipeline",
		Example: exampleUsage,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			logger.Info("configuration loaded",
				log.String("service_url", logCfg.ServiceURL),
				log.Int("send_high_water_mark", logCfg.SendHighWaterMark),
				log.Int("send_batch_interval_ms", logCfg.SendBatchIntervalMS),
				log.String("queue_mode", string(logCfg.QueueMode)),
				log.Float64("subsample_rate", logCfg.SubsampleRate),
				log.String("events_counter_status", string(logCfg.EventsCounterStatus)),
			)

			var sender transport.Sender
			if cfg.ServiceURL != "" {
				hostname, _ := os.Hostname()
				sender = transport.NewHTTPSender(&http.Client{Timeout: cfg.HTTPTimeout}, transport.Metadata{
					ServiceURL: cfg.ServiceURL,
					AuthKey:    cfg.AuthKey,
					Hostname:   hostname,
					SourceID:   "evbatch-demo",
				}, logger)
			} else {
				logger.Warn("no service-url configured, batches are recorded in memory only")
				sender = transport.NewMemorySender()
			}

			b, err := batcher.New[*event.TextEvent](cfg, serializer.NewLineKind[*event.TextEvent](), sender,
				batcher.WithLogger[*event.TextEvent](logger),
				batcher.WithErrorCallback[*event.TextEvent](func(err error) {
					logger.Error("batcher background error", log.Err(err))
				}),
			)
			if err != nil {
				return fmt.Errorf("create batcher: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := b.Init(ctx); err != nil {
				return fmt.Errorf("init batcher: %w", err)
			}

			var watcher *ratewatcher.Watcher
			if rateFilePath != "" {
				watcher = ratewatcher.New(rateFilePath, b, logger, 100*time.Millisecond)
				if err := watcher.Start(ctx); err != nil {
					return fmt.Errorf("start rate watcher: %w", err)
				}
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			stopProducing := make(chan struct{})
			go produceEvents(b, logger, time.Duration(produceIntervalMS)*time.Millisecond, stopProducing)

			<-sigCh
			logger.Info("received signal, stopping...")
			close(stopProducing)

			if watcher != nil {
				watcher.Stop()
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := b.Close(shutdownCtx); err != nil {
				return fmt.Errorf("close batcher: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.evbatch/config.toml)")
	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base ingestion service URL (empty uses an in-memory transport)")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")
	root.Flags().IntVar(&cfg.SendHighWaterMark, "send-high-water-mark", cfg.SendHighWaterMark, "batch byte size that triggers a flush")
	root.Flags().IntVar(&cfg.SendBatchIntervalMS, "send-batch-interval-ms", cfg.SendBatchIntervalMS, "flush timer interval in milliseconds")
	root.Flags().IntVar(&cfg.SendQueueMaxCapacity, "send-queue-max-capacity", cfg.SendQueueMaxCapacity, "maximum queued events before the overflow policy applies")
	root.Flags().StringVar((*string)(&cfg.QueueMode), "queue-mode", string(cfg.QueueMode), "overflow policy: BLOCK or DROP")
	root.Flags().Float64Var(&cfg.SubsampleRate, "subsample-rate", cfg.SubsampleRate, "fraction of events admitted, in (0, 1]")
	root.Flags().StringVar((*string)(&cfg.EventsCounterStatus), "events-counter-status", string(cfg.EventsCounterStatus), "ENABLE or DISABLE original_count bookkeeping")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "HTTP timeout")
	root.Flags().IntVar(&produceIntervalMS, "produce-interval-ms", 50, "synthetic event production interval in milliseconds")
	root.Flags().StringVar(&rateFilePath, "rate-file", "", "TOML file to hot-reload subsample_rate from (optional)")

	if err := root.Execute(); err != nil {
		logger.Error("evbatch-demo", log.Err(err))
		os.Exit(1)
	}
}

// produceEvents emits a steady stream of synthetic events until stop
// is closed, giving the demo something to flush without requiring a
// real telemetry source.
func produceEvents(b *batcher.Batcher[*event.TextEvent], logger log.Logger, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var n int
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n++
			seed := strconv.FormatFloat(rand.Float64(), 'f', 2, 64)
			if err := b.Append(event.NewSeededTextEvent(seed)); err != nil {
				logger.Warn("append failed", log.Err(err))
			}
		}
	}
}
