package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/codec"
	"github.com/leonardotrapani/chunkscribe/internal/config"
	"github.com/leonardotrapani/chunkscribe/internal/control"
	"github.com/leonardotrapani/chunkscribe/internal/deps"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/llm"
	"github.com/leonardotrapani/chunkscribe/internal/logger"
	"github.com/leonardotrapani/chunkscribe/internal/manifest"
	"github.com/leonardotrapani/chunkscribe/internal/metrics"
	"github.com/leonardotrapani/chunkscribe/internal/notify"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
	"github.com/leonardotrapani/chunkscribe/internal/tui"
	"github.com/leonardotrapani/chunkscribe/internal/watch"
	"github.com/leonardotrapani/chunkscribe/internal/workspace"
)

func runTranscribe(ctx context.Context, cfg *config.Config, inputs []string, out io.Writer) error {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	orch, err := buildOrchestrator(cfg, log, m)
	if err != nil {
		return err
	}

	summary, runErr := orch.Run(ctx, inputs)
	report(out, summary)
	writeManifest(cfg, summary, log)
	writeMetrics(cfg, m, log)

	if runErr != nil {
		return runErr
	}
	if failed := summary.Count(pipeline.StatusFailed); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(summary.Files))
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cobra.Command, configPath, dir string, o *overrides) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	// a config file is optional; without one the defaults apply and there is
	// nothing to reload
	current := config.DefaultConfig
	var mgr *config.Manager
	if _, statErr := os.Stat(path); statErr == nil || configPath != "" {
		mgr, err = config.NewManager(path, logger.NewLogger())
		if err != nil {
			return err
		}
		current = mgr.GetConfig
	}

	cfg := current()
	if err := o.apply(cmd, cfg); err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if mgr != nil {
		mgr.OnChange(func(*config.Config) {
			log.Info("configuration reloaded, applies to the next batch", zap.String("path", path))
		})
		if err := mgr.StartWatching(ctx); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer mgr.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, err := control.DefaultPaths()
	if err != nil {
		return err
	}
	srv := control.NewServer(paths, dir, log, cancel)
	if err := srv.Start(); err != nil {
		return err
	}
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.Serve(ctx); err != nil {
			log.Warn("control socket stopped", zap.Error(err))
		}
	}()
	defer func() {
		cancel()
		<-served
	}()

	// one registry for the whole session so counters accumulate across batches
	m := metrics.New()
	layout := cfg.Layout()
	w := watch.New(dir, cfg.Audio.Extensions, log, watch.WithIgnore(layout.ConvertedFile))

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", dir)
	return w.Run(ctx, func(ctx context.Context, files []string) {
		cfg := current()
		if err := o.apply(cmd, cfg); err != nil {
			log.Error("configuration rejected, skipping batch", zap.Error(err))
			return
		}
		orch, err := buildOrchestrator(cfg, log, m)
		if err != nil {
			log.Error("cannot start batch", zap.Error(err))
			return
		}
		srv.BatchStarted(len(files))
		summary, err := orch.Run(ctx, files)
		srv.BatchFinished(summary.Count(pipeline.StatusOK), summary.Count(pipeline.StatusPartial), summary.Count(pipeline.StatusFailed))
		report(cmd.OutOrStdout(), summary)
		writeManifest(cfg, summary, log)
		writeMetrics(cfg, m, log)
		if err != nil {
			log.Error("batch failed", zap.Error(err))
		}
	})
}

// buildOrchestrator wires the pipeline for one batch from cfg.
func buildOrchestrator(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) (*pipeline.Orchestrator, error) {
	pcfg, err := cfg.ToPipelineConfig()
	if err != nil {
		return nil, err
	}
	lang, err := cfg.Language()
	if err != nil {
		return nil, err
	}

	if err := deps.Require(deps.CheckFFmpeg(cfg.Codec.FFmpeg), deps.CheckFFprobe(cfg.Codec.FFprobe)); err != nil {
		return nil, err
	}

	adapter, err := transcriber.NewAdapter(cfg.ToTranscriberConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("transcription backend: %w", err)
	}
	dispatcher := transcriber.NewDispatcher(adapter, log,
		transcriber.WithConcurrency(cfg.Transcription.Concurrency),
		transcriber.WithTimeout(cfg.Transcription.Timeout),
		transcriber.WithLanguage(lang),
	)

	ws := workspace.NewManager(cfg.Layout(), log, workspace.WithRetryPolicy(cfg.CleanupPolicy()))

	opts := []pipeline.Option{pipeline.WithMetrics(m)}
	if cfg.IsLLMEnabled() && pcfg.Kind == format.Text {
		llmAdapter, err := llm.NewAdapter(cfg.ToLLMConfig())
		if err != nil {
			return nil, fmt.Errorf("refinement backend: %w", err)
		}
		opts = append(opts, pipeline.WithRefiner(llm.NewRefiner(llmAdapter, cfg.LLM.Timeout, log)))
	}
	if cfg.Notifications.Enabled {
		n, err := notify.New(cfg.Notifications.Type, log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithNotifier(n))
	}

	return pipeline.New(pcfg, codec.New(cfg.ToCodecConfig(), log), dispatcher, ws, log, opts...)
}

func report(out io.Writer, summary *pipeline.Summary) {
	if summary == nil || len(summary.Files) == 0 {
		return
	}
	fmt.Fprint(out, tui.RenderSummary(tui.NewRenderer(out), summary))
}

func writeManifest(cfg *config.Config, summary *pipeline.Summary, log *zap.Logger) {
	if !cfg.Output.Manifest || summary == nil || len(summary.Files) == 0 {
		return
	}
	kind, err := format.Parse(cfg.Output.Format)
	if err != nil {
		return
	}
	path, err := manifest.Write(cfg.Layout().TranscriptsDir, manifest.FromSummary(summary, kind, time.Now()))
	if err != nil {
		log.Warn("failed to write batch manifest", zap.Error(err))
		return
	}
	log.Info("batch manifest written", zap.String("path", path))
}

func writeMetrics(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn("failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
	}
}

// parseInterval accepts a Go duration ("45m", "1h30m") or a bare number of
// minutes.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("--interval must be positive, got %s", s)
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("--interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--interval must be positive, got %s", s)
	}
	return d, nil
}
