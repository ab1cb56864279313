// Package pipeline drives each source file from probing to a persisted
// transcript and keeps the workspace clean around a batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/codec"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/merge"
	"github.com/leonardotrapani/chunkscribe/internal/metrics"
	"github.com/leonardotrapani/chunkscribe/internal/notify"
	"github.com/leonardotrapani/chunkscribe/internal/segment"
	"github.com/leonardotrapani/chunkscribe/internal/subtitle"
	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
	"github.com/leonardotrapani/chunkscribe/internal/workspace"
)

// Config is everything a run needs to decide how to treat a file.
type Config struct {
	MaxBytes   int64
	Interval   time.Duration
	Bitrate    string
	Kind       format.Kind
	Extensions []string
}

func (c Config) Validate() error {
	if c.MaxBytes <= 0 {
		return fmt.Errorf("max bytes must be positive, got %d", c.MaxBytes)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("split interval must be positive, got %s", c.Interval)
	}
	if c.Bitrate == "" {
		return fmt.Errorf("conversion bitrate is empty")
	}
	if _, err := format.Parse(string(c.Kind)); err != nil {
		return err
	}
	return nil
}

// Codec is the external audio tool.
type Codec interface {
	Probe(ctx context.Context, path string) (codec.Probe, error)
	Convert(ctx context.Context, src, dst, bitrate string) error
	Extract(ctx context.Context, src, dst string, start, length time.Duration) error
}

// Dispatcher sends units to the transcription service.
type Dispatcher interface {
	Dispatch(ctx context.Context, units []transcriber.Unit, kind format.Kind) []transcriber.Result
}

// Refiner reflows prose; it returns the input when refinement fails.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, bool)
}

type Orchestrator struct {
	cfg        Config
	codec      Codec
	dispatcher Dispatcher
	workspace  *workspace.Manager
	segmenter  *segment.Segmenter
	policy     segment.Policy
	refiner    Refiner
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
	newRunID   func() string
}

type Option func(*Orchestrator)

// WithRefiner enables paragraph reflow of text output.
func WithRefiner(r Refiner) Option {
	return func(o *Orchestrator) {
		o.refiner = r
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func New(cfg Config, c Codec, d Dispatcher, ws *workspace.Manager, logger *zap.Logger, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	o := &Orchestrator{
		cfg:        cfg,
		codec:      c,
		dispatcher: d,
		workspace:  ws,
		segmenter:  segment.NewSegmenter(c, logger),
		policy:     segment.NewPolicy(cfg.MaxBytes),
		notifier:   notify.Nop{},
		logger:     logger,
		newRunID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run transcribes every audio file named by inputs, one file at a time.
// The scratch workspace is released before discovery, after each file and
// once more when Run returns, even if ctx was cancelled.
func (o *Orchestrator) Run(ctx context.Context, inputs []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: o.newRunID()}
	logger := o.logger.With(zap.String("run_id", summary.RunID))

	// leftovers of a crashed run are removed even when nothing is found
	o.release(ctx, logger, summary)
	started := false
	defer func() {
		// the caller's ctx may already be cancelled
		o.release(context.Background(), logger, summary)
		summary.Elapsed = time.Since(start)
		if started {
			o.finish(summary, logger)
		}
	}()

	files, err := Discover(inputs, o.cfg.Extensions)
	if err != nil {
		return summary, err
	}
	if files = o.withoutScratch(files); len(files) == 0 {
		return summary, stageErr(StageDiscover, ErrNoInputs)
	}
	logger.Info("starting batch", zap.Int("files", len(files)), zap.String("format", o.cfg.Kind.String()))
	started = true

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			for _, rest := range files[i:] {
				summary.Files = append(summary.Files, FileResult{Path: rest, State: Failed, Err: err})
			}
			break
		}

		result := o.processFile(ctx, path, logger.With(zap.String("file", path)))
		summary.Files = append(summary.Files, result)
		o.recordFile(result)

		if i < len(files)-1 {
			o.release(ctx, logger, summary)
		}
	}

	return summary, nil
}

// withoutScratch drops paths inside the workspace, which may sit under an
// input directory.
func (o *Orchestrator) withoutScratch(files []string) []string {
	layout := o.workspace.Layout()
	owned := append(layout.ScratchDirs(), layout.ConvertedFile, layout.TranscriptsDir)
	for i, p := range owned {
		owned[i] = absPath(p)
	}

	return slices.DeleteFunc(files, func(file string) bool {
		file = absPath(file)
		for _, p := range owned {
			if file == p || strings.HasPrefix(file, p+string(filepath.Separator)) {
				return true
			}
		}
		return false
	})
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (o *Orchestrator) release(ctx context.Context, logger *zap.Logger, summary *Summary) {
	err := o.workspace.Release(ctx)
	if err == nil {
		return
	}
	logger.Warn("workspace cleanup incomplete", zap.Error(err))
	summary.Cleanup = append(summary.Cleanup, stageErr(StageCleanup, err))

	var cleanupErr *workspace.CleanupError
	if o.metrics != nil && errors.As(err, &cleanupErr) {
		o.metrics.CleanupFailures.Add(float64(len(cleanupErr.Failures)))
	}
}

func (o *Orchestrator) finish(summary *Summary, logger *zap.Logger) {
	report := notify.Report{
		Succeeded: summary.Count(StatusOK),
		Partial:   summary.Count(StatusPartial),
		Failed:    summary.Count(StatusFailed),
		Elapsed:   summary.Elapsed,
	}
	logger.Info("batch finished",
		zap.Int("ok", report.Succeeded),
		zap.Int("partial", report.Partial),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", summary.Elapsed))

	o.notifier.BatchFinished(report)
	if o.metrics != nil {
		o.metrics.ObserveBatch(summary.Elapsed, time.Now())
	}
}

func (o *Orchestrator) recordFile(r FileResult) {
	if o.metrics == nil {
		return
	}
	o.metrics.FilesProcessed.WithLabelValues(string(r.Status())).Inc()
	o.metrics.SegmentsPlanned.Add(float64(r.Segments))
	o.metrics.SegmentOutcomes.WithLabelValues("gap").Add(float64(len(r.Gaps)))
	o.metrics.SegmentOutcomes.WithLabelValues("transcribed").Add(float64(r.Segments - len(r.Gaps)))
}

func (o *Orchestrator) processFile(ctx context.Context, path string, logger *zap.Logger) FileResult {
	start := time.Now()
	result := FileResult{Path: path, State: Pending}

	fail := func(stage Stage, err error) FileResult {
		if StageOf(err) == "" {
			err = stageErr(stage, err)
		}
		result.State = Failed
		result.Err = err
		result.Elapsed = time.Since(start)
		logger.Error("file failed", zap.String("stage", string(stage)), zap.Error(err))
		return result
	}

	probe, err := o.codec.Probe(ctx, path)
	if err != nil {
		return fail(StageProbe, err)
	}
	if probe.Duration <= 0 {
		return fail(StageProbe, ErrEmptySource)
	}
	result.State = Probed
	logger.Info("probed source",
		zap.Int64("bytes", probe.Size),
		zap.Duration("duration", probe.Duration),
		zap.Int64("bitrate", probe.Bitrate))

	units, err := o.prepare(ctx, path, probe, &result, logger)
	if err != nil {
		return fail(StageOf(err), err)
	}
	result.Segments = len(units) + len(result.Issues)

	results := o.dispatcher.Dispatch(ctx, units, o.cfg.Kind)
	result.State = Dispatched
	if err := ctx.Err(); err != nil {
		return fail(StageTranscribe, err)
	}

	fragments := o.collect(ctx, results, &result, logger)
	slices.SortFunc(result.Issues, func(a, b SegmentIssue) int { return a.Index - b.Index })
	result.State = Adjusted

	art, err := merge.Merge(fragments, o.cfg.Kind, result.Segments)
	if errors.Is(err, merge.ErrNoFragments) {
		return fail(StageTranscribe, ErrNothingProduced)
	}
	if err != nil {
		return fail(StageMerge, err)
	}
	result.State = Merged
	result.Gaps = art.Gaps

	out, err := o.persist(path, art)
	if err != nil {
		return fail(StagePersist, err)
	}
	result.Output = out
	result.State = Persisted
	result.Elapsed = time.Since(start)

	logger.Info("transcript written",
		zap.String("output", out),
		zap.Int("segments", result.Segments),
		zap.Ints("gaps", result.Gaps),
		zap.Duration("elapsed", result.Elapsed))
	return result
}

// prepare applies the size policy and returns the units to dispatch. Split
// failures are recorded on result as issues.
func (o *Orchestrator) prepare(ctx context.Context, path string, probe codec.Probe, result *FileResult, logger *zap.Logger) ([]transcriber.Unit, error) {
	result.Decision = o.policy.Classify(probe.Size)
	if result.Decision == segment.Direct {
		result.State = Direct
		return []transcriber.Unit{{Index: 0, Path: path}}, nil
	}

	layout := o.workspace.Layout()
	if err := o.workspace.Ensure(filepath.Dir(layout.ConvertedFile)); err != nil {
		return nil, stageErr(StageConvert, err)
	}
	logger.Info("converting source", zap.String("bitrate", o.cfg.Bitrate))
	if err := o.codec.Convert(ctx, path, layout.ConvertedFile, o.cfg.Bitrate); err != nil {
		return nil, stageErr(StageConvert, err)
	}

	converted, err := o.codec.Probe(ctx, layout.ConvertedFile)
	if err != nil {
		return nil, stageErr(StageConvert, err)
	}
	result.Decision = o.policy.Resolve(probe.Size, converted.Size)
	if result.Decision == segment.Convert {
		result.State = Converted
		return []transcriber.Unit{{Index: 0, Path: layout.ConvertedFile}}, nil
	}

	duration := converted.Duration
	if duration <= 0 {
		duration = probe.Duration
	}
	windows, err := segment.Plan(duration, o.cfg.Interval)
	if err != nil {
		return nil, stageErr(StageSplit, err)
	}
	if err := o.workspace.Ensure(layout.SegmentDir); err != nil {
		return nil, stageErr(StageSplit, err)
	}

	logger.Info("splitting converted audio",
		zap.Int64("converted_bytes", converted.Size),
		zap.Int("segments", len(windows)),
		zap.Duration("interval", o.cfg.Interval))

	segments, failures := o.segmenter.Split(ctx, layout.ConvertedFile, layout.SegmentDir, windows)
	for _, f := range failures {
		result.Issues = append(result.Issues, SegmentIssue{Index: f.Index, Err: stageErr(StageSplit, f)})
	}
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageSplit, err)
	}
	if len(segments) == 0 {
		return nil, stageErr(StageSplit, fmt.Errorf("all %d segments failed to extract", len(windows)))
	}

	result.State = ConvertedSplit
	units := make([]transcriber.Unit, 0, len(segments))
	for _, s := range segments {
		units = append(units, transcriber.Unit{
			Index:  s.Index,
			Path:   s.Path,
			Offset: segment.Offset(s.Index, o.cfg.Interval),
		})
	}
	return units, nil
}

// collect shifts timed fragments onto the source timeline, keeps a scratch
// copy of each and refines prose. Failed units become issues.
func (o *Orchestrator) collect(ctx context.Context, results []transcriber.Result, result *FileResult, logger *zap.Logger) []transcriber.Fragment {
	layout := o.workspace.Layout()
	saveFragments := o.workspace.Ensure(layout.FragmentDir) == nil

	fragments := make([]transcriber.Fragment, 0, len(results))
	for _, r := range results {
		if o.metrics != nil && r.Elapsed > 0 {
			o.metrics.TranscriptionDuration.Observe(r.Elapsed.Seconds())
		}
		if r.Err != nil {
			result.Issues = append(result.Issues, SegmentIssue{Index: r.Index, Err: stageErr(StageTranscribe, r.Err)})
			continue
		}

		fragment, err := subtitle.Adjust(*r.Fragment, r.Fragment.Offset)
		if err != nil {
			logger.Warn("dropping unparseable fragment", zap.Int("segment", r.Index), zap.Error(err))
			result.Issues = append(result.Issues, SegmentIssue{Index: r.Index, Err: stageErr(StageAdjust, err)})
			continue
		}

		if fragment.Kind == format.Text && o.refiner != nil {
			refined, ok := o.refiner.Refine(ctx, fragment.Content)
			fragment.Content = refined
			if ok {
				result.Refined++
			}
			if o.metrics != nil {
				o.metrics.Refinements.WithLabelValues(outcome(ok)).Inc()
			}
		}

		if saveFragments {
			name := fmt.Sprintf("segment_%d%s", fragment.Index, fragment.Kind.Extension())
			if err := os.WriteFile(filepath.Join(layout.FragmentDir, name), []byte(fragment.Content), 0o644); err != nil {
				logger.Warn("failed to save fragment", zap.Int("segment", fragment.Index), zap.Error(err))
			}
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

func outcome(ok bool) string {
	if ok {
		return "refined"
	}
	return "fallback"
}

func (o *Orchestrator) persist(source string, art merge.Artifact) (string, error) {
	dir := o.workspace.Layout().TranscriptsDir
	if err := o.workspace.Ensure(dir); err != nil {
		return "", err
	}
	out := filepath.Join(dir, merge.ArtifactName(source, art.Kind))
	if err := os.WriteFile(out, []byte(art.Content), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return out, nil
}
