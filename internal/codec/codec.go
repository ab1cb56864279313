// Package codec drives the external ffmpeg/ffprobe binaries.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), &ExitError{ExitCode: exitCode, Stderr: lastLine(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}

// ExitError is a non-zero exit (or failure to start) of the codec tool.
type ExitError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("exit code %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("exit code %d: %v", e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Error describes which codec operation failed on which file.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Probe holds what ffprobe reports about a source.
type Probe struct {
	Path     string
	Size     int64
	Duration time.Duration
	Bitrate  int64
}

// Config selects the binaries to run.
type Config struct {
	FFmpegPath  string
	FFprobePath string
}

// FFmpeg implements probing, conversion and copy-mode extraction.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	runner  Runner
	logger  *zap.Logger
}

// Option configures an FFmpeg.
type Option func(*FFmpeg)

// WithRunner replaces process execution, mainly for tests.
func WithRunner(r Runner) Option {
	return func(f *FFmpeg) {
		f.runner = r
	}
}

func New(cfg Config, logger *zap.Logger, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		runner:  execRunner{},
		logger:  logger,
	}
	if f.ffmpeg == "" {
		f.ffmpeg = "ffmpeg"
	}
	if f.ffprobe == "" {
		f.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Probe reports the size, duration and bitrate of path. When ffprobe reports
// no bitrate it is estimated from size and duration.
func (f *FFmpeg) Probe(ctx context.Context, path string) (Probe, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Probe{}, &Error{Op: "probe", Path: path, Err: err}
	}

	out, err := f.runner.Run(ctx, f.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration,bit_rate",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	if err != nil {
		return Probe{}, &Error{Op: "probe", Path: path, Err: err}
	}

	seconds, bitrate, err := parseProbeOutput(string(out))
	if err != nil {
		return Probe{}, &Error{Op: "probe", Path: path, Err: err}
	}

	p := Probe{
		Path:     path,
		Size:     info.Size(),
		Duration: SecondsToDuration(seconds),
		Bitrate:  bitrate,
	}
	if p.Bitrate <= 0 && seconds > 0 {
		p.Bitrate = int64(float64(p.Size*8) / seconds)
	}

	f.logger.Debug("probed source",
		zap.String("path", path),
		zap.Int64("bytes", p.Size),
		zap.Duration("duration", p.Duration),
		zap.Int64("bitrate", p.Bitrate))
	return p, nil
}

// Convert re-encodes src to dst at the given bitrate (ffmpeg syntax, e.g.
// "96k") with a single channel.
func (f *FFmpeg) Convert(ctx context.Context, src, dst, bitrate string) error {
	start := time.Now()
	_, err := f.runner.Run(ctx, f.ffmpeg,
		"-i", src,
		"-b:a", bitrate,
		"-ac", "1",
		"-y",
		dst,
	)
	if err != nil {
		return &Error{Op: "convert", Path: src, Err: err}
	}
	f.logger.Debug("converted source",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.String("bitrate", bitrate),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Extract copies [start, start+length) of src into dst without re-encoding.
func (f *FFmpeg) Extract(ctx context.Context, src, dst string, start, length time.Duration) error {
	_, err := f.runner.Run(ctx, f.ffmpeg,
		"-i", src,
		"-ss", FormatSeconds(start),
		"-t", FormatSeconds(length),
		"-c", "copy",
		"-y",
		dst,
	)
	if err != nil {
		return &Error{Op: "extract", Path: src, Err: err}
	}
	return nil
}

func parseProbeOutput(out string) (float64, int64, error) {
	var (
		seconds     = -1.0
		bitrate     int64
		sawDuration bool
	)
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("parse duration %q: %w", value, err)
			}
			seconds = v
			sawDuration = true
		case "bit_rate":
			if v, err := strconv.ParseInt(value, 10, 64); err == nil {
				bitrate = v
			}
		}
	}
	if !sawDuration {
		return 0, 0, fmt.Errorf("no duration in ffprobe output")
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, 0, fmt.Errorf("invalid duration %v", seconds)
	}
	return seconds, bitrate, nil
}

// SecondsToDuration converts probe seconds to a Duration rounded to the
// nearest millisecond.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

// FormatSeconds renders d as decimal seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
