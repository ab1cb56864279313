// Package notify tells the user when a batch finishes.
package notify

import (
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const appName = "chunkscribe"

// Report is the outcome of one batch.
type Report struct {
	Succeeded int
	Partial   int
	Failed    int
	Elapsed   time.Duration
}

func (r Report) message() (title, body string, critical bool) {
	total := r.Succeeded + r.Partial + r.Failed
	title = fmt.Sprintf("Transcribed %d/%d files", r.Succeeded+r.Partial, total)
	body = fmt.Sprintf("%d complete, %d with gaps, %d failed in %s",
		r.Succeeded, r.Partial, r.Failed, r.Elapsed.Round(time.Second))
	return title, body, r.Failed > 0
}

type Notifier interface {
	BatchFinished(r Report)
	Error(msg string)
}

// New returns the notifier for kind ("desktop", "log" or "none").
func New(kind string, logger *zap.Logger) (Notifier, error) {
	switch kind {
	case "desktop":
		return Desktop{logger: logger}, nil
	case "log":
		return Log{logger: logger}, nil
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q (must be desktop, log or none)", kind)
	}
}

// runCommand is replaced in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Desktop sends notifications through notify-send.
type Desktop struct {
	logger *zap.Logger
}

func (d Desktop) BatchFinished(r Report) {
	title, body, critical := r.message()
	args := []string{"-a", appName}
	if critical {
		args = append(args, "-u", "critical")
	}
	d.send(append(args, title, body)...)
}

func (d Desktop) Error(msg string) {
	d.send("-a", appName, "-u", "critical", appName+": error", msg)
}

func (d Desktop) send(args ...string) {
	if err := runCommand("notify-send", args...); err != nil && d.logger != nil {
		d.logger.Warn("failed to send notification", zap.Error(err))
	}
}

// Log writes notifications to the logger.
type Log struct {
	logger *zap.Logger
}

func (l Log) BatchFinished(r Report) {
	title, body, critical := r.message()
	if critical {
		l.logger.Warn(title, zap.String("detail", body))
		return
	}
	l.logger.Info(title, zap.String("detail", body))
}

func (l Log) Error(msg string) {
	l.logger.Error(msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) BatchFinished(Report) {}
func (Nop) Error(string)         {}
