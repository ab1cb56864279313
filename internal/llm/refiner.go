package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refiner reflows prose and never fails: any adapter error yields the input
// unchanged.
type Refiner struct {
	adapter Adapter
	timeout time.Duration
	logger  *zap.Logger
}

func NewRefiner(adapter Adapter, timeout time.Duration, logger *zap.Logger) *Refiner {
	return &Refiner{adapter: adapter, timeout: timeout, logger: logger}
}

// Refine returns the reflowed text and whether the service output was used.
func (r *Refiner) Refine(ctx context.Context, text string) (string, bool) {
	if r == nil || r.adapter == nil {
		return text, false
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.adapter.Process(ctx, text)
	if err != nil {
		r.logger.Warn("refinement failed, keeping raw text", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return text, false
	}

	r.logger.Debug("refined text", zap.Duration("elapsed", time.Since(start)), zap.Int("in", len(text)), zap.Int("out", len(out)))
	return out, true
}
