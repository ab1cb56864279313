package transcriber

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

// Result is the outcome for one unit. Exactly one of Fragment and Err is set.
type Result struct {
	Index    int
	Fragment *Fragment
	Err      error
	Elapsed  time.Duration
}

// Dispatcher fans units out to an Adapter. Units start in index order and
// results are returned in index order regardless of completion order.
type Dispatcher struct {
	adapter     Adapter
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration
	language    string
}

type DispatcherOption func(*Dispatcher)

// WithConcurrency bounds the number of in-flight calls. Values below 2 keep
// dispatch sequential.
func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.concurrency = n
	}
}

// WithTimeout limits each service call. Zero means no limit beyond ctx.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithLanguage sets the language hint passed with every call.
func WithLanguage(language string) DispatcherOption {
	return func(d *Dispatcher) {
		d.language = language
	}
}

func NewDispatcher(adapter Adapter, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		adapter:     adapter,
		logger:      logger,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch transcribes every unit. A failed unit does not stop the others,
// except that after an ErrRejected failure the units not yet started are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, units []Unit, kind format.Kind) []Result {
	results := make([]Result, len(units))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		rejection error
	)
	sem := make(chan struct{}, d.concurrency)

	for i, unit := range units {
		results[i].Index = unit.Index

		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("unit %d not dispatched: %w", unit.Index, err)
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = fmt.Errorf("unit %d not dispatched: %w", unit.Index, ctx.Err())
			continue
		}

		mu.Lock()
		stop := rejection
		mu.Unlock()
		if stop != nil {
			<-sem
			results[i].Err = fmt.Errorf("unit %d skipped: %w", unit.Index, stop)
			continue
		}

		wg.Add(1)
		go func(slot *Result, unit Unit) {
			defer func() {
				<-sem
				wg.Done()
			}()

			fragment, err := d.call(ctx, unit, kind)
			slot.Elapsed = fragment.elapsed
			if err != nil {
				slot.Err = err
				if errors.Is(err, ErrRejected) {
					mu.Lock()
					if rejection == nil {
						rejection = err
					}
					mu.Unlock()
				}
				return
			}
			slot.Fragment = &fragment.Fragment
		}(&results[i], unit)
	}

	wg.Wait()
	return results
}

type timedFragment struct {
	Fragment
	elapsed time.Duration
}

func (d *Dispatcher) call(ctx context.Context, unit Unit, kind format.Kind) (timedFragment, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Debug("dispatching unit", zap.Int("segment", unit.Index), zap.String("path", unit.Path))

	start := time.Now()
	content, err := d.adapter.Transcribe(ctx, Request{
		Path:     unit.Path,
		Kind:     kind,
		Language: d.language,
	})
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Warn("unit failed",
			zap.Int("segment", unit.Index),
			zap.Duration("elapsed", elapsed),
			zap.Bool("rejected", errors.Is(err, ErrRejected)),
			zap.Error(err))
		return timedFragment{elapsed: elapsed}, fmt.Errorf("unit %d: %w", unit.Index, err)
	}

	d.logger.Info("unit transcribed",
		zap.Int("segment", unit.Index),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(content)))

	return timedFragment{
		Fragment: Fragment{
			Index:   unit.Index,
			Offset:  unit.Offset,
			Kind:    kind,
			Content: content,
		},
		elapsed: elapsed,
	}, nil
}
