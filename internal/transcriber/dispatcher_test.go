package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

type fakeAdapter struct {
	mu       sync.Mutex
	calls    []Request
	fail     map[string]error
	delay    map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, req)
	err := f.fail[req.Path]
	delay := f.delay[req.Path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "text of " + req.Path, nil
}

func units(n int) []Unit {
	out := make([]Unit, n)
	for i := range out {
		out[i] = Unit{
			Index:  i,
			Path:   fmt.Sprintf("segment_%d.mp3", i),
			Offset: time.Duration(i) * 30 * time.Minute,
		}
	}
	return out
}

func TestDispatchSequentialKeepsOrder(t *testing.T) {
	adapter := &fakeAdapter{}
	d := NewDispatcher(adapter, zaptest.NewLogger(t), WithLanguage("en"))

	results := d.Dispatch(context.Background(), units(3), format.Text)

	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fmt.Sprintf("text of segment_%d.mp3", i), r.Fragment.Content)
		assert.Equal(t, time.Duration(i)*30*time.Minute, r.Fragment.Offset)
		assert.Equal(t, format.Text, r.Fragment.Kind)
	}

	require.Len(t, adapter.calls, 3)
	for i, call := range adapter.calls {
		assert.Equal(t, fmt.Sprintf("segment_%d.mp3", i), call.Path)
		assert.Equal(t, "en", call.Language)
	}
	assert.EqualValues(t, 1, adapter.peak.Load())
}

func TestDispatchConcurrentReturnsIndexOrder(t *testing.T) {
	adapter := &fakeAdapter{delay: map[string]time.Duration{
		"segment_0.mp3": 60 * time.Millisecond,
		"segment_1.mp3": 30 * time.Millisecond,
	}}
	d := NewDispatcher(adapter, zaptest.NewLogger(t), WithConcurrency(2))

	results := d.Dispatch(context.Background(), units(4), format.SRT)

	require.Len(t, results, 4)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i, r.Fragment.Index)
	}
	assert.LessOrEqual(t, adapter.peak.Load(), int32(2))
}

func TestDispatchFailureIsolated(t *testing.T) {
	boom := errors.New("service unavailable")
	adapter := &fakeAdapter{fail: map[string]error{"segment_1.mp3": boom}}
	d := NewDispatcher(adapter, zaptest.NewLogger(t))

	results := d.Dispatch(context.Background(), units(3), format.Text)

	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, boom)
	assert.Nil(t, results[1].Fragment)
	require.NoError(t, results[2].Err)
	assert.Len(t, adapter.calls, 3)
}

func TestDispatchRejectionSkipsRemaining(t *testing.T) {
	adapter := &fakeAdapter{fail: map[string]error{
		"segment_0.mp3": rejected(errors.New("invalid api key")),
	}}
	d := NewDispatcher(adapter, zaptest.NewLogger(t))

	results := d.Dispatch(context.Background(), units(3), format.Text)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, ErrRejected)
	}
	assert.Len(t, adapter.calls, 1)
}

func TestDispatchNotFoundFailsOnlyItsUnit(t *testing.T) {
	missing := classify(&openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "upload expired"})
	adapter := &fakeAdapter{fail: map[string]error{"segment_0.mp3": missing}}
	d := NewDispatcher(adapter, zaptest.NewLogger(t))

	results := d.Dispatch(context.Background(), units(3), format.Text)

	require.Error(t, results[0].Err)
	assert.NotErrorIs(t, results[0].Err, ErrRejected)
	require.NoError(t, results[1].Err)
	require.NoError(t, results[2].Err)
	assert.Len(t, adapter.calls, 3)
}

func TestDispatchCancelledContext(t *testing.T) {
	adapter := &fakeAdapter{}
	d := NewDispatcher(adapter, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Dispatch(ctx, units(2), format.Text)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestDispatchTimeout(t *testing.T) {
	adapter := &fakeAdapter{delay: map[string]time.Duration{"segment_0.mp3": time.Second}}
	d := NewDispatcher(adapter, zaptest.NewLogger(t), WithTimeout(20*time.Millisecond))

	results := d.Dispatch(context.Background(), units(2), format.Text)

	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.NoError(t, results[1].Err)
}

func TestDispatchEmpty(t *testing.T) {
	d := NewDispatcher(&fakeAdapter{}, zaptest.NewLogger(t))
	assert.Empty(t, d.Dispatch(context.Background(), nil, format.Text))
}
