package segment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyDuration   = errors.New("source has no duration")
	ErrInvalidInterval = errors.New("split interval must be positive")
)

// Window is one planned time range of the source.
type Window struct {
	Index  int
	Start  time.Duration
	Length time.Duration
}

// End returns the exclusive end of the window.
func (w Window) End() time.Duration {
	return w.Start + w.Length
}

func (w Window) String() string {
	return fmt.Sprintf("segment %d [%s, %s)", w.Index, w.Start, w.End())
}

// Plan covers [0, total) with consecutive windows of length interval; the last
// window is clipped to what remains. It returns ceil(total/interval) windows.
func Plan(total, interval time.Duration) ([]Window, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if total <= 0 {
		return nil, ErrEmptyDuration
	}

	count := int((total + interval - 1) / interval)
	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		start := Offset(i, interval)
		length := min(interval, total-start)
		windows = append(windows, Window{Index: i, Start: start, Length: length})
	}
	return windows, nil
}

// Offset is the position of segment index in the source. It depends only on
// the planning interval, never on extracted lengths.
func Offset(index int, interval time.Duration) time.Duration {
	return time.Duration(index) * interval
}
