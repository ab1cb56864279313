package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_SeventyMinutesIntoThirtyMinuteWindows(t *testing.T) {
	windows, err := Plan(70*time.Minute, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	assert.Equal(t, []time.Duration{30 * time.Minute, 30 * time.Minute, 10 * time.Minute},
		[]time.Duration{windows[0].Length, windows[1].Length, windows[2].Length})
	assert.Equal(t, []time.Duration{0, 1_800_000 * time.Millisecond, 3_600_000 * time.Millisecond},
		[]time.Duration{windows[0].Start, windows[1].Start, windows[2].Start})
}

func TestPlan_CoversDurationExactly(t *testing.T) {
	durations := []time.Duration{
		time.Millisecond,
		999 * time.Millisecond,
		time.Second,
		29*time.Minute + 59*time.Second + 999*time.Millisecond,
		30 * time.Minute,
		30*time.Minute + time.Millisecond,
		3*time.Hour + 17*time.Minute + 3*time.Second + 250*time.Millisecond,
		150 * time.Hour,
	}
	intervals := []time.Duration{time.Second, 10 * time.Minute, 30 * time.Minute, 2 * time.Hour}

	for _, d := range durations {
		for _, iv := range intervals {
			windows, err := Plan(d, iv)
			require.NoError(t, err)

			want := int((d + iv - 1) / iv)
			require.Len(t, windows, want, "duration %s interval %s", d, iv)

			var cursor time.Duration
			for i, w := range windows {
				assert.Equal(t, i, w.Index)
				assert.Equal(t, cursor, w.Start, "gap or overlap before %s", w)
				assert.Positive(t, w.Length)
				assert.LessOrEqual(t, w.Length, iv)
				cursor = w.End()
			}
			assert.Equal(t, d, cursor)
		}
	}
}

func TestPlan_OffsetsDependOnlyOnInterval(t *testing.T) {
	iv := 30 * time.Minute
	windows, err := Plan(95*time.Minute, iv)
	require.NoError(t, err)

	for _, w := range windows {
		assert.Equal(t, Offset(w.Index, iv), w.Start)
	}
}

func TestPlan_Errors(t *testing.T) {
	_, err := Plan(0, time.Minute)
	assert.ErrorIs(t, err, ErrEmptyDuration)

	_, err = Plan(time.Minute, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestWindow_String(t *testing.T) {
	w := Window{Index: 1, Start: time.Minute, Length: 30 * time.Second}
	assert.Equal(t, "segment 1 [1m0s, 1m30s)", w.String())
}
