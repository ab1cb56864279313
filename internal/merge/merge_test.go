package merge

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/segment"
	"github.com/leonardotrapani/chunkscribe/internal/subtitle"
	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
)

func srtFragment(index int, cues ...string) transcriber.Fragment {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s\nline %d.%d\n\n", i+1, c, index, i)
	}
	return transcriber.Fragment{Index: index, Kind: format.SRT, Content: b.String()}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "lecture.srt", ArtifactName("/data/in/lecture.m4a", format.SRT))
	assert.Equal(t, "talk.v2.json", ArtifactName("talk.v2.mp3", format.VerboseJSON))
	assert.Equal(t, "noext.txt", ArtifactName("noext", format.Text))
}

func TestMergeNoFragments(t *testing.T) {
	_, err := Merge(nil, format.Text, 3)
	assert.ErrorIs(t, err, ErrNoFragments)
}

func TestMergeUnsplitVerbatim(t *testing.T) {
	for _, kind := range format.Kinds() {
		f := transcriber.Fragment{Kind: kind, Content: "  raw service output\n"}
		art, err := Merge([]transcriber.Fragment{f}, kind, 1)
		require.NoError(t, err)
		assert.Equal(t, f.Content, art.Content, kind.String())
		assert.Empty(t, art.Gaps)
	}
}

func TestMergeTextMarkers(t *testing.T) {
	fragments := []transcriber.Fragment{
		{Index: 1, Kind: format.Text, Content: "second part\n"},
		{Index: 0, Kind: format.Text, Content: "first part"},
	}

	art, err := Merge(fragments, format.Text, 3)
	require.NoError(t, err)

	want := "=== Segment 1 ===\n\nfirst part\n\n=== Segment 2 ===\n\nsecond part\n\n=== Segment 3 (missing) ===\n"
	assert.Equal(t, want, art.Content)
	assert.Equal(t, []int{2}, art.Gaps)
}

func TestMergeSRTRenumbers(t *testing.T) {
	a, err := subtitle.Adjust(srtFragment(0, "00:00:00,000 --> 00:00:02,000", "00:00:03,000 --> 00:00:04,000"), 0)
	require.NoError(t, err)
	b, err := subtitle.Adjust(srtFragment(1, "00:00:01,000 --> 00:00:02,000"), 30*time.Minute)
	require.NoError(t, err)

	art, err := Merge([]transcriber.Fragment{a, b}, format.SRT, 2)
	require.NoError(t, err)

	doc, err := subtitle.Parse(art.Content, format.SRT)
	require.NoError(t, err)
	require.Len(t, doc.Cues, 3)
	for i, cue := range doc.Cues {
		assert.Equal(t, i+1, cue.Number)
	}
	assert.Equal(t, 30*time.Minute+time.Second, doc.Cues[2].Start)
	assert.Contains(t, art.Content, "3\n00:30:01,000 --> 00:30:02,000\nline 1.0\n")
}

func TestMergeVTTSingleHeader(t *testing.T) {
	fragments := []transcriber.Fragment{
		{Index: 0, Kind: format.VTT, Content: "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhi\n"},
		{Index: 1, Kind: format.VTT, Content: "WEBVTT\n\n00:30:00.000 --> 00:30:01.000\nbye\n"},
	}

	art, err := Merge(fragments, format.VTT, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(art.Content, "WEBVTT"))
	assert.Equal(t, "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhi\n\n00:30:00.000 --> 00:30:01.000\nbye\n\n", art.Content)
}

func TestMergeJSONArray(t *testing.T) {
	fragments := []transcriber.Fragment{
		{Index: 0, Kind: format.JSON, Content: `{"text":"one"}`},
		{Index: 2, Kind: format.JSON, Offset: time.Hour, Content: `{"text":"three"}`},
	}

	art, err := Merge(fragments, format.JSON, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, art.Gaps)

	var entries []struct {
		Segment  int             `json:"segment"`
		OffsetMs int64           `json:"offset_ms"`
		Response json.RawMessage `json:"response"`
	}
	require.NoError(t, json.Unmarshal([]byte(art.Content), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[1].Segment)
	assert.EqualValues(t, 3_600_000, entries[1].OffsetMs)
	assert.JSONEq(t, `{"text":"three"}`, string(entries[1].Response))
}

func TestMergeJSONRejectsInvalid(t *testing.T) {
	fragments := []transcriber.Fragment{
		{Index: 0, Kind: format.JSON, Content: `{"text":"one"}`},
		{Index: 1, Kind: format.JSON, Content: `not json`},
	}
	_, err := Merge(fragments, format.JSON, 2)
	assert.Error(t, err)
}

// A 70 minute source split at 30 minutes: every segment's cues land inside its
// window once shifted, and the merged timeline spans the whole source.
func TestMergeTimelineCoversSource(t *testing.T) {
	interval := 30 * time.Minute
	total := 70 * time.Minute
	windows, err := segment.Plan(total, interval)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	var fragments []transcriber.Fragment
	for _, w := range windows {
		local := fmt.Sprintf("%s --> %s",
			subtitle.FormatTimestamp(0, ','),
			subtitle.FormatTimestamp(w.Length, ','))
		adjusted, err := subtitle.Adjust(srtFragment(w.Index, local), segment.Offset(w.Index, interval))
		require.NoError(t, err)
		fragments = append(fragments, adjusted)
	}

	art, err := Merge(fragments, format.SRT, len(windows))
	require.NoError(t, err)

	doc, err := subtitle.Parse(art.Content, format.SRT)
	require.NoError(t, err)
	require.Len(t, doc.Cues, 3)

	assert.Equal(t, time.Duration(0), doc.Cues[0].Start)
	assert.GreaterOrEqual(t, doc.Cues[2].Start, time.Duration(len(windows)-1)*interval)
	assert.InDelta(t, total.Seconds(), doc.Cues[2].End.Seconds(), 1)
	for i := 1; i < len(doc.Cues); i++ {
		assert.GreaterOrEqual(t, doc.Cues[i].Start, doc.Cues[i-1].Start)
	}
}
