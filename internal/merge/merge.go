// Package merge reassembles per-segment fragments into one artifact.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/subtitle"
	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
)

var ErrNoFragments = errors.New("no fragments to merge")

// Artifact is the reassembled transcript for one source file.
type Artifact struct {
	Name    string
	Kind    format.Kind
	Content string
	// Gaps lists the zero-based segment indices that have no fragment.
	Gaps []int
}

// segmentEntry is one element of a merged JSON artifact.
type segmentEntry struct {
	Segment  int             `json:"segment"`
	OffsetMs int64           `json:"offset_ms"`
	Response json.RawMessage `json:"response"`
}

// ArtifactName derives the output file name from the source path.
func ArtifactName(source string, kind format.Kind) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + kind.Extension()
}

// Merge joins fragments, already shifted to the source timeline, in segment
// order. segments is the number of planned units; 1 means the source was not
// split and the single fragment is returned verbatim.
func Merge(fragments []transcriber.Fragment, kind format.Kind, segments int) (Artifact, error) {
	if len(fragments) == 0 {
		return Artifact{Kind: kind}, ErrNoFragments
	}

	ordered := slices.Clone(fragments)
	slices.SortFunc(ordered, func(a, b transcriber.Fragment) int { return a.Index - b.Index })

	art := Artifact{Kind: kind, Gaps: gaps(ordered, segments)}

	if segments <= 1 {
		art.Content = ordered[0].Content
		return art, nil
	}

	var err error
	switch {
	case kind.Timed():
		art.Content, err = mergeCues(ordered, kind)
	case kind.Structured():
		art.Content, err = mergeJSON(ordered)
	default:
		art.Content = mergeText(ordered, segments)
	}
	if err != nil {
		return Artifact{Kind: kind}, err
	}
	return art, nil
}

func gaps(ordered []transcriber.Fragment, segments int) []int {
	present := make(map[int]bool, len(ordered))
	for _, f := range ordered {
		present[f.Index] = true
	}
	var missing []int
	for i := 0; i < segments; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

func mergeCues(ordered []transcriber.Fragment, kind format.Kind) (string, error) {
	merged := &subtitle.Document{Kind: kind}
	for i, f := range ordered {
		doc, err := subtitle.Parse(f.Content, kind)
		if err != nil {
			return "", fmt.Errorf("merge segment %d: %w", f.Index, err)
		}
		if i == 0 {
			merged.Preamble = doc.Preamble
		}
		merged.Cues = append(merged.Cues, doc.Cues...)
	}
	merged.Renumber()
	return merged.String(), nil
}

func mergeJSON(ordered []transcriber.Fragment) (string, error) {
	entries := make([]segmentEntry, 0, len(ordered))
	for _, f := range ordered {
		raw := json.RawMessage(strings.TrimSpace(f.Content))
		if !json.Valid(raw) {
			return "", fmt.Errorf("merge segment %d: response is not valid JSON", f.Index)
		}
		entries = append(entries, segmentEntry{
			Segment:  f.Index + 1,
			OffsetMs: f.Offset.Milliseconds(),
			Response: raw,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode merged json: %w", err)
	}
	return string(data) + "\n", nil
}

// SegmentMarker is the heading placed before each segment of a merged prose
// transcript.
func SegmentMarker(index int) string {
	return fmt.Sprintf("=== Segment %d ===", index+1)
}

func missingMarker(index int) string {
	return fmt.Sprintf("=== Segment %d (missing) ===", index+1)
}

func mergeText(ordered []transcriber.Fragment, segments int) string {
	byIndex := make(map[int]string, len(ordered))
	for _, f := range ordered {
		byIndex[f.Index] = strings.TrimSpace(f.Content)
	}

	last := segments
	if top := ordered[len(ordered)-1].Index + 1; top > last {
		last = top
	}

	sections := make([]string, 0, last)
	for i := 0; i < last; i++ {
		text, ok := byIndex[i]
		if !ok {
			sections = append(sections, missingMarker(i))
			continue
		}
		sections = append(sections, SegmentMarker(i)+"\n\n"+text)
	}
	return strings.Join(sections, "\n\n") + "\n"
}
