// Package subtitle parses, shifts and serializes SRT and WebVTT cue files.
package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

const arrow = "-->"

// Cue is one timed subtitle entry.
type Cue struct {
	// Number is the SRT sequence number (0 when absent).
	Number int
	// ID is a WebVTT cue identifier (empty when absent).
	ID       string
	Start    time.Duration
	End      time.Duration
	Settings string
	Text     []string
}

// Document is a parsed cue file.
type Document struct {
	Kind format.Kind
	// Preamble holds WebVTT header lines and NOTE/STYLE/REGION blocks seen
	// before the first cue.
	Preamble []string
	Cues     []Cue
}

// Parse reads content in the grammar of kind, which must be timed.
func Parse(content string, kind format.Kind) (*Document, error) {
	if !kind.Timed() {
		return nil, fmt.Errorf("%s output has no cues", kind)
	}

	doc := &Document{Kind: kind}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")
	if kind == format.VTT && strings.TrimSpace(content) != "" && !strings.HasPrefix(content, "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT signature")
	}

	for n, block := range splitBlocks(content) {
		timing := -1
		for i, line := range block {
			if strings.Contains(line, arrow) {
				timing = i
				break
			}
		}

		if timing < 0 {
			switch {
			case kind == format.VTT && len(doc.Cues) == 0 && (n == 0 || isVTTMetaBlock(block)):
				doc.Preamble = append(doc.Preamble, strings.Join(block, "\n"))
			case len(doc.Cues) > 0:
				// text containing a blank line belongs to the previous cue
				last := &doc.Cues[len(doc.Cues)-1]
				last.Text = append(last.Text, "")
				last.Text = append(last.Text, block...)
			default:
				return nil, fmt.Errorf("block %d: no timing line", n+1)
			}
			continue
		}

		cue, err := parseCue(block, timing, kind)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", n+1, err)
		}
		doc.Cues = append(doc.Cues, cue)
	}

	return doc, nil
}

func parseCue(block []string, timing int, kind format.Kind) (Cue, error) {
	var cue Cue
	if timing > 0 {
		head := strings.TrimSpace(block[timing-1])
		if kind == format.SRT {
			if n, err := strconv.Atoi(head); err == nil {
				cue.Number = n
			}
		} else {
			cue.ID = head
		}
	}

	left, right, _ := strings.Cut(block[timing], arrow)
	right = strings.TrimSpace(right)
	endField, settings, _ := strings.Cut(right, " ")

	start, err := ParseTimestamp(left)
	if err != nil {
		return Cue{}, err
	}
	end, err := ParseTimestamp(endField)
	if err != nil {
		return Cue{}, err
	}

	cue.Start = start
	cue.End = end
	cue.Settings = strings.TrimSpace(settings)
	cue.Text = append([]string(nil), block[timing+1:]...)
	return cue, nil
}

func isVTTMetaBlock(block []string) bool {
	first := strings.TrimSpace(block[0])
	for _, prefix := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}
	return false
}

func splitBlocks(content string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// Shift moves every cue forward by offset.
func (d *Document) Shift(offset time.Duration) {
	for i := range d.Cues {
		d.Cues[i].Start += offset
		d.Cues[i].End += offset
	}
}

// Renumber assigns SRT numbers 1..N. Numeric WebVTT identifiers are
// renumbered the same way; other identifiers are kept.
func (d *Document) Renumber() {
	for i := range d.Cues {
		d.Cues[i].Number = i + 1
		if d.Cues[i].ID != "" {
			if _, err := strconv.Atoi(d.Cues[i].ID); err == nil {
				d.Cues[i].ID = strconv.Itoa(i + 1)
			}
		}
	}
}

// String serializes the document in its own grammar.
func (d *Document) String() string {
	var b strings.Builder
	sep := byte(',')
	if d.Kind == format.VTT {
		sep = '.'
		if len(d.Preamble) == 0 {
			b.WriteString("WEBVTT\n\n")
		}
		for _, p := range d.Preamble {
			b.WriteString(p)
			b.WriteString("\n\n")
		}
	}

	for i, cue := range d.Cues {
		switch {
		case d.Kind == format.SRT:
			n := cue.Number
			if n == 0 {
				n = i + 1
			}
			fmt.Fprintf(&b, "%d\n", n)
		case cue.ID != "":
			fmt.Fprintf(&b, "%s\n", cue.ID)
		}

		b.WriteString(FormatTimestamp(cue.Start, sep))
		b.WriteString(" " + arrow + " ")
		b.WriteString(FormatTimestamp(cue.End, sep))
		if cue.Settings != "" {
			b.WriteString(" " + cue.Settings)
		}
		b.WriteByte('\n')
		for _, line := range cue.Text {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
