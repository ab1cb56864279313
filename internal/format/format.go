package format

import (
	"fmt"
	"strings"
)

// Kind is the grammar requested from the transcription service.
// It is fixed for a whole run.
type Kind string

const (
	Text        Kind = "text"
	SRT         Kind = "srt"
	VTT         Kind = "vtt"
	JSON        Kind = "json"
	VerboseJSON Kind = "verbose_json"
)

var extensions = map[Kind]string{
	Text:        ".txt",
	SRT:         ".srt",
	VTT:         ".vtt",
	JSON:        ".json",
	VerboseJSON: ".json",
}

// Parse accepts the config spelling of a kind. "verbose-json" and "txt" are
// tolerated aliases.
func Parse(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Text, SRT, VTT, JSON, VerboseJSON:
		return k, nil
	case "txt", "plain":
		return Text, nil
	case "verbose-json":
		return VerboseJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (must be text, srt, vtt, json or verbose_json)", s)
	}
}

// Extension returns the file extension (with dot) for artifacts of this kind.
func (k Kind) Extension() string {
	if ext, ok := extensions[k]; ok {
		return ext
	}
	return ".txt"
}

// Timed reports whether fragments of this kind carry cue timing that must be
// shifted when the source was split.
func (k Kind) Timed() bool {
	return k == SRT || k == VTT
}

// Structured reports whether the kind is a JSON document.
func (k Kind) Structured() bool {
	return k == JSON || k == VerboseJSON
}

func (k Kind) String() string {
	return string(k)
}

// Kinds lists all supported kinds in display order.
func Kinds() []Kind {
	return []Kind{Text, SRT, VTT, JSON, VerboseJSON}
}
