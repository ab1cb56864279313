package provider

import (
	"slices"

	"github.com/leonardotrapani/chunkscribe/internal/format"
)

// ModelType represents the type of a model
type ModelType int

const (
	Transcription ModelType = iota
	LLM
)

// Model describes one hosted model.
type Model struct {
	ID          string
	Name        string
	Description string
	Type        ModelType
	// Formats lists the response formats a transcription model can produce.
	Formats []format.Kind
}

// SupportsFormat reports whether the model can answer in kind. LLM models
// always return prose and report false.
func (m Model) SupportsFormat(kind format.Kind) bool {
	return slices.Contains(m.Formats, kind)
}

var (
	allFormats  = format.Kinds()
	textFormats = []format.Kind{format.Text, format.JSON}
	noSubtitles = []format.Kind{format.Text, format.JSON, format.VerboseJSON}
)
