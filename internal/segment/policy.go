package segment

import "fmt"

// DefaultMaxBytes is the upload ceiling of the OpenAI transcription endpoint.
const DefaultMaxBytes int64 = 25 * 1024 * 1024

// Decision is what has to happen to a source before it can be uploaded.
type Decision int

const (
	// Direct sources are uploaded as they are.
	Direct Decision = iota
	// Convert sources are re-encoded to a lower bitrate mono file first.
	Convert
	// ConvertAndSplit sources are still too large after conversion and are
	// cut into time windows.
	ConvertAndSplit
)

func (d Decision) String() string {
	switch d {
	case Direct:
		return "direct"
	case Convert:
		return "convert"
	case ConvertAndSplit:
		return "convert+split"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Policy compares byte sizes against the upload ceiling.
type Policy struct {
	MaxBytes int64
}

func NewPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Policy{MaxBytes: maxBytes}
}

// Classify decides on the original source. It never returns ConvertAndSplit:
// whether splitting is needed is only known after conversion.
func (p Policy) Classify(sourceBytes int64) Decision {
	if sourceBytes <= p.MaxBytes {
		return Direct
	}
	return Convert
}

// ClassifyConverted decides on the re-encoded file.
func (p Policy) ClassifyConverted(convertedBytes int64) Decision {
	if convertedBytes <= p.MaxBytes {
		return Convert
	}
	return ConvertAndSplit
}

// Resolve applies both steps. convertedBytes is ignored for Direct sources.
func (p Policy) Resolve(sourceBytes, convertedBytes int64) Decision {
	if d := p.Classify(sourceBytes); d == Direct {
		return d
	}
	return p.ClassifyConverted(convertedBytes)
}
