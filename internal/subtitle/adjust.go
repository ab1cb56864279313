package subtitle

import (
	"fmt"
	"time"

	"github.com/leonardotrapani/chunkscribe/internal/transcriber"
)

// Adjust shifts every cue of a timed fragment by offset and re-serializes it.
// Untimed fragments are returned unchanged. A timed fragment is always parsed,
// so malformed content is reported even at offset zero, where the valid
// content is kept verbatim.
func Adjust(f transcriber.Fragment, offset time.Duration) (transcriber.Fragment, error) {
	if !f.Kind.Timed() {
		return f, nil
	}

	doc, err := Parse(f.Content, f.Kind)
	if err != nil {
		return f, fmt.Errorf("adjust segment %d: %w", f.Index, err)
	}
	if offset == 0 {
		return f, nil
	}
	doc.Shift(offset.Truncate(time.Millisecond))

	f.Content = doc.String()
	return f, nil
}
