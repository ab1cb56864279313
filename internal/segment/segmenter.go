package segment

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Extractor cuts a time range out of a file without re-encoding.
type Extractor interface {
	Extract(ctx context.Context, src, dst string, start, length time.Duration) error
}

// Segment is a planned window whose audio was extracted to Path.
type Segment struct {
	Window
	Path string
}

// Failure is a window that could not be extracted. It becomes a gap.
type Failure struct {
	Index int
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("segment %d: %v", f.Index, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Segmenter extracts every planned window of a source.
type Segmenter struct {
	extractor Extractor
	logger    *zap.Logger
}

func NewSegmenter(extractor Extractor, logger *zap.Logger) *Segmenter {
	return &Segmenter{extractor: extractor, logger: logger}
}

// Split extracts each window of src into dir. A failing window is reported in
// the failures slice and the remaining windows are still attempted. Only a
// cancelled context stops the loop early; unattempted windows are reported as
// failures too.
func (s *Segmenter) Split(ctx context.Context, src, dir string, windows []Window) ([]Segment, []Failure) {
	ext := filepath.Ext(src)
	segments := make([]Segment, 0, len(windows))
	var failures []Failure

	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			for _, rest := range windows[i:] {
				failures = append(failures, Failure{Index: rest.Index, Err: err})
			}
			break
		}

		dst := filepath.Join(dir, fmt.Sprintf("segment_%d%s", w.Index, ext))
		s.logger.Info("extracting segment",
			zap.Int("segment", w.Index+1),
			zap.Int("of", len(windows)),
			zap.Duration("start", w.Start),
			zap.Duration("length", w.Length))

		if err := s.extractor.Extract(ctx, src, dst, w.Start, w.Length); err != nil {
			s.logger.Warn("segment extraction failed", zap.Int("segment", w.Index), zap.Error(err))
			failures = append(failures, Failure{Index: w.Index, Err: err})
			continue
		}
		segments = append(segments, Segment{Window: w, Path: dst})
	}

	return segments, failures
}
