package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the audio containers accepted as batch input.
var DefaultExtensions = []string{"mp3", "m4a", "wav", "flac", "ogg", "webm", "mp4", "mpeg", "mpga"}

// ExtensionFilter reports whether a path has one of extensions, ignoring
// case and a leading dot. An empty list means DefaultExtensions.
func ExtensionFilter(extensions []string) func(path string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return func(path string) bool {
		return allowed[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
	}
}

// Discover expands each input into the audio files it names. Files are kept
// as given when their extension is supported; directories are walked
// recursively. The result is sorted and free of duplicates.
func Discover(inputs []string, extensions []string) ([]string, error) {
	supported := ExtensionFilter(extensions)

	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, stageErr(StageDiscover, err)
		}

		if !info.IsDir() {
			if !supported(input) {
				return nil, stageErr(StageDiscover, fmt.Errorf("%s: unsupported file type", input))
			}
			files = append(files, filepath.Clean(input))
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != input && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, stageErr(StageDiscover, fmt.Errorf("walk %s: %w", input, err))
		}
	}

	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, stageErr(StageDiscover, ErrNoInputs)
	}
	return files, nil
}
