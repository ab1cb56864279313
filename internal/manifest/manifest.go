// Package manifest records what a batch produced as a YAML file next to the
// transcripts, so unattended runs can be audited later.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
)

const suffix = ".manifest.yaml"

type Manifest struct {
	RunID    string    `yaml:"run_id"`
	Finished time.Time `yaml:"finished"`
	Elapsed  string    `yaml:"elapsed"`
	Format   string    `yaml:"format"`
	OK       int       `yaml:"ok"`
	Partial  int       `yaml:"partial"`
	Failed   int       `yaml:"failed"`
	Files    []File    `yaml:"files"`
	Cleanup  []string  `yaml:"cleanup_warnings,omitempty"`
}

type File struct {
	Source   string `yaml:"source"`
	Output   string `yaml:"output,omitempty"`
	Status   string `yaml:"status"`
	Decision string `yaml:"decision,omitempty"`
	Segments int    `yaml:"segments,omitempty"`
	// Missing holds 1-based segment numbers, as printed in the transcript.
	Missing []int    `yaml:"missing_segments,omitempty"`
	Issues  []string `yaml:"issues,omitempty"`
	Refined int      `yaml:"refined,omitempty"`
	Error   string   `yaml:"error,omitempty"`
	Elapsed string   `yaml:"elapsed"`
}

// FromSummary converts a batch summary.
func FromSummary(s *pipeline.Summary, kind format.Kind, finished time.Time) Manifest {
	m := Manifest{
		RunID:    s.RunID,
		Finished: finished.UTC().Truncate(time.Second),
		Elapsed:  s.Elapsed.Round(time.Millisecond).String(),
		Format:   kind.String(),
		OK:       s.Count(pipeline.StatusOK),
		Partial:  s.Count(pipeline.StatusPartial),
		Failed:   s.Count(pipeline.StatusFailed),
	}

	for _, r := range s.Files {
		f := File{
			Source:  r.Path,
			Status:  string(r.Status()),
			Elapsed: r.Elapsed.Round(time.Millisecond).String(),
		}
		if r.Status() == pipeline.StatusFailed {
			if r.Err != nil {
				f.Error = r.Err.Error()
			}
		} else {
			f.Output = r.Output
			f.Decision = r.Decision.String()
			f.Segments = r.Segments
			f.Refined = r.Refined
			for _, g := range r.Gaps {
				f.Missing = append(f.Missing, g+1)
			}
			for _, issue := range r.Issues {
				f.Issues = append(f.Issues, fmt.Sprintf("segment %d: %v", issue.Index+1, issue.Err))
			}
		}
		m.Files = append(m.Files, f)
	}

	for _, err := range s.Cleanup {
		m.Cleanup = append(m.Cleanup, err.Error())
	}
	return m
}

// Write stores m as <dir>/<run_id>.manifest.yaml and returns the path.
func Write(dir string, m Manifest) (string, error) {
	if m.RunID == "" {
		return "", fmt.Errorf("manifest has no run id")
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, m.RunID+suffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
