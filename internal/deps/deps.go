// Package deps reports whether the external codec tools are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
}

// CheckFFmpeg checks if ffmpeg is installed and returns its status.
// An empty binary means "ffmpeg" on PATH.
func CheckFFmpeg(binary string) Status {
	return check("ffmpeg", binary)
}

// CheckFFprobe checks if ffprobe is installed and returns its status.
func CheckFFprobe(binary string) Status {
	return check("ffprobe", binary)
}

func check(name, binary string) Status {
	if binary == "" {
		binary = name
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return Status{Name: name}
	}

	status := Status{
		Name:      name,
		Installed: true,
		Path:      path,
	}

	// both tools print "<name> version N ..." on the first line
	output, err := exec.Command(path, "-version").Output()
	if err == nil {
		first, _, _ := strings.Cut(string(output), "\n")
		status.Version = strings.TrimSpace(first)
	}

	return status
}

// Require returns an error naming every missing tool.
func Require(statuses ...Status) error {
	var missing []string
	for _, s := range statuses {
		if !s.Installed {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s (install ffmpeg)", strings.Join(missing, ", "))
	}
	return nil
}
