package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"q": strconv.Quote,
	"list": func(items []string) string {
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = strconv.Quote(item)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	},
}).Parse(`# chunkscribe configuration
# Durations use Go syntax ("30m", "2s"). Changes are picked up by "chunkscribe watch"
# before the next batch starts.

[general]
  language = {{q .General.Language}}                # ISO-639-1 hint, "auto" to let the service detect it

# Sources larger than max_file_size are re-encoded at bitrate; if the result is
# still too large it is cut into split_interval windows.
[audio]
  max_file_size = {{.Audio.MaxFileSize}}        # bytes (OpenAI uploads are capped at 25 MiB)
  split_interval = {{q .Audio.SplitInterval.String}}
  bitrate = {{q .Audio.Bitrate}}
  extensions = {{list .Audio.Extensions}}

[output]
  format = {{q .Output.Format}}                  # text, srt, vtt, json, verbose_json
  transcripts_dir = {{q .Output.TranscriptsDir}}  # relative paths live under workspace.root
  manifest = {{.Output.Manifest}}                  # write <run_id>.manifest.yaml per batch

# Scratch directories (audio_chunks, trans_chunks, converted.mp3) are created
# under root and removed after every file.
[workspace]
  root = {{q .Workspace.Root}}
  cleanup_attempts = {{.Workspace.CleanupAttempts}}
  cleanup_delay = {{q .Workspace.CleanupDelay.String}}

[transcription]
  provider = {{q .Transcription.Provider}}              # openai or groq
  model = {{q .Transcription.Model}}
  base_url = {{q .Transcription.BaseURL}}                   # empty uses the provider's endpoint
  timeout = {{q .Transcription.Timeout.String}}             # per request, "0s" disables
  concurrency = {{.Transcription.Concurrency}}                   # segments uploaded at once
{{range $name, $p := .Providers}}
[providers.{{$name}}]
  api_key = {{q $p.APIKey}}
  base_url = {{q $p.BaseURL}}
{{end}}
# Paragraph refinement of text output through a chat model.
[llm]
  enabled = {{.LLM.Enabled}}
  provider = {{q .LLM.Provider}}
  model = {{q .LLM.Model}}
  prompt = {{q .LLM.Prompt}}                     # empty uses the built-in instructions
  timeout = {{q .LLM.Timeout.String}}

[codec]
  ffmpeg = {{q .Codec.FFmpeg}}
  ffprobe = {{q .Codec.FFprobe}}

[logging]
  level = {{q .Logging.Level}}                 # debug, info, warn, error
  development = {{.Logging.Development}}

[metrics]
  textfile = {{q .Metrics.Textfile}}                  # e.g. /var/lib/node_exporter/chunkscribe.prom

[notifications]
  enabled = {{.Notifications.Enabled}}
  type = {{q .Notifications.Type}}                   # desktop, log, none
`))

// Save writes c to path as commented TOML. API keys are written as well, so
// the file is created with owner-only permissions.
func Save(c *Config, path string) error {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, c); err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefaultConfig writes the defaults to the user config path and returns it.
func SaveDefaultConfig() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return configPath, Save(DefaultConfig(), configPath)
}
