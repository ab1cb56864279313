package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/chunkscribe/internal/config"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/language"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionProviders     ConfigSection = "providers"
	SectionTranscription ConfigSection = "transcription"
	SectionOutput        ConfigSection = "output"
	SectionAudio         ConfigSection = "audio"
	SectionLanguage      ConfigSection = "language"
	SectionLLM           ConfigSection = "llm"
	SectionNotifications ConfigSection = "notifications"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the menu-based configuration editor on a copy of cfg.
func Run(cfg *config.Config) (*ConfigureResult, error) {
	edited := *cfg
	edited.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for k, v := range cfg.Providers {
		edited.Providers[k] = v
	}

	st := NewStyles(NewRenderer(os.Stdout))

	for {
		clearScreen()
		fmt.Println(Logo(st))
		fmt.Println()

		section, err := selectSection(&edited)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := edited.Validate(); err != nil {
				fmt.Println(st.Error.Render("Configuration is not valid yet: " + err.Error()))
				waitForEnter()
				continue
			}
			confirmed, err := showSummary(st, &edited)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: &edited}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionProviders:
			_ = editProviders(&edited)
		case SectionTranscription:
			_ = editTranscription(&edited)
		case SectionOutput:
			_ = editOutput(&edited)
		case SectionAudio:
			_ = editAudio(&edited)
		case SectionLanguage:
			_ = editLanguage(&edited)
		case SectionLLM:
			_ = editLLM(&edited)
		case SectionNotifications:
			_ = editNotifications(&edited)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	llmLabel := "Refinement (disabled)"
	if cfg.LLM.Enabled {
		llmLabel = fmt.Sprintf("Refinement (%s / %s)", cfg.LLM.Provider, cfg.LLM.Model)
	}

	options := []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Providers (%d configured)", len(getConfiguredProviders(cfg))), SectionProviders),
		huh.NewOption(fmt.Sprintf("Transcription (%s / %s)", cfg.Transcription.Provider, cfg.Transcription.Model), SectionTranscription),
		huh.NewOption(fmt.Sprintf("Output (%s)", cfg.Output.Format), SectionOutput),
		huh.NewOption(fmt.Sprintf("Audio (split every %s)", cfg.Audio.SplitInterval), SectionAudio),
		huh.NewOption(fmt.Sprintf("Language (%s)", language.Label(cfg.General.Language)), SectionLanguage),
		huh.NewOption(llmLabel, SectionLLM),
		huh.NewOption(fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type), SectionNotifications),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editProviders(cfg *config.Config) error {
	var selected string
	if err := runForm(huh.NewSelect[string]().
		Title("Provider Settings").
		Description("Select a provider to set its API key").
		Options(providerOptions(cfg)...).
		Value(&selected)); err != nil {
		return err
	}

	p := provider.GetProvider(selected)
	current := cfg.Providers[selected]
	apiKey := current.APIKey
	baseURL := current.BaseURL

	if err := runForm(
		huh.NewInput().
			Title(getProviderDisplayName(selected)+" API key").
			Description("Leave empty to use "+provider.EnvVarForProvider(selected)).
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if s != "" && !p.ValidateAPIKey(s) {
					return fmt.Errorf("this does not look like a %s key", selected)
				}
				return nil
			}).
			Value(&apiKey),
		huh.NewInput().
			Title("Base URL").
			Description("Empty uses "+p.BaseURL()).
			Value(&baseURL),
	); err != nil {
		return err
	}

	cfg.Providers[selected] = config.ProviderConfig{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: strings.TrimSpace(baseURL),
	}
	return nil
}

func editTranscription(cfg *config.Config) error {
	providerName := cfg.Transcription.Provider
	if err := runForm(huh.NewSelect[string]().
		Title("Transcription provider").
		Options(providerOptions(cfg)...).
		Value(&providerName)); err != nil {
		return err
	}

	kind, err := format.Parse(cfg.Output.Format)
	if err != nil {
		kind = format.Text
	}
	options := transcriptionModelOptions(providerName, kind)
	if len(options) == 0 {
		return fmt.Errorf("%s has no model producing %s", providerName, kind)
	}

	model := cfg.Transcription.Model
	concurrency := strconv.Itoa(cfg.Transcription.Concurrency)
	timeout := cfg.Transcription.Timeout.String()

	if err := runForm(
		huh.NewSelect[string]().
			Title("Model").
			Description(fmt.Sprintf("Models able to produce %s output", kind)).
			Options(options...).
			Value(&model),
		huh.NewInput().
			Title("Concurrent uploads").
			Description("Segments transcribed at the same time").
			Validate(validatePositiveInt).
			Value(&concurrency),
		huh.NewInput().
			Title("Request timeout").
			Description("Per segment, 0s for none").
			Validate(validateDuration(0)).
			Value(&timeout),
	); err != nil {
		return err
	}

	cfg.Transcription.Provider = providerName
	cfg.Transcription.Model = model
	cfg.Transcription.Concurrency, _ = strconv.Atoi(strings.TrimSpace(concurrency))
	cfg.Transcription.Timeout, _ = time.ParseDuration(strings.TrimSpace(timeout))
	return nil
}

func editOutput(cfg *config.Config) error {
	kind := cfg.Output.Format
	dir := cfg.Output.TranscriptsDir
	writeManifest := cfg.Output.Manifest

	if err := runForm(
		huh.NewSelect[string]().
			Title("Output format").
			Options(formatOptions()...).
			Value(&kind),
		huh.NewInput().
			Title("Transcripts directory").
			Description("Relative paths live under the workspace root").
			Value(&dir),
		huh.NewConfirm().
			Title("Write a YAML manifest for each batch?").
			Value(&writeManifest),
	); err != nil {
		return err
	}

	cfg.Output.Format = kind
	cfg.Output.TranscriptsDir = strings.TrimSpace(dir)
	cfg.Output.Manifest = writeManifest
	return nil
}

func editAudio(cfg *config.Config) error {
	interval := cfg.Audio.SplitInterval.String()
	bitrate := cfg.Audio.Bitrate
	maxMiB := strconv.FormatInt(cfg.Audio.MaxFileSize/(1024*1024), 10)

	if err := runForm(
		huh.NewInput().
			Title("Split interval").
			Description("Length of each segment when a file must be split").
			Validate(validateDuration(time.Second)).
			Value(&interval),
		huh.NewInput().
			Title("Conversion bitrate").
			Description("Passed to ffmpeg -b:a, e.g. 96k").
			Value(&bitrate),
		huh.NewInput().
			Title("Upload limit (MiB)").
			Validate(validatePositiveInt).
			Value(&maxMiB),
	); err != nil {
		return err
	}

	cfg.Audio.SplitInterval, _ = time.ParseDuration(strings.TrimSpace(interval))
	cfg.Audio.Bitrate = strings.TrimSpace(bitrate)
	mib, _ := strconv.ParseInt(strings.TrimSpace(maxMiB), 10, 64)
	cfg.Audio.MaxFileSize = mib * 1024 * 1024
	return nil
}

func editLanguage(cfg *config.Config) error {
	current, _ := language.Normalize(cfg.General.Language)
	selected := current
	if selected == "" {
		selected = "auto"
	}

	if err := runForm(huh.NewSelect[string]().
		Title("Language").
		Description("Hint sent with every segment").
		Options(languageOptions(current)...).
		Filtering(true).
		Value(&selected)); err != nil {
		return err
	}

	cfg.General.Language = selected
	return nil
}

func editLLM(cfg *config.Config) error {
	enabled := cfg.LLM.Enabled
	if err := runForm(huh.NewConfirm().
		Title("Refine text transcripts into paragraphs?").
		Description("Only applies to text output").
		Value(&enabled)); err != nil {
		return err
	}
	cfg.LLM.Enabled = enabled
	if !enabled {
		return nil
	}

	providerName := cfg.LLM.Provider
	if err := runForm(huh.NewSelect[string]().
		Title("Refinement provider").
		Options(providerOptions(cfg)...).
		Value(&providerName)); err != nil {
		return err
	}

	model := cfg.LLM.Model
	if providerName != cfg.LLM.Provider {
		model = provider.GetProvider(providerName).DefaultModel(provider.LLM)
	}
	prompt := cfg.LLM.Prompt

	if err := runForm(
		huh.NewSelect[string]().
			Title("Model").
			Options(llmModelOptions(providerName)...).
			Value(&model),
		huh.NewText().
			Title("Custom instructions").
			Description("Empty uses the built-in paragraph instructions").
			Value(&prompt),
	); err != nil {
		return err
	}

	cfg.LLM.Provider = providerName
	cfg.LLM.Model = model
	cfg.LLM.Prompt = strings.TrimSpace(prompt)
	return nil
}

func editNotifications(cfg *config.Config) error {
	kind := cfg.Notifications.Type
	if err := runForm(huh.NewSelect[string]().
		Title("Notify when a batch finishes").
		Options(
			huh.NewOption("Desktop notification (notify-send)", "desktop"),
			huh.NewOption("Log line", "log"),
			huh.NewOption("None", "none"),
		).
		Value(&kind)); err != nil {
		return err
	}

	cfg.Notifications.Type = kind
	cfg.Notifications.Enabled = kind != "none"
	return nil
}

func showSummary(st Styles, cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(st.Header.Render("Configuration Summary"))
	fmt.Println()

	row := func(label, value string) {
		fmt.Printf("  %s %s\n", st.Label.Render(label), value)
	}
	row("Providers:", strings.Join(getConfiguredProviders(cfg), ", "))
	row("Transcription:", fmt.Sprintf("%s (%s), %d at a time", cfg.Transcription.Provider, cfg.Transcription.Model, cfg.Transcription.Concurrency))
	row("Output:", fmt.Sprintf("%s into %s", cfg.Output.Format, cfg.Layout().TranscriptsDir))
	row("Splitting:", fmt.Sprintf("above %d MiB, every %s at %s", cfg.Audio.MaxFileSize/(1024*1024), cfg.Audio.SplitInterval, cfg.Audio.Bitrate))
	row("Language:", language.Label(cfg.General.Language))
	if cfg.LLM.Enabled {
		row("Refinement:", fmt.Sprintf("%s (%s)", cfg.LLM.Provider, cfg.LLM.Model))
	} else {
		row("Refinement:", "disabled")
	}
	row("Notifications:", cfg.Notifications.Type)
	fmt.Println()

	var confirmed bool
	err := runForm(huh.NewConfirm().
		Title("Save this configuration?").
		Affirmative("Save").
		Negative("Cancel").
		Value(&confirmed))
	return confirmed, err
}

func runForm(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme()).Run()
}

func waitForEnter() {
	_ = runForm(huh.NewNote().Title("Press enter to go back"))
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(colorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(colorAccent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(colorLink)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(colorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(colorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(colorSubtle)

	return t
}
