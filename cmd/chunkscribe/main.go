package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/chunkscribe/internal/config"
	"github.com/leonardotrapani/chunkscribe/internal/control"
	"github.com/leonardotrapani/chunkscribe/internal/deps"
	"github.com/leonardotrapani/chunkscribe/internal/format"
	"github.com/leonardotrapani/chunkscribe/internal/provider"
	"github.com/leonardotrapani/chunkscribe/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "chunkscribe",
		Short:        "Transcribe long recordings with Whisper, splitting what the API cannot take",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chunkscribe/config.toml)")

	root.AddCommand(
		transcribeCmd(&configPath),
		watchCmd(&configPath),
		statusCmd(),
		stopCmd(),
		depsCmd(&configPath),
		modelsCmd(),
		configureCmd(&configPath),
		initConfigCmd(&configPath),
	)
	return root
}

func transcribeCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "transcribe <file-or-dir>...",
		Short: "Transcribe audio files and directories into one transcript per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := o.apply(cmd, cfg); err != nil {
				return err
			}
			return runTranscribe(cmd.Context(), cfg, args, cmd.OutOrStdout())
		},
	}
	o.register(cmd)
	return cmd
}

func watchCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Transcribe audio files as they are dropped into a directory",
		Long: `Watch a directory and transcribe new audio files in batches.
Edits to the config file are picked up before the next batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, *configPath, args[0], &o)
		},
	}
	o.register(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the running watch session is doing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendControl(cmd, control.CmdStatus)
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watch session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendControl(cmd, control.CmdStop)
		},
	}
}

func sendControl(cmd *cobra.Command, c byte) error {
	paths, err := control.DefaultPaths()
	if err != nil {
		return err
	}
	resp, err := control.SendCommand(paths, c)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp)
	return nil
}

func depsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that ffmpeg and ffprobe are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			statuses := []deps.Status{
				deps.CheckFFmpeg(cfg.Codec.FFmpeg),
				deps.CheckFFprobe(cfg.Codec.FFprobe),
			}

			st := tui.NewStyles(tui.NewRenderer(cmd.OutOrStdout()))
			for _, s := range statuses {
				if s.Installed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", st.Success.Render("✓"), st.Label.Render(s.Name), st.Muted.Render(s.Version))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", st.Error.Render("✗"), st.Label.Render(s.Name), st.Muted.Render("not found"))
				}
			}
			return deps.Require(statuses...)
		},
	}
}

func modelsCmd() *cobra.Command {
	var providerFilter string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List transcription and refinement models with their output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printModels(cmd, providerFilter)
		},
	}
	cmd.Flags().StringVar(&providerFilter, "provider", "", "filter by provider name")
	return cmd
}

func printModels(cmd *cobra.Command, providerFilter string) error {
	providerNames := provider.ListProviders()
	if providerFilter != "" {
		if provider.GetProvider(providerFilter) == nil {
			return fmt.Errorf("unknown provider: %s", providerFilter)
		}
		providerNames = []string{providerFilter}
	}

	out := cmd.OutOrStdout()
	for _, name := range providerNames {
		p := provider.GetProvider(name)
		fmt.Fprintf(out, "\n%s:\n", name)
		for _, m := range p.Models() {
			fmt.Fprintln(out, modelLine(m, p.DefaultModel(m.Type) == m.ID))
		}
	}
	fmt.Fprintln(out)
	return nil
}

func modelLine(m provider.Model, isDefault bool) string {
	line := "  " + m.ID
	if m.Description != "" {
		line += " - " + m.Description
	}

	var parts []string
	if m.Type == provider.LLM {
		parts = append(parts, "llm")
	} else {
		kinds := make([]string, len(m.Formats))
		for i, k := range m.Formats {
			kinds[i] = string(k)
		}
		parts = append(parts, strings.Join(kinds, ","))
	}
	if isDefault {
		parts = append(parts, "default")
	}
	return fmt.Sprintf("%s [%s]", line, strings.Join(parts, ", "))
}

func configureCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if errors.Is(err, config.ErrConfigNotFound) {
				cfg = config.DefaultConfig()
			} else if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return fmt.Errorf("configuration editor error: %w", err)
			}
			if result.Cancelled {
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration cancelled.")
				return nil
			}

			if err := config.Save(result.Config, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}
}

func initConfigCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a commented config file with the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(*configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// overrides are the per-run flags layered over the config file.
type overrides struct {
	format      string
	language    string
	interval    string
	concurrency int
	refine      bool
	logLevel    string
}

func (o *overrides) register(cmd *cobra.Command) {
	kinds := make([]string, 0, len(format.Kinds()))
	for _, k := range format.Kinds() {
		kinds = append(kinds, string(k))
	}

	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(kinds, ", "))
	f.StringVarP(&o.language, "language", "l", "", `language hint, "auto" to detect`)
	f.StringVar(&o.interval, "interval", "", "split interval, e.g. 30m")
	f.IntVarP(&o.concurrency, "concurrency", "j", 0, "segments transcribed at once")
	f.BoolVar(&o.refine, "refine", false, "reflow text output into paragraphs with the LLM")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
}

// apply copies every flag the user set onto cfg and validates the result.
func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
	if f.Changed("language") {
		cfg.General.Language = o.language
	}
	if f.Changed("interval") {
		d, err := parseInterval(o.interval)
		if err != nil {
			return err
		}
		cfg.Audio.SplitInterval = d
	}
	if f.Changed("concurrency") {
		cfg.Transcription.Concurrency = o.concurrency
	}
	if f.Changed("refine") {
		cfg.LLM.Enabled = o.refine
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	return cfg.Validate()
}

// loadConfig reads the config file. Without an explicit --config a missing
// file falls back to the defaults, so the tool works with just an API key in
// the environment.
func loadConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		return config.LoadFile(explicit)
	}
	cfg, err := config.Load()
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.DefaultConfig(), nil
	}
	return cfg, err
}

func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return config.GetConfigPath()
}
