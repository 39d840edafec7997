package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/songbook/pkg/cli"
	"github.com/haivivi/songbook/pkg/score"
	"github.com/haivivi/songbook/pkg/songfile"
	"github.com/haivivi/songbook/pkg/storage"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	formatOutput string
	outputFile   string

	globalConfig *cli.Config
	logger       = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "songbook",
	Short: "Musical score conversion and playback tools",
	Long: `songbook - convert, inspect and play musical scores.

Score files are read and written through the configured store: a local
directory (default: the working directory) or an S3 bucket. The format is
picked from the extension: .json, .yaml/.yml, .musicxml/.xml and .mxl.

Configuration is read from ~/.songbook/config.yaml, $SONGBOOK_CONFIG or
--config.

Examples:
  songbook convert anthem.musicxml anthem.json
  songbook compile anthem.json
  songbook midi anthem.json anthem.mid
  songbook query anthem.json '.songs[].title'
  songbook library add anthem.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		globalConfig = nil
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.songbook/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "", "output format: yaml, json or raw")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to a local file")
}

// getConfig loads the configuration once per command.
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

func openStore() (storage.FileStore, *cli.Config, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	fs, err := cfg.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	return fs, cfg, nil
}

func loadSongs(cmd *cobra.Command, name string, validate bool) ([]*score.Song, error) {
	fs, cfg, err := openStore()
	if err != nil {
		return nil, err
	}
	songs, err := songfile.Load(cmd.Context(), fs, name, &songfile.LoadOptions{
		RepairJSON: cfg.RepairJSON,
		Validate:   validate,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("songbook: loaded", "file", name, "songs", len(songs))
	return songs, nil
}

// selectSongs returns songs[index], or all songs for a negative index.
func selectSongs(songs []*score.Song, index int) ([]*score.Song, error) {
	if index < 0 {
		return songs, nil
	}
	if index >= len(songs) {
		return nil, fmt.Errorf("song %d out of range (file has %d)", index, len(songs))
	}
	return songs[index : index+1], nil
}

// outputFormat resolves --format against the config default.
func outputFormat() cli.OutputFormat {
	if formatOutput != "" {
		return cli.OutputFormat(formatOutput)
	}
	if cfg, err := getConfig(); err == nil && cfg.Output.Format != "" {
		return cfg.Output.Format
	}
	return cli.FormatYAML
}

func printResult(cmd *cobra.Command, result any) error {
	return cli.Output(result, cli.OutputOptions{
		Format: outputFormat(),
		File:   outputFile,
		Writer: cmd.OutOrStdout(),
	})
}
