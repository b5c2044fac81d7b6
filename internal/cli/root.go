// Package cli provides the Cobra command structure for mdhl.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oligo/mdhl/internal/config"
	"github.com/oligo/mdhl/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app is shared by the subcommands. cfg is loaded before any of them runs.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func (a *app) load() error {
	cfg, err := config.Load(viper.New(), a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.SetLevel(cfg.LogLevel)
	if a.debug {
		logging.SetLevel("debug")
	}
	logging.Install(logging.Default())
	return nil
}

// NewRootCommand creates the root mdhl command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "mdhl",
		Short: "Syntax highlighting for code in markdown documents",
		Long: `mdhl highlights fenced code blocks and language tagged inline code
such as ` + "`{js} const a = 1;`" + ` in markdown documents.

It runs the same incremental engine an editor would: the document is scanned
for code regions, highlights are fetched concurrently and kept in a
decoration store that follows edits of the document.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"config file (default: .mdhl.yaml or ~/.config/mdhl/config.yaml)")

	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newScanCommand(a))
	rootCmd.AddCommand(newThemesCommand(a))
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
