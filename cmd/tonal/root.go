package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hiway/tonal/pkg/config"
)

var (
	configPath string
	debug      bool
	trace      bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tonal",
	Short: "Music theory and chord synthesis",
	Long: `tonal synthesizes chords as 16-bit mono PCM.

A song is a list of chords in a TOML file. Without --config the file is looked
up in /usr/local/etc/tonal/tonal.toml, the XDG config directory and ./tonal.toml,
later files overriding earlier ones.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		if trace {
			level = zerolog.TraceLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "song file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "enable trace logging")
}

// loadConfig reads the song from --config, or merges the standard locations.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath, log)
	}
	return config.Load(config.SearchPaths(), log)
}
