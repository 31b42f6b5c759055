package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiway/tonal/pkg/player"
	"github.com/hiway/tonal/pkg/session"
)

var dryRun bool

func init() {
	playCmd.Flags().BoolVar(&dryRun, "dry-run", false, "synthesize in real time without opening an audio device")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Plays the song on the default audio device",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var p player.Player
		if dryRun {
			p = player.NewStubPlayer(int(cfg.SampleRate), true, log)
		} else {
			p, err = player.NewOtoPlayer(int(cfg.SampleRate), log)
			if err != nil {
				return fmt.Errorf("failed to create audio player: %w", err)
			}
		}

		s := session.New(cfg, p, log)
		defer s.Stop()
		return s.PlaySong(cmd.Context())
	},
}
