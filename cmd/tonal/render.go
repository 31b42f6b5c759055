package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiway/tonal/pkg/session"
)

var outPath string

func init() {
	renderCmd.Flags().StringVarP(&outPath, "output", "o", "tonal.wav", "WAV file to write")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Writes the song to a WAV file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()

		s := session.New(cfg, nil, log)
		defer s.Stop()
		if err := s.Render(f); err != nil {
			return err
		}
		log.Info().Str("path", outPath).Msg("Wrote WAV file")
		return nil
	},
}
