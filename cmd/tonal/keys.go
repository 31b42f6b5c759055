package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/player"
	"github.com/hiway/tonal/pkg/session"
)

var noteLength = length.Eighth

func init() {
	keysCmd.Flags().Var(&lengthFlag{&noteLength}, "length", "length of each note (whole, half, quarter, eighth, sixteenth)")
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Plays notes from the keyboard",
	Long: `Plays notes from the keyboard.

  a w s e d f t g y h u j k   C C# D D# E F F# G G# A A# B C
  Shift + key                  major triad
  z / x                        octave down / up
  q                            quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := player.NewOtoPlayer(int(cfg.SampleRate), log)
		if err != nil {
			return fmt.Errorf("failed to create audio player: %w", err)
		}

		s := session.New(cfg, p, log)
		defer s.Stop()
		return s.Keys(cmd.Context(), os.Stdin, noteLength)
	},
}

// lengthFlag adapts length.Length to pflag.Value.
type lengthFlag struct {
	l *length.Length
}

func (f *lengthFlag) String() string {
	if f.l == nil {
		return ""
	}
	return f.l.String()
}

func (f *lengthFlag) Set(s string) error {
	return f.l.UnmarshalText([]byte(s))
}

func (f *lengthFlag) Type() string {
	return "length"
}
