package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hiway/tonal/pkg/pitch"
)

func init() {
	rootCmd.AddCommand(pitchCmd)
}

var pitchCmd = &cobra.Command{
	Use:   "pitch <name|frequency>...",
	Short: "Converts between pitch names and frequencies",
	Long: `Converts between pitch names and frequencies.

Each argument is either scientific pitch notation ("C#4") or a frequency in
hertz ("261.63"). Frequencies are rounded to the nearest semitone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			p, err := lookupPitch(arg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%.2f Hz\n", p, int(p), p.Freq())
		}
		return nil
	},
}

func lookupPitch(arg string) (pitch.Pitch, error) {
	if freq, err := strconv.ParseFloat(arg, 64); err == nil {
		return pitch.FromFreq(freq)
	}
	return pitch.ParsePitch(arg)
}
