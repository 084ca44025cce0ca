package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"treadlink/internal/logging"
	"treadlink/internal/record"
)

var (
	replayInput        string
	replaySpeed        float64
	replayPrintSamples bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded session file",
	Long:  "replay feeds session samples from a JSONL file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, cleanup, err := newSampleWriter(replayPrintSamples, "", logging.New())
		if err != nil {
			return err
		}
		defer cleanup()
		return record.ReplayFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to session sample file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintSamples, "print-samples", false, "Print samples to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
