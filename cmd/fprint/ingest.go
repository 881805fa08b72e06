package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fprint/internal/fingerprint"
	"fprint/internal/ingest"
)

var reprocess bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <library_dir>",
	Short: "Fingerprint a directory of audio files into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		coordinator := ingest.New(store, ingest.Params{
			TargetSampleRate: cfg.TargetSampleRate,
			SilenceThreshold: cfg.SilenceThreshold,
			STFTWindowSize:   cfg.STFTWindowSize,
			STFTHopSize:      cfg.STFTHopSize,
			NeighborhoodSize: cfg.NeighborhoodSize,
			PeakThresholdDB:  cfg.PeakThresholdDB,
			Fingerprint: fingerprint.Params{
				FanValue:     cfg.FanValue,
				MinTimeDelta: cfg.MinTimeDelta,
				MaxTimeDelta: cfg.MaxTimeDelta,
			},
			Reprocess: reprocess,
		}, log)

		report, err := coordinator.IngestDirectory(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ingested: %d succeeded, %d skipped, %d failed\n",
			report.Succeeded, report.Skipped, report.Failed)
		for path, ferr := range report.Failures {
			fmt.Printf("  failed: %s: %v\n", path, ferr)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&reprocess, "reprocess", false, "delete and rebuild tracks that are already cataloged")
}
