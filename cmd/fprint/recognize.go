package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fprint/internal/capture"
	"fprint/internal/dsp"
	"fprint/internal/fingerprint"
	"fprint/internal/matcher"
)

var (
	recognizeDuration   int
	recognizeDevice     int
	recognizeProgressive bool
	recognizeConfidence  float64
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Record live audio and identify it against the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		mic, err := capture.NewMicrophoneSource(recognizeDevice, cfg.BufferSize)
		if err != nil {
			return err
		}
		defer mic.Close()

		minConfidence := cfg.MinMatchConfidence
		if recognizeConfidence > 0 {
			minConfidence = recognizeConfidence
		}

		total := time.Duration(recognizeDuration) * time.Second
		if !recognizeProgressive {
			matches, err := recognizeOnce(ctx, mic, store, total, minConfidence)
			if err != nil {
				return err
			}
			printMatches(matches)
			return nil
		}

		return recognizeProgressively(ctx, mic, store, total, minConfidence)
	},
}

// recognizeProgressively captures in 3-second increments, running
// find_matches against each fresh 3-second window on its own (earlier
// windows are not carried over), and stops as soon as a match clears
// min_match_confidence instead of always waiting for the full
// requested duration.
func recognizeProgressively(ctx context.Context, mic capture.Source, store matcher.Store, total time.Duration, minConfidence float64) error {
	const step = 3 * time.Second
	for elapsed := step; elapsed <= total; elapsed += step {
		matches, err := recognizeOnce(ctx, mic, store, step, minConfidence)
		if err != nil {
			return err
		}
		if len(matches) > 0 && matches[0].Confidence >= minConfidence {
			fmt.Printf("matched after %s:\n", elapsed)
			printMatches(matches)
			return nil
		}
		fmt.Printf("listening... %s elapsed, no confident match yet\n", elapsed)
	}
	fmt.Println("No matches found")
	return nil
}

func recognizeOnce(ctx context.Context, mic capture.Source, store matcher.Store, duration time.Duration, minConfidence float64) ([]matcher.Candidate, error) {
	samples, sampleRate, err := mic.Capture(duration)
	if err != nil {
		return nil, fmt.Errorf("capturing audio: %w", err)
	}

	if sampleRate != cfg.TargetSampleRate {
		return nil, fmt.Errorf("recognize: captured sample rate %d does not match target %d", sampleRate, cfg.TargetSampleRate)
	}

	spec := dsp.ComputeSpectrogram(samples, cfg.STFTWindowSize, cfg.STFTHopSize, cfg.SilenceThreshold)
	peaks := dsp.ExtractPeaks(spec, cfg.NeighborhoodSize, cfg.PeakThresholdDB)
	tokens := fingerprint.BuildTokens(peaks, fingerprint.Params{
		FanValue:     cfg.FanValue,
		MinTimeDelta: cfg.MinTimeDelta,
		MaxTimeDelta: cfg.MaxTimeDelta,
	})

	return matcher.FindMatches(ctx, store, tokens, matcher.Params{
		MinAbsoluteMatches: cfg.MinAbsoluteMatches,
		MinMatchConfidence: minConfidence,
	})
}

func printMatches(matches []matcher.Candidate) {
	if len(matches) == 0 {
		fmt.Println("No matches found")
		return
	}
	top := matches
	if len(top) > 5 {
		top = top[:5]
	}
	for i, m := range top {
		fmt.Printf("%d. %s - %s (confidence %.2f, %d aligned hashes)\n",
			i+1, m.Track.Artist, m.Track.Title, m.Confidence, m.AlignedCount)
	}
}

func init() {
	recognizeCmd.Flags().IntVarP(&recognizeDuration, "duration", "d", 10, "seconds of audio to capture")
	recognizeCmd.Flags().IntVar(&recognizeDevice, "device", -1, "capture device index (-1 for system default)")
	recognizeCmd.Flags().BoolVar(&recognizeProgressive, "progressive", false, "capture in 3-second windows and stop at the first confident match rather than waiting for the full duration")
	recognizeCmd.Flags().Float64Var(&recognizeConfidence, "confidence", 0, "override min_match_confidence for this run")
}
