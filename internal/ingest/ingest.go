// Package ingest walks a music library, fingerprints every audio
// file it finds, and writes the result into the Catalog Store. It is
// the batch counterpart to the live recognize path: decode, downmix,
// resample, extract peaks, build tokens, upsert.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"fprint/internal/audio"
	"fprint/internal/catalog"
	"fprint/internal/dsp"
	"fprint/internal/fingerprint"
	"fprint/internal/logging"
)

var audioExtensions = map[string]bool{
	".wav": true,
}

// Store is the subset of catalog.Store the coordinator depends on.
type Store interface {
	AddTrack(ctx context.Context, t catalog.TrackInfo) (int64, error)
	DeleteTrack(ctx context.Context, id int64) error
	TrackExistsAtPath(ctx context.Context, audioFilePath string) (bool, error)
	GetTrack(ctx context.Context, audioFilePath string) (catalog.TrackInfo, error)
	UpsertPostings(ctx context.Context, trackID int64, postings []catalog.Posting) error
}

// Params bundles the signal-processing and fingerprint tunables the
// coordinator threads through every file.
type Params struct {
	TargetSampleRate int
	SilenceThreshold float64
	STFTWindowSize   int
	STFTHopSize      int
	NeighborhoodSize int
	PeakThresholdDB  float64
	Fingerprint      fingerprint.Params
	Reprocess        bool
}

// Report tallies the outcome of an ingestion run. A per-file failure
// never aborts the walk; it is recorded and ingestion moves on to the
// next file.
type Report struct {
	Succeeded int
	Skipped   int
	Failed    int
	Failures  map[string]error
}

// Coordinator drives the ingestion pipeline over a directory tree.
type Coordinator struct {
	store    Store
	params   Params
	log      *slog.Logger
	metadata MetadataSource
}

// New builds a Coordinator using the default dhowden/tag-backed
// metadata source. Use NewWithMetadataSource to substitute a
// different tag reader (or a no-op one for formats with no embedded
// tags at all).
func New(store Store, params Params, log *slog.Logger) *Coordinator {
	return NewWithMetadataSource(store, params, log, tagMetadataSource{})
}

func NewWithMetadataSource(store Store, params Params, log *slog.Logger, metadata MetadataSource) *Coordinator {
	return &Coordinator{store: store, params: params, log: log, metadata: metadata}
}

// IngestDirectory walks libraryDir recursively, fingerprinting every
// recognized audio file and upserting it into the catalog. Files
// already present are skipped unless Reprocess is set, in which case
// the old track (and its postings, via cascade delete) is removed and
// rebuilt from scratch.
func (c *Coordinator) IngestDirectory(ctx context.Context, libraryDir string) (Report, error) {
	report := Report{Failures: make(map[string]error)}

	paths, err := collectAudioFiles(libraryDir)
	if err != nil {
		return report, fmt.Errorf("ingest: walking %q: %w", libraryDir, err)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
	)

	for _, path := range paths {
		if err := c.ingestFile(ctx, path); err != nil {
			if errors.Is(err, errSkippedExisting) {
				report.Skipped++
			} else {
				report.Failed++
				report.Failures[path] = err
				logging.LogError(ctx, c.log, "failed to ingest file", err, slog.String("path", path))
			}
		} else {
			report.Succeeded++
		}
		bar.Add(1)
	}

	return report, nil
}

var errSkippedExisting = errors.New("ingest: track already cataloged")

func (c *Coordinator) ingestFile(ctx context.Context, path string) error {
	exists, err := c.store.TrackExistsAtPath(ctx, path)
	if err != nil {
		return fmt.Errorf("checking existing track: %w", err)
	}
	if exists {
		if !c.params.Reprocess {
			return errSkippedExisting
		}
		existing, err := c.store.GetTrack(ctx, path)
		if err != nil {
			return fmt.Errorf("loading existing track for reprocess: %w", err)
		}
		if err := c.store.DeleteTrack(ctx, existing.ID); err != nil {
			return fmt.Errorf("deleting existing track before reprocess: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	decoded, err := audio.DecodeWAV(f)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	mono := audio.Downmix(decoded.Samples, decoded.Channels)
	resampled := audio.Resample(mono, decoded.SampleRate, c.params.TargetSampleRate)

	meta, err := c.metadata.ReadMetadata(path)
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}

	durationSeconds := 0
	if c.params.TargetSampleRate > 0 {
		durationSeconds = len(resampled) / c.params.TargetSampleRate
	}

	trackID, err := c.store.AddTrack(ctx, catalog.TrackInfo{
		Title:           meta.Title,
		Artist:          meta.Artist,
		Album:           meta.Album,
		AudioFilePath:   path,
		TrackNumber:     meta.TrackNumber,
		TotalTracks:     meta.TotalTracks,
		DiscNumber:      meta.DiscNumber,
		TotalDiscs:      meta.TotalDiscs,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		return fmt.Errorf("registering track: %w", err)
	}

	spec := dsp.ComputeSpectrogram(resampled, c.params.STFTWindowSize, c.params.STFTHopSize, c.params.SilenceThreshold)
	peaks := dsp.ExtractPeaks(spec, c.params.NeighborhoodSize, c.params.PeakThresholdDB)
	tokens := fingerprint.BuildTokens(peaks, c.params.Fingerprint)

	postings := make([]catalog.Posting, len(tokens))
	for i, tok := range tokens {
		postings[i] = catalog.Posting{Hash: tok.Hash, TrackID: trackID, TimeOffset: tok.AnchorFrame}
	}

	if err := c.store.UpsertPostings(ctx, trackID, postings); err != nil {
		// Roll back the track row so a failed ingest doesn't leave a
		// zero-fingerprint, unmatched ghost entry in the catalog.
		_ = c.store.DeleteTrack(ctx, trackID)
		logging.LogError(ctx, c.log, "failed to store fingerprints", err,
			slog.String("path", path), slog.Int64("track_id", trackID))
		return fmt.Errorf("storing fingerprints: %w", err)
	}

	return nil
}

func collectAudioFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
