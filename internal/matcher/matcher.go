// Package matcher scores candidate tracks for a query token sequence
// against the Catalog Store's postings, the way core.shazoom.go's
// unfinished FindMatchesUsingFingerPrints was headed before its
// target-zone bookkeeping was abandoned: collect per-track time
// diffs, find the dominant one, turn agreement into a confidence.
package matcher

import (
	"context"
	"sort"

	"fprint/internal/catalog"
	"fprint/internal/fingerprint"
)

// Candidate is one ranked match.
type Candidate struct {
	Track        catalog.TrackInfo
	Confidence   float64
	AlignedCount int
	TimeOffset   int // dominant diff: where in the track the query aligns
}

// Params bundles the matcher's tunables.
type Params struct {
	MinAbsoluteMatches int
	MinMatchConfidence float64
}

const topK = 10

// Store is the subset of catalog.Store the matcher depends on, kept
// narrow so tests can supply a fake.
type Store interface {
	LookupPostings(ctx context.Context, hashes []uint64) (map[uint64][]catalog.Posting, error)
	GetTrackByID(ctx context.Context, id int64) (catalog.TrackInfo, error)
}

// FindMatches implements the find_matches algorithm: hash lookup,
// per-track diff histogram, dominant-offset scoring, ranked top-K.
func FindMatches(ctx context.Context, store Store, tokens []fingerprint.Token, p Params) ([]Candidate, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	hashToQueryTimes := make(map[uint64][]int, len(tokens))
	hashes := make([]uint64, 0, len(tokens))
	for _, tok := range tokens {
		if _, seen := hashToQueryTimes[tok.Hash]; !seen {
			hashes = append(hashes, tok.Hash)
		}
		hashToQueryTimes[tok.Hash] = append(hashToQueryTimes[tok.Hash], tok.AnchorFrame)
	}

	postingsByHash, err := store.LookupPostings(ctx, hashes)
	if err != nil {
		return nil, err
	}

	perTrackDiffs := make(map[int64][]int)
	for hash, queryTimes := range hashToQueryTimes {
		for _, posting := range postingsByHash[hash] {
			for _, queryTime := range queryTimes {
				diff := posting.TimeOffset - queryTime
				perTrackDiffs[posting.TrackID] = append(perTrackDiffs[posting.TrackID], diff)
			}
		}
	}

	totalQueryTokens := len(tokens)
	var candidates []Candidate

	for trackID, diffs := range perTrackDiffs {
		dominantDiff, alignedCount := dominantDiff(diffs)
		if alignedCount < p.MinAbsoluteMatches {
			continue
		}

		alignmentScore := float64(alignedCount) / float64(len(diffs))
		coverageScore := float64(alignedCount) / float64(totalQueryTokens)
		confidence := 0.6*alignmentScore + 0.4*coverageScore

		switch {
		case alignedCount > 100:
			confidence *= 1.2
		case alignedCount > 50:
			confidence *= 1.1
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence < 0 {
			confidence = 0
		}

		if confidence < p.MinMatchConfidence {
			continue
		}

		track, err := store.GetTrackByID(ctx, trackID)
		if err != nil {
			continue // track deleted between lookup and resolve; drop silently
		}

		candidates = append(candidates, Candidate{
			Track:        track,
			Confidence:   confidence,
			AlignedCount: alignedCount,
			TimeOffset:   dominantDiff,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].AlignedCount != candidates[j].AlignedCount {
			return candidates[i].AlignedCount > candidates[j].AlignedCount
		}
		return candidates[i].Track.ID < candidates[j].Track.ID
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// dominantDiff returns the most frequent value in diffs and its
// count, ties broken by the smallest diff.
func dominantDiff(diffs []int) (diff int, count int) {
	freq := make(map[int]int, len(diffs))
	for _, d := range diffs {
		freq[d]++
	}

	best, bestCount := 0, -1
	for d, c := range freq {
		if c > bestCount || (c == bestCount && d < best) {
			best, bestCount = d, c
		}
	}
	return best, bestCount
}
