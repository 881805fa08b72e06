package matcher

import (
	"context"
	"testing"

	"fprint/internal/catalog"
	"fprint/internal/fingerprint"
)

type fakeStore struct {
	postings map[uint64][]catalog.Posting
	tracks   map[int64]catalog.TrackInfo
}

func (f *fakeStore) LookupPostings(ctx context.Context, hashes []uint64) (map[uint64][]catalog.Posting, error) {
	out := make(map[uint64][]catalog.Posting)
	for _, h := range hashes {
		if p, ok := f.postings[h]; ok {
			out[h] = p
		}
	}
	return out, nil
}

func (f *fakeStore) GetTrackByID(ctx context.Context, id int64) (catalog.TrackInfo, error) {
	t, ok := f.tracks[id]
	if !ok {
		return catalog.TrackInfo{}, catalog.ErrNotFound
	}
	return t, nil
}

func defaultParams() Params {
	return Params{MinAbsoluteMatches: 5, MinMatchConfidence: 0.1}
}

func TestFindMatches_EmptyQueryReturnsEmpty(t *testing.T) {
	store := &fakeStore{}
	matches, err := FindMatches(context.Background(), store, nil, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

// TestFindMatches_SelfMatch mirrors the self-match scenario: a track
// whose postings are exactly the query's tokens offset by a constant
// should come back as the top (and only) match with high confidence.
func TestFindMatches_SelfMatch(t *testing.T) {
	const trackID = int64(1)
	const offset = 200 // query started 200 frames into the track

	var tokens []fingerprint.Token
	postings := map[uint64][]catalog.Posting{}
	for i := 0; i < 60; i++ {
		hash := uint64(1000 + i)
		tokens = append(tokens, fingerprint.Token{Hash: hash, AnchorFrame: i})
		postings[hash] = []catalog.Posting{{Hash: hash, TrackID: trackID, TimeOffset: i + offset}}
	}

	store := &fakeStore{
		postings: postings,
		tracks:   map[int64]catalog.TrackInfo{trackID: {ID: trackID, Title: "Self", Artist: "Match"}},
	}

	matches, err := FindMatches(context.Background(), store, tokens, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(matches))
	}
	if matches[0].Track.ID != trackID {
		t.Fatalf("expected track %d, got %d", trackID, matches[0].Track.ID)
	}
	if matches[0].TimeOffset != offset {
		t.Errorf("expected dominant offset %d, got %d", offset, matches[0].TimeOffset)
	}
	if matches[0].Confidence < 0.5 {
		t.Errorf("expected confidence >= 0.5 for a clean self-match, got %v", matches[0].Confidence)
	}
}

func TestFindMatches_BelowMinAbsoluteMatchesDropped(t *testing.T) {
	const trackID = int64(7)
	tokens := []fingerprint.Token{
		{Hash: 1, AnchorFrame: 0},
		{Hash: 2, AnchorFrame: 1},
		{Hash: 3, AnchorFrame: 2},
	}
	postings := map[uint64][]catalog.Posting{
		1: {{Hash: 1, TrackID: trackID, TimeOffset: 10}},
		2: {{Hash: 2, TrackID: trackID, TimeOffset: 11}},
		3: {{Hash: 3, TrackID: trackID, TimeOffset: 99}}, // doesn't agree, irrelevant either way
	}
	store := &fakeStore{postings: postings, tracks: map[int64]catalog.TrackInfo{trackID: {ID: trackID}}}

	matches, err := FindMatches(context.Background(), store, tokens, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected matches below min_absolute_matches to be dropped, got %d", len(matches))
	}
}

func TestFindMatches_RankedByConfidenceThenAlignedCount(t *testing.T) {
	tokens := make([]fingerprint.Token, 0, 80)
	postings := map[uint64][]catalog.Posting{}

	// Track A: 60 tokens align at a constant offset, strong confidence.
	for i := 0; i < 60; i++ {
		hash := uint64(2000 + i)
		tokens = append(tokens, fingerprint.Token{Hash: hash, AnchorFrame: i})
		postings[hash] = append(postings[hash], catalog.Posting{Hash: hash, TrackID: 1, TimeOffset: i + 50})
	}
	// Track B: only the minimum 5 align, weaker confidence.
	for i := 0; i < 5; i++ {
		hash := uint64(3000 + i)
		tokens = append(tokens, fingerprint.Token{Hash: hash, AnchorFrame: i})
		postings[hash] = append(postings[hash], catalog.Posting{Hash: hash, TrackID: 2, TimeOffset: i + 900})
	}

	store := &fakeStore{
		postings: postings,
		tracks: map[int64]catalog.TrackInfo{
			1: {ID: 1, Title: "Strong"},
			2: {ID: 2, Title: "Weak"},
		},
	}

	matches, err := FindMatches(context.Background(), store, tokens, defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Track.ID != 1 {
		t.Fatalf("expected strongest match first, got track %d", matches[0].Track.ID)
	}
	if matches[0].Confidence <= matches[1].Confidence {
		t.Errorf("expected strictly descending confidence, got %v then %v", matches[0].Confidence, matches[1].Confidence)
	}
}

func TestFindMatches_TopKCapped(t *testing.T) {
	tokens := make([]fingerprint.Token, 0, 6)
	postings := map[uint64][]catalog.Posting{}
	tracks := map[int64]catalog.TrackInfo{}

	for i := 0; i < 6; i++ {
		hash := uint64(5000 + i)
		tokens = append(tokens, fingerprint.Token{Hash: hash, AnchorFrame: i})
	}

	// 12 candidate tracks, each aligning on all 6 query tokens.
	for trackID := int64(1); trackID <= 12; trackID++ {
		for i, tok := range tokens {
			postings[tok.Hash] = append(postings[tok.Hash], catalog.Posting{
				Hash: tok.Hash, TrackID: trackID, TimeOffset: i,
			})
		}
		tracks[trackID] = catalog.TrackInfo{ID: trackID}
	}

	store := &fakeStore{postings: postings, tracks: tracks}
	matches, err := FindMatches(context.Background(), store, tokens,
		Params{MinAbsoluteMatches: 1, MinMatchConfidence: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != topK {
		t.Fatalf("expected result capped at top %d, got %d", topK, len(matches))
	}
}
