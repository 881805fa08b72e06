package fingerprint

import (
	"testing"

	"fprint/internal/dsp"
)

func TestBuildTokens_S4Scenario(t *testing.T) {
	peaks := []dsp.Peak{
		{Frame: 0, Bin: 100},
		{Frame: 5, Bin: 200},
		{Frame: 10, Bin: 300},
		{Frame: 250, Bin: 400},
	}

	tokens := BuildTokens(peaks, Params{FanValue: 15, MinTimeDelta: 0, MaxTimeDelta: 200})
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %+v", len(tokens), tokens)
	}

	wantAnchors := map[int]int{0: 2, 5: 1}
	gotAnchors := map[int]int{}
	for _, tok := range tokens {
		gotAnchors[tok.AnchorFrame]++
	}
	for frame, count := range wantAnchors {
		if gotAnchors[frame] != count {
			t.Errorf("anchor frame %d: expected %d tokens, got %d", frame, count, gotAnchors[frame])
		}
	}
}

func TestBuildTokens_EmptyPeaks(t *testing.T) {
	if tokens := BuildTokens(nil, Params{FanValue: 15, MaxTimeDelta: 200}); tokens != nil {
		t.Errorf("expected nil tokens for empty peak list, got %v", tokens)
	}
}

func TestBuildTokens_RespectsFanValue(t *testing.T) {
	peaks := make([]dsp.Peak, 0, 20)
	for i := 0; i < 20; i++ {
		peaks = append(peaks, dsp.Peak{Frame: i, Bin: 50})
	}

	tokens := BuildTokens(peaks, Params{FanValue: 3, MinTimeDelta: 0, MaxTimeDelta: 1000})

	counts := map[int]int{}
	for _, tok := range tokens {
		counts[tok.AnchorFrame]++
	}
	for frame, count := range counts {
		if frame < 17 && count != 3 {
			t.Errorf("anchor %d: expected 3 tokens (fan_value), got %d", frame, count)
		}
	}
}

func TestHashPacking_RoundTrip(t *testing.T) {
	for _, anchorBin := range []int{0, 1, 511, 1023} {
		for _, targetBin := range []int{0, 1, 511, 1023} {
			for _, delta := range []int{0, 1, 2047, 4095} {
				hash := PackHash(anchorBin, targetBin, delta)
				gotAnchor, gotTarget, gotDelta := UnpackHash(hash)
				if gotAnchor != anchorBin || gotTarget != targetBin || gotDelta != delta {
					t.Fatalf("round-trip mismatch for (%d,%d,%d): got (%d,%d,%d)",
						anchorBin, targetBin, delta, gotAnchor, gotTarget, gotDelta)
				}
				if hash>>32 != 0 {
					t.Errorf("expected high 32 bits to be zero under the canonical layout, hash=%x", hash)
				}
			}
		}
	}
}

func TestHashPacking_ExhaustiveBinsFixedDelta(t *testing.T) {
	for anchorBin := 0; anchorBin < 1024; anchorBin++ {
		for targetBin := 0; targetBin < 1024; targetBin += 37 {
			hash := PackHash(anchorBin, targetBin, 42)
			gotAnchor, gotTarget, gotDelta := UnpackHash(hash)
			if gotAnchor != anchorBin || gotTarget != targetBin || gotDelta != 42 {
				t.Fatalf("mismatch for (%d,%d,42)", anchorBin, targetBin)
			}
		}
	}
}
