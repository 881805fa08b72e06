// Package fingerprint converts constellation peaks into compact
// (hash, anchor_time) tokens using the fan-out pairing rule.
package fingerprint

import (
	"sort"

	"fprint/internal/dsp"
)

// LayoutVersion identifies the bit-packing scheme below. The Catalog
// Store does not read this constant: it refuses to open an index
// whose stored schema version differs from its own schemaVersion,
// which is bumped together with any change to this packing.
const LayoutVersion = 1

const (
	anchorBinBits  = 10
	targetBinBits  = 10
	deltaBits      = 12

	binMask   = (1 << 10) - 1
	deltaMask = (1 << 12) - 1
)

// Token is an ephemeral (hash, anchor_frame) pair emitted by
// BuildTokens. The token stream is not deduplicated here; duplicate
// collapse happens at the Catalog Store via the posting uniqueness
// invariant.
type Token struct {
	Hash        uint64
	AnchorFrame int
}

// Params bundles the fan-out tunables so BuildTokens does not need a
// full config.Config dependency.
type Params struct {
	FanValue     int
	MinTimeDelta int
	MaxTimeDelta int
}

// BuildTokens sorts peaks by (frame, bin) and pairs each anchor with
// up to FanValue subsequent peaks whose time delta falls within
// [MinTimeDelta, MaxTimeDelta].
func BuildTokens(peaks []dsp.Peak, p Params) []Token {
	if len(peaks) == 0 {
		return nil
	}

	sorted := make([]dsp.Peak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Frame != sorted[j].Frame {
			return sorted[i].Frame < sorted[j].Frame
		}
		return sorted[i].Bin < sorted[j].Bin
	})

	var tokens []Token
	for i, anchor := range sorted {
		limit := i + p.FanValue
		if limit >= len(sorted) {
			limit = len(sorted) - 1
		}
		for j := i + 1; j <= limit; j++ {
			target := sorted[j]
			delta := target.Frame - anchor.Frame
			if delta > p.MaxTimeDelta {
				break // peaks are frame-sorted; no further target can qualify
			}
			if delta < p.MinTimeDelta {
				continue
			}
			hash := PackHash(anchor.Bin, target.Bin, delta)
			tokens = append(tokens, Token{Hash: hash, AnchorFrame: anchor.Frame})
		}
	}

	return tokens
}

// PackHash bit-packs (anchorBin, targetBin, delta) into the canonical
// 64-bit token layout:
//
//	bits [31:22] anchor bin (10 bits)
//	bits [21:12] target bin (10 bits)
//	bits [11:0]  time delta (12 bits)
//
// The high 32 bits are always zero under this layout.
func PackHash(anchorBin, targetBin, delta int) uint64 {
	a := uint64(anchorBin) & binMask
	b := uint64(targetBin) & binMask
	d := uint64(delta) & deltaMask
	return a<<22 | b<<12 | d
}

// UnpackHash reverses PackHash, used by tests and diagnostics.
func UnpackHash(hash uint64) (anchorBin, targetBin, delta int) {
	anchorBin = int((hash >> 22) & binMask)
	targetBin = int((hash >> 12) & binMask)
	delta = int(hash & deltaMask)
	return
}
