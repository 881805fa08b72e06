package dsp

import "math"

// GroupFrequencies aggregates a single spectrum into numBands
// log-spaced bands for the out-of-scope visualizer collaborator. It
// works on an already-computed spectrum and does not use the Hann
// window cache; it lives here because it is cheap to keep correct
// alongside the rest of the signal processor.
func GroupFrequencies(spectrum []float64, numBands, sampleRate int, noiseFloorDB float64) []float64 {
	bands := make([]float64, numBands)
	if len(spectrum) == 0 || numBands <= 0 {
		return bands
	}

	nyquist := float64(sampleRate) / 2
	boundaries := make([]int, numBands+1)
	for i := 0; i <= numBands; i++ {
		frac := float64(i) / float64(numBands)
		freq := 20 * math.Pow(nyquist/20, frac)
		bin := int(math.Floor(freq / nyquist * float64(len(spectrum)-1)))
		boundaries[i] = clampInt(bin, 0, len(spectrum)-1)
	}

	for i := 0; i < numBands; i++ {
		lo, hi := boundaries[i], boundaries[i+1]
		if hi < lo {
			hi = lo
		}
		var sum float64
		count := 0
		for b := lo; b <= hi; b++ {
			sum += spectrum[b]
			count++
		}
		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}
		if avg < noiseFloorDB {
			avg = 0
		}
		bands[i] = avg
	}

	return bands
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
