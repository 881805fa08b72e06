// Package dsp implements the stateless numerical transforms that turn
// time-domain audio samples into constellation peaks: STFT, Hann
// windowing, local-maximum peak extraction, and log-band aggregation.
package dsp

import (
	"math"
	"sync"
)

// windowCache memoizes Hann windows by length so repeated spectrogram
// calls at a fixed window size never recompute the coefficients.
var windowCache sync.Map // map[int][]float64

// HannWindow returns the cached Hann window of length n, computing and
// storing it on first use.
func HannWindow(n int) []float64 {
	if v, ok := windowCache.Load(n); ok {
		return v.([]float64)
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	actual, _ := windowCache.LoadOrStore(n, w)
	return actual.([]float64)
}
