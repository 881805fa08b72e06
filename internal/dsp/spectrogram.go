package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrogram is an ephemeral F x (W/2+1) matrix of log-magnitude
// values in decibels. It is never persisted; it exists only to feed
// ExtractPeaks.
type Spectrogram struct {
	Frames   [][]float64 // Frames[frame][bin], dB
	Bins     int         // W/2 + 1
	Window   int         // W
	Hop      int         // H
}

// ComputeSpectrogram runs a windowed STFT over samples and converts
// each frame's magnitude to decibels. silenceThreshold short-circuits
// near-silent buffers to an all-zero spectrogram of the frame count
// that would otherwise be produced, matching the reference behavior
// of treating silence as "nothing to see here" without skipping the
// frame-count bookkeeping downstream code relies on.
func ComputeSpectrogram(samples []float32, window, hop int, silenceThreshold float64) Spectrogram {
	bins := window/2 + 1
	frames := frameCount(len(samples), window, hop)

	spec := Spectrogram{
		Frames: make([][]float64, frames),
		Bins:   bins,
		Window: window,
		Hop:    hop,
	}

	if frames == 0 {
		return spec
	}

	if isSilent(samples, silenceThreshold) {
		for i := range spec.Frames {
			spec.Frames[i] = make([]float64, bins)
		}
		return spec
	}

	win := HannWindow(window)
	frame := make([]float64, window)

	for f := 0; f < frames; f++ {
		start := f * hop
		for i := 0; i < window; i++ {
			frame[i] = float64(samples[start+i]) * win[i]
		}

		spectrum := fft.FFTReal(frame)
		magnitudes := make([]float64, bins)
		for b := 0; b < bins; b++ {
			magnitudes[b] = 20 * math.Log10(cmplx.Abs(spectrum[b])+1e-10)
		}
		spec.Frames[f] = magnitudes
	}

	return spec
}

func frameCount(numSamples, window, hop int) int {
	if numSamples < window {
		return 0
	}
	return 1 + (numSamples-window)/hop
}

func isSilent(samples []float32, threshold float64) bool {
	var peak float64
	for _, s := range samples {
		a := math.Abs(float64(s))
		if a > peak {
			peak = a
		}
	}
	return peak < threshold
}
