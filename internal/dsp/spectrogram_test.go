package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
)

func sineWave(freq float64, sampleRate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func TestComputeSpectrogram_FrameCount(t *testing.T) {
	samples := sineWave(440, 44100, 44100)
	spec := ComputeSpectrogram(samples, 2048, 512, 0.001)

	expected := 1 + (len(samples)-2048)/512
	if len(spec.Frames) != expected {
		t.Errorf("expected %d frames, got %d", expected, len(spec.Frames))
	}
	if spec.Bins != 2048/2+1 {
		t.Errorf("expected %d bins, got %d", 2048/2+1, spec.Bins)
	}
}

func TestComputeSpectrogram_ShortInputYieldsNoFrames(t *testing.T) {
	samples := make([]float32, 100)
	spec := ComputeSpectrogram(samples, 2048, 512, 0.001)
	if len(spec.Frames) != 0 {
		t.Errorf("expected 0 frames for input shorter than window, got %d", len(spec.Frames))
	}
}

func TestComputeSpectrogram_SilenceShortCircuits(t *testing.T) {
	samples := make([]float32, 44100) // all zero
	spec := ComputeSpectrogram(samples, 2048, 512, 0.001)

	for _, frame := range spec.Frames {
		for _, db := range frame {
			if db != 0 {
				t.Fatalf("expected all-zero spectrogram for silence, got %v", db)
			}
		}
	}
}

func TestComputeSpectrogram_ToneProducesPeakNearExpectedBin(t *testing.T) {
	const sampleRate = 44100
	const window = 2048
	freq := 440.0
	samples := sineWave(freq, sampleRate, sampleRate)

	spec := ComputeSpectrogram(samples, window, 512, 0.001)
	if len(spec.Frames) == 0 {
		t.Fatal("expected frames")
	}

	expectedBin := int(freq * float64(window) / float64(sampleRate))

	frame := spec.Frames[len(spec.Frames)/2]
	maxBin := 0
	maxVal := frame[0]
	for i, v := range frame {
		if v > maxVal {
			maxVal = v
			maxBin = i
		}
	}

	if diff := maxBin - expectedBin; diff < -2 || diff > 2 {
		t.Errorf("expected loudest bin near %d, got %d", expectedBin, maxBin)
	}
}

// TestFFTReal_MatchesReferenceImplementation cross-checks the
// production go-dsp FFT against a textbook recursive DFT on a small
// signal, so a change in the production path that quietly shifts bins
// would show up here even without a real-audio fixture.
func TestFFTReal_MatchesReferenceImplementation(t *testing.T) {
	tone := sineWave(1000, 8000, 64)
	samples := make([]float64, len(tone))
	for i, v := range tone {
		samples[i] = float64(v)
	}

	got := fft.FFTReal(samples)
	want := referenceFFT(samples)

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := cmplx.Abs(got[i] - want[i]); diff > 1e-6 {
			t.Errorf("bin %d: got %v, want %v (diff %v)", i, got[i], want[i], diff)
		}
	}
}
