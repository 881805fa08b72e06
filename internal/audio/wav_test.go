package audio

import "testing"

func TestDownmix_StereoAveragesChannels(t *testing.T) {
	// two frames, L/R pairs
	samples := []float32{1.0, -1.0, 0.5, 0.5}
	mono := Downmix(samples, 2)
	if len(mono) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(mono))
	}
	if mono[0] != 0 {
		t.Errorf("expected frame 0 to average to 0, got %v", mono[0])
	}
	if mono[1] != 0.5 {
		t.Errorf("expected frame 1 to average to 0.5, got %v", mono[1])
	}
}

func TestDownmix_MonoPassthrough(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out := Downmix(samples, 1)
	if len(out) != len(samples) {
		t.Fatalf("expected passthrough of mono input")
	}
}

func TestResample_SameRateIsNoop(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out := Resample(samples, 44100, 44100)
	if len(out) != len(samples) {
		t.Fatalf("expected no-op when rates match")
	}
}

func TestResample_Downsample_PreservesFirstSample(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = float32(i)
	}
	out := Resample(samples, 44100, 22050)
	if len(out) == 0 {
		t.Fatal("expected non-empty output")
	}
	if out[0] != samples[0] {
		t.Errorf("expected first sample to be preserved, got %v", out[0])
	}
}
