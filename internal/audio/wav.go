// Package audio decodes WAV files and adapts them to the mono,
// fixed-rate float32 stream the DSP pipeline expects.
package audio

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decoded holds PCM samples normalized to [-1, 1] alongside their
// original channel count and sample rate, before downmix/resample.
type Decoded struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// DecodeWAV reads a WAV stream via go-audio/wav, which handles the
// RIFF chunk walking and bit-depth normalization the teacher's
// hand-rolled 44-byte header parser does not (float/extensible
// formats, odd chunk ordering, non-16-bit depths).
func DecodeWAV(r io.Reader) (Decoded, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return Decoded{}, fmt.Errorf("audio: WAV decoding requires a seekable reader")
	}

	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return Decoded{}, fmt.Errorf("audio: not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Decoded{}, fmt.Errorf("audio: reading PCM buffer: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Decoded{}, fmt.Errorf("audio: empty PCM buffer")
	}

	samples := intBufferToFloat32(buf)

	return Decoded{
		Samples:    samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func intBufferToFloat32(buf *audio.IntBuffer) []float32 {
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	maxVal := float32(int64(1)<<(bitDepth-1)) - 1

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / maxVal
	}
	return out
}

// Downmix averages interleaved multi-channel samples into mono.
// Stereo and above collapse by arithmetic mean, matching the
// symmetric fold used everywhere else in the pipeline (no channel is
// privileged over another).
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Resample performs linear-interpolation resampling from srcRate to
// dstRate. Good enough for the fingerprinting pipeline, which only
// needs consistent bin placement, not broadcast-quality resampling.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(dstRate) / float64(srcRate)
	outLen := int(float64(len(samples)) * ratio)
	out := make([]float32, outLen)

	for i := range out {
		srcPos := float64(i) / ratio
		idx := int(srcPos)
		frac := float32(srcPos - float64(idx))

		if idx+1 < len(samples) {
			out[i] = samples[idx] + frac*(samples[idx+1]-samples[idx])
		} else if idx < len(samples) {
			out[i] = samples[idx]
		}
	}
	return out
}
