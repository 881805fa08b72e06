// Package capture is the thin live-audio-input seam. Recognition is
// defined entirely in terms of a query buffer; how that buffer was
// obtained (microphone, file, network stream) is deliberately kept
// behind a two-method interface so the matcher and CLI never import
// portaudio directly.
package capture

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Source captures a fixed window of mono audio at a given sample
// rate. Device selection and buffering live behind the
// implementation.
type Source interface {
	Capture(duration time.Duration) ([]float32, int, error)
	Close() error
}

// MicrophoneSource records from a portaudio input device, mirroring
// main/recording.go's stream setup but returning float32 samples
// instead of raw int16 and taking the duration as a parameter instead
// of hardcoding 5 seconds.
type MicrophoneSource struct {
	deviceIndex int
	bufferSize  int
}

// NewMicrophoneSource initializes portaudio and selects an input
// device. deviceIndex < 0 means "use the default input device".
func NewMicrophoneSource(deviceIndex, bufferSize int) (*MicrophoneSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("capture: portaudio init: %w", err)
	}
	return &MicrophoneSource{deviceIndex: deviceIndex, bufferSize: bufferSize}, nil
}

func (m *MicrophoneSource) resolveDevice() (*portaudio.DeviceInfo, error) {
	if m.deviceIndex < 0 {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: listing devices: %w", err)
	}
	if m.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("capture: device index %d out of range (%d devices)", m.deviceIndex, len(devices))
	}
	return devices[m.deviceIndex], nil
}

// Capture records duration worth of mono float32 audio and returns
// the samples alongside the stream's actual sample rate.
func (m *MicrophoneSource) Capture(duration time.Duration) ([]float32, int, error) {
	device, err := m.resolveDevice()
	if err != nil {
		return nil, 0, err
	}

	sampleRate := device.DefaultSampleRate
	if sampleRate < 44100 {
		sampleRate = 44100
	}

	params := portaudio.HighLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = m.bufferSize

	buffer := make([]float32, m.bufferSize)
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, 0, fmt.Errorf("capture: opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, 0, fmt.Errorf("capture: starting stream: %w", err)
	}
	defer stream.Stop()

	var out []float32
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if err := stream.Read(); err != nil {
			return nil, 0, fmt.Errorf("capture: reading stream: %w", err)
		}
		out = append(out, buffer...)
	}

	return out, int(stream.Info().SampleRate), nil
}

func (m *MicrophoneSource) Close() error {
	portaudio.Terminate()
	return nil
}
