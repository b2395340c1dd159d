// audio_output.go - Audio backend selection and the shared output interface

package main

import "fmt"

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_PORTAUDIO
)

// FRAMES_PER_BUFFER is the render block size for the push backend. The pull
// backend reads whatever the transport asks for.
const FRAMES_PER_BUFFER = 1024

// AudioOutput is the surface the engine drives a backend through. Start and
// Stop bracket audibility; Close releases the device.
type AudioOutput interface {
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// NewAudioOutput creates the requested backend wired to the engine's render
// callback. The engine owns the returned output for its whole lifetime.
func NewAudioOutput(backend int, sampleRate int, engine *AudioStreamEngine) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		player, err := NewOtoPlayer(sampleRate)
		if err != nil {
			return nil, err
		}
		player.SetupPlayer(engine)
		return player, nil
	case AUDIO_BACKEND_PORTAUDIO:
		return NewPortAudioPlayer(sampleRate, engine)
	default:
		return nil, fmt.Errorf("unknown audio backend: %d", backend)
	}
}

// ParseAudioBackend maps a command line backend name to its constant.
func ParseAudioBackend(name string) (int, error) {
	switch name {
	case "oto":
		return AUDIO_BACKEND_OTO, nil
	case "portaudio":
		return AUDIO_BACKEND_PORTAUDIO, nil
	default:
		return 0, fmt.Errorf("unknown audio backend %q (expected oto or portaudio)", name)
	}
}
