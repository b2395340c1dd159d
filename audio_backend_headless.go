// audio_backend_headless.go - No-op audio backends for CI and headless hosts

//go:build headless

package main

// Headless builds satisfy the AudioOutput surface without touching a sound
// device. The engine still renders on demand; nothing ever pulls.

type OtoPlayer struct{}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) { return &OtoPlayer{}, nil }

func (p *OtoPlayer) SetupPlayer(engine *AudioStreamEngine) {}
func (p *OtoPlayer) Start()                                {}
func (p *OtoPlayer) Stop()                                 {}
func (p *OtoPlayer) Close()                                {}
func (p *OtoPlayer) IsStarted() bool                       { return false }

type PortAudioPlayer struct{}

func NewPortAudioPlayer(sampleRate int, engine *AudioStreamEngine) (*PortAudioPlayer, error) {
	return &PortAudioPlayer{}, nil
}

func (p *PortAudioPlayer) Start()          {}
func (p *PortAudioPlayer) Stop()           {}
func (p *PortAudioPlayer) Close()          {}
func (p *PortAudioPlayer) IsStarted() bool { return false }
