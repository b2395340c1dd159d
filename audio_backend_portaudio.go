// audio_backend_portaudio.go - PortAudio push backend for the playback engine

//go:build !headless

/*
██╗  ██╗ ███████╗  █████╗  ██████╗  ██╗ ███╗   ██╗  ██████╗    ██████╗  ██████╗   ██████╗  ███████╗ ██╗ ██╗      ███████╗ ██████╗
██║  ██║ ██╔════╝ ██╔══██╗ ██╔══██╗ ██║ ████╗  ██║ ██╔════╝    ██╔══██╗ ██╔══██╗ ██╔═══██╗ ██╔════╝ ██║ ██║      ██╔════╝ ██╔══██╗
███████║ █████╗   ███████║ ██████╔╝ ██║ ██╔██╗ ██║ ██║  ███╗   ██████╔╝ ██████╔╝ ██║   ██║ █████╗   ██║ ██║      █████╗   ██████╔╝
██╔══██║ ██╔══╝   ██╔══██║ ██╔══██╗ ██║ ██║╚██╗██║ ██║   ██║   ██╔═══╝  ██╔══██╗ ██║   ██║ ██╔══╝   ██║ ██║      ██╔══╝   ██╔══██╗
██║  ██║ ███████╗ ██║  ██║ ██║  ██║ ██║ ██║ ╚████║ ╚██████╔╝   ██║      ██║  ██║ ╚██████╔╝ ██║      ██║ ███████╗ ███████╗ ██║  ██║
╚═╝  ╚═╝ ╚══════╝ ╚═╝  ╚═╝ ╚═╝  ╚═╝ ╚═╝ ╚═╝  ╚═══╝  ╚═════╝    ╚═╝      ╚═╝  ╚═╝  ╚═════╝  ╚═╝      ╚═╝ ╚══════╝ ╚══════╝ ╚═╝  ╚═╝

HearingProfiler - Psychoacoustic hearing test and audiogram profiler
(c) 2026 Zayn Otley
https://github.com/IntuitionAmiga/HearingProfiler
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioPlayer is the push alternative to the oto backend: PortAudio calls
// process on its own realtime thread with a fixed-size frame and the engine
// renders into it. Useful where oto's backend misbehaves, and on hosts where
// PortAudio is routed through JACK.
type PortAudioPlayer struct {
	stream  *portaudio.Stream
	engine  *AudioStreamEngine
	started bool
	closed  bool
	mutex   sync.Mutex
}

func NewPortAudioPlayer(sampleRate int, engine *AudioStreamEngine) (*PortAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %v", err)
	}

	p := &PortAudioPlayer{engine: engine}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), FRAMES_PER_BUFFER, p.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %v", err)
	}
	p.stream = stream
	return p, nil
}

// process runs on the PortAudio callback thread. No locks here; the engine's
// render path is lock-free.
func (p *PortAudioPlayer) process(out []float32) {
	p.engine.RenderAudio(out)
}

func (p *PortAudioPlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started || p.closed {
		return
	}
	if err := p.stream.Start(); err != nil {
		fmt.Printf("Failed to start portaudio stream: %v\n", err)
		return
	}
	p.started = true
}

func (p *PortAudioPlayer) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started || p.closed {
		return
	}
	if err := p.stream.Stop(); err != nil {
		fmt.Printf("Failed to stop portaudio stream: %v\n", err)
	}
	p.started = false
}

func (p *PortAudioPlayer) Close() {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return
	}
	p.stream.Close()
	portaudio.Terminate()
	p.closed = true
}

func (p *PortAudioPlayer) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
