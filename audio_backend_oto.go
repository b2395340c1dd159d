// audio_backend_oto.go - Oto pull backend for the playback engine

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
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer satisfies oto's pull model: the transport calls Read whenever it
// wants more audio and the engine renders straight into the request.
type OtoPlayer struct {
	ctx       *oto.Context
	player    *oto.Player
	engine    atomic.Pointer[AudioStreamEngine]
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %v", err)
	}
	<-ready

	return &OtoPlayer{
		ctx:       ctx,
		sampleBuf: make([]float32, 4096),
	}, nil
}

// SetupPlayer binds the engine whose RenderAudio feeds this player. The
// atomic pointer means Read never sees a torn engine reference even if setup
// races the transport's first pull.
func (p *OtoPlayer) SetupPlayer(engine *AudioStreamEngine) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.engine.Store(engine)
	p.player = p.ctx.NewPlayer(p)
}

// Read implements io.Reader for oto. The request arrives in bytes; the engine
// renders float32 samples which are copied out without an intermediate
// encoding pass.
func (p *OtoPlayer) Read(buf []byte) (int, error) {
	engine := p.engine.Load()
	if engine == nil {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	numSamples := len(buf) / 4
	if cap(p.sampleBuf) < numSamples {
		p.sampleBuf = make([]float32, numSamples)
	}
	samples := p.sampleBuf[:numSamples]

	engine.RenderAudio(samples)

	copy(buf, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(buf)])
	return len(buf), nil
}

func (p *OtoPlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *OtoPlayer) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Close()
		p.started = false
	}
}

func (p *OtoPlayer) Close() {
	p.Stop()
}

func (p *OtoPlayer) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
