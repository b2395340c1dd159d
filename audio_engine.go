// audio_engine.go - Lock-free playback cursor engine feeding the audio backends

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
	"math"
	"sync/atomic"
)

const (
	// NOISE_FLOOR_AMPLITUDE is the level of the idle noise bed. Loud enough
	// to stop power-managed DACs from suspending the stream, far below any
	// test tone.
	NOISE_FLOOR_AMPLITUDE = 0.001

	NOISE_LFSR_SEED = 0x7FFFFF
	NOISE_LFSR_MASK = 0x7FFFFF
)

// PlaybackCursor is one immutable buffer plus its read position. The engine
// swaps whole cursors; samples are never mutated after Play publishes them,
// so the render thread can read them without coordination.
type PlaybackCursor struct {
	samples []float32
	pos     atomic.Int64
	active  atomic.Bool
}

// atomicFloat32 stores a float32 through its bit pattern so the render path
// can read the live calibration volume without locking.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (f *atomicFloat32) Load() float32   { return math.Float32frombits(f.bits.Load()) }
func (f *atomicFloat32) Store(v float32) { f.bits.Store(math.Float32bits(v)) }

// AudioStreamEngine owns the playback state shared between the control
// goroutine (Play, SetCalibrationVolume, progress queries) and the backend's
// render context (RenderAudio). Only atomics cross that boundary.
type AudioStreamEngine struct {
	cursor     atomic.Pointer[PlaybackCursor]
	volume     atomicFloat32
	sampleRate int
	noiseState uint32 // LFSR state, render context only
	output     AudioOutput
}

// NewAudioStreamEngine opens the requested backend and wires it to the
// engine's render callback. The engine starts idle, emitting the noise bed.
func NewAudioStreamEngine(backend int, sampleRate int, calibrationVolume float64) (*AudioStreamEngine, error) {
	engine := &AudioStreamEngine{
		sampleRate: sampleRate,
		noiseState: NOISE_LFSR_SEED,
	}
	engine.volume.Store(float32(calibrationVolume))

	output, err := NewAudioOutput(backend, sampleRate, engine)
	if err != nil {
		return nil, err
	}
	engine.output = output
	return engine, nil
}

func (e *AudioStreamEngine) Start() {
	e.output.Start()
}

func (e *AudioStreamEngine) Stop() {
	e.output.Stop()
	e.output.Close()
}

func (e *AudioStreamEngine) SampleRate() int {
	return e.sampleRate
}

// Play publishes a fresh cursor over samples, pre-empting whatever was
// playing. The swap is a single pointer store; the render thread picks the
// new cursor up at its next block. Play(nil) cuts playback to the noise bed.
func (e *AudioStreamEngine) Play(samples []float32) {
	cursor := &PlaybackCursor{samples: samples}
	cursor.active.Store(len(samples) > 0)
	e.cursor.Store(cursor)
}

// IsFinished reports whether the current buffer has been fully consumed.
// True before the first Play and after any completed or pre-empted buffer.
func (e *AudioStreamEngine) IsFinished() bool {
	cursor := e.cursor.Load()
	return cursor == nil || !cursor.active.Load()
}

// ElapsedFraction is playback progress through the current buffer in [0, 1].
func (e *AudioStreamEngine) ElapsedFraction() float64 {
	cursor := e.cursor.Load()
	if cursor == nil || len(cursor.samples) == 0 {
		return 0
	}
	return float64(cursor.pos.Load()) / float64(len(cursor.samples))
}

func (e *AudioStreamEngine) SetCalibrationVolume(volume float64) {
	e.volume.Store(float32(volume))
}

func (e *AudioStreamEngine) CalibrationVolume() float64 {
	return float64(e.volume.Load())
}

// RenderAudio fills out with the next block of audio. Called from the
// backend's realtime context: no locks, no allocation, no blocking. While a
// cursor is active its samples are scaled by the live calibration volume;
// past the end the block is zero padded and the cursor deactivates. Idle
// output is the LFSR noise bed.
func (e *AudioStreamEngine) RenderAudio(out []float32) {
	cursor := e.cursor.Load()
	if cursor != nil && cursor.active.Load() {
		pos := int(cursor.pos.Load())
		volume := e.volume.Load()

		n := len(cursor.samples) - pos
		if n > len(out) {
			n = len(out)
		}
		for i := 0; i < n; i++ {
			out[i] = cursor.samples[pos+i] * volume
		}
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		pos += n
		cursor.pos.Store(int64(pos))
		if pos >= len(cursor.samples) {
			cursor.active.Store(false)
		}
		return
	}

	state := e.noiseState
	for i := range out {
		newBit := ((state >> 22) ^ (state >> 17)) & 1
		state = ((state << 1) | newBit) & NOISE_LFSR_MASK
		out[i] = (float32(state)/float32(NOISE_LFSR_MASK)*2 - 1) * NOISE_FLOOR_AMPLITUDE
	}
	e.noiseState = state
}
