// audio_engine_test.go - Statistical verification of the engine's render path

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
	"testing"
)

/*
The render path is verified statistically rather than sample by sample: RMS,
peak, DC offset and zero-crossing counts pin down amplitude, scaling and
continuity without golden files. A 440 Hz probe at 44.1 kHz over 0.1 s is 44
exact cycles, so the expected statistics are known in closed form.
*/

type audioStats struct {
	rms           float64
	peak          float64
	dcOffset      float64
	zeroCrossings int
}

func computeStats(samples []float32) audioStats {
	if len(samples) == 0 {
		return audioStats{}
	}

	var sum, sumSquares, peak float64
	crossings := 0
	prevSign := samples[0] >= 0

	for _, s := range samples {
		v := float64(s)
		sum += v
		sumSquares += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
		sign := s >= 0
		if sign != prevSign {
			crossings++
			prevSign = sign
		}
	}

	return audioStats{
		rms:           math.Sqrt(sumSquares / float64(len(samples))),
		peak:          peak,
		dcOffset:      sum / float64(len(samples)),
		zeroCrossings: crossings,
	}
}

// newTestEngine builds an engine with no backend attached. Tests drive
// RenderAudio directly, standing in for the audio thread.
func newTestEngine() *AudioStreamEngine {
	engine := &AudioStreamEngine{
		sampleRate: 44100,
		noiseState: NOISE_LFSR_SEED,
	}
	engine.volume.Store(1.0)
	return engine
}

func renderAll(engine *AudioStreamEngine, total, blockSize int) []float32 {
	out := make([]float32, 0, total)
	block := make([]float32, blockSize)
	for len(out) < total {
		n := blockSize
		if remaining := total - len(out); remaining < n {
			n = remaining
		}
		engine.RenderAudio(block[:n])
		out = append(out, block[:n]...)
	}
	return out
}

func TestRenderSineStatistics(t *testing.T) {
	engine := newTestEngine()
	synth := NewToneSynthesizer(44100, 0)
	tone := synth.GenerateRaw(440, 1.0, 0.1)

	engine.Play(tone)
	rendered := renderAll(engine, len(tone), 441)
	stats := computeStats(rendered)

	if math.Abs(stats.rms-0.7071) > 0.05 {
		t.Errorf("RMS = %f, expected ~0.7071", stats.rms)
	}
	if stats.peak < 0.95 || stats.peak > 1.05 {
		t.Errorf("peak = %f, expected ~1.0", stats.peak)
	}
	if math.Abs(stats.dcOffset) > 0.01 {
		t.Errorf("DC offset = %f, expected ~0", stats.dcOffset)
	}
	if stats.zeroCrossings < 78 || stats.zeroCrossings > 98 {
		t.Errorf("zero crossings = %d, expected ~88", stats.zeroCrossings)
	}
	if !engine.IsFinished() {
		t.Error("engine not finished after rendering the whole buffer")
	}
}

func TestRenderAppliesVolumeScale(t *testing.T) {
	engine := newTestEngine()
	engine.SetCalibrationVolume(0.5)

	samples := make([]float32, 256)
	for i := range samples {
		samples[i] = 1.0
	}
	engine.Play(samples)

	out := make([]float32, 128)
	engine.RenderAudio(out)
	for i, v := range out {
		if v != 0.5 {
			t.Fatalf("sample %d = %f, expected 0.5 after volume scaling", i, v)
		}
	}

	// Volume changes land on the next block, not mid-buffer state.
	engine.SetCalibrationVolume(0.25)
	engine.RenderAudio(out)
	for i, v := range out {
		if v != 0.25 {
			t.Fatalf("sample %d = %f, expected 0.25 after volume change", i, v)
		}
	}
}

func TestRenderZeroPadsFinalBlock(t *testing.T) {
	engine := newTestEngine()

	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = 0.5
	}
	engine.Play(samples)

	out := make([]float32, 64)
	engine.RenderAudio(out)
	if engine.IsFinished() {
		t.Fatal("engine finished with samples still pending")
	}

	engine.RenderAudio(out)
	for i := 0; i < 36; i++ {
		if out[i] != 0.5 {
			t.Fatalf("sample %d = %f, expected 0.5", i, out[i])
		}
	}
	for i := 36; i < 64; i++ {
		if out[i] != 0 {
			t.Fatalf("pad sample %d = %f, expected 0", i, out[i])
		}
	}
	if !engine.IsFinished() {
		t.Error("engine not finished after consuming the final block")
	}
}

func TestRenderPreemptionSwitchesBuffer(t *testing.T) {
	engine := newTestEngine()

	first := make([]float32, 4096)
	for i := range first {
		first[i] = 0.25
	}
	second := make([]float32, 4096)
	for i := range second {
		second[i] = 0.75
	}

	engine.Play(first)
	out := make([]float32, 512)
	engine.RenderAudio(out)
	if out[0] != 0.25 {
		t.Fatalf("first buffer sample = %f, expected 0.25", out[0])
	}

	engine.Play(second)
	if got := engine.ElapsedFraction(); got != 0 {
		t.Errorf("elapsed fraction after pre-emption = %f, expected 0", got)
	}
	engine.RenderAudio(out)
	if out[0] != 0.75 {
		t.Errorf("post-swap sample = %f, expected 0.75 from the new buffer", out[0])
	}
}

func TestRenderIdleNoiseFloor(t *testing.T) {
	engine := newTestEngine()

	rendered := renderAll(engine, 8820, 512)
	stats := computeStats(rendered)

	if stats.peak == 0 {
		t.Error("idle output is pure silence, expected the noise bed")
	}
	if stats.peak > NOISE_FLOOR_AMPLITUDE*1.001 {
		t.Errorf("noise peak = %f, expected <= %f", stats.peak, NOISE_FLOOR_AMPLITUDE)
	}
	if math.Abs(stats.dcOffset) > 1e-4 {
		t.Errorf("noise DC offset = %f, expected ~0", stats.dcOffset)
	}
	if stats.zeroCrossings < 1000 {
		t.Errorf("noise zero crossings = %d, expected white-noise density", stats.zeroCrossings)
	}
}

func TestRenderNoiseBedResumesAfterPlayback(t *testing.T) {
	engine := newTestEngine()
	synth := NewToneSynthesizer(44100, 0)

	engine.Play(synth.GenerateRaw(1000, 0.8, 0.01))
	renderAll(engine, 441, 441)
	if !engine.IsFinished() {
		t.Fatal("buffer not drained")
	}

	idle := renderAll(engine, 2048, 512)
	stats := computeStats(idle)
	if stats.peak == 0 || stats.peak > NOISE_FLOOR_AMPLITUDE*1.001 {
		t.Errorf("post-playback peak = %f, expected the noise bed", stats.peak)
	}
}

func TestPlayNilCutsPlayback(t *testing.T) {
	engine := newTestEngine()

	samples := make([]float32, 44100)
	for i := range samples {
		samples[i] = 0.9
	}
	engine.Play(samples)

	out := make([]float32, 512)
	engine.RenderAudio(out)
	if engine.IsFinished() {
		t.Fatal("engine finished prematurely")
	}

	engine.Play(nil)
	if !engine.IsFinished() {
		t.Error("Play(nil) did not finish playback")
	}
	engine.RenderAudio(out)
	if stats := computeStats(out); stats.peak > NOISE_FLOOR_AMPLITUDE*1.001 {
		t.Errorf("post-cut peak = %f, expected the noise bed", stats.peak)
	}
}

func TestElapsedFractionProgress(t *testing.T) {
	engine := newTestEngine()
	engine.Play(make([]float32, 1000))

	if got := engine.ElapsedFraction(); got != 0 {
		t.Fatalf("initial elapsed fraction = %f, expected 0", got)
	}

	out := make([]float32, 250)
	previous := 0.0
	for i := 0; i < 4; i++ {
		engine.RenderAudio(out)
		fraction := engine.ElapsedFraction()
		if fraction < previous {
			t.Fatalf("elapsed fraction went backwards: %f after %f", fraction, previous)
		}
		previous = fraction
	}
	if previous != 1.0 {
		t.Errorf("final elapsed fraction = %f, expected 1.0", previous)
	}
}
