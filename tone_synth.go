// tone_synth.go - Sinusoidal tone synthesis with logarithmic intensity scaling

package main

import "math"

// MIN_VOLUME_RATIO pins the softest test tone to 1% of the calibration
// ceiling, giving the intensity axis a fixed 40 dB span.
const MIN_VOLUME_RATIO = 0.01

type ToneSynthesizer struct {
	sampleRate   int
	fadeDuration float64
}

func NewToneSynthesizer(sampleRate int, fadeDuration float64) *ToneSynthesizer {
	return &ToneSynthesizer{sampleRate: sampleRate, fadeDuration: fadeDuration}
}

// toneVolume maps a perceptual intensity in [0, 1] onto a linear amplitude.
// Equal intensity steps give equal loudness ratios: the curve runs from
// calibrationVolume*MIN_VOLUME_RATIO at intensity 1e-9 up to the calibration
// volume itself at intensity 1. Intensity <= 0 is silence, not the curve floor.
func toneVolume(intensity, calibrationVolume float64) float64 {
	if intensity <= 0 {
		return 0
	}
	minVolume := calibrationVolume * MIN_VOLUME_RATIO
	return minVolume * math.Pow(calibrationVolume/minVolume, intensity)
}

// Generate renders a faded sine tone at the amplitude the intensity law
// assigns. The result is unit-range test audio; the playback engine applies
// the calibration volume a second time when streaming it out.
func (ts *ToneSynthesizer) Generate(frequency, intensity, duration, calibrationVolume float64) []float32 {
	return ts.render(frequency, toneVolume(intensity, calibrationVolume), duration)
}

// GenerateRaw renders a faded sine tone at an explicit linear amplitude,
// bypassing the intensity law. Used for the calibration reference tone.
func (ts *ToneSynthesizer) GenerateRaw(frequency, amplitude, duration float64) []float32 {
	return ts.render(frequency, amplitude, duration)
}

func (ts *ToneSynthesizer) render(frequency, amplitude, duration float64) []float32 {
	numSamples := int(duration * float64(ts.sampleRate))
	samples := make([]float32, numSamples)
	if amplitude == 0 {
		return samples
	}

	omega := 2 * math.Pi * frequency / float64(ts.sampleRate)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(omega*float64(i)))
	}

	ts.ApplyFade(samples)
	return samples
}

// ApplyFade applies linear fade-in and fade-out ramps in place. Buffers too
// short to hold two non-overlapping fade windows are left untouched, so very
// short tones keep their full energy.
func (ts *ToneSynthesizer) ApplyFade(samples []float32) {
	fadeSamples := int(ts.fadeDuration * float64(ts.sampleRate))
	if fadeSamples < 2 || len(samples) <= 2*fadeSamples {
		return
	}
	for i := 0; i < fadeSamples; i++ {
		ramp := float32(i) / float32(fadeSamples-1)
		samples[i] *= ramp
		samples[len(samples)-1-i] *= ramp
	}
}
