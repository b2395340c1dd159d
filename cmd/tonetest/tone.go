// tone.go - Tone synthesis and playback through the beep speaker

package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	SAMPLE_RATE      = 44100
	FADE_DURATION    = 0.01
	MIN_VOLUME_RATIO = 0.01

	MIN_FREQUENCY = 20.0
	MAX_FREQUENCY = 20000.0
	MIN_DURATION  = 0.1
	MAX_DURATION  = 10.0
)

// validateParameters returns every problem with the requested tone, not just
// the first, so one run reports everything wrong with an invocation.
func validateParameters(frequency, intensity, duration float64, ear string, maxVolume float64) []string {
	var problems []string
	if frequency < MIN_FREQUENCY || frequency > MAX_FREQUENCY {
		problems = append(problems, fmt.Sprintf("Frequency %v Hz is out of range (20-20000 Hz)", frequency))
	}
	if intensity < 0 || intensity > 1 {
		problems = append(problems, fmt.Sprintf("Intensity %v is out of range (0.0-1.0)", intensity))
	}
	if duration < MIN_DURATION || duration > MAX_DURATION {
		problems = append(problems, fmt.Sprintf("Duration %v seconds is out of range (0.1-10.0 seconds)", duration))
	}
	if ear != "left" && ear != "right" && ear != "both" {
		problems = append(problems, fmt.Sprintf("Ear '%s' is invalid (must be 'left', 'right', or 'both')", ear))
	}
	if maxVolume < 0 || maxVolume > 1 {
		problems = append(problems, fmt.Sprintf("Max volume %v is out of range (0.0-1.0)", maxVolume))
	}
	return problems
}

// toneVolume is the same logarithmic intensity law the main profiler uses:
// intensity 1 plays at maxVolume, the floor sits at 1% of it, and equal
// intensity steps give equal loudness ratios in between.
func toneVolume(intensity, maxVolume float64) float64 {
	if intensity <= 0 {
		return 0
	}
	minVolume := maxVolume * MIN_VOLUME_RATIO
	return minVolume * math.Pow(maxVolume/minVolume, intensity)
}

// envelope applies a constant gain plus linear fade ramps to a streamer.
// Fades are skipped when the tone is too short to hold two ramp windows.
type envelope struct {
	streamer    beep.Streamer
	gain        float64
	length      int
	fadeSamples int
	pos         int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	fade := e.fadeSamples > 1 && e.length > 2*e.fadeSamples
	for i := 0; i < n; i++ {
		gain := e.gain
		if fade {
			switch {
			case e.pos < e.fadeSamples:
				gain *= float64(e.pos) / float64(e.fadeSamples-1)
			case e.pos >= e.length-e.fadeSamples:
				gain *= float64(e.length-1-e.pos) / float64(e.fadeSamples-1)
			}
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error {
	return e.streamer.Err()
}

func playTone(frequency, intensity, duration float64, ear string, maxVolume float64) error {
	volume := toneVolume(intensity, maxVolume)

	fmt.Printf("Playing: %.1f Hz, Intensity: %.2f -> Volume: %.4f, Duration: %.1fs, Ear: %s\n",
		frequency, intensity, volume, duration, ear)
	fmt.Printf("Max Volume: %.2f, Range: %.4f to %.2f\n", maxVolume, maxVolume*MIN_VOLUME_RATIO, maxVolume)

	sr := beep.SampleRate(SAMPLE_RATE)
	sine, err := generators.SineTone(sr, frequency)
	if err != nil {
		return fmt.Errorf("failed to create tone generator: %v", err)
	}

	numSamples := int(duration * SAMPLE_RATE)
	shaped := &envelope{
		streamer:    beep.Take(numSamples, sine),
		gain:        volume,
		length:      numSamples,
		fadeSamples: int(FADE_DURATION * SAMPLE_RATE),
	}

	var routed beep.Streamer = shaped
	switch ear {
	case "left":
		routed = &effects.Pan{Streamer: shaped, Pan: -1}
	case "right":
		routed = &effects.Pan{Streamer: shaped, Pan: 1}
	}

	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open audio device: %v", err)
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(routed, beep.Callback(func() {
		close(done)
	})))
	<-done

	// The callback fires when the sequence is consumed, not when the device
	// has drained its buffer. Give the tail time to leave the hardware.
	time.Sleep(100 * time.Millisecond)
	return nil
}
