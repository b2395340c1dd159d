// test_timeline.go - Compiles a trial sequence into one playback buffer plus an event map

package main

import "math/rand"

// TRAILING_SILENCE_SECONDS keeps the stream alive after the final tone so the
// listener's response window stays open.
const TRAILING_SILENCE_SECONDS = 2.0

// Event records where one trial's tone sits in the compiled buffer, in seconds
// from the start of playback. The window [StartTime, EndTime] plus the response
// tolerance is what the correlator matches key presses against.
type Event struct {
	StartTime float64
	EndTime   float64
	Trial     *Trial
}

type Timeline struct {
	Samples    []float32
	SampleRate int
	Events     []Event
}

func (tl *Timeline) Duration() float64 {
	return float64(len(tl.Samples)) / float64(tl.SampleRate)
}

// EventAt returns the event whose tone is sounding at time t, or nil when t
// falls in a gap or outside the timeline.
func (tl *Timeline) EventAt(t float64) *Event {
	for i := range tl.Events {
		event := &tl.Events[i]
		if t >= event.StartTime && t <= event.EndTime {
			return event
		}
	}
	return nil
}

// CompileTimeline lays the sequence out as randomized-gap silence followed by
// each trial's tone, with trailing silence at the end. Event times are
// quantized to whole samples so they match buffer positions exactly.
func CompileTimeline(trials []*Trial, synth *ToneSynthesizer, cfg *Config, calibrationVolume float64, rng *rand.Rand) *Timeline {
	sampleRate := cfg.Audio.SampleRate
	minGap := cfg.Testing.InterTestDelayRange[0]
	maxGap := cfg.Testing.InterTestDelayRange[1]

	estimate := int((maxGap+cfg.Audio.ToneDuration)*float64(len(trials))*float64(sampleRate)) +
		int(TRAILING_SILENCE_SECONDS*float64(sampleRate))
	samples := make([]float32, 0, estimate)
	events := make([]Event, 0, len(trials))
	currentTime := 0.0

	for _, trial := range trials {
		gap := minGap + rng.Float64()*(maxGap-minGap)
		gapSamples := int(gap * float64(sampleRate))
		samples = append(samples, make([]float32, gapSamples)...)
		currentTime += float64(gapSamples) / float64(sampleRate)

		tone := synth.Generate(trial.Frequency, trial.Intensity, cfg.Audio.ToneDuration, calibrationVolume)
		startTime := currentTime
		samples = append(samples, tone...)
		currentTime += float64(len(tone)) / float64(sampleRate)

		events = append(events, Event{StartTime: startTime, EndTime: currentTime, Trial: trial})
	}

	trailing := int(TRAILING_SILENCE_SECONDS * float64(sampleRate))
	samples = append(samples, make([]float32, trailing)...)

	return &Timeline{Samples: samples, SampleRate: sampleRate, Events: events}
}
