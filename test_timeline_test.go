package main

import (
	"math"
	"math/rand"
	"testing"
)

func compileTestTimeline(t *testing.T, trialCount int, seed int64) (*Timeline, []*Trial, *Config) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Testing.RandomizeOrder = false

	synth := NewToneSynthesizer(cfg.Audio.SampleRate, cfg.Audio.FadeDuration)
	trials := make([]*Trial, trialCount)
	frequencies := logSpace(250, 8000, trialCount)
	for i := range trials {
		trials[i] = &Trial{Ear: EAR_LEFT, Frequency: frequencies[i], Intensity: 1.0}
	}

	timeline := CompileTimeline(trials, synth, cfg, 0.5, rand.New(rand.NewSource(seed)))
	return timeline, trials, cfg
}

func TestCompileTimelineEventsMirrorTrials(t *testing.T) {
	timeline, trials, _ := compileTestTimeline(t, 10, 1)

	if len(timeline.Events) != len(trials) {
		t.Fatalf("%d events for %d trials", len(timeline.Events), len(trials))
	}
	for i, event := range timeline.Events {
		if event.Trial != trials[i] {
			t.Fatalf("event %d does not reference trial %d", i, i)
		}
	}
}

func TestCompileTimelineEventsOrderedAndDisjoint(t *testing.T) {
	timeline, _, cfg := compileTestTimeline(t, 10, 2)

	minGap := cfg.Testing.InterTestDelayRange[0]
	maxGap := cfg.Testing.InterTestDelayRange[1]
	quantum := 1.0 / float64(cfg.Audio.SampleRate)

	previousEnd := 0.0
	for i, event := range timeline.Events {
		if event.EndTime <= event.StartTime {
			t.Fatalf("event %d has non-positive span [%f, %f]", i, event.StartTime, event.EndTime)
		}
		gap := event.StartTime - previousEnd
		if gap < minGap-quantum || gap > maxGap+quantum {
			t.Errorf("gap before event %d = %f, expected within [%f, %f]", i, gap, minGap, maxGap)
		}
		previousEnd = event.EndTime
	}
}

func TestCompileTimelineDurationAccounting(t *testing.T) {
	timeline, _, cfg := compileTestTimeline(t, 10, 3)

	// Total length is the quantized gaps plus tones plus trailing silence.
	lastEnd := timeline.Events[len(timeline.Events)-1].EndTime
	expected := lastEnd + TRAILING_SILENCE_SECONDS
	if math.Abs(timeline.Duration()-expected) > 1.0/float64(cfg.Audio.SampleRate) {
		t.Errorf("duration = %f, expected %f", timeline.Duration(), expected)
	}

	// Bounds from the configured gap range.
	n := float64(len(timeline.Events))
	toneDuration := cfg.Audio.ToneDuration
	low := n*(cfg.Testing.InterTestDelayRange[0]+toneDuration) + TRAILING_SILENCE_SECONDS - 0.01
	high := n*(cfg.Testing.InterTestDelayRange[1]+toneDuration) + TRAILING_SILENCE_SECONDS + 0.01
	if timeline.Duration() < low || timeline.Duration() > high {
		t.Errorf("duration %f outside [%f, %f]", timeline.Duration(), low, high)
	}
}

func TestCompileTimelineAudioPlacement(t *testing.T) {
	timeline, _, _ := compileTestTimeline(t, 4, 4)
	rate := float64(timeline.SampleRate)

	for i, event := range timeline.Events {
		start := int(event.StartTime*rate + 0.5)
		end := int(event.EndTime*rate + 0.5)

		tone := computeStats(timeline.Samples[start:end])
		if tone.rms < 0.01 {
			t.Errorf("event %d window is silent (rms %f), expected tone energy", i, tone.rms)
		}

		gapStart := 0
		if i > 0 {
			gapStart = int(timeline.Events[i-1].EndTime*rate + 0.5)
		}
		for p := gapStart; p < start; p++ {
			if timeline.Samples[p] != 0 {
				t.Fatalf("gap sample %d before event %d is %f, expected silence", p, i, timeline.Samples[p])
			}
		}
	}

	// Trailing region is silent.
	lastEnd := int(timeline.Events[len(timeline.Events)-1].EndTime*rate + 0.5)
	for p := lastEnd; p < len(timeline.Samples); p++ {
		if timeline.Samples[p] != 0 {
			t.Fatalf("trailing sample %d is %f, expected silence", p, timeline.Samples[p])
		}
	}
}

func TestCompileTimelineBakesIntensityLaw(t *testing.T) {
	cfg := DefaultConfig()
	synth := NewToneSynthesizer(cfg.Audio.SampleRate, 0)
	calibration := 0.5

	trials := []*Trial{{Ear: EAR_LEFT, Frequency: 11025, Intensity: 0.5}}
	timeline := CompileTimeline(trials, synth, cfg, calibration, rand.New(rand.NewSource(5)))

	rate := float64(cfg.Audio.SampleRate)
	start := int(timeline.Events[0].StartTime*rate + 0.5)
	end := int(timeline.Events[0].EndTime*rate + 0.5)
	stats := computeStats(timeline.Samples[start:end])

	expected := toneVolume(0.5, calibration)
	if math.Abs(stats.peak-expected) > 1e-6 {
		t.Errorf("tone peak = %f, expected the law's amplitude %f", stats.peak, expected)
	}
}

func TestTimelineEventAt(t *testing.T) {
	timeline, _, _ := compileTestTimeline(t, 3, 6)

	first := timeline.Events[0]
	mid := (first.StartTime + first.EndTime) / 2
	if event := timeline.EventAt(mid); event == nil || event.Trial != first.Trial {
		t.Error("EventAt missed the middle of the first tone")
	}

	if event := timeline.EventAt(first.StartTime / 2); event != nil {
		t.Error("EventAt matched inside the leading gap")
	}
	if event := timeline.EventAt(timeline.Duration() + 10); event != nil {
		t.Error("EventAt matched beyond the timeline")
	}
}

func TestCompileTimelineEmptySequence(t *testing.T) {
	cfg := DefaultConfig()
	synth := NewToneSynthesizer(cfg.Audio.SampleRate, cfg.Audio.FadeDuration)

	timeline := CompileTimeline(nil, synth, cfg, 0.5, rand.New(rand.NewSource(7)))
	if len(timeline.Events) != 0 {
		t.Fatalf("empty sequence produced %d events", len(timeline.Events))
	}
	if math.Abs(timeline.Duration()-TRAILING_SILENCE_SECONDS) > 1e-6 {
		t.Errorf("empty timeline duration = %f, expected just the trailing silence", timeline.Duration())
	}
}
