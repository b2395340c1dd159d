// test_plan.go - Trial sequence construction for quick and full test modes

package main

import (
	"math"
	"math/rand"
)

type Ear string

const (
	EAR_LEFT  Ear = "left"
	EAR_RIGHT Ear = "right"
)

// HeardState is tri-valued: a trial stays unset until the listener signals
// during its response window or the finish sweep marks it missed.
type HeardState int

const (
	HEARD_UNSET HeardState = iota
	HEARD_YES
	HEARD_NO
)

type Trial struct {
	Ear       Ear
	Frequency float64
	Intensity float64
	Heard     HeardState
}

const (
	TEST_MODE_QUICK = "quick"
	TEST_MODE_FULL  = "full"

	QUICK_NUM_FREQUENCIES = 8
	QUICK_MIN_FREQUENCY   = 250.0
	QUICK_MAX_FREQUENCY   = 8000.0
)

var quickIntensityLevels = []float64{0.2, 0.6, 1.0}

// logSpace returns n logarithmically spaced values from lo to hi inclusive.
func logSpace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	logLo := math.Log10(lo)
	step := (math.Log10(hi) - logLo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, logLo+float64(i)*step)
	}
	return out
}

// BuildTestSequence expands the mode's frequency and intensity grids into one
// trial per (ear, frequency, intensity) combination, then shuffles unless the
// configuration pins the canonical order. Every trial starts unset.
func BuildTestSequence(mode string, cfg *Config, rng *rand.Rand) []*Trial {
	var frequencies, intensities []float64
	if mode == TEST_MODE_QUICK {
		frequencies = logSpace(QUICK_MIN_FREQUENCY, QUICK_MAX_FREQUENCY, QUICK_NUM_FREQUENCIES)
		intensities = quickIntensityLevels
	} else {
		frequencies = logSpace(cfg.Testing.MinFrequency, cfg.Testing.MaxFrequency, cfg.Testing.FrequencyBands)
		intensities = cfg.Testing.IntensityLevels
	}

	trials := make([]*Trial, 0, 2*len(frequencies)*len(intensities))
	for _, ear := range []Ear{EAR_LEFT, EAR_RIGHT} {
		for _, frequency := range frequencies {
			for _, intensity := range intensities {
				trials = append(trials, &Trial{Ear: ear, Frequency: frequency, Intensity: intensity})
			}
		}
	}

	if cfg.Testing.RandomizeOrder {
		rng.Shuffle(len(trials), func(i, j int) {
			trials[i], trials[j] = trials[j], trials[i]
		})
	}
	return trials
}
