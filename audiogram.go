// audiogram.go - Terminal audiogram rendering with previous-result overlays

package main

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// AUDIOGRAM_MAX_DB is the right edge of the bar scale. Thresholds beyond
	// it clamp to a full bar.
	AUDIOGRAM_MAX_DB  = 70.0
	AUDIOGRAM_BAR_LEN = 35
)

func earLabel(ear Ear) string {
	if ear == EAR_LEFT {
		return "Left"
	}
	return "Right"
}

// thresholdBar renders a threshold as a proportional bar. Longer bar means
// more loss, mirroring how a clinical audiogram descends.
func thresholdBar(db float64) string {
	if db < 0 {
		db = 0
	}
	if db > AUDIOGRAM_MAX_DB {
		db = AUDIOGRAM_MAX_DB
	}
	n := int(db/AUDIOGRAM_MAX_DB*AUDIOGRAM_BAR_LEN + 0.5)
	return strings.Repeat("█", n)
}

// PrintAudiogram draws both ears' threshold profiles as horizontal bars, one
// row per tested frequency, followed by a compact summary line for each
// loaded previous session.
func PrintAudiogram(analyser *HearingAnalyser, current map[Ear]map[float64][]IntensityResult, previous []*PreviousResult) {
	fmt.Println("\nHearing Sensitivity Profile (lower dB = better hearing)")

	for _, ear := range []Ear{EAR_LEFT, EAR_RIGHT} {
		earAnalysis := analyser.analyseEar(current[ear])
		fmt.Printf("\n%s ear - %s (average %.1f dB)\n",
			earLabel(ear), earAnalysis.Classification, earAnalysis.AverageThreshold)

		if len(earAnalysis.Frequencies) == 0 {
			fmt.Println("  (no results)")
			continue
		}
		for i, frequency := range earAnalysis.Frequencies {
			fmt.Printf("  %7.0f Hz %-*s %5.1f dB\n",
				frequency, AUDIOGRAM_BAR_LEN, thresholdBar(earAnalysis.Thresholds[i]), earAnalysis.Thresholds[i])
		}

		for _, prev := range previous {
			fmt.Printf("  previous %s (%s): %s\n",
				prev.Filename, prev.Timestamp, previousSummary(analyser, prev.Results[ear]))
		}
	}
}

// previousSummary condenses one prior session's ear into a single line so
// overlays stay readable on narrow terminals.
func previousSummary(analyser *HearingAnalyser, earResults map[float64][]IntensityResult) string {
	if len(earResults) == 0 {
		return "no results"
	}

	frequencies := make([]float64, 0, len(earResults))
	for frequency := range earResults {
		frequencies = append(frequencies, frequency)
	}
	sort.Float64s(frequencies)

	thresholds := make([]float64, len(frequencies))
	for i, frequency := range frequencies {
		thresholds[i] = analyser.CalculateThreshold(earResults[frequency])
	}

	return fmt.Sprintf("average %.1f dB over %d bands", mean(thresholds), len(frequencies))
}
