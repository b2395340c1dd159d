// response_correlator.go - Matches listener key presses to pending tone events

package main

import "time"

// RESPONSE_TOLERANCE_SECONDS extends each tone's window: a press up to this
// long after the tone ends still counts as hearing it.
const RESPONSE_TOLERANCE_SECONDS = 1.0

// ResponseCorrelator resolves "I heard that" signals against the timeline.
// Matching is by wall-clock elapsed time since playback started, so the
// caller must create it at the same moment it starts the engine.
type ResponseCorrelator struct {
	timeline  *Timeline
	store     *ResultsStore
	startTime time.Time
	tolerance float64
}

func NewResponseCorrelator(timeline *Timeline, store *ResultsStore, startTime time.Time) *ResponseCorrelator {
	return &ResponseCorrelator{
		timeline:  timeline,
		store:     store,
		startTime: startTime,
		tolerance: RESPONSE_TOLERANCE_SECONDS,
	}
}

// OnHeard resolves one listener signal at time now. The earliest event whose
// trial is still unset and whose window [start, end+tolerance] contains the
// elapsed time is marked heard and recorded; later candidates keep waiting
// for their own signal. Returns the matched trial, or nil when the signal
// fell outside every pending window.
func (rc *ResponseCorrelator) OnHeard(now time.Time) *Trial {
	elapsed := now.Sub(rc.startTime).Seconds()

	for i := range rc.timeline.Events {
		event := &rc.timeline.Events[i]
		if event.Trial.Heard != HEARD_UNSET {
			continue
		}
		if elapsed < event.StartTime || elapsed > event.EndTime+rc.tolerance {
			continue
		}
		event.Trial.Heard = HEARD_YES
		rc.store.Add(event.Trial.Ear, event.Trial.Frequency, event.Trial.Intensity, true)
		return event.Trial
	}
	return nil
}

// FinishSweep marks every still-unset trial as not heard and records it.
// Called exactly once, after playback has fully drained.
func (rc *ResponseCorrelator) FinishSweep() {
	for i := range rc.timeline.Events {
		trial := rc.timeline.Events[i].Trial
		if trial.Heard != HEARD_UNSET {
			continue
		}
		trial.Heard = HEARD_NO
		rc.store.Add(trial.Ear, trial.Frequency, trial.Intensity, false)
	}
}
