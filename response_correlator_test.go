package main

import (
	"testing"
	"time"
)

func correlatorFixture() ([]*Trial, *ResultsStore, *ResponseCorrelator, time.Time) {
	trials := []*Trial{
		{Ear: EAR_LEFT, Frequency: 1000, Intensity: 0.5},
		{Ear: EAR_RIGHT, Frequency: 2000, Intensity: 0.3},
		{Ear: EAR_LEFT, Frequency: 4000, Intensity: 1.0},
	}
	timeline := &Timeline{
		SampleRate: 44100,
		Events: []Event{
			{StartTime: 1.0, EndTime: 1.33, Trial: trials[0]},
			{StartTime: 2.5, EndTime: 2.83, Trial: trials[1]},
			{StartTime: 4.0, EndTime: 4.33, Trial: trials[2]},
		},
	}
	store := NewResultsStore()
	start := time.Now()
	return trials, store, NewResponseCorrelator(timeline, store, start), start
}

func signalAt(start time.Time, seconds float64) time.Time {
	return start.Add(time.Duration(seconds * float64(time.Second)))
}

func TestOnHeardMatchesDuringTone(t *testing.T) {
	trials, store, rc, start := correlatorFixture()

	matched := rc.OnHeard(signalAt(start, 1.1))
	if matched != trials[0] {
		t.Fatalf("matched %v, expected the first trial", matched)
	}
	if trials[0].Heard != HEARD_YES {
		t.Errorf("trial state = %d, expected heard", trials[0].Heard)
	}

	results := store.EarResults(EAR_LEFT)[1000.0]
	if len(results) != 1 || !results[0].Heard || results[0].Intensity != 0.5 {
		t.Errorf("store recorded %v, expected one heard result at intensity 0.5", results)
	}
}

func TestOnHeardMatchesWithinTolerance(t *testing.T) {
	trials, _, rc, start := correlatorFixture()

	// 2.3s is after the first tone ends (1.33s) but inside its tolerance.
	if matched := rc.OnHeard(signalAt(start, 2.3)); matched != trials[0] {
		t.Fatalf("matched %v, expected the first trial via the tolerance window", matched)
	}
}

func TestOnHeardOutsideAnyWindow(t *testing.T) {
	trials, store, rc, start := correlatorFixture()

	cases := []float64{0.5, 3.9, 5.4}
	for _, seconds := range cases {
		if matched := rc.OnHeard(signalAt(start, seconds)); matched != nil {
			t.Errorf("signal at %.1fs matched %v, expected no match", seconds, matched)
		}
	}

	for i, trial := range trials {
		if trial.Heard != HEARD_UNSET {
			t.Errorf("trial %d state = %d, expected still unset", i, trial.Heard)
		}
	}
	if !store.Empty() {
		t.Error("store recorded results from unmatched signals")
	}
}

func TestOnHeardEarliestPendingWins(t *testing.T) {
	trials := []*Trial{
		{Ear: EAR_LEFT, Frequency: 1000, Intensity: 0.5},
		{Ear: EAR_LEFT, Frequency: 2000, Intensity: 0.5},
	}
	timeline := &Timeline{
		SampleRate: 44100,
		Events: []Event{
			{StartTime: 1.0, EndTime: 1.33, Trial: trials[0]},
			{StartTime: 1.8, EndTime: 2.13, Trial: trials[1]},
		},
	}
	store := NewResultsStore()
	start := time.Now()
	rc := NewResponseCorrelator(timeline, store, start)

	// 2.0s falls in both tolerance windows. Two presses resolve the events
	// in order; a third has nothing left to claim.
	if matched := rc.OnHeard(signalAt(start, 2.0)); matched != trials[0] {
		t.Fatalf("first signal matched %v, expected the earlier event", matched)
	}
	if matched := rc.OnHeard(signalAt(start, 2.0)); matched != trials[1] {
		t.Fatalf("second signal matched %v, expected the later event", matched)
	}
	if matched := rc.OnHeard(signalAt(start, 2.0)); matched != nil {
		t.Fatalf("third signal matched %v, expected no pending events", matched)
	}
}

func TestOnHeardClaimsEventOnlyOnce(t *testing.T) {
	trials, store, rc, start := correlatorFixture()

	if matched := rc.OnHeard(signalAt(start, 1.2)); matched != trials[0] {
		t.Fatal("first signal did not match")
	}
	if matched := rc.OnHeard(signalAt(start, 1.25)); matched != nil {
		t.Fatalf("repeat signal matched %v, expected nothing left in window", matched)
	}

	if results := store.EarResults(EAR_LEFT)[1000.0]; len(results) != 1 {
		t.Errorf("store has %d entries for the trial, expected exactly 1", len(results))
	}
}

func TestFinishSweepResolvesRemaining(t *testing.T) {
	trials, store, rc, start := correlatorFixture()

	rc.OnHeard(signalAt(start, 1.1))
	rc.FinishSweep()

	if trials[0].Heard != HEARD_YES {
		t.Errorf("heard trial state = %d after sweep, expected unchanged", trials[0].Heard)
	}
	for _, i := range []int{1, 2} {
		if trials[i].Heard != HEARD_NO {
			t.Errorf("trial %d state = %d, expected marked not heard", i, trials[i].Heard)
		}
	}

	right := store.EarResults(EAR_RIGHT)[2000.0]
	if len(right) != 1 || right[0].Heard {
		t.Errorf("swept trial recorded %v, expected one not-heard result", right)
	}
	left := store.EarResults(EAR_LEFT)
	if len(left[1000.0]) != 1 || len(left[4000.0]) != 1 {
		t.Errorf("left ear results %v, expected one entry per frequency", left)
	}
}
