// results_store.go - Per-trial outcome accumulation and JSON persistence

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

type IntensityResult struct {
	Intensity float64 `json:"intensity"`
	Heard     bool    `json:"heard"`
}

// ResultsStore accumulates trial outcomes per ear and frequency. The mutex
// covers the map only; nothing here runs on the audio render path.
type ResultsStore struct {
	mutex   sync.Mutex
	results map[Ear]map[float64][]IntensityResult
}

func NewResultsStore() *ResultsStore {
	return &ResultsStore{
		results: map[Ear]map[float64][]IntensityResult{
			EAR_LEFT:  {},
			EAR_RIGHT: {},
		},
	}
}

func (rs *ResultsStore) Add(ear Ear, frequency, intensity float64, heard bool) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	rs.results[ear][frequency] = append(rs.results[ear][frequency], IntensityResult{
		Intensity: intensity,
		Heard:     heard,
	})
}

// EarResults returns a deep copy of one ear's outcomes, keyed by frequency.
func (rs *ResultsStore) EarResults(ear Ear) map[float64][]IntensityResult {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	out := make(map[float64][]IntensityResult, len(rs.results[ear]))
	for frequency, list := range rs.results[ear] {
		out[frequency] = append([]IntensityResult(nil), list...)
	}
	return out
}

func (rs *ResultsStore) AllResults() map[Ear]map[float64][]IntensityResult {
	return map[Ear]map[float64][]IntensityResult{
		EAR_LEFT:  rs.EarResults(EAR_LEFT),
		EAR_RIGHT: rs.EarResults(EAR_RIGHT),
	}
}

func (rs *ResultsStore) Empty() bool {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	for _, freqs := range rs.results {
		if len(freqs) > 0 {
			return false
		}
	}
	return true
}

// resultsFile is the on-disk schema. JSON object keys must be strings, so
// frequencies are stringified on save and parsed back on load; in-memory
// they are always numeric.
type resultsFile struct {
	Timestamp         string                                  `json:"timestamp"`
	CalibrationVolume float64                                 `json:"calibration_volume"`
	FrequencyBands    []float64                               `json:"frequency_bands"`
	IntensityLevels   []float64                               `json:"intensity_levels"`
	Results           map[string]map[string][]IntensityResult `json:"results"`
}

func formatFrequencyKey(frequency float64) string {
	return strconv.FormatFloat(frequency, 'g', -1, 64)
}

// SaveResults writes the accumulated outcomes with the session parameters
// they were measured under. frequencyBands and intensityLevels record the
// configured grids, not just the frequencies that appear in the results.
func (rs *ResultsStore) SaveResults(path string, calibrationVolume float64, frequencyBands, intensityLevels []float64) error {
	rs.mutex.Lock()
	onDisk := make(map[string]map[string][]IntensityResult, len(rs.results))
	for ear, freqs := range rs.results {
		earMap := make(map[string][]IntensityResult, len(freqs))
		for frequency, list := range freqs {
			earMap[formatFrequencyKey(frequency)] = append([]IntensityResult(nil), list...)
		}
		onDisk[string(ear)] = earMap
	}
	rs.mutex.Unlock()

	data, err := json.MarshalIndent(resultsFile{
		Timestamp:         time.Now().Format(time.RFC3339),
		CalibrationVolume: calibrationVolume,
		FrequencyBands:    frequencyBands,
		IntensityLevels:   intensityLevels,
		Results:           onDisk,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %v", err)
	}
	return nil
}

// PreviousResult is one loaded results file, normalized to numeric frequency
// keys. Sessions overlay these on the audiogram for comparison.
type PreviousResult struct {
	Timestamp         string
	CalibrationVolume float64
	Results           map[Ear]map[float64][]IntensityResult
	Filename          string
}

// LoadPreviousResults parses a saved results file. Any failure is reported
// without side effects, so a session's already-loaded overlays survive a bad
// file.
func LoadPreviousResults(path string) (*PreviousResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %v", err)
	}

	var file resultsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %v", path, err)
	}

	normalized := map[Ear]map[float64][]IntensityResult{
		EAR_LEFT:  {},
		EAR_RIGHT: {},
	}
	for _, ear := range []Ear{EAR_LEFT, EAR_RIGHT} {
		for freqStr, list := range file.Results[string(ear)] {
			frequency, err := strconv.ParseFloat(freqStr, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid frequency key %q in %s: %v", freqStr, path, err)
			}
			normalized[ear][frequency] = list
		}
	}

	calibrationVolume := file.CalibrationVolume
	if calibrationVolume == 0 {
		calibrationVolume = 0.5
	}

	return &PreviousResult{
		Timestamp:         file.Timestamp,
		CalibrationVolume: calibrationVolume,
		Results:           normalized,
		Filename:          filepath.Base(path),
	}, nil
}
