// hearing_analysis.go - Threshold estimation, classification, and age-norm comparison

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	// UNHEARD_THRESHOLD_DB is the loss assumed for a frequency where no
	// intensity was heard at all.
	UNHEARD_THRESHOLD_DB = 60.0

	HIGH_FREQUENCY_CUTOFF_HZ = 4000.0
)

// HearingAnalyser turns raw trial outcomes into estimated thresholds and a
// plain-language profile. Norm values are typical audiometric thresholds in
// dB HL by decade of age.
type HearingAnalyser struct {
	ageHearingNorms map[int]map[float64]float64
}

func NewHearingAnalyser() *HearingAnalyser {
	return &HearingAnalyser{
		ageHearingNorms: map[int]map[float64]float64{
			20: {125: 5, 250: 5, 500: 5, 1000: 5, 2000: 5, 4000: 5, 8000: 10},
			30: {125: 5, 250: 5, 500: 5, 1000: 5, 2000: 10, 4000: 15, 8000: 20},
			40: {125: 5, 250: 5, 500: 5, 1000: 10, 2000: 15, 4000: 25, 8000: 30},
			50: {125: 10, 250: 10, 500: 10, 1000: 15, 2000: 20, 4000: 35, 8000: 40},
			60: {125: 15, 250: 15, 500: 15, 1000: 20, 2000: 30, 4000: 45, 8000: 50},
			70: {125: 20, 250: 20, 500: 20, 1000: 25, 2000: 35, 4000: 55, 8000: 60},
		},
	}
}

// CalculateThreshold estimates one frequency's hearing threshold in dB from
// its trial outcomes: the softest intensity heard, converted to attenuation
// below full scale. No heard trials at all maps to UNHEARD_THRESHOLD_DB.
func (ha *HearingAnalyser) CalculateThreshold(results []IntensityResult) float64 {
	minHeard := 0.0
	found := false
	for _, r := range results {
		if !r.Heard {
			continue
		}
		if !found || r.Intensity < minHeard {
			minHeard = r.Intensity
			found = true
		}
	}
	if !found {
		return UNHEARD_THRESHOLD_DB
	}
	return math.Max(0, -20*math.Log10(minHeard))
}

type HighFrequencyAssessment struct {
	Severity    string  `json:"severity"`
	AverageLoss float64 `json:"average_loss,omitempty"`
	Details     string  `json:"details"`
}

type EarAnalysis struct {
	Frequencies       []float64               `json:"frequencies"`
	Thresholds        []float64               `json:"thresholds"`
	AverageThreshold  float64                 `json:"average_threshold"`
	HighFrequencyLoss HighFrequencyAssessment `json:"high_frequency_loss"`
	Classification    string                  `json:"hearing_classification"`
}

type EarComparison struct {
	Asymmetry    string  `json:"asymmetry"`
	DifferenceDB float64 `json:"difference_db"`
	BetterEar    Ear     `json:"better_ear"`
	Details      string  `json:"details"`
}

type AgeComparison struct {
	AverageDeviation float64 `json:"average_deviation"`
	Assessment       string  `json:"assessment"`
	ReferenceAge     int     `json:"reference_age"`
}

type ProfileAnalysis struct {
	LeftEar         EarAnalysis              `json:"left_ear"`
	RightEar        EarAnalysis              `json:"right_ear"`
	Comparison      EarComparison            `json:"comparison"`
	AgeComparison   map[string]AgeComparison `json:"age_comparison,omitempty"`
	Recommendations []string                 `json:"recommendations"`
}

// AnalyseProfile runs the full analysis over both ears. age <= 0 skips the
// age-norm comparison.
func (ha *HearingAnalyser) AnalyseProfile(results map[Ear]map[float64][]IntensityResult, age int) *ProfileAnalysis {
	analysis := &ProfileAnalysis{
		LeftEar:  ha.analyseEar(results[EAR_LEFT]),
		RightEar: ha.analyseEar(results[EAR_RIGHT]),
	}
	analysis.Comparison = ha.compareEars(analysis.LeftEar, analysis.RightEar)
	if age > 0 {
		analysis.AgeComparison = map[string]AgeComparison{
			"left_ear":  ha.compareToAgeNorms(analysis.LeftEar, age),
			"right_ear": ha.compareToAgeNorms(analysis.RightEar, age),
		}
	}
	analysis.Recommendations = ha.generateRecommendations(analysis)
	return analysis
}

func (ha *HearingAnalyser) analyseEar(earResults map[float64][]IntensityResult) EarAnalysis {
	frequencies := make([]float64, 0, len(earResults))
	for frequency := range earResults {
		frequencies = append(frequencies, frequency)
	}
	sort.Float64s(frequencies)

	thresholds := make([]float64, len(frequencies))
	for i, frequency := range frequencies {
		thresholds[i] = ha.CalculateThreshold(earResults[frequency])
	}

	return EarAnalysis{
		Frequencies:       frequencies,
		Thresholds:        thresholds,
		AverageThreshold:  mean(thresholds),
		HighFrequencyLoss: ha.assessHighFrequencyLoss(frequencies, thresholds),
		Classification:    classifyHearingLoss(mean(thresholds)),
	}
}

func classifyHearingLoss(averageThreshold float64) string {
	switch {
	case averageThreshold <= 15:
		return "Normal hearing"
	case averageThreshold <= 25:
		return "Mild hearing loss"
	case averageThreshold <= 40:
		return "Moderate hearing loss"
	case averageThreshold <= 70:
		return "Severe hearing loss"
	default:
		return "Profound hearing loss"
	}
}

func (ha *HearingAnalyser) assessHighFrequencyLoss(frequencies, thresholds []float64) HighFrequencyAssessment {
	var highFreq []float64
	for i, frequency := range frequencies {
		if frequency >= HIGH_FREQUENCY_CUTOFF_HZ {
			highFreq = append(highFreq, thresholds[i])
		}
	}
	if len(highFreq) == 0 {
		return HighFrequencyAssessment{
			Severity: "unknown",
			Details:  "No high frequency data",
		}
	}

	avg := mean(highFreq)
	var severity string
	switch {
	case avg < 15:
		severity = "normal"
	case avg < 25:
		severity = "mild"
	case avg < 40:
		severity = "moderate"
	default:
		severity = "severe"
	}
	return HighFrequencyAssessment{
		Severity:    severity,
		AverageLoss: avg,
		Details:     fmt.Sprintf("Average high-frequency threshold: %.1f dB", avg),
	}
}

func (ha *HearingAnalyser) compareEars(left, right EarAnalysis) EarComparison {
	difference := math.Abs(left.AverageThreshold - right.AverageThreshold)

	var asymmetry string
	switch {
	case difference < 5:
		asymmetry = "symmetrical"
	case difference < 15:
		asymmetry = "mild asymmetry"
	default:
		asymmetry = "significant asymmetry"
	}

	betterEar := EAR_RIGHT
	if left.AverageThreshold < right.AverageThreshold {
		betterEar = EAR_LEFT
	}

	return EarComparison{
		Asymmetry:    asymmetry,
		DifferenceDB: difference,
		BetterEar:    betterEar,
		Details:      fmt.Sprintf("%.1f dB difference between ears", difference),
	}
}

// compareToAgeNorms scores each measured frequency against the nearest norm
// frequency of the nearest age decade. Ties in nearness resolve toward the
// lower decade and the lower frequency.
func (ha *HearingAnalyser) compareToAgeNorms(ear EarAnalysis, age int) AgeComparison {
	ageGroups := make([]int, 0, len(ha.ageHearingNorms))
	for group := range ha.ageHearingNorms {
		ageGroups = append(ageGroups, group)
	}
	sort.Ints(ageGroups)

	closestAge := ageGroups[0]
	for _, group := range ageGroups[1:] {
		if intAbs(group-age) < intAbs(closestAge-age) {
			closestAge = group
		}
	}

	norms := ha.ageHearingNorms[closestAge]
	normFreqs := make([]float64, 0, len(norms))
	for frequency := range norms {
		normFreqs = append(normFreqs, frequency)
	}
	sort.Float64s(normFreqs)

	deviations := make([]float64, 0, len(ear.Frequencies))
	for i, frequency := range ear.Frequencies {
		normFreq := normFreqs[0]
		for _, f := range normFreqs[1:] {
			if math.Abs(f-frequency) < math.Abs(normFreq-frequency) {
				normFreq = f
			}
		}
		deviations = append(deviations, ear.Thresholds[i]-norms[normFreq])
	}

	avgDeviation := mean(deviations)
	var assessment string
	switch {
	case avgDeviation < 5:
		assessment = "within normal limits for age"
	case avgDeviation < 15:
		assessment = "slightly worse than age norms"
	default:
		assessment = "significantly worse than age norms"
	}

	return AgeComparison{
		AverageDeviation: avgDeviation,
		Assessment:       assessment,
		ReferenceAge:     closestAge,
	}
}

func (ha *HearingAnalyser) generateRecommendations(analysis *ProfileAnalysis) []string {
	var recommendations []string

	ears := []struct {
		name string
		ear  EarAnalysis
	}{
		{"left ear", analysis.LeftEar},
		{"right ear", analysis.RightEar},
	}

	for _, e := range ears {
		classification := strings.ToLower(e.ear.Classification)
		if strings.Contains(classification, "moderate") || strings.Contains(classification, "severe") {
			recommendations = append(recommendations,
				fmt.Sprintf("Consider consulting an audiologist about %s in your %s", classification, e.name))
		}
	}

	if analysis.Comparison.Asymmetry == "significant asymmetry" {
		recommendations = append(recommendations,
			"Significant hearing difference between ears detected. Consider professional evaluation.")
	}

	for _, e := range ears {
		severity := e.ear.HighFrequencyLoss.Severity
		if severity == "moderate" || severity == "severe" {
			recommendations = append(recommendations,
				fmt.Sprintf("High-frequency hearing loss detected in %s. This may affect speech understanding in noisy environments.", e.name))
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Your hearing appears to be within normal ranges.")
	}
	recommendations = append(recommendations,
		"Regular hearing checks are recommended, especially if you notice changes.")

	return recommendations
}

type ReportSummary struct {
	LeftEarClassification  string   `json:"left_ear_classification"`
	RightEarClassification string   `json:"right_ear_classification"`
	EarSymmetry            string   `json:"ear_symmetry"`
	PrimaryRecommendations []string `json:"primary_recommendations"`
}

type DetailedReport struct {
	TestDate string           `json:"test_date"`
	Analysis *ProfileAnalysis `json:"analysis"`
	Summary  ReportSummary    `json:"summary"`
}

// CreateDetailedReport wraps an analysis with a summary block and optionally
// writes it to savePath as indented JSON.
func (ha *HearingAnalyser) CreateDetailedReport(results map[Ear]map[float64][]IntensityResult, age int, savePath string) (*DetailedReport, error) {
	analysis := ha.AnalyseProfile(results, age)

	primary := analysis.Recommendations
	if len(primary) > 2 {
		primary = primary[:2]
	}

	report := &DetailedReport{
		TestDate: time.Now().Format(time.RFC3339),
		Analysis: analysis,
		Summary: ReportSummary{
			LeftEarClassification:  analysis.LeftEar.Classification,
			RightEarClassification: analysis.RightEar.Classification,
			EarSymmetry:            analysis.Comparison.Asymmetry,
			PrimaryRecommendations: primary,
		},
	}

	if savePath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %v", err)
		}
		if err := os.WriteFile(savePath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write report: %v", err)
		}
	}
	return report, nil
}

// PrintAnalysis writes the human-readable summary to stdout.
func (ha *HearingAnalyser) PrintAnalysis(analysis *ProfileAnalysis) {
	fmt.Println("\nHearing Analysis Results")
	fmt.Println(strings.Repeat("=", 40))

	ears := []struct {
		label string
		key   string
		ear   EarAnalysis
	}{
		{"Left Ear", "left_ear", analysis.LeftEar},
		{"Right Ear", "right_ear", analysis.RightEar},
	}

	for _, e := range ears {
		fmt.Printf("\n%s:\n", e.label)
		fmt.Printf("  Classification: %s\n", e.ear.Classification)
		fmt.Printf("  Average threshold: %.1f dB\n", e.ear.AverageThreshold)
		fmt.Printf("  High-frequency loss: %s\n", e.ear.HighFrequencyLoss.Severity)
		if comparison, ok := analysis.AgeComparison[e.key]; ok {
			fmt.Printf("  Versus age %d norms: %s (%+.1f dB)\n",
				comparison.ReferenceAge, comparison.Assessment, comparison.AverageDeviation)
		}
	}

	fmt.Printf("\nEar comparison: %s\n", analysis.Comparison.Asymmetry)

	fmt.Println("\nRecommendations:")
	for i, recommendation := range analysis.Recommendations {
		fmt.Printf("  %d. %s\n", i+1, recommendation)
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
