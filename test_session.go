// test_session.go - Interactive session flow: testing, calibration, analysis

package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

const (
	MONITOR_INTERVAL = 100 * time.Millisecond

	KEY_SPACE  = ' '
	KEY_RETURN = '\n'
	KEY_QUIT   = 'q'
	KEY_CTRL_C = 0x03

	CAL_SOFTEST_INTENSITY = 0.1
	CAL_SOFTEST_DURATION  = 5.0
	CAL_TONE_DURATION     = 1.0
	CAL_VOLUME_STEP       = 0.01
	CAL_VOLUME_MIN        = 0.1
	CAL_VOLUME_MAX        = 1.0
)

// TestSession drives one interactive mode per process run. The engine and
// host may be nil for analysis-only sessions, which never touch audio or the
// terminal.
type TestSession struct {
	cfg        *Config
	configPath string
	engine     *AudioStreamEngine
	synth      *ToneSynthesizer
	host       *ConsoleHost
	store      *ResultsStore
	analyser   *HearingAnalyser
	previous   []*PreviousResult
	rng        *rand.Rand
}

func NewTestSession(cfg *Config, configPath string, engine *AudioStreamEngine, host *ConsoleHost) *TestSession {
	return &TestSession{
		cfg:        cfg,
		configPath: configPath,
		engine:     engine,
		synth:      NewToneSynthesizer(cfg.Audio.SampleRate, cfg.Audio.FadeDuration),
		host:       host,
		store:      NewResultsStore(),
		analyser:   NewHearingAnalyser(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadPrevious adds a saved results file to the audiogram overlay set. A bad
// file is reported and leaves already-loaded overlays untouched.
func (s *TestSession) LoadPrevious(path string) error {
	prev, err := LoadPreviousResults(path)
	if err != nil {
		return err
	}
	s.previous = append(s.previous, prev)
	fmt.Printf("Loaded previous results from %s (%s)\n", path, prev.Timestamp)
	return nil
}

// RunHearingTest compiles the whole test into one buffer, streams it while
// correlating key presses, then analyses and optionally saves the outcome.
func (s *TestSession) RunHearingTest(mode, resultsPath string, age int, reportPath string) error {
	s.store = NewResultsStore()

	trials := BuildTestSequence(mode, s.cfg, s.rng)
	fmt.Println("Preparing audio stream...")
	timeline := CompileTimeline(trials, s.synth, s.cfg, s.engine.CalibrationVolume(), s.rng)

	modeName := "Quick"
	if mode == TEST_MODE_FULL {
		modeName = "Full"
	}
	fmt.Printf("\n%s hearing test: %d tones, about %.1f minutes.\n\n", modeName, len(timeline.Events), timeline.Duration()/60)
	fmt.Println("Press SPACE or RETURN the moment you hear a tone. Tones arrive at")
	fmt.Printf("random intervals of %.2f-%.2f seconds and many are very soft.\n\n",
		s.cfg.Testing.InterTestDelayRange[0], s.cfg.Testing.InterTestDelayRange[1])
	fmt.Println("Put on your headphones, find a quiet room, and press any key to")
	fmt.Println("start. Press q during the test to abort.")

	if err := s.host.Start(); err != nil {
		return err
	}

	if key := <-s.host.Keys(); key == KEY_QUIT || key == KEY_CTRL_C {
		s.host.Stop()
		fmt.Println("Test cancelled.")
		return nil
	}

	startTime := time.Now()
	correlator := NewResponseCorrelator(timeline, s.store, startTime)
	s.engine.Play(timeline.Samples)

	ticker := time.NewTicker(MONITOR_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case key := <-s.host.Keys():
			switch key {
			case KEY_SPACE, KEY_RETURN:
				correlator.OnHeard(time.Now())
			case KEY_QUIT, KEY_CTRL_C:
				s.engine.Play(nil)
				s.host.Stop()
				fmt.Println("\nTest aborted. Partial results discarded.")
				return nil
			}
		case <-ticker.C:
			if s.engine.IsFinished() {
				s.host.Stop()
				fmt.Println("\nTest completed!")
				return s.finishTest(correlator, resultsPath, age, reportPath)
			}
			s.printProgress(timeline)
		}
	}
}

// printProgress redraws the single status line. Runs with the terminal in
// raw mode, so it must stay on one line and end without a newline.
func (s *TestSession) printProgress(timeline *Timeline) {
	progress := s.engine.ElapsedFraction() * 100

	if s.cfg.UI.ShowFrequencyDuringTest {
		if event := timeline.EventAt(s.engine.ElapsedFraction() * timeline.Duration()); event != nil {
			fmt.Printf("\rProgress: %5.1f%%  [%s %.0f Hz]        ",
				progress, event.Trial.Ear, event.Trial.Frequency)
			return
		}
	}
	fmt.Printf("\rProgress: %5.1f%%                    ", progress)
}

func (s *TestSession) finishTest(correlator *ResponseCorrelator, resultsPath string, age int, reportPath string) error {
	correlator.FinishSweep()

	results := s.store.AllResults()
	analysis := s.analyser.AnalyseProfile(results, age)
	s.analyser.PrintAnalysis(analysis)
	PrintAudiogram(s.analyser, results, s.previous)

	if resultsPath != "" && (s.cfg.UI.AutoSaveResults || s.confirmSave(resultsPath)) {
		bands := logSpace(s.cfg.Testing.MinFrequency, s.cfg.Testing.MaxFrequency, s.cfg.Testing.FrequencyBands)
		if err := s.store.SaveResults(resultsPath, s.engine.CalibrationVolume(), bands, s.cfg.Testing.IntensityLevels); err != nil {
			return err
		}
		fmt.Printf("\nResults saved to %s\n", resultsPath)
	}

	if reportPath != "" {
		if _, err := s.analyser.CreateDetailedReport(results, age, reportPath); err != nil {
			return err
		}
		fmt.Printf("Detailed report saved to %s\n", reportPath)
	}
	return nil
}

func (s *TestSession) confirmSave(path string) bool {
	fmt.Printf("\nSave results to %s? [y/n] ", path)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

// RunCalibration adjusts the master volume against reference tones and
// persists the result. The saved volume becomes the ceiling every test tone
// is scaled against, so this runs before a listener's first test.
func (s *TestSession) RunCalibration() error {
	fmt.Println("\nCalibration")
	fmt.Println("Set the volume so the reference tone is comfortable and the")
	fmt.Println("softest tone is only just audible.")
	fmt.Println()
	fmt.Println("  + / -   adjust volume")
	fmt.Println("  c       play the reference tone (1 s) and save the volume")
	fmt.Println("  s       play the softest test tone (5 s)")
	fmt.Println("  q       save and finish")

	if err := s.host.Start(); err != nil {
		return err
	}
	s.printVolume("")

	for {
		switch key := <-s.host.Keys(); key {
		case '+', '=':
			s.adjustVolume(CAL_VOLUME_STEP)
		case '-', '_':
			s.adjustVolume(-CAL_VOLUME_STEP)
		case 's':
			s.playSoftestTone()
		case 'c':
			if err := s.saveVolume(); err != nil {
				s.host.Stop()
				return err
			}
			s.playCalibrationTone()
		case KEY_QUIT, KEY_CTRL_C:
			err := s.saveVolume()
			s.host.Stop()
			if err != nil {
				return err
			}
			fmt.Printf("\nCalibration volume %.2f saved to %s\n", s.engine.CalibrationVolume(), s.configPath)
			return nil
		}
	}
}

func (s *TestSession) adjustVolume(delta float64) {
	volume := s.engine.CalibrationVolume() + delta
	if volume < CAL_VOLUME_MIN {
		volume = CAL_VOLUME_MIN
	}
	if volume > CAL_VOLUME_MAX {
		volume = CAL_VOLUME_MAX
	}
	s.engine.SetCalibrationVolume(volume)
	s.printVolume("")
}

func (s *TestSession) printVolume(note string) {
	fmt.Printf("\rVolume: %.2f  %-40s", s.engine.CalibrationVolume(), note)
}

// playSoftestTone previews the quietest tone a test will contain at the
// current volume. Generate already fades the buffer once; the second pass
// doubles the fade depth on this long preview.
func (s *TestSession) playSoftestTone() {
	tone := s.synth.Generate(s.cfg.Calibration.CalibrationFrequency, CAL_SOFTEST_INTENSITY,
		CAL_SOFTEST_DURATION, s.engine.CalibrationVolume())
	s.synth.ApplyFade(tone)
	s.engine.Play(tone)
	s.printVolume("softest tone playing...")
}

// playCalibrationTone plays the reference sine with the buffer itself at
// the calibration amplitude. The engine scales by the calibration volume
// again on output, so the tone lands at volume squared.
func (s *TestSession) playCalibrationTone() {
	tone := s.synth.GenerateRaw(s.cfg.Calibration.CalibrationFrequency,
		s.engine.CalibrationVolume(), CAL_TONE_DURATION)
	s.engine.Play(tone)
	s.printVolume("reference tone playing, volume saved")
}

// saveVolume persists the current volume to the config file before any
// confirmation tone plays, so a listener who kills the program right after
// hearing it still keeps the calibration.
func (s *TestSession) saveVolume() error {
	s.cfg.SetSavedVolume(s.engine.CalibrationVolume())
	return s.cfg.SaveConfig(s.configPath)
}

// RunAnalysis loads a saved results file and reruns the full analysis,
// without opening an audio device.
func (s *TestSession) RunAnalysis(path string, age int, reportPath string) error {
	prev, err := LoadPreviousResults(path)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded results from %s (%s)\n", path, prev.Timestamp)

	analysis := s.analyser.AnalyseProfile(prev.Results, age)
	s.analyser.PrintAnalysis(analysis)
	PrintAudiogram(s.analyser, prev.Results, s.previous)

	if reportPath != "" {
		if _, err := s.analyser.CreateDetailedReport(prev.Results, age, reportPath); err != nil {
			return err
		}
		fmt.Printf("\nDetailed report saved to %s\n", reportPath)
	}
	return nil
}
