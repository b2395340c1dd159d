// main.go - Main entry point for HearingProfiler

/*
██╗  ██╗ ███████╗  █████╗  ██████╗  ██╗ ███╗   ██╗  ██████╗    ██████╗  ██████╗   ██████╗  ███████╗ ██╗ ██╗      ███████╗ ██████╗
██║  ██║ ██╔════╝ ██╔══██╗ ██╔══██╗ ██║ ████╗  ██║ ██╔════╝    ██╔══██╗ ██╔══██╗ ██╔═══██╗ ██╔════╝ ██║ ██║      ██╔════╝ ██╔══██╗
███████║ █████╗   ███████║ ██████╔╝ ██║ ██╔██╗ ██║ ██║  ███╗   ██████╔╝ ██████╔╝ ██║   ██║ █████╗   ██║ ██║      █████╗   ██████╔╝
██╔══██║ ██╔══╝   ██╔══██║ ██╔══██╗ ██║ ██║╚██╗██║ ██║   ██║   ██╔═══╝  ██╔══██╗ ██║   ██║ ██╔══╝   ██║ ██║      ██╔══╝   ██╔══██╗
██║  ██║ ███████╗ ██║  ██║ ██║  ██║ ██║ ██║ ╚████║ ╚██████╔╝   ██║      ██║  ██║ ╚██████╔╝ ██║      ██║ ███████╗ ███████╗ ██║  ██║
╚═╝  ╚═╝ ╚══════╝ ╚═╝  ╚═╝ ╚═╝  ╚═╝ ╚═╝ ╚═╝  ╚═══╝  ╚═════╝    ╚═╝      ╚═╝  ╚═╝  ╚═════╝  ╚═╝      ╚═╝ ╚══════╝ ╚══════╝ ╚═╝  ╚═╝

HearingProfiler - Psychoacoustic hearing test and audiogram profiler
(c) 2026 Zayn Otley
https://github.com/IntuitionAmiga/HearingProfiler
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

func boilerPlate() {
	banner := []string{
		"██╗  ██╗ ███████╗  █████╗  ██████╗  ██╗ ███╗   ██╗  ██████╗    ██████╗  ██████╗   ██████╗  ███████╗ ██╗ ██╗      ███████╗ ██████╗ ",
		"██║  ██║ ██╔════╝ ██╔══██╗ ██╔══██╗ ██║ ████╗  ██║ ██╔════╝    ██╔══██╗ ██╔══██╗ ██╔═══██╗ ██╔════╝ ██║ ██║      ██╔════╝ ██╔══██╗",
		"███████║ █████╗   ███████║ ██████╔╝ ██║ ██╔██╗ ██║ ██║  ███╗   ██████╔╝ ██████╔╝ ██║   ██║ █████╗   ██║ ██║      █████╗   ██████╔╝",
		"██╔══██║ ██╔══╝   ██╔══██║ ██╔══██╗ ██║ ██║╚██╗██║ ██║   ██║   ██╔═══╝  ██╔══██╗ ██║   ██║ ██╔══╝   ██║ ██║      ██╔══╝   ██╔══██╗",
		"██║  ██║ ███████╗ ██║  ██║ ██║  ██║ ██║ ██║ ╚████║ ╚██████╔╝   ██║      ██║  ██║ ╚██████╔╝ ██║      ██║ ███████╗ ███████╗ ██║  ██║",
		"╚═╝  ╚═╝ ╚══════╝ ╚═╝  ╚═╝ ╚═╝  ╚═╝ ╚═╝ ╚═╝  ╚═══╝  ╚═════╝    ╚═╝      ╚═╝  ╚═╝  ╚═════╝  ╚═╝      ╚═╝ ╚══════╝ ╚══════╝ ╚═╝  ╚═╝",
	}
	for i, line := range banner {
		fmt.Printf("\033[38;2;255;%d;147m%s\033[0m\n", 20+i*47, line)
	}
	fmt.Println("\nHearingProfiler - Psychoacoustic hearing test and audiogram profiler")
	fmt.Println("(c) 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/HearingProfiler")
	fmt.Println("Buy me a coffee: https://ko-fi.com/intuition/tip")
	fmt.Println("License: GPLv3 or later")
	fmt.Println()
}

func main() {
	boilerPlate()

	var (
		modeQuick     bool
		modeFull      bool
		modeCalibrate bool
		analysePath   string
		age           int
		configPath    string
		resultsPath   string
		reportPath    string
		previousList  string
		backendName   string
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&modeQuick, "quick", false, "Run the quick hearing test (8 frequencies, 3 intensities)")
	flagSet.BoolVar(&modeFull, "full", false, "Run the full hearing test (configured frequency and intensity grids)")
	flagSet.BoolVar(&modeCalibrate, "calibrate", false, "Interactive volume calibration against reference tones")
	flagSet.StringVar(&analysePath, "analyse", "", "Analyse a saved results file and exit")
	flagSet.IntVar(&age, "age", 0, "Age in years, enables comparison against age norms")
	flagSet.StringVar(&configPath, "config", "config.json", "Configuration file")
	flagSet.StringVar(&resultsPath, "results", "results.json", "Where to save test results (empty disables saving)")
	flagSet.StringVar(&reportPath, "report", "", "Write a detailed JSON analysis report to this file")
	flagSet.StringVar(&previousList, "previous", "", "Comma-separated saved results files to overlay on the audiogram")
	flagSet.StringVar(&backendName, "backend", "oto", "Audio backend: oto or portaudio")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./hearing_profiler -quick|-full|-calibrate|-analyse <file> [options]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err != flag.ErrHelp {
			flagSet.Usage()
		}
		os.Exit(1)
	}

	modeCount := 0
	for _, selected := range []bool{modeQuick, modeFull, modeCalibrate, analysePath != ""} {
		if selected {
			modeCount++
		}
	}
	if modeCount != 1 {
		fmt.Println("Error: select exactly one mode flag: -quick, -full, -calibrate, or -analyse")
		flagSet.Usage()
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if analysePath != "" {
		session := NewTestSession(cfg, configPath, nil, nil)
		loadPreviousFiles(session, previousList)
		if err := session.RunAnalysis(analysePath, age, reportPath); err != nil {
			fmt.Printf("Failed to analyse results: %v\n", err)
			os.Exit(1)
		}
		return
	}

	backend, err := ParseAudioBackend(backendName)
	if err != nil {
		fmt.Printf("Failed to select audio backend: %v\n", err)
		os.Exit(1)
	}

	engine, err := NewAudioStreamEngine(backend, cfg.Audio.SampleRate, cfg.EffectiveVolume())
	if err != nil {
		fmt.Printf("Failed to initialize sound: %v\n", err)
		os.Exit(1)
	}
	engine.Start()

	host := NewConsoleHost()
	session := NewTestSession(cfg, configPath, engine, host)
	loadPreviousFiles(session, previousList)

	switch {
	case modeCalibrate:
		err = session.RunCalibration()
	case modeQuick:
		err = session.RunHearingTest(TEST_MODE_QUICK, resultsPath, age, reportPath)
	case modeFull:
		err = session.RunHearingTest(TEST_MODE_FULL, resultsPath, age, reportPath)
	}

	engine.Stop()

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// loadPreviousFiles loads each overlay file, reporting failures without
// aborting: a bad overlay never blocks the session itself.
func loadPreviousFiles(session *TestSession, previousList string) {
	for _, path := range strings.Split(previousList, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := session.LoadPrevious(path); err != nil {
			fmt.Printf("Error loading previous results: %v\n", err)
		}
	}
}
