// main.go - Command line tone generator for checking headphone response

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tonetest <frequency> <intensity> <duration> [ear] [max-volume]

  frequency   tone frequency in Hz (20-20000)
  intensity   perceptual intensity 0.0-1.0
  duration    tone length in seconds (0.1-10.0)
  ear         left, right or both (default both)
  max-volume  volume ceiling 0.0-1.0 (default 1.0)

The intensity scale is logarithmic over a 40 dB span:

  0.0  silence      0.5  10%% of max volume
  0.1  1.6%%         0.8  40%%
  0.3  4.0%%         1.0  100%%

Examples:
  tonetest 1000 0.5 2.0
  tonetest 8000 0.1 1.5 left
  tonetest 250 1.0 3.0 both 0.8
`)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 3 || len(args) > 5 {
		usage()
		os.Exit(1)
	}

	frequency, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid frequency %q\n", args[0])
		os.Exit(1)
	}
	intensity, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid intensity %q\n", args[1])
		os.Exit(1)
	}
	duration, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid duration %q\n", args[2])
		os.Exit(1)
	}

	ear := "both"
	if len(args) >= 4 {
		ear = args[3]
	}

	maxVolume := 1.0
	if len(args) == 5 {
		maxVolume, err = strconv.ParseFloat(args[4], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid max volume %q\n", args[4])
			os.Exit(1)
		}
	}

	if problems := validateParameters(frequency, intensity, duration, ear, maxVolume); len(problems) > 0 {
		for _, problem := range problems {
			fmt.Fprintf(os.Stderr, "error: %s\n", problem)
		}
		os.Exit(1)
	}

	if err := playTone(frequency, intensity, duration, ear, maxVolume); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
