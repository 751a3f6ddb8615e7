// Command pitchdetect runs the McLeod Pitch Method detector over sliding
// windows of an AIFF file and prints one pitch/clarity estimate per window.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"mpm-pitch/dsp"
	"mpm-pitch/internal/aiff"
)

func main() {
	path := flag.String("in", "", "Path to input AIFF file")
	channel := flag.Int("channel", 0, "Channel index to analyse (ignored when -mono is set)")
	mono := flag.Bool("mono", false, "Downmix all channels before analysis, instead of picking one")
	windowSize := flag.Int("window", 2048, "Analysis window size in samples")
	hop := flag.Int("hop", 1024, "Hop size between windows in samples")
	clarityThreshold := flag.Float64("clarity-threshold", 0.9, "MPM clarity threshold (0, 1]")
	minVolumeDB := flag.Float64("min-volume-db", -40, "Volume gate, in dB below max input amplitude")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: pitchdetect -in <file.aif> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*path, *channel, *mono, *windowSize, *hop, *clarityThreshold, *minVolumeDB); err != nil {
		slog.Error("pitchdetect failed", "error", err)
		os.Exit(1)
	}
}

func run(path string, channel int, mono bool, windowSize, hop int, clarityThreshold, minVolumeDB float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	file, err := aiff.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	slog.Info("loaded AIFF file",
		"channels", file.NumChannels,
		"sampleRate", file.SampleRate,
		"duration", file.Duration())

	detector, err := dsp.NewDetector64(windowSize)
	if err != nil {
		return fmt.Errorf("constructing detector: %w", err)
	}

	if err := detector.SetClarityThreshold(clarityThreshold); err != nil {
		return fmt.Errorf("setting clarity threshold: %w", err)
	}

	if err := detector.SetMinVolumeDecibels(minVolumeDB); err != nil {
		return fmt.Errorf("setting volume gate: %w", err)
	}

	var numWindows int
	if mono {
		numWindows = file.NumMonoWindows(windowSize, hop)
	} else {
		numWindows = file.NumWindows(channel, windowSize, hop)
	}

	if numWindows == 0 {
		slog.Warn("no complete windows fit in the file", "windowSize", windowSize, "available", file.NumSamples)
		return nil
	}

	window := make([]float64, windowSize)

	for i := range numWindows {
		start := i * hop

		var (
			samples []float32
			err     error
		)

		if mono {
			samples, err = file.MonoWindow(start, windowSize)
		} else {
			samples, err = file.Window(channel, start, windowSize)
		}

		if err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}

		for j, v := range samples {
			window[j] = float64(v)
		}

		result, err := detector.FindPitch(window, file.SampleRate)
		if err != nil {
			return fmt.Errorf("find pitch at window %d: %w", i, err)
		}

		if result.Frequency == 0 {
			slog.Debug("no pitch found", "window", i, "sample", start)
			continue
		}

		fmt.Printf("%8.4fs  %9.3f Hz  clarity=%.3f\n",
			float64(start)/file.SampleRate, result.Frequency, result.Clarity)
	}

	return nil
}
