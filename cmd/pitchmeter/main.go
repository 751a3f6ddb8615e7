// Command pitchmeter is a live terminal pitch/clarity meter. It reads raw
// little-endian float32 PCM samples from stdin, runs the McLeod Pitch
// Method detector over a sliding window, and renders the current estimate
// as a termbox bar meter, in the same poll-loop-plus-ticker shape the
// teacher's reverb TUI uses to redraw its level meters.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	"mpm-pitch/dsp"
)

const (
	colDef    = termbox.ColorDefault
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colCyan   = termbox.ColorCyan
)

// meterState holds the most recently computed result. The main loop updates
// it from values the sample-reading goroutine sends on the updates channel.
type meterState struct {
	frequency float64
	clarity   float64
	minFreq   float64
	maxFreq   float64
	exit      bool
}

func main() {
	sampleRate := flag.Float64("sample-rate", 44100, "PCM sample rate in Hz")
	windowSize := flag.Int("window", 2048, "Analysis window size in samples")
	hop := flag.Int("hop", 512, "Hop size between windows in samples")
	minFreq := flag.Float64("min-freq", 60, "Lowest frequency shown on the meter, in Hz")
	maxFreq := flag.Float64("max-freq", 1000, "Highest frequency shown on the meter, in Hz")
	flag.Parse()

	detector, err := dsp.NewDetector64(*windowSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "constructing detector: %v\n", err)
		os.Exit(1)
	}

	if err := termbox.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := &meterState{minFreq: *minFreq, maxFreq: *maxFreq}

	updates := make(chan struct{ frequency, clarity float64 }, 16)

	go func() {
		if err := readSamples(os.Stdin, detector, *sampleRate, *windowSize, *hop, updates); err != nil {
			close(updates)
		}
	}()

	eventQueue := make(chan termbox.Event)

	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	drawMeterScreen(state)

	for !state.exit {
		select {
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
					state.exit = true
				}
			case termbox.EventResize:
				drawMeterScreen(state)
			}

		case u, ok := <-updates:
			if !ok {
				state.exit = true
				continue
			}

			state.frequency = u.frequency
			state.clarity = u.clarity
			drawMeterScreen(state)

		case <-ticker.C:
			drawMeterScreen(state)
		}
	}
}

// readSamples reads raw float32 LE PCM from r, runs the detector over a
// sliding window advanced by hop samples, and pushes each result to updates.
func readSamples(r io.Reader, detector *dsp.Detector[float64], sampleRate float64, windowSize, hop int, updates chan<- struct{ frequency, clarity float64 }) error {
	reader := bufio.NewReader(r)

	ring := make([]float64, 0, windowSize)
	window := make([]float64, windowSize)

	sampleIndex := 0

	var buf [4]byte

	for {
		if _, err := io.ReadFull(reader, buf[:]); err != nil {
			return err
		}

		sample := float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
		ring = append(ring, sample)
		sampleIndex++

		if len(ring) < windowSize {
			continue
		}

		if len(ring) > windowSize {
			ring = ring[len(ring)-windowSize:]
		}

		if (sampleIndex-windowSize)%hop != 0 {
			continue
		}

		copy(window, ring)

		result, err := detector.FindPitch(window, sampleRate)
		if err != nil {
			return err
		}

		updates <- struct{ frequency, clarity float64 }{result.Frequency, result.Clarity}
	}
}

func drawMeterScreen(state *meterState) {
	_ = termbox.Clear(colDef, colDef)

	printTB(2, 1, colCyan, colDef, "pitchmeter  (press q or Esc to quit)")

	drawMeter(3, "Pitch", state.frequency, state.minFreq, state.maxFreq, colGreen)
	drawClarityMeter(5, "Clarity", state.clarity, colYellow)

	if state.frequency > 0 {
		printTB(2, 7, colDef, colDef, fmt.Sprintf("%.2f Hz", state.frequency))
	} else {
		printTB(2, 7, colDef, colDef, "no pitch")
	}

	termbox.Flush()
}

func drawMeter(yPos int, label string, value, min, max float64, color termbox.Attribute) {
	const (
		barWidth = 60
		xPos     = 2
	)

	if value < min {
		value = min
	}

	if value > max {
		value = max
	}

	ratio := (value - min) / (max - min)
	filled := int(ratio * float64(barWidth))

	printTB(xPos, yPos, colDef, colDef, fmt.Sprintf("%s [%-8.1f] ", label, value))

	startX := xPos + 18

	for i := range barWidth {
		var barChar rune
		if i < filled {
			barChar = '█'
		} else {
			barChar = '░'
		}

		termbox.SetCell(startX+i, yPos, barChar, color, colDef)
	}
}

func drawClarityMeter(yPos int, label string, clarity float64, color termbox.Attribute) {
	drawMeter(yPos, label, clarity, 0, 1, color)
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
