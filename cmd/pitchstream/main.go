// Command pitchstream reads raw little-endian float32 PCM samples from
// stdin (a pure consumer of pre-captured audio — it never touches a capture
// device itself), runs the McLeod Pitch Method detector over a sliding
// window, and broadcasts each result as JSON over a WebSocket to any
// connected subscriber. It also exposes Prometheus metrics on /metrics.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mpm-pitch/dsp"
)

// pitchMessage is the JSON payload broadcast to subscribers for each window.
type pitchMessage struct {
	Frequency float64 `json:"frequency"`
	Clarity   float64 `json:"clarity"`
	Timestamp float64 `json:"timestampSeconds"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func main() {
	sampleRate := flag.Float64("sample-rate", 44100, "PCM sample rate in Hz")
	windowSize := flag.Int("window", 2048, "Analysis window size in samples")
	hop := flag.Int("hop", 512, "Hop size between windows in samples")
	addr := flag.String("addr", ":8090", "HTTP listen address")
	clarityThreshold := flag.Float64("clarity-threshold", 0.93, "MPM clarity threshold (0, 1]")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	detector, err := dsp.NewDetector64(*windowSize)
	if err != nil {
		slog.Error("constructing detector", "error", err)
		os.Exit(1)
	}

	if err := detector.SetClarityThreshold(*clarityThreshold); err != nil {
		slog.Error("setting clarity threshold", "error", err)
		os.Exit(1)
	}

	metrics := newStreamMetrics()
	h := newHub()

	go h.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(h, w, r)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("pitchstream listening", "addr", *addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
		}
	}()

	if err := processStdin(os.Stdin, detector, *sampleRate, *windowSize, *hop, h, metrics); err != nil {
		slog.Error("processing stdin", "error", err)
		os.Exit(1)
	}
}

// handleWebSocket upgrades a connection and registers it with the hub.
func handleWebSocket(h *hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c

	go c.writePump()
	c.readPump()
}

// processStdin reads raw float32 LE samples, runs the detector over a
// sliding window advanced by hop samples, and broadcasts each result.
func processStdin(r io.Reader, detector *dsp.Detector[float64], sampleRate float64, windowSize, hop int, h *hub, metrics *streamMetrics) error {
	reader := bufio.NewReader(r)

	ring := make([]float64, 0, windowSize)
	window := make([]float64, windowSize)

	sampleIndex := 0

	var buf [4]byte

	for {
		if _, err := io.ReadFull(reader, buf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}

			return fmt.Errorf("reading sample: %w", err)
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
			return fmt.Errorf("find pitch: %w", err)
		}

		metrics.observe(result.Frequency > 0, result.Clarity)

		payload, err := json.Marshal(pitchMessage{
			Frequency: result.Frequency,
			Clarity:   result.Clarity,
			Timestamp: float64(sampleIndex) / sampleRate,
		})
		if err != nil {
			return fmt.Errorf("marshalling result: %w", err)
		}

		h.broadcastResult(payload)
	}
}
