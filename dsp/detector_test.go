package dsp

import (
	"math"
	"testing"
)

// sineWave synthesizes n samples of a pure sine at frequency f, sample rate
// sampleRate, and unit amplitude.
func sineWave(n int, f, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * f * float64(i) / sampleRate)
	}

	return out
}

// squareWave synthesizes n samples of a unit-amplitude square wave at
// frequency f, sample rate sampleRate.
func squareWave(n int, f, sampleRate float64) []float64 {
	out := make([]float64, n)

	period := sampleRate / f

	for i := range out {
		phase := math.Mod(float64(i), period) / period
		if phase < 0.5 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}

	return out
}

// TestFindPitchSine is scenario E: a 2048-sample 440 Hz sine at 48000 Hz
// should be detected within 1% with clarity at least 0.99.
func TestFindPitchSine(t *testing.T) {
	t.Parallel()

	const (
		n          = 2048
		freq       = 440.0
		sampleRate = 48000.0
	)

	d, err := NewDetector64(n)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	result, err := d.FindPitch(sineWave(n, freq, sampleRate), sampleRate)
	if err != nil {
		t.Fatalf("FindPitch: %v", err)
	}

	if rel := math.Abs(result.Frequency-freq) / freq; rel > 0.01 {
		t.Errorf("frequency: got %v, want within 1%% of %v (relative error %v)", result.Frequency, freq, rel)
	}

	if result.Clarity < 0.99 {
		t.Errorf("clarity: got %v, want >= 0.99", result.Clarity)
	}
}

// TestFindPitchSilence is scenario F: an all-zero window must return the
// exact sentinel (0, 0).
func TestFindPitchSilence(t *testing.T) {
	t.Parallel()

	const n = 1000

	d, err := NewDetector64(n)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	result, err := d.FindPitch(make([]float64, n), 44100)
	if err != nil {
		t.Fatalf("FindPitch: %v", err)
	}

	if result.Frequency != 0 || result.Clarity != 0 {
		t.Errorf("got %+v, want the zero sentinel", result)
	}
}

// TestFindPitchSquareWave is scenario G: a 2048-sample 245 Hz square wave at
// 44100 Hz should be detected within 3 cents with clarity at least 0.97.
func TestFindPitchSquareWave(t *testing.T) {
	t.Parallel()

	const (
		n          = 2048
		freq       = 245.0
		sampleRate = 44100.0
	)

	d, err := NewDetector64(n)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	result, err := d.FindPitch(squareWave(n, freq, sampleRate), sampleRate)
	if err != nil {
		t.Fatalf("FindPitch: %v", err)
	}

	cents := 1200 * math.Log2(result.Frequency/freq)
	if math.Abs(cents) > 3 {
		t.Errorf("frequency: got %v (%v cents from %v), want within 3 cents", result.Frequency, cents, freq)
	}

	if result.Clarity < 0.97 {
		t.Errorf("clarity: got %v, want >= 0.97", result.Clarity)
	}
}

// TestFindPitchVolumeGate checks invariant #6: a window quieter than
// min_volume_absolute returns the exact sentinel even though it carries a
// genuine periodic signal.
func TestFindPitchVolumeGate(t *testing.T) {
	t.Parallel()

	const n = 1024

	d, err := NewDetector64(n)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	if err := d.SetMinVolumeAbsolute(0.5); err != nil {
		t.Fatalf("SetMinVolumeAbsolute: %v", err)
	}

	quiet := sineWave(n, 220, 44100)
	for i := range quiet {
		quiet[i] *= 0.01
	}

	result, err := d.FindPitch(quiet, 44100)
	if err != nil {
		t.Fatalf("FindPitch: %v", err)
	}

	if result.Frequency != 0 || result.Clarity != 0 {
		t.Errorf("got %+v, want the zero sentinel under the volume gate", result)
	}
}

// TestFindPitchWrongLength checks that a mismatched window is reported as a
// typed error.
func TestFindPitchWrongLength(t *testing.T) {
	t.Parallel()

	d, err := NewDetector64(128)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	_, err = d.FindPitch(make([]float64, 64), 44100)
	if err == nil {
		t.Fatal("expected an error")
	}
}

// TestSetClarityThreshold checks the (0, 1] validation rule and that a
// rejected setter leaves prior state untouched.
func TestSetClarityThreshold(t *testing.T) {
	t.Parallel()

	d, err := NewDetector64(64)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	if err := d.SetClarityThreshold(0.8); err != nil {
		t.Fatalf("SetClarityThreshold(0.8): %v", err)
	}

	if err := d.SetClarityThreshold(0); err == nil {
		t.Error("expected error for k=0")
	}

	if err := d.SetClarityThreshold(1.5); err == nil {
		t.Error("expected error for k=1.5")
	}

	if err := d.SetClarityThreshold(math.NaN()); err == nil {
		t.Error("expected error for NaN")
	}

	if d.clarityThreshold != 0.8 {
		t.Errorf("clarityThreshold: got %v, want 0.8 (unchanged after rejected setters)", d.clarityThreshold)
	}
}

// TestSetMinVolumeDecibels checks the decibel-to-amplitude conversion.
func TestSetMinVolumeDecibels(t *testing.T) {
	t.Parallel()

	d, err := NewDetector64(64)
	if err != nil {
		t.Fatalf("NewDetector64: %v", err)
	}

	if err := d.SetMaxInputAmplitude(2.0); err != nil {
		t.Fatalf("SetMaxInputAmplitude: %v", err)
	}

	if err := d.SetMinVolumeDecibels(-10); err != nil {
		t.Fatalf("SetMinVolumeDecibels: %v", err)
	}

	want := 2.0 * math.Pow(10, -10.0/10)
	if math.Abs(d.minVolumeAbsolute-want) > 1e-12 {
		t.Errorf("minVolumeAbsolute: got %v, want %v", d.minVolumeAbsolute, want)
	}

	if err := d.SetMinVolumeDecibels(5); err == nil {
		t.Error("expected error for positive db")
	}
}
