package dsp

import (
	"fmt"
	"math"

	"mpm-pitch/internal/rfft"
)

// Result is the outcome of one FindPitch call: the estimated fundamental
// frequency in Hz and a clarity score in [0, 1] indicating confidence.
// A zero Result ({0, 0}) is the sentinel for "no pitch found".
type Result[F Float] struct {
	Frequency F
	Clarity   F
}

// Detector is a reusable McLeod Pitch Method pitch detector for fixed-length
// windows. It owns its autocorrelator and NSDF buffer; a single instance
// must not be driven concurrently from multiple goroutines, but independent
// instances may be used from independent goroutines freely.
type Detector[F Float] struct {
	n              int
	autocorrelator *Autocorrelator[F]
	nsdf           []F
	keyMaximaBuf   []int

	clarityThreshold  F
	maxInputAmplitude F
	minVolumeAbsolute F
}

// NewDetector builds a Detector for windows of length n.
func NewDetector[F Float](n int, supplier func(int) []F, newPlan planFactory[F]) (*Detector[F], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidLength, n)
	}

	ac, err := NewAutocorrelator[F](n, supplier, newPlan)
	if err != nil {
		return nil, err
	}

	return &Detector[F]{
		n:                 n,
		autocorrelator:    ac,
		nsdf:              makeSlice(supplier, n),
		keyMaximaBuf:      make([]int, 0, n/2+1),
		clarityThreshold:  0.9,
		maxInputAmplitude: 1,
		minVolumeAbsolute: 0,
	}, nil
}

// NewDetector32 builds a float32 Detector for windows of length n.
func NewDetector32(n int) (*Detector[float32], error) {
	return NewDetector[float32](n, func(size int) []float32 { return make([]float32, size) }, rfft.New32)
}

// NewDetector64 builds a float64 Detector for windows of length n.
func NewDetector64(n int) (*Detector[float64], error) {
	return NewDetector[float64](n, func(size int) []float64 { return make([]float64, size) }, rfft.New64)
}

// SetClarityThreshold sets the minimum NSDF ratio (relative to the strongest
// key maximum) a candidate must reach to be selected. k must be finite and
// in (0, 1].
func (d *Detector[F]) SetClarityThreshold(k F) error {
	if !finite(k) || k <= 0 || k > 1 {
		return &ErrInvalidConfig{Parameter: "clarity_threshold", Reason: "must be finite and in (0, 1]"}
	}

	d.clarityThreshold = k

	return nil
}

// SetMaxInputAmplitude sets the reference amplitude used by
// SetMinVolumeDecibels. It does not itself adjust MinVolumeAbsolute.
func (d *Detector[F]) SetMaxInputAmplitude(a F) error {
	if !finite(a) || a <= 0 {
		return &ErrInvalidConfig{Parameter: "max_input_amplitude", Reason: "must be finite and positive"}
	}

	d.maxInputAmplitude = a

	return nil
}

// SetMinVolumeAbsolute sets the RMS volume gate directly. v must be finite
// and within [0, max_input_amplitude].
func (d *Detector[F]) SetMinVolumeAbsolute(v F) error {
	if !finite(v) || v < 0 || v > d.maxInputAmplitude {
		return &ErrInvalidConfig{Parameter: "min_volume_absolute", Reason: "must be finite and in [0, max_input_amplitude]"}
	}

	d.minVolumeAbsolute = v

	return nil
}

// SetMinVolumeDecibels sets the RMS volume gate as a decibel offset below
// max_input_amplitude. db must be finite and <= 0.
func (d *Detector[F]) SetMinVolumeDecibels(db F) error {
	if !finite(db) || db > 0 {
		return &ErrInvalidConfig{Parameter: "min_volume_decibels", Reason: "must be finite and <= 0"}
	}

	d.minVolumeAbsolute = d.maxInputAmplitude * F(math.Pow(10, float64(db)/10))

	return nil
}

// FindPitch estimates the fundamental frequency of input, a window of
// length equal to the detector's configured N, sampled at sampleRate Hz.
// It returns the sentinel Result{0, 0} when the window's RMS falls below the
// volume gate, for all-zero input, or when the NSDF has no key maximum; the
// only reported error is a window-length mismatch.
func (d *Detector[F]) FindPitch(input []F, sampleRate float64) (Result[F], error) {
	if len(input) != d.n {
		return Result[F]{}, &ErrWrongLength{Expected: d.n, Got: len(input)}
	}

	if d.minVolumeAbsolute > 0 {
		var sumSq F

		for _, v := range input {
			sumSq += v * v
		}

		rms := F(math.Sqrt(float64(sumSq) / float64(d.n)))
		if rms < d.minVolumeAbsolute {
			return Result[F]{}, nil
		}
	}

	if err := d.computeNSDF(input); err != nil {
		return Result[F]{}, err
	}

	maxima := d.keyMaxima(d.n)
	if len(maxima) == 0 {
		return Result[F]{}, nil
	}

	var nMax F
	for _, k := range maxima {
		if d.nsdf[k] > nMax {
			nMax = d.nsdf[k]
		}
	}

	threshold := d.clarityThreshold * nMax

	kStar := maxima[len(maxima)-1]
	for _, k := range maxima {
		if d.nsdf[k] >= threshold {
			kStar = k
			break
		}
	}

	x, y := parabolicInterpolate(d.nsdf, kStar)

	clarity := y
	if clarity > 1 {
		clarity = 1
	}

	return Result[F]{
		Frequency: F(sampleRate) / x,
		Clarity:   clarity,
	}, nil
}

func finite[F Float](v F) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
