package dsp

import (
	"fmt"

	"mpm-pitch/internal/rfft"
)

// planFactory builds a rfft.Plan[F] for a given FFT size. Injected so the
// generic core never has to choose between algo-fft's float32/float64
// constructors directly.
type planFactory[F Float] func(size int) (rfft.Plan[F], error)

// Autocorrelator computes the FFT-based autocorrelation of fixed-length
// windows, reusing its scratch buffers across calls.
type Autocorrelator[F Float] struct {
	n        int // input window length
	nFFT     int // zero-padded transform size, power of two >= 2*n
	plan     rfft.Plan[F]
	supplier func(int) []F

	paddedInput []F // zero-padded copy of the input, length nFFT
	spectrum    []F // interleaved complex spectrum, length 2*nFFT
	inverse     []F // inverse-transform output, length nFFT
}

// NewAutocorrelator builds an Autocorrelator for windows of length n,
// using supplier to allocate every scratch buffer and planFactory to build
// the FFT collaborator.
func NewAutocorrelator[F Float](n int, supplier func(int) []F, newPlan planFactory[F]) (*Autocorrelator[F], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidLength, n)
	}

	nFFT := NextPowerOfTwo(2 * n)

	plan, err := newPlan(nFFT)
	if err != nil {
		return nil, fmt.Errorf("dsp: building FFT plan: %w", err)
	}

	return &Autocorrelator[F]{
		n:           n,
		nFFT:        nFFT,
		plan:        plan,
		supplier:    supplier,
		paddedInput: makeSlice(supplier, nFFT),
		spectrum:    makeSlice(supplier, 2*nFFT),
		inverse:     makeSlice(supplier, nFFT),
	}, nil
}

// NewAutocorrelator32 builds a float32 Autocorrelator for windows of length n.
func NewAutocorrelator32(n int) (*Autocorrelator[float32], error) {
	return NewAutocorrelator[float32](n, func(size int) []float32 { return make([]float32, size) }, rfft.New32)
}

// NewAutocorrelator64 builds a float64 Autocorrelator for windows of length n.
func NewAutocorrelator64(n int) (*Autocorrelator[float64], error) {
	return NewAutocorrelator[float64](n, func(size int) []float64 { return make([]float64, size) }, rfft.New64)
}

func makeSlice[F Float](supplier func(int) []F, n int) []F {
	s := supplier(n)
	if len(s) != n {
		s = make([]F, n)
	}

	return s
}

// InputLength returns the window length this Autocorrelator was built for.
func (a *Autocorrelator[F]) InputLength() int {
	return a.n
}

// Autocorrelate computes the autocorrelation of input, which must have
// length a.InputLength(). If output is provided, it must have the same
// length and is written into directly; otherwise a fresh slice is
// allocated. Passing more than one output slice is a caller error.
func (a *Autocorrelator[F]) Autocorrelate(input []F, output ...[]F) ([]F, error) {
	if len(input) != a.n {
		return nil, &ErrWrongLength{Expected: a.n, Got: len(input)}
	}

	if len(output) > 1 {
		return nil, fmt.Errorf("%w: at most one output buffer accepted, got %d", ErrInvalidLength, len(output))
	}

	var out []F
	if len(output) == 1 {
		if len(output[0]) != a.n {
			return nil, &ErrWrongLength{Expected: a.n, Got: len(output[0])}
		}

		out = output[0]
	} else {
		out = makeSlice(a.supplier, a.n)
	}

	for i := range a.paddedInput {
		if i < a.n {
			a.paddedInput[i] = input[i]
		} else {
			a.paddedInput[i] = 0
		}
	}

	if err := a.plan.RealTransform(a.spectrum, a.paddedInput); err != nil {
		return nil, fmt.Errorf("dsp: real transform: %w", err)
	}

	half := a.nFFT/2 + 1
	for i := range half {
		re, im := a.spectrum[2*i], a.spectrum[2*i+1]
		a.spectrum[2*i] = re*re + im*im
		a.spectrum[2*i+1] = 0
	}

	if err := a.plan.CompleteSpectrum(a.spectrum); err != nil {
		return nil, fmt.Errorf("dsp: complete spectrum: %w", err)
	}

	if err := a.plan.InverseTransform(a.inverse, a.spectrum); err != nil {
		return nil, fmt.Errorf("dsp: inverse transform: %w", err)
	}

	for i := range a.n {
		out[i] = a.inverse[i]
	}

	return out, nil
}
