// Package rfft provides the real-FFT collaborator used by the pitch-detection
// core: a forward real-to-complex transform, Hermitian spectrum completion,
// and a complex-to-complex inverse, all expressed over interleaved
// real/imaginary float slices so the generic dsp package never has to name a
// concrete complex type.
package rfft

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Float is the set of element types a Plan can operate on.
type Float interface {
	~float32 | ~float64
}

// ErrInvalidSize indicates a non-positive or non-power-of-two FFT size.
var ErrInvalidSize = errors.New("rfft: invalid size")

// ErrBufferLength indicates a buffer did not have the length a method requires.
var ErrBufferLength = errors.New("rfft: wrong buffer length")

// Plan performs forward and inverse FFTs of a fixed size over interleaved
// complex buffers: a buffer of length 2*size holds size complex numbers as
// consecutive (real, imag) pairs.
//
// RealTransform only fills the non-negative-frequency half of the spectrum
// (bins 0..size/2, i.e. the first size+2 floats of out); CompleteSpectrum
// mirrors the remaining bins in place as conjugates before InverseTransform
// is called on the full buffer.
type Plan[F Float] interface {
	// Size returns the transform length (number of real samples / complex bins).
	Size() int

	// RealTransform computes the forward transform of the real signal in,
	// writing the non-negative-frequency half of the spectrum into out.
	// len(in) must equal Size(); len(out) must equal 2*Size().
	RealTransform(out, in []F) error

	// CompleteSpectrum mirrors the non-negative-frequency half of buf
	// (as populated by RealTransform) into the negative-frequency half,
	// producing a full Hermitian-symmetric spectrum in place.
	// len(buf) must equal 2*Size().
	CompleteSpectrum(buf []F) error

	// InverseTransform computes the inverse transform of the full complex
	// spectrum in, writing the real part of the result into out.
	// len(in) must equal 2*Size(); len(out) must equal Size().
	InverseTransform(out, in []F) error
}

// New32 builds a Plan operating on float32 buffers for the given size.
// size must be a power of two.
func New32(size int) (Plan[float32], error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	realPlan, err := algofft.NewPlanReal32(size)
	if err != nil {
		return nil, fmt.Errorf("rfft: building real plan: %w", err)
	}

	fullPlan, err := algofft.NewPlan32(size)
	if err != nil {
		return nil, fmt.Errorf("rfft: building complex plan: %w", err)
	}

	return &plan32{
		size:       size,
		half:       size/2 + 1,
		realPlan:   realPlan,
		fullPlan:   fullPlan,
		halfSpec:   make([]complex64, size/2+1),
		fullSpecIn: make([]complex64, size),
		fullSpecOu: make([]complex64, size),
	}, nil
}

// New64 builds a Plan operating on float64 buffers for the given size.
// size must be a power of two.
func New64(size int) (Plan[float64], error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	realPlan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, fmt.Errorf("rfft: building real plan: %w", err)
	}

	fullPlan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("rfft: building complex plan: %w", err)
	}

	return &plan64{
		size:       size,
		half:       size/2 + 1,
		realPlan:   realPlan,
		fullPlan:   fullPlan,
		halfSpec:   make([]complex128, size/2+1),
		fullSpecIn: make([]complex128, size),
		fullSpecOu: make([]complex128, size),
	}, nil
}

type plan32 struct {
	size int
	half int

	realPlan *algofft.PlanRealT[float32, complex64]
	fullPlan *algofft.Plan[complex64]

	halfSpec   []complex64 // scratch: forward output, size/2+1 bins
	fullSpecIn []complex64 // scratch: mirrored spectrum fed to Inverse
	fullSpecOu []complex64 // scratch: raw Inverse output before real-part extraction
}

func (p *plan32) Size() int { return p.size }

func (p *plan32) RealTransform(out, in []float32) error {
	if len(in) != p.size {
		return fmt.Errorf("%w: in has %d, want %d", ErrBufferLength, len(in), p.size)
	}

	if len(out) != 2*p.size {
		return fmt.Errorf("%w: out has %d, want %d", ErrBufferLength, len(out), 2*p.size)
	}

	if err := p.realPlan.Forward(p.halfSpec, in); err != nil {
		return fmt.Errorf("rfft: forward transform: %w", err)
	}

	for i := range p.half {
		out[2*i] = real(p.halfSpec[i])
		out[2*i+1] = imag(p.halfSpec[i])
	}

	for i := 2 * p.half; i < len(out); i++ {
		out[i] = 0
	}

	return nil
}

func (p *plan32) CompleteSpectrum(buf []float32) error {
	if len(buf) != 2*p.size {
		return fmt.Errorf("%w: buf has %d, want %d", ErrBufferLength, len(buf), 2*p.size)
	}

	for k := p.half; k < p.size; k++ {
		mirror := p.size - k
		buf[2*k] = buf[2*mirror]
		buf[2*k+1] = -buf[2*mirror+1]
	}

	return nil
}

func (p *plan32) InverseTransform(out, in []float32) error {
	if len(in) != 2*p.size {
		return fmt.Errorf("%w: in has %d, want %d", ErrBufferLength, len(in), 2*p.size)
	}

	if len(out) != p.size {
		return fmt.Errorf("%w: out has %d, want %d", ErrBufferLength, len(out), p.size)
	}

	for i := range p.fullSpecIn {
		p.fullSpecIn[i] = complex(in[2*i], in[2*i+1])
	}

	if err := p.fullPlan.Inverse(p.fullSpecOu, p.fullSpecIn); err != nil {
		return fmt.Errorf("rfft: inverse transform: %w", err)
	}

	for i := range out {
		out[i] = real(p.fullSpecOu[i])
	}

	return nil
}

type plan64 struct {
	size int
	half int

	realPlan *algofft.PlanRealT[float64, complex128]
	fullPlan *algofft.Plan[complex128]

	halfSpec   []complex128
	fullSpecIn []complex128
	fullSpecOu []complex128
}

func (p *plan64) Size() int { return p.size }

func (p *plan64) RealTransform(out, in []float64) error {
	if len(in) != p.size {
		return fmt.Errorf("%w: in has %d, want %d", ErrBufferLength, len(in), p.size)
	}

	if len(out) != 2*p.size {
		return fmt.Errorf("%w: out has %d, want %d", ErrBufferLength, len(out), 2*p.size)
	}

	if err := p.realPlan.Forward(p.halfSpec, in); err != nil {
		return fmt.Errorf("rfft: forward transform: %w", err)
	}

	for i := range p.half {
		out[2*i] = real(p.halfSpec[i])
		out[2*i+1] = imag(p.halfSpec[i])
	}

	for i := 2 * p.half; i < len(out); i++ {
		out[i] = 0
	}

	return nil
}

func (p *plan64) CompleteSpectrum(buf []float64) error {
	if len(buf) != 2*p.size {
		return fmt.Errorf("%w: buf has %d, want %d", ErrBufferLength, len(buf), 2*p.size)
	}

	for k := p.half; k < p.size; k++ {
		mirror := p.size - k
		buf[2*k] = buf[2*mirror]
		buf[2*k+1] = -buf[2*mirror+1]
	}

	return nil
}

func (p *plan64) InverseTransform(out, in []float64) error {
	if len(in) != 2*p.size {
		return fmt.Errorf("%w: in has %d, want %d", ErrBufferLength, len(in), 2*p.size)
	}

	if len(out) != p.size {
		return fmt.Errorf("%w: out has %d, want %d", ErrBufferLength, len(out), p.size)
	}

	for i := range p.fullSpecIn {
		p.fullSpecIn[i] = complex(in[2*i], in[2*i+1])
	}

	if err := p.fullPlan.Inverse(p.fullSpecOu, p.fullSpecIn); err != nil {
		return fmt.Errorf("rfft: inverse transform: %w", err)
	}

	for i := range out {
		out[i] = real(p.fullSpecOu[i])
	}

	return nil
}
