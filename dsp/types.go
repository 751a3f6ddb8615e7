// Package dsp implements the McLeod Pitch Method core: autocorrelation via
// FFT, the normalised square difference function, key-maximum selection, and
// parabolic sub-sample refinement. The package is single-threaded and
// allocation-free after construction, matching its real-time analysis role.
package dsp

import "mpm-pitch/internal/rfft"

// Float is the set of element types the core operates on.
type Float = rfft.Float
