package dsp

import (
	"math"
	"testing"
)

// TestParabolicInterpolateSymmetricPeak checks that a perfectly symmetric
// peak refines to its own integer index with the same value.
func TestParabolicInterpolateSymmetricPeak(t *testing.T) {
	t.Parallel()

	data := []float64{0.5, 1.0, 0.5}

	x, y := parabolicInterpolate(data, 1)

	if math.Abs(x-1) > 1e-9 {
		t.Errorf("x: got %v, want 1", x)
	}

	if math.Abs(y-1) > 1e-9 {
		t.Errorf("y: got %v, want 1", y)
	}
}

// TestParabolicInterpolateSkewedPeak checks that an asymmetric peak refines
// toward its taller neighbour.
func TestParabolicInterpolateSkewedPeak(t *testing.T) {
	t.Parallel()

	data := []float64{0.2, 1.0, 0.8}

	x, y := parabolicInterpolate(data, 1)

	if x <= 1 {
		t.Errorf("x: got %v, want > 1 (peak should skew toward the taller right neighbour)", x)
	}

	if y < 1.0 {
		t.Errorf("y: got %v, want >= 1.0 (parabola vertex above the sampled peak)", y)
	}
}

// TestParabolicInterpolateKnownValues exercises the closed form against a
// hand-computed example: data = [0, 1, 0] centred at k=1 is symmetric, and
// data = [1, 4, 1] at k=1 is also symmetric with a taller peak.
func TestParabolicInterpolateKnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  []float64
		k     int
		wantX float64
		wantY float64
	}{
		{name: "zero-based symmetric", data: []float64{0, 1, 0}, k: 1, wantX: 1, wantY: 1},
		{name: "taller symmetric", data: []float64{1, 4, 1}, k: 1, wantX: 1, wantY: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			x, y := parabolicInterpolate(tc.data, tc.k)
			if math.Abs(x-tc.wantX) > 1e-9 {
				t.Errorf("x: got %v, want %v", x, tc.wantX)
			}

			if math.Abs(y-tc.wantY) > 1e-9 {
				t.Errorf("y: got %v, want %v", y, tc.wantY)
			}
		})
	}
}
