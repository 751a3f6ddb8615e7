package dsp

// parabolicInterpolate fits a parabola through data[k-1], data[k], data[k+1]
// and returns the location and value of its vertex. Divisions are plain
// floating point; no guard on a == 0 is required here; it is unreachable on
// well-formed input because the caller's key-maximum scan only yields a k
// with data[k] greater than its left neighbour and no less than its right.
func parabolicInterpolate[F Float](data []F, k int) (x, y F) {
	x0 := data[k-1]
	x1 := data[k]
	x2 := data[k+1]

	a := (x0 + x2 - 2*x1) / 2
	b := (x2 - x0) / 2

	xOffset := -b / (2 * a)

	return F(k) + xOffset, x1 - b*b/(4*a)
}
