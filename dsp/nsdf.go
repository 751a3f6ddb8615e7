package dsp

// computeNSDF fills d.nsdf[0:len(input)] with the MPM normalised square
// difference function n(τ) = 2·r'(τ) / m'(τ), reusing d.autocorrelator's
// autocorrelation of input as r'(τ). m is updated incrementally rather than
// recomputed per τ, and division happens before the decrement so that
// nsdf[0] == 1 for any non-zero input.
func (d *Detector[F]) computeNSDF(input []F) error {
	n := len(input)

	if _, err := d.autocorrelator.Autocorrelate(input, d.nsdf[:n]); err != nil {
		return err
	}

	m := 2 * d.nsdf[0]

	for tau := range n {
		if m <= 0 {
			for ; tau < n; tau++ {
				d.nsdf[tau] = 0
			}

			break
		}

		r := d.nsdf[tau]
		d.nsdf[tau] = 2 * r / m

		m -= input[tau]*input[tau] + input[n-1-tau]*input[n-1-tau]
	}

	return nil
}
