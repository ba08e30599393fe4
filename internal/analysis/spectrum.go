package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of xs
// after removing its mean. Any length is accepted.
func PowerSpectrum(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	centred := make([]float64, len(xs))
	for i, x := range xs {
		centred[i] = x - mean
	}
	spectrum := fft.FFTReal(centred)

	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin of xs sampled every dt seconds.
func DominantFrequency(xs []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(xs)
	if len(ps) < 2 || !(dt > 0) {
		return 0, false
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, false
	}
	return float64(best) / (float64(len(xs)) * dt), true
}
