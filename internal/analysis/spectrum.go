package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springsim/internal/dynamo"
)

const minSpectrumSamples = 4

// PowerSpectrum returns the squared magnitude of each non-negative frequency
// bin of the mean-removed series, normalised by its length.
func PowerSpectrum(samples []float64) ([]float64, error) {
	n := len(samples)
	if n < minSpectrumSamples {
		return nil, fmt.Errorf("spectrum of %d samples: %w", n, dynamo.ErrParameterBounds)
	}

	mean := stat.Mean(samples, nil)
	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, centred)
	power := make([]float64, len(coeff))
	for i, c := range coeff {
		a := cmplx.Abs(c)
		power[i] = a * a / float64(n)
	}
	return power, nil
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-constant component of samples taken dt apart. A flat series
// has no oscillation and yields 0.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("sample spacing %g: %w", dt, dynamo.ErrParameterBounds)
	}
	power, err := PowerSpectrum(samples)
	if err != nil {
		return 0, err
	}

	best := 1
	for k := 2; k < len(power); k++ {
		if power[k] > power[best] {
			best = k
		}
	}
	if power[best] == 0 {
		return 0, nil
	}
	return fourier.NewFFT(len(samples)).Freq(best) / dt, nil
}
