// Package freq provides the frequency-domain collaborators used by the
// dataset pipeline: a packed real DFT that keeps block shapes intact, its
// inverse, per-sample energy localization metrics, and Gaussian smoothing of
// spectra.
package freq

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KudanLabo/freqdiff/series"
)

// Transform replaces every (sample, channel) sequence with its packed real
// DFT: the real parts of all rfft bins followed by the imaginary parts of
// the interior bins, orthonormally scaled. The packing occupies exactly the
// original sequence length, so the block shape is preserved and Inverse
// recovers the input.
func Transform(b *series.Block) *series.Block {
	if b.Len == 0 {
		return b.Clone()
	}
	out := series.New(b.Samples, b.Len, b.Channels)
	fft := fourier.NewFFT(b.Len)
	nRe := b.Len/2 + 1
	nIm := b.Len - nRe
	scale := 1 / math.Sqrt(float64(b.Len))
	seq := make([]float64, b.Len)
	coeff := make([]complex128, nRe)
	for i := 0; i < b.Samples; i++ {
		for c := 0; c < b.Channels; c++ {
			for t := 0; t < b.Len; t++ {
				seq[t] = float64(b.At(i, t, c))
			}
			fft.Coefficients(coeff, seq)
			for k := 0; k < nRe; k++ {
				out.Set(i, k, c, float32(real(coeff[k])*scale))
			}
			// imaginary parts of bins 1..nIm; DC (and Nyquist for even
			// lengths) are real by construction and carry none.
			for k := 1; k <= nIm; k++ {
				out.Set(i, nRe-1+k, c, float32(imag(coeff[k])*scale))
			}
		}
	}
	return out
}

// Inverse undoes Transform, reconstructing the time-domain sequences from
// their packed spectra.
func Inverse(b *series.Block) *series.Block {
	if b.Len == 0 {
		return b.Clone()
	}
	out := series.New(b.Samples, b.Len, b.Channels)
	fft := fourier.NewFFT(b.Len)
	nRe := b.Len/2 + 1
	nIm := b.Len - nRe
	scale := 1 / math.Sqrt(float64(b.Len))
	coeff := make([]complex128, nRe)
	seq := make([]float64, b.Len)
	for i := 0; i < b.Samples; i++ {
		for c := 0; c < b.Channels; c++ {
			for k := 0; k < nRe; k++ {
				re := float64(b.At(i, k, c))
				im := 0.0
				if k >= 1 && k <= nIm {
					im = float64(b.At(i, nRe-1+k, c))
				}
				coeff[k] = complex(re, im)
			}
			fft.Sequence(seq, coeff)
			for t := 0; t < b.Len; t++ {
				out.Set(i, t, c, float32(seq[t]*scale))
			}
		}
	}
	return out
}

// Spread holds per-sample energy spreads around their centroid, in time
// steps and in frequency bins. Smaller values mean more localized energy.
type Spread struct {
	Time []float64
	Freq []float64
}

// Localization measures how concentrated each sample's energy is in time
// and in frequency, aggregated over channels.
func Localization(b *series.Block) Spread {
	sp := Spread{
		Time: make([]float64, b.Samples),
		Freq: make([]float64, b.Samples),
	}
	if b.Len == 0 {
		return sp
	}
	fft := fourier.NewFFT(b.Len)
	nBins := b.Len/2 + 1
	seq := make([]float64, b.Len)
	coeff := make([]complex128, nBins)

	tPos := make([]float64, b.Len)
	for t := range tPos {
		tPos[t] = float64(t)
	}
	fPos := make([]float64, nBins)
	for k := range fPos {
		fPos[k] = float64(k)
	}
	tEnergy := make([]float64, b.Len)
	fEnergy := make([]float64, nBins)

	for i := 0; i < b.Samples; i++ {
		for t := range tEnergy {
			tEnergy[t] = 0
		}
		for t := 0; t < b.Len; t++ {
			for c := 0; c < b.Channels; c++ {
				v := float64(b.At(i, t, c))
				tEnergy[t] += v * v
			}
		}
		sp.Time[i] = spread(tPos, tEnergy)

		for k := range fEnergy {
			fEnergy[k] = 0
		}
		for c := 0; c < b.Channels; c++ {
			for t := 0; t < b.Len; t++ {
				seq[t] = float64(b.At(i, t, c))
			}
			fft.Coefficients(coeff, seq)
			for k, cv := range coeff {
				fEnergy[k] += real(cv)*real(cv) + imag(cv)*imag(cv)
			}
		}
		sp.Freq[i] = spread(fPos, fEnergy)
	}
	return sp
}

// spread is the energy-weighted standard deviation of pos, zero when there
// is no energy at all.
func spread(pos, energy []float64) float64 {
	if floats.Sum(energy) == 0 {
		return 0
	}
	m := stat.Mean(pos, energy)
	return math.Sqrt(stat.MomentAbout(2, pos, m, energy))
}

// Smooth convolves every (sample, channel) spectrum with a Gaussian kernel
// of width sigma bins and returns the resulting series. The kernel is
// renormalized at the spectrum edges. Sigma at or below zero returns a
// plain copy.
func Smooth(b *series.Block, sigma float64) *series.Block {
	if sigma <= 0 || b.Len == 0 {
		return b.Clone()
	}
	out := series.New(b.Samples, b.Len, b.Channels)
	fft := fourier.NewFFT(b.Len)
	nBins := b.Len/2 + 1
	seq := make([]float64, b.Len)
	coeff := make([]complex128, nBins)
	smoothed := make([]complex128, nBins)

	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, radius+1)
	for d := 0; d <= radius; d++ {
		z := float64(d) / sigma
		kernel[d] = math.Exp(-0.5 * z * z)
	}

	invLen := 1 / float64(b.Len)
	for i := 0; i < b.Samples; i++ {
		for c := 0; c < b.Channels; c++ {
			for t := 0; t < b.Len; t++ {
				seq[t] = float64(b.At(i, t, c))
			}
			fft.Coefficients(coeff, seq)
			for k := 0; k < nBins; k++ {
				var acc complex128
				var wsum float64
				for d := -radius; d <= radius; d++ {
					j := k + d
					if j < 0 || j >= nBins {
						continue
					}
					w := kernel[absInt(d)]
					acc += complex(w, 0) * coeff[j]
					wsum += w
				}
				smoothed[k] = acc / complex(wsum, 0)
			}
			fft.Sequence(seq, smoothed)
			for t := 0; t < b.Len; t++ {
				out.Set(i, t, c, float32(seq[t]*invLen))
			}
		}
	}
	return out
}

func absInt(d int) int {
	if d < 0 {
		return -d
	}
	return d
}
