package freq

import (
	"math"
	"math/rand"
	"testing"

	"github.com/KudanLabo/freqdiff/series"
)

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func randomBlock(samples, length, channels int, seed int64) *series.Block {
	rng := rand.New(rand.NewSource(seed))
	b := series.New(samples, length, channels)
	for i := range b.Data {
		b.Data[i] = float32(rng.NormFloat64())
	}
	return b
}

// TestTransformRoundTrip checks that Inverse recovers the original series
// for both even and odd sequence lengths.
func TestTransformRoundTrip(t *testing.T) {
	for _, length := range []int{7, 8, 1, 64} {
		b := randomBlock(3, length, 2, 11)
		got := Inverse(Transform(b))
		if got.Samples != b.Samples || got.Len != b.Len || got.Channels != b.Channels {
			t.Fatalf("length %d: round trip shape (%d,%d,%d), want (%d,%d,%d)",
				length, got.Samples, got.Len, got.Channels, b.Samples, b.Len, b.Channels)
		}
		for i := range b.Data {
			if !closeTo(float64(got.Data[i]), float64(b.Data[i]), 1e-4) {
				t.Fatalf("length %d: round trip element %d = %v, want %v", length, i, got.Data[i], b.Data[i])
			}
		}
	}
}

// TestTransformConstant checks that a constant series concentrates all its
// energy in the first packed slot, scaled orthonormally.
func TestTransformConstant(t *testing.T) {
	for _, length := range []int{3, 4} {
		c := float32(2.5)
		b := series.New(1, length, 1)
		for i := range b.Data {
			b.Data[i] = c
		}
		got := Transform(b)
		want := float64(c) * math.Sqrt(float64(length))
		if !closeTo(float64(got.At(0, 0, 0)), want, 1e-5) {
			t.Fatalf("length %d: packed DC = %v, want %v", length, got.At(0, 0, 0), want)
		}
		for k := 1; k < length; k++ {
			if !closeTo(float64(got.At(0, k, 0)), 0, 1e-5) {
				t.Fatalf("length %d: packed slot %d = %v, want 0", length, k, got.At(0, k, 0))
			}
		}
	}
}

// TestTransformKnownSpectrum checks the packing layout against hand-computed
// four-point spectra: the Nyquist tone lands in the real block and the
// fundamental sine in the imaginary block.
func TestTransformKnownSpectrum(t *testing.T) {
	cases := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"nyquist", []float32{1, -1, 1, -1}, []float32{0, 0, 2, 0}},
		{"sine", []float32{0, 1, 0, -1}, []float32{0, 0, 0, -1}},
	}
	for _, tc := range cases {
		b := series.New(1, 4, 1)
		copy(b.Data, tc.in)
		got := Transform(b)
		for k, want := range tc.want {
			if !closeTo(float64(got.At(0, k, 0)), float64(want), 1e-5) {
				t.Fatalf("%s: packed slot %d = %v, want %v", tc.name, k, got.At(0, k, 0), want)
			}
		}
	}
}

// TestLocalization checks the energy spread metrics on three canonical
// inputs: an impulse is perfectly localized in time and maximally spread in
// frequency, a constant is the reverse.
func TestLocalization(t *testing.T) {
	length := 32
	impulse := series.New(1, length, 1)
	impulse.Set(0, 16, 0, 1)
	constant := series.New(1, length, 1)
	for i := range constant.Data {
		constant.Data[i] = 1
	}

	imp := Localization(impulse)
	con := Localization(constant)

	if imp.Time[0] != 0 {
		t.Fatalf("impulse time spread = %v, want 0", imp.Time[0])
	}
	// flat spectrum over the 17 rfft bins of a 32-point impulse
	wantFreq := math.Sqrt((17*17 - 1) / 12.0)
	if !closeTo(imp.Freq[0], wantFreq, 1e-6) {
		t.Fatalf("impulse freq spread = %v, want %v", imp.Freq[0], wantFreq)
	}
	wantTime := math.Sqrt((32*32 - 1) / 12.0)
	if !closeTo(con.Time[0], wantTime, 1e-9) {
		t.Fatalf("constant time spread = %v, want %v", con.Time[0], wantTime)
	}
	if !closeTo(con.Freq[0], 0, 1e-3) {
		t.Fatalf("constant freq spread = %v, want 0", con.Freq[0])
	}
	if imp.Freq[0] <= con.Freq[0] || con.Time[0] <= imp.Time[0] {
		t.Fatalf("spreads not ordered: impulse %+v, constant %+v", imp, con)
	}
}

// TestLocalizationZeroSeries checks that a silent sample reports zero
// spread instead of dividing by its zero energy.
func TestLocalizationZeroSeries(t *testing.T) {
	sp := Localization(series.New(2, 16, 1))
	for i := 0; i < 2; i++ {
		if sp.Time[i] != 0 || sp.Freq[i] != 0 {
			t.Fatalf("sample %d: spread (%v, %v), want (0, 0)", i, sp.Time[i], sp.Freq[i])
		}
	}
}

// TestSmoothZeroSigma checks that a non-positive width degrades to a plain
// copy with no shared backing storage.
func TestSmoothZeroSigma(t *testing.T) {
	b := randomBlock(2, 16, 1, 3)
	got := Smooth(b, 0)
	for i := range b.Data {
		if got.Data[i] != b.Data[i] {
			t.Fatalf("element %d = %v, want %v", i, got.Data[i], b.Data[i])
		}
	}
	got.Data[0]++
	if got.Data[0] == b.Data[0] {
		t.Fatal("smoothed block aliases its input")
	}
}

// TestSmoothReducesRoughness checks that Gaussian spectral smoothing shrinks
// the bin-to-bin variation of a noisy signal's spectrum while keeping the
// series shape.
func TestSmoothReducesRoughness(t *testing.T) {
	b := randomBlock(1, 64, 1, 7)
	sm := Smooth(b, 2)
	if sm.Samples != b.Samples || sm.Len != b.Len || sm.Channels != b.Channels {
		t.Fatalf("smoothed shape (%d,%d,%d), want (%d,%d,%d)",
			sm.Samples, sm.Len, sm.Channels, b.Samples, b.Len, b.Channels)
	}
	before := roughness(Transform(b))
	after := roughness(Transform(sm))
	if after >= before {
		t.Fatalf("spectral roughness %v not below original %v", after, before)
	}
}

// roughness sums squared differences between adjacent packed slots within
// the real and imaginary segments separately.
func roughness(b *series.Block) float64 {
	nRe := b.Len/2 + 1
	var sum float64
	add := func(lo, hi int) {
		for k := lo; k+1 < hi; k++ {
			d := float64(b.At(0, k+1, 0)) - float64(b.At(0, k, 0))
			sum += d * d
		}
	}
	add(0, nRe)
	add(nRe, b.Len)
	return sum
}
