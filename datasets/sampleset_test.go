package datasets

import (
	"math"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/freq"
	"github.com/KudanLabo/freqdiff/series"
)

// noisyBlock builds a block whose every (step, channel) column varies
// across samples.
func noisyBlock(samples, length, channels int) *series.Block {
	b := series.New(samples, length, channels)
	for i := 0; i < samples; i++ {
		for t := 0; t < length; t++ {
			for c := 0; c < channels; c++ {
				b.Set(i, t, c, float32(math.Sin(float64(i*37+t*11+c*5)+0.5)))
			}
		}
	}
	return b
}

// TestSampleSetSelfStandardize checks that standardizing against the set
// itself centers and unit-scales every feature column.
func TestSampleSetSelfStandardize(t *testing.T) {
	b := noisyBlock(12, 5, 2)
	set, err := NewSampleSet(b, nil, nil, false, true)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	cols := b.Len * b.Channels
	n := set.Len()
	for j := 0; j < cols; j++ {
		var sum float64
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = float64(set.At(i).X[j])
			sum += vals[i]
		}
		mean := sum / float64(n)
		var ss float64
		for _, v := range vals {
			ss += (v - mean) * (v - mean)
		}
		std := math.Sqrt(ss / float64(n-1))
		if math.Abs(mean) > 1e-5 {
			t.Fatalf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(std-1) > 1e-4 {
			t.Fatalf("column %d std = %v, want 1", j, std)
		}
	}
}

// TestSampleSetReference checks that a distinct reference tensor supplies
// the statistics applied to the samples.
func TestSampleSetReference(t *testing.T) {
	x := noisyBlock(3, 4, 1)
	ref := rampBlock(5, 4, 1)
	set, err := NewSampleSet(x, ref, nil, false, true)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	wantMean, wantStd := ref.Stats()
	mean, std := set.Stats()
	if !reflect.DeepEqual(mean, wantMean) || !reflect.DeepEqual(std, wantStd) {
		t.Fatal("set statistics differ from the reference statistics")
	}
	raw := x.Sequence(1)
	got := set.At(1).X
	for j := range got {
		if want := (raw[j] - mean[j]) / std[j]; got[j] != want {
			t.Fatalf("standardized value [%d] = %v, want %v", j, got[j], want)
		}
	}
}

// TestSampleSetFourier checks that samples come back frequency
// transformed and that an explicit reference is transformed exactly once.
func TestSampleSetFourier(t *testing.T) {
	x := noisyBlock(2, 8, 1)
	set, err := NewSampleSet(x, nil, nil, true, false)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	if set.SeqLen() != 8 || set.Channels() != 1 {
		t.Fatalf("transformed shape (%d, %d), want (8, 1)", set.SeqLen(), set.Channels())
	}
	want := freq.Transform(x)
	for i := 0; i < set.Len(); i++ {
		if !reflect.DeepEqual(set.At(i).X, want.Sequence(i)) {
			t.Fatalf("sample %d does not match the transformed sequence", i)
		}
	}

	withRef, err := NewSampleSet(x, x.Clone(), nil, true, false)
	if err != nil {
		t.Fatalf("NewSampleSet with reference: %v", err)
	}
	selfMean, selfStd := set.Stats()
	refMean, refStd := withRef.Stats()
	if !reflect.DeepEqual(refMean, selfMean) || !reflect.DeepEqual(refStd, selfStd) {
		t.Fatal("reference equal to the samples produced different statistics")
	}
}

// TestSampleSetLabels checks label attachment and the count mismatch
// error.
func TestSampleSetLabels(t *testing.T) {
	b := noisyBlock(3, 2, 1)
	set, err := NewSampleSet(b, nil, []int64{5, 7, 9}, false, false)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	s := set.At(1)
	if !s.Labeled || s.Y != 7 {
		t.Fatalf("sample 1 label = (%v, %d), want (true, 7)", s.Labeled, s.Y)
	}

	unlabeled, err := NewSampleSet(b, nil, nil, false, false)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	if unlabeled.At(0).Labeled {
		t.Fatal("unlabeled set produced a labeled sample")
	}

	if _, err := NewSampleSet(b, nil, []int64{1, 2}, false, false); !errors.Is(err, series.ErrBadShape) {
		t.Fatalf("label count mismatch: got %v, want ErrBadShape", err)
	}
}

// TestSampleSetShapeErrors checks the nil and mismatched-reference
// rejections.
func TestSampleSetShapeErrors(t *testing.T) {
	if _, err := NewSampleSet(nil, nil, nil, false, false); !errors.Is(err, series.ErrBadShape) {
		t.Fatalf("nil samples: got %v, want ErrBadShape", err)
	}
	x := noisyBlock(2, 4, 1)
	ref := noisyBlock(2, 5, 1)
	if _, err := NewSampleSet(x, ref, nil, false, true); !errors.Is(err, series.ErrBadShape) {
		t.Fatalf("mismatched reference: got %v, want ErrBadShape", err)
	}
}

// TestSampleSetAtCopies checks that mutating a returned sample does not
// corrupt the set.
func TestSampleSetAtCopies(t *testing.T) {
	b := noisyBlock(1, 3, 1)
	set, err := NewSampleSet(b, nil, nil, false, false)
	if err != nil {
		t.Fatalf("NewSampleSet: %v", err)
	}
	first := set.At(0)
	want := first.X[0]
	first.X[0] = 999
	if got := set.At(0).X[0]; got != want {
		t.Fatalf("set value changed to %v after mutating a sample copy", got)
	}
}
