package datasets

import (
	"github.com/KudanLabo/freqdiff/freq"
	"github.com/KudanLabo/freqdiff/series"
)

// Sample is one record served to the training loop: a sequence flattened
// in (step, channel) order and an optional label.
type Sample struct {
	X       []float32
	Y       int64
	Labeled bool
}

// SampleSet serves individual sequences from a block, optionally frequency
// transformed and standardized against a reference. Statistics are
// computed once at construction and never change.
type SampleSet struct {
	x           *series.Block
	labels      []int64
	mean, std   []float32
	standardize bool
}

// NewSampleSet wraps x for per-sample access. When fourier is set, x and
// the reference are transformed before statistics are computed. The
// reference defaults to x itself and must share its sequence shape.
func NewSampleSet(x, ref *series.Block, labels []int64, fourier, standardize bool) (*SampleSet, error) {
	if x == nil {
		return nil, shapeErrf("sample set needs a tensor")
	}
	if err := x.Validate(); err != nil {
		return nil, err
	}
	if labels != nil && len(labels) != x.Samples {
		return nil, shapeErrf("%d labels for %d samples", len(labels), x.Samples)
	}
	if fourier {
		x = freq.Transform(x)
	}
	if ref == nil {
		ref = x
	} else {
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		if fourier {
			ref = freq.Transform(ref)
		}
		if ref.Len != x.Len || ref.Channels != x.Channels {
			return nil, shapeErrf("reference (%d, %d) does not match samples (%d, %d)",
				ref.Len, ref.Channels, x.Len, x.Channels)
		}
	}
	mean, std := ref.Stats()
	return &SampleSet{x: x, labels: labels, mean: mean, std: std, standardize: standardize}, nil
}

// Len is the number of sequences.
func (s *SampleSet) Len() int { return s.x.Samples }

// SeqLen is the per-sample sequence length.
func (s *SampleSet) SeqLen() int { return s.x.Len }

// Channels is the per-step feature count.
func (s *SampleSet) Channels() int { return s.x.Channels }

// Stats returns the standardization statistics, one value per
// (step, channel) position of the reference.
func (s *SampleSet) Stats() (mean, std []float32) { return s.mean, s.std }

// At returns sample i as a fresh copy, standardized when enabled.
func (s *SampleSet) At(i int) Sample {
	seq := append([]float32(nil), s.x.Sequence(i)...)
	if s.standardize {
		for j := range seq {
			seq[j] = (seq[j] - s.mean[j]) / s.std[j]
		}
	}
	out := Sample{X: seq}
	if s.labels != nil {
		out.Y = s.labels[i]
		out.Labeled = true
	}
	return out
}
