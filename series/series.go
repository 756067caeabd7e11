// Package series holds batches of fixed-length multivariate time series as
// flat float32 buffers plus explicit dimensions. Every dataset adapter
// produces blocks in this form and every loader consumes them; conversion to
// gomlx tensors happens at the batch boundary.
package series

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"gonum.org/v1/gonum/stat"
)

// ErrBadShape marks violations of a block's shape invariants: buffers that
// disagree with their recorded dimensions, mismatched sequence sizes, or
// out-of-range channel selections.
var ErrBadShape = errors.New("series: shape invariant violated")

// stdFloor is the smallest usable standard deviation; anything below it is
// treated as one.
const stdFloor = 1e-8

func badShapef(format string, args ...any) error {
	return errors.Mark(errors.Newf("series: "+format, args...), ErrBadShape)
}

// Block is a batch of fixed-length multivariate sequences stored in one
// contiguous buffer in (sample, step, channel) order.
type Block struct {
	Data     []float32
	Samples  int
	Len      int
	Channels int
}

// New allocates a zeroed block with the given dimensions.
func New(samples, length, channels int) *Block {
	return &Block{
		Data:     make([]float32, samples*length*channels),
		Samples:  samples,
		Len:      length,
		Channels: channels,
	}
}

// FromSequences builds a block from per-sample sequences, each flattened in
// (step, channel) order. All sequences must share the same size.
func FromSequences(seqs [][]float32, channels int) (*Block, error) {
	if len(seqs) == 0 {
		return nil, badShapef("no sequences")
	}
	if channels <= 0 {
		return nil, badShapef("invalid channel count %d", channels)
	}
	per := len(seqs[0])
	if per == 0 || per%channels != 0 {
		return nil, badShapef("sequence size %d not divisible by %d channels", per, channels)
	}
	b := New(len(seqs), per/channels, channels)
	for i, s := range seqs {
		if len(s) != per {
			return nil, badShapef("sequence %d has size %d, want %d", i, len(s), per)
		}
		copy(b.Data[i*per:], s)
	}
	return b, nil
}

// Validate checks that the buffer length matches the recorded dimensions.
func (b *Block) Validate() error {
	if b.Samples < 0 || b.Len < 0 || b.Channels < 0 {
		return badShapef("negative dimension (%d, %d, %d)", b.Samples, b.Len, b.Channels)
	}
	if want := b.Samples * b.Len * b.Channels; len(b.Data) != want {
		return badShapef("buffer holds %d values, dimensions (%d, %d, %d) require %d",
			len(b.Data), b.Samples, b.Len, b.Channels, want)
	}
	return nil
}

// At returns the value at sample i, step t, channel c.
func (b *Block) At(i, t, c int) float32 {
	return b.Data[(i*b.Len+t)*b.Channels+c]
}

// Set writes the value at sample i, step t, channel c.
func (b *Block) Set(i, t, c int, v float32) {
	b.Data[(i*b.Len+t)*b.Channels+c] = v
}

// Sequence returns sample i as a view into the underlying buffer, flattened
// in (step, channel) order. Callers that keep it must copy.
func (b *Block) Sequence(i int) []float32 {
	per := b.Len * b.Channels
	return b.Data[i*per : (i+1)*per]
}

// Clone returns a deep copy sharing no memory with the receiver.
func (b *Block) Clone() *Block {
	c := *b
	c.Data = append([]float32(nil), b.Data...)
	return &c
}

// SelectChannels returns a new block holding the given channel indices in
// the given order.
func (b *Block) SelectChannels(keep []int) (*Block, error) {
	for _, c := range keep {
		if c < 0 || c >= b.Channels {
			return nil, badShapef("channel %d out of range [0, %d)", c, b.Channels)
		}
	}
	out := New(b.Samples, b.Len, len(keep))
	idx := 0
	for i := 0; i < b.Samples; i++ {
		for t := 0; t < b.Len; t++ {
			row := (i*b.Len + t) * b.Channels
			for _, c := range keep {
				out.Data[idx] = b.Data[row+c]
				idx++
			}
		}
	}
	return out, nil
}

// DropChannels returns a new block without the channels in drop, keeping the
// survivors in their original order.
func (b *Block) DropChannels(drop []int) (*Block, error) {
	dropped := make(map[int]bool, len(drop))
	for _, c := range drop {
		dropped[c] = true
	}
	keep := make([]int, 0, b.Channels)
	for c := 0; c < b.Channels; c++ {
		if !dropped[c] {
			keep = append(keep, c)
		}
	}
	return b.SelectChannels(keep)
}

// Downsample returns a new block keeping every stride-th time step, starting
// at step zero.
func (b *Block) Downsample(stride int) (*Block, error) {
	if stride <= 0 {
		return nil, badShapef("invalid stride %d", stride)
	}
	outLen := (b.Len + stride - 1) / stride
	out := New(b.Samples, outLen, b.Channels)
	for i := 0; i < b.Samples; i++ {
		seq := b.Sequence(i)
		for t := 0; t < outLen; t++ {
			src := t * stride * b.Channels
			copy(out.Data[(i*outLen+t)*b.Channels:], seq[src:src+b.Channels])
		}
	}
	return out, nil
}

// Stats returns the per-(step, channel) mean and standard deviation over the
// sample axis, flattened like a single sequence. The std is the unbiased
// estimator; entries below stdFloor, or undefined for a single sample, come
// back as one.
func (b *Block) Stats() (mean, std []float32) {
	per := b.Len * b.Channels
	mean = make([]float32, per)
	std = make([]float32, per)
	col := make([]float64, b.Samples)
	for j := 0; j < per; j++ {
		for i := 0; i < b.Samples; i++ {
			col[i] = float64(b.Data[i*per+j])
		}
		m, sd := stat.MeanStdDev(col, nil)
		if math.IsNaN(sd) || sd < stdFloor {
			sd = 1
		}
		mean[j] = float32(m)
		std[j] = float32(sd)
	}
	return mean, std
}

// ToTensor converts the block to a (samples, len, channels) gomlx tensor.
func (b *Block) ToTensor() *tensors.Tensor {
	if b.Samples == 0 || b.Len == 0 || b.Channels == 0 {
		empty := make([][][]float32, 0)
		return tensors.FromAnyValue(empty)
	}
	// Reshape the flat buffer into a 3D slice; rows alias the buffer.
	data := make([][][]float32, b.Samples)
	idx := 0
	for i := range b.Samples {
		data[i] = make([][]float32, b.Len)
		for t := range b.Len {
			data[i][t] = b.Data[idx : idx+b.Channels]
			idx += b.Channels
		}
	}
	return tensors.FromAnyValue(data)
}
