package datasets

import (
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/KudanLabo/freqdiff/series"
)

// Loader feeds batches from a SampleSet through the train.Dataset
// contract: Yield returns one batch per call and io.EOF once the epoch
// is exhausted, Reset rewinds for the next epoch. Shuffling loaders
// draw a new visit order on every Reset.
type Loader struct {
	name      string
	set       *SampleSet
	batchSize int
	shuffle   bool

	rng   *rand.Rand
	order []int
	next  int
}

// NewLoader builds a loader over set. Batch sizes below one are clamped
// to one so a misconfigured loader still makes progress.
func NewLoader(name string, set *SampleSet, batchSize int, shuffle bool, seed int64) *Loader {
	if batchSize < 1 {
		batchSize = 1
	}
	l := &Loader{
		name:      name,
		set:       set,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
		order:     make([]int, set.Len()),
	}
	for i := range l.order {
		l.order[i] = i
	}
	if shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	return l
}

// Name identifies the loader in training logs.
func (l *Loader) Name() string { return l.name }

// Len is the number of samples one epoch visits.
func (l *Loader) Len() int { return l.set.Len() }

// Steps is the number of batches one epoch yields. The final batch may
// be smaller than the configured batch size.
func (l *Loader) Steps() int {
	return (l.set.Len() + l.batchSize - 1) / l.batchSize
}

// Yield returns the next batch as a single (batch, steps, channels)
// tensor plus a label tensor when the set is labeled. It returns io.EOF
// once all samples have been visited.
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if l.next >= len(l.order) {
		return nil, nil, nil, io.EOF
	}
	n := min(l.batchSize, len(l.order)-l.next)
	batch := series.New(n, l.set.SeqLen(), l.set.Channels())
	var ys []int64
	for bi := 0; bi < n; bi++ {
		sample := l.set.At(l.order[l.next+bi])
		copy(batch.Sequence(bi), sample.X)
		if sample.Labeled {
			ys = append(ys, sample.Y)
		}
	}
	l.next += n
	inputs = []*tensors.Tensor{batch.ToTensor()}
	if ys != nil {
		labels = []*tensors.Tensor{tensors.FromAnyValue(ys)}
	}
	return l, inputs, labels, nil
}

// Reset rewinds the loader for another epoch, reshuffling when the
// loader was built with shuffling enabled.
func (l *Loader) Reset() {
	l.next = 0
	if l.shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
}
