// Package preprocess turns raw dataset sources into the tensor pairs the
// dataset modules serve. Most routines read one dataset family's raw tree
// and write the cached train and test blocks as a side effect, leaving the
// raw files in place; the heartbeat and sinusoid sources are cheap enough
// to read directly on every setup, so their routines return the blocks
// instead.
package preprocess

import (
	"math/rand"
	"path/filepath"

	"github.com/KudanLabo/freqdiff/logging"
	"github.com/KudanLabo/freqdiff/series"
)

// Cache file names the dataset modules probe for.
const (
	TrainFile = "X_train.pt"
	TestFile  = "X_test.pt"
)

const trainFraction = 0.8

var logger = logging.New("preprocess")

// splitSamples partitions the samples of b into train and test blocks with
// a seeded shuffle.
func splitSamples(b *series.Block, trainFrac float64, seed int64) (train, test *series.Block) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(b.Samples)
	nTrain := int(float64(b.Samples) * trainFrac)
	train = series.New(nTrain, b.Len, b.Channels)
	test = series.New(b.Samples-nTrain, b.Len, b.Channels)
	for dst, src := range perm[:nTrain] {
		copy(train.Sequence(dst), b.Sequence(src))
	}
	for dst, src := range perm[nTrain:] {
		copy(test.Sequence(dst), b.Sequence(src))
	}
	return train, test
}

// writePair saves both splits under dir using the cache file names.
func writePair(dir string, train, test *series.Block) error {
	if err := train.Save(filepath.Join(dir, TrainFile)); err != nil {
		return err
	}
	return test.Save(filepath.Join(dir, TestFile))
}
