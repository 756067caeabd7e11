package datasets

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/KudanLabo/freqdiff/logging"
	"github.com/KudanLabo/freqdiff/preprocess"
	"github.com/KudanLabo/freqdiff/series"
)

// DataModule is the contract every dataset adapter fulfills for the
// training loop.
type DataModule interface {
	// Name is the stable dataset name.
	Name() string
	// PrepareData fetches raw data when the namespaced directory is
	// absent. Repeated calls are no-ops once the directory exists.
	PrepareData() error
	// Setup populates the tensor pair from cached or freshly
	// preprocessed data and applies the dataset's pruning rules.
	Setup() error
	// Train, Validation and Test return one-epoch batch iterators.
	// Train shuffles; the others do not. Validation standardizes with
	// training statistics; Test serves raw sequences.
	Train() (*Loader, error)
	Validation() (*Loader, error)
	Test() (*Loader, error)
	// Channels, SeqLen and TrainingSteps describe the tensors after
	// Setup, and are zero before.
	Channels() int
	SeqLen() int
	TrainingSteps() int
	// TrainStats returns the statistics standardization would apply to
	// training samples, one value per (step, channel) position.
	TrainStats() (mean, std []float32, err error)
}

// Module carries the state shared by every adapter: configuration, the
// namespaced directory, the fetch routine, and the loaded tensor pair.
// Adapters embed it and add their own Setup.
type Module struct {
	cfg     Config
	name    string
	dirName string
	fetch   func(dir string) error
	logger  zerolog.Logger

	XTrain, XTest *series.Block
	YTrain, YTest []int64
}

// newModule builds the shared part of an adapter. The fetch routine is
// invoked with the namespaced directory on first PrepareData.
func newModule(name string, cfg Config, fetch func(dir string) error) Module {
	return Module{
		cfg:     cfg.withDefaults(),
		name:    name,
		dirName: name,
		fetch:   fetch,
		logger:  logging.New("datasets").With().Str("dataset", name).Logger(),
	}
}

// Name is the dataset's stable name.
func (m *Module) Name() string { return m.name }

// Dir is the dataset's namespaced directory under the data root.
func (m *Module) Dir() string { return filepath.Join(m.cfg.DataDir, m.dirName) }

// Config returns the effective configuration after defaulting.
func (m *Module) Config() Config { return m.cfg }

// PrepareData creates the namespaced directory and runs the fetch routine
// on first use. An existing directory skips the fetch regardless of its
// contents; missing pieces surface later, at Setup.
func (m *Module) PrepareData() error {
	dir := m.Dir()
	if _, err := os.Stat(dir); err == nil {
		m.logger.Debug().Str("dir", dir).Msg("data directory present, skipping fetch")
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "datasets: checking %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "datasets: creating %s", dir)
	}
	if m.fetch == nil {
		return nil
	}
	m.logger.Info().Str("dir", dir).Msg("fetching raw data")
	return m.fetch(dir)
}

// setBlocks installs the loaded pair after checking that both splits share
// one sequence shape.
func (m *Module) setBlocks(train, test *series.Block) error {
	if train == nil || test == nil {
		return shapeErrf("%s: nil tensor pair", m.name)
	}
	if err := train.Validate(); err != nil {
		return err
	}
	if err := test.Validate(); err != nil {
		return err
	}
	if train.Len != test.Len || train.Channels != test.Channels {
		return shapeErrf("%s: train (%d, %d) and test (%d, %d) disagree",
			m.name, train.Len, train.Channels, test.Len, test.Channels)
	}
	m.XTrain, m.XTest = train, test
	m.logger.Info().
		Int("train", train.Samples).
		Int("test", test.Samples).
		Int("len", train.Len).
		Int("channels", train.Channels).
		Msg("tensors ready")
	return nil
}

// assertShape fails when b does not carry sequences of exactly the given
// length and channel count.
func (m *Module) assertShape(b *series.Block, wantLen, wantChannels int) error {
	if b.Len != wantLen || b.Channels != wantChannels {
		return shapeErrf("%s: sequences are (%d, %d), want (%d, %d)",
			m.name, b.Len, b.Channels, wantLen, wantChannels)
	}
	return nil
}

func (m *Module) ready() error {
	if m.XTrain == nil || m.XTest == nil {
		return errors.Mark(errors.Newf("datasets: %s: run Setup first", m.name), ErrNotSetup)
	}
	return nil
}

// Channels is the channel count after setup, zero before.
func (m *Module) Channels() int {
	if m.XTrain == nil {
		return 0
	}
	return m.XTrain.Channels
}

// SeqLen is the sequence length after setup, zero before.
func (m *Module) SeqLen() int {
	if m.XTrain == nil {
		return 0
	}
	return m.XTrain.Len
}

// TrainingSteps is the number of batches one training epoch yields.
func (m *Module) TrainingSteps() int {
	if m.XTrain == nil {
		return 0
	}
	return (m.XTrain.Samples + m.cfg.BatchSize - 1) / m.cfg.BatchSize
}

// Train returns the shuffled training iterator, standardized against its
// own statistics when standardization is on.
func (m *Module) Train() (*Loader, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	set, err := NewSampleSet(m.XTrain, nil, m.YTrain, m.cfg.Fourier, m.cfg.Standardize)
	if err != nil {
		return nil, err
	}
	return NewLoader(m.name+":train", set, m.cfg.BatchSize, true, m.cfg.Seed), nil
}

// Validation returns the unshuffled validation iterator: test sequences
// standardized with training statistics, so no validation data feeds the
// normalization.
func (m *Module) Validation() (*Loader, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	set, err := NewSampleSet(m.XTest, m.XTrain, m.YTest, m.cfg.Fourier, m.cfg.Standardize)
	if err != nil {
		return nil, err
	}
	return NewLoader(m.name+":validation", set, m.cfg.BatchSize, false, m.cfg.Seed), nil
}

// Test returns the unshuffled test iterator serving raw sequences.
func (m *Module) Test() (*Loader, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	set, err := NewSampleSet(m.XTest, nil, m.YTest, m.cfg.Fourier, false)
	if err != nil {
		return nil, err
	}
	return NewLoader(m.name+":test", set, m.cfg.BatchSize, false, m.cfg.Seed), nil
}

// TestStandardized returns the test iterator with training statistics
// applied, for callers that want the standardized view.
func (m *Module) TestStandardized() (*Loader, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	set, err := NewSampleSet(m.XTest, m.XTrain, m.YTest, m.cfg.Fourier, true)
	if err != nil {
		return nil, err
	}
	return NewLoader(m.name+":test", set, m.cfg.BatchSize, false, m.cfg.Seed), nil
}

// TrainStats returns the statistics standardization would apply to
// training samples.
func (m *Module) TrainStats() (mean, std []float32, err error) {
	if err := m.ready(); err != nil {
		return nil, nil, err
	}
	set, err := NewSampleSet(m.XTrain, nil, nil, m.cfg.Fourier, false)
	if err != nil {
		return nil, nil, err
	}
	mean, std = set.Stats()
	return mean, std, nil
}

// cachePresent reports whether both cache files exist under dir. Existence
// is the only validity signal; a corrupt cache is caught at load time.
func cachePresent(dir string) bool {
	for _, name := range []string{preprocess.TrainFile, preprocess.TestFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// loadPair loads both cached tensors from dir.
func loadPair(dir string) (train, test *series.Block, err error) {
	train, err = series.Load(filepath.Join(dir, preprocess.TrainFile))
	if err != nil {
		return nil, nil, err
	}
	test, err = series.Load(filepath.Join(dir, preprocess.TestFile))
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
