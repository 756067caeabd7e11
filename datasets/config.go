// Package datasets provides the per-dataset data modules feeding the
// diffusion training loop: raw data acquisition, cached preprocessing,
// hard-coded pruning, and train/validation/test batch iteration.
package datasets

// Defaults applied when Config fields are left zero.
const (
	DefaultDataDir   = "data"
	DefaultSeed      = 42
	DefaultBatchSize = 32

	defaultMIMICChannels    = 40
	defaultSyntheticLen     = 100
	defaultSyntheticSamples = 1000
)

// Config controls every data module. It is fixed at construction; zero
// values select the defaults above.
type Config struct {
	// DataDir is the root under which each dataset keeps its namespaced
	// directory.
	DataDir string
	// Seed drives shuffling, splitting, and synthetic generation.
	Seed int64
	// BatchSize is the number of sequences per yielded batch.
	BatchSize int

	// Fourier serves packed frequency-domain sequences instead of raw
	// ones.
	Fourier bool
	// Standardize enables per-feature standardization of train and
	// validation samples.
	Standardize bool

	// ECGSubsample keeps only that many of the most time-localized
	// training heartbeats when positive. Zero disables subsampling.
	ECGSubsample int
	// ECGSmootherWidth applies Gaussian spectral smoothing to the
	// heartbeats when positive, in frequency bins.
	ECGSmootherWidth float64
	// MIMICChannels is how many top-variance vitals channels to keep.
	MIMICChannels int
	// NASAKeepOutlierFeature serves charge cycles unpruned, keeping the
	// temperature channel and the full sampling rate.
	NASAKeepOutlierFeature bool
	// SyntheticLen and SyntheticSamples shape the generated sinusoid
	// set.
	SyntheticLen     int
	SyntheticSamples int
}

func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.BatchSize < 1 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MIMICChannels < 1 {
		c.MIMICChannels = defaultMIMICChannels
	}
	if c.SyntheticLen < 1 {
		c.SyntheticLen = defaultSyntheticLen
	}
	if c.SyntheticSamples < 1 {
		c.SyntheticSamples = defaultSyntheticSamples
	}
	return c
}
