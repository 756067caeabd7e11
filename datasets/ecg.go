package datasets

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KudanLabo/freqdiff/freq"
	"github.com/KudanLabo/freqdiff/kaggle"
	"github.com/KudanLabo/freqdiff/preprocess"
	"github.com/KudanLabo/freqdiff/series"
)

// ecgRef is the Kaggle dataset carrying the mitbih heartbeat CSVs.
const ecgRef = "shayanfazeli/heartbeat"

// ECG serves single-channel heartbeats from the MIT-BIH arrhythmia
// export, labeled with their beat class.
type ECG struct {
	Module
}

// NewECG builds the ECG data module.
func NewECG(cfg Config) *ECG {
	e := &ECG{}
	e.Module = newModule("ecg", cfg, kaggleFetch(ecgRef))
	return e
}

// kaggleFetch returns a fetch routine downloading ref into the module
// directory with credentials from the environment.
func kaggleFetch(ref string) func(dir string) error {
	return func(dir string) error {
		client, err := kaggle.NewClient()
		if err != nil {
			return err
		}
		return client.Download(ref, dir)
	}
}

// Setup reads the heartbeat CSVs, optionally subsamples the training set
// to its most time-localized sequences and smooths the spectra.
func (e *ECG) Setup() error {
	train, test, yTrain, yTest, err := preprocess.ECG(e.Dir())
	if err != nil {
		return err
	}
	cfg := e.Config()
	if cfg.ECGSubsample > 0 {
		train, yTrain = subsampleLocalized(train, yTrain, cfg.ECGSubsample)
		e.logLocalization(train, "subsampled training set by localization")
	}
	if cfg.ECGSmootherWidth > 0 {
		train = freq.Smooth(train, cfg.ECGSmootherWidth)
		test = freq.Smooth(test, cfg.ECGSmootherWidth)
		e.logLocalization(train, "smoothed the frequency domain")
	}
	if err := e.setBlocks(train, test); err != nil {
		return err
	}
	e.YTrain, e.YTest = yTrain, yTest
	return nil
}

func (e *ECG) logLocalization(b *series.Block, msg string) {
	loc := freq.Localization(b)
	e.logger.Info().
		Float64("time", stat.Mean(loc.Time, nil)).
		Float64("frequency", stat.Mean(loc.Freq, nil)).
		Msg(msg)
}

// subsampleLocalized keeps the n sequences whose energy is most
// concentrated in time relative to frequency, in ranking order, along
// with their labels. Blocks at or under the target size pass through.
func subsampleLocalized(b *series.Block, y []int64, n int) (*series.Block, []int64) {
	if b.Samples <= n {
		return b, y
	}
	loc := freq.Localization(b)
	score := make([]float64, b.Samples)
	for i := range score {
		s := loc.Time[i] / loc.Freq[i]
		if math.IsNaN(s) {
			s = math.Inf(1)
		}
		score[i] = s
	}
	idx := make([]int, b.Samples)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return score[idx[i]] < score[idx[j]] })

	out := series.New(n, b.Len, b.Channels)
	var kept []int64
	if y != nil {
		kept = make([]int64, n)
	}
	for i := 0; i < n; i++ {
		copy(out.Sequence(i), b.Sequence(idx[i]))
		if y != nil {
			kept[i] = y[idx[i]]
		}
	}
	return out, kept
}
