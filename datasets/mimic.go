package datasets

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/KudanLabo/freqdiff/preprocess"
	"github.com/KudanLabo/freqdiff/series"
)

// MIMIC serves hourly ICU vitals windows from the MIMIC-III clinical
// database. The source is access-restricted, so the fetch step only
// verifies that the MIMIC-Extract export is already in place.
type MIMIC struct {
	Module
}

// NewMIMIC builds the MIMIC-III data module.
func NewMIMIC(cfg Config) *MIMIC {
	m := &MIMIC{}
	m.Module = newModule("mimiciii", cfg, m.requireExport)
	return m
}

func (m *MIMIC) requireExport(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, preprocess.MIMICSource)); err == nil {
		return nil
	}
	err := errors.Newf("datasets: mimiciii: %s not found in %s", preprocess.MIMICSource, dir)
	err = errors.Mark(err, ErrManualSetup)
	err = errors.WithHint(err, "MIMIC-III is restricted; request credentialed access at https://physionet.org/content/mimiciii/")
	err = errors.WithHint(err, fmt.Sprintf("run MIMIC-Extract and place the vitals table at %s", filepath.Join(dir, preprocess.MIMICSource)))
	return err
}

// Setup preprocesses the export into cached tensors on first use, loads
// them and keeps the channels with the highest variance across stays.
func (m *MIMIC) Setup() error {
	dir := m.Dir()
	if !cachePresent(dir) {
		if err := m.requireExport(dir); err != nil {
			return err
		}
		if err := preprocess.MIMIC(dir, dir, m.Config().Seed); err != nil {
			return err
		}
	}
	train, test, err := loadPair(dir)
	if err != nil {
		return err
	}
	keep := topVarianceChannels(train, m.Config().MIMICChannels)
	train, err = train.SelectChannels(keep)
	if err != nil {
		return err
	}
	test, err = test.SelectChannels(keep)
	if err != nil {
		return err
	}
	return m.setBlocks(train, test)
}

// topVarianceChannels ranks channels by their standard deviation across
// samples averaged over time, descending, and returns the first n in
// ranking order. Ties keep the lower channel index first.
func topVarianceChannels(b *series.Block, n int) []int {
	if n > b.Channels {
		n = b.Channels
	}
	score := make([]float64, b.Channels)
	col := make([]float64, b.Samples)
	for c := 0; c < b.Channels; c++ {
		for t := 0; t < b.Len; t++ {
			for i := 0; i < b.Samples; i++ {
				col[i] = float64(b.At(i, t, c))
			}
			_, sd := stat.MeanStdDev(col, nil)
			if !math.IsNaN(sd) {
				score[c] += sd
			}
		}
		score[c] /= float64(b.Len)
	}
	idx := make([]int, b.Channels)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return score[idx[i]] > score[idx[j]] })
	return idx[:n]
}
