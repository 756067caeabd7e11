package datasets

import (
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/preprocess"
	"github.com/KudanLabo/freqdiff/series"
)

// nasaRef is the Kaggle dataset carrying the battery telemetry.
const nasaRef = "patrickfleith/nasa-battery-dataset"

// NASA serves resampled battery cycles from the NASA prognostics
// repository, one module per cycle type. Both subsets share the raw
// download and cache their tensors under nested subset directories.
type NASA struct {
	Module
	subset string
}

// NewNASA builds the battery data module for the charge or discharge
// subset.
func NewNASA(cfg Config, subset string) (*NASA, error) {
	if subset != preprocess.NASACharge && subset != preprocess.NASADischarge {
		return nil, errors.Newf("datasets: unknown nasa subset %q", subset)
	}
	n := &NASA{subset: subset}
	n.Module = newModule("nasa-"+subset, cfg, kaggleFetch(nasaRef))
	n.dirName = "nasa"
	return n, nil
}

// Setup preprocesses the telemetry into cached tensors on first use and
// loads the subset's pair. Charge cycles are halved in rate and stripped
// of the temperature channel unless configured otherwise.
func (n *NASA) Setup() error {
	dir := n.Dir()
	sub := filepath.Join(dir, n.subset)
	if !cachePresent(sub) {
		if err := preprocess.NASA(dir, dir, n.subset, n.Config().Seed); err != nil {
			return err
		}
	}
	train, test, err := loadPair(sub)
	if err != nil {
		return err
	}
	if n.subset == preprocess.NASACharge && !n.Config().NASAKeepOutlierFeature {
		if train, err = pruneChargeCycles(train); err != nil {
			return err
		}
		if test, err = pruneChargeCycles(test); err != nil {
			return err
		}
		want := (preprocess.NASACycleLen + 1) / 2
		if err := n.assertShape(train, want, 4); err != nil {
			return err
		}
		if err := n.assertShape(test, want, 4); err != nil {
			return err
		}
	}
	return n.setBlocks(train, test)
}

// pruneChargeCycles takes every second time step and keeps the voltage
// and current channels, dropping the measured temperature.
func pruneChargeCycles(b *series.Block) (*series.Block, error) {
	b, err := b.Downsample(2)
	if err != nil {
		return nil, err
	}
	return b.SelectChannels([]int{0, 1, 3, 4})
}
