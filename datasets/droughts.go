package datasets

import (
	"github.com/KudanLabo/freqdiff/preprocess"
	"github.com/KudanLabo/freqdiff/series"
)

// droughtsRef is the Kaggle dataset carrying the county meteorology.
const droughtsRef = "cdminix/us-drought-meteorological-data"

// droughtsDrop indexes the channels removed before serving: t2mdew,
// t2mwet, t2m_max, t2m_min and ts all correlate strongly with the
// retained t2m channel.
var droughtsDrop = []int{4, 5, 6, 7, 9}

// Droughts serves year-long windows of county-level meteorological
// measurements from the US droughts dataset.
type Droughts struct {
	Module
}

// NewDroughts builds the droughts data module.
func NewDroughts(cfg Config) *Droughts {
	d := &Droughts{}
	d.Module = newModule("droughts", cfg, kaggleFetch(droughtsRef))
	return d
}

// Setup preprocesses the county time series into cached tensors on first
// use, loads them, drops the duplicate temperature channels and checks
// the seasonal length.
func (d *Droughts) Setup() error {
	dir := d.Dir()
	if !cachePresent(dir) {
		if err := preprocess.Droughts(dir, dir, d.Config().Seed); err != nil {
			return err
		}
	}
	train, test, err := loadPair(dir)
	if err != nil {
		return err
	}
	want := keptAfterDrop(train.Channels, droughtsDrop)
	train, err = train.DropChannels(droughtsDrop)
	if err != nil {
		return err
	}
	test, err = test.DropChannels(droughtsDrop)
	if err != nil {
		return err
	}
	for _, b := range []*series.Block{train, test} {
		if b.Len%preprocess.DroughtSeason != 0 {
			return shapeErrf("droughts: length %d is not a whole number of seasons", b.Len)
		}
		if b.Channels != want {
			return shapeErrf("droughts: %d channels after pruning, want %d", b.Channels, want)
		}
	}
	return d.setBlocks(train, test)
}

func keptAfterDrop(channels int, drop []int) int {
	dropped := 0
	for _, c := range drop {
		if c >= 0 && c < channels {
			dropped++
		}
	}
	return channels - dropped
}
