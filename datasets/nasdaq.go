package datasets

import (
	"github.com/KudanLabo/freqdiff/preprocess"
)

// nasdaqRef is the Kaggle dataset carrying the per-ticker price history.
const nasdaqRef = "jacksoncrow/stock-market-dataset"

// NASDAQ serves one-year windows of daily trading data, one sequence per
// ticker.
type NASDAQ struct {
	Module
}

// NewNASDAQ builds the NASDAQ data module.
func NewNASDAQ(cfg Config) *NASDAQ {
	n := &NASDAQ{}
	n.Module = newModule("nasdaq", cfg, kaggleFetch(nasdaqRef))
	return n
}

// Setup preprocesses the ticker CSVs into cached tensors on first use,
// loads them and drops the volume channel, whose scale dwarfs the price
// channels.
func (n *NASDAQ) Setup() error {
	dir := n.Dir()
	if !cachePresent(dir) {
		if err := preprocess.NASDAQ(dir, dir, n.Config().Seed); err != nil {
			return err
		}
	}
	train, test, err := loadPair(dir)
	if err != nil {
		return err
	}
	if err := n.assertShape(train, preprocess.NASDAQWindow, 6); err != nil {
		return err
	}
	if err := n.assertShape(test, preprocess.NASDAQWindow, 6); err != nil {
		return err
	}
	// volume is the last channel
	train, err = train.DropChannels([]int{5})
	if err != nil {
		return err
	}
	test, err = test.DropChannels([]int{5})
	if err != nil {
		return err
	}
	return n.setBlocks(train, test)
}
