package datasets

import (
	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/preprocess"
)

// Names lists the available dataset names in presentation order.
func Names() []string {
	return []string{
		"ecg",
		"synthetic",
		"mimiciii",
		"nasdaq",
		"nasa-charge",
		"nasa-discharge",
		"droughts",
	}
}

// Open builds the data module registered under name.
func Open(name string, cfg Config) (DataModule, error) {
	switch name {
	case "ecg":
		return NewECG(cfg), nil
	case "synthetic":
		return NewSynthetic(cfg), nil
	case "mimiciii":
		return NewMIMIC(cfg), nil
	case "nasdaq":
		return NewNASDAQ(cfg), nil
	case "nasa-charge":
		return NewNASA(cfg, preprocess.NASACharge)
	case "nasa-discharge":
		return NewNASA(cfg, preprocess.NASADischarge)
	case "droughts":
		return NewDroughts(cfg), nil
	}
	return nil, errors.Newf("datasets: unknown dataset %q", name)
}

var (
	_ DataModule = (*ECG)(nil)
	_ DataModule = (*Synthetic)(nil)
	_ DataModule = (*MIMIC)(nil)
	_ DataModule = (*NASDAQ)(nil)
	_ DataModule = (*NASA)(nil)
	_ DataModule = (*Droughts)(nil)
)
