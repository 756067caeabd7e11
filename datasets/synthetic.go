package datasets

import (
	"github.com/KudanLabo/freqdiff/preprocess"
)

// Synthetic serves seeded sinusoids with random phase and frequency. The
// fetch step generates the raw CSVs locally, so no network is involved.
type Synthetic struct {
	Module
}

// NewSynthetic builds the synthetic data module.
func NewSynthetic(cfg Config) *Synthetic {
	s := &Synthetic{}
	s.Module = newModule("synthetic", cfg, s.generate)
	return s
}

func (s *Synthetic) generate(dir string) error {
	cfg := s.Config()
	return preprocess.GenerateSynthetic(dir, cfg.SyntheticSamples, cfg.SyntheticLen, cfg.Seed)
}

// Setup reads the generated sinusoid CSVs back into the tensor pair.
func (s *Synthetic) Setup() error {
	train, test, err := preprocess.Synthetic(s.Dir())
	if err != nil {
		return err
	}
	return s.setBlocks(train, test)
}
