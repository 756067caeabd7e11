package preprocess

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

// Battery cycle subsets.
const (
	NASACharge    = "charge"
	NASADischarge = "discharge"
)

// NASACycleLen is the common length every cycle is resampled to.
const NASACycleLen = 502

func nasaChannels(subset string) []string {
	if subset == NASACharge {
		return []string{
			"voltage_measured", "current_measured", "temperature_measured",
			"current_charge", "voltage_charge",
		}
	}
	return []string{
		"voltage_measured", "current_measured", "temperature_measured",
		"current_load", "voltage_load",
	}
}

// NASA builds the tensor pair for one battery cycle type and writes it
// under a subset subdirectory of outDir. Cycles of varying duration are
// aligned by linear resampling along the row index.
func NASA(rawDir, outDir, subset string, seed int64) error {
	if subset != NASACharge && subset != NASADischarge {
		return errors.Newf("preprocess: unknown battery subset %q", subset)
	}
	files, err := cycleFiles(filepath.Join(rawDir, "cleaned_dataset", "metadata.csv"), subset)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Newf("preprocess: no %s cycles listed in battery metadata", subset)
	}

	channels := nasaChannels(subset)
	var seqs [][]float32
	for _, name := range files {
		seq, err := resampleCycle(filepath.Join(rawDir, "cleaned_dataset", "data", name), channels)
		if err != nil {
			return err
		}
		if seq != nil {
			seqs = append(seqs, seq)
		}
	}
	if len(seqs) == 0 {
		return errors.Newf("preprocess: no usable %s cycles under %s", subset, rawDir)
	}
	block, err := series.FromSequences(seqs, len(channels))
	if err != nil {
		return err
	}
	train, test := splitSamples(block, trainFraction, seed)
	logger.Info().
		Str("subset", subset).
		Int("cycles", block.Samples).
		Int("train", train.Samples).
		Int("test", test.Samples).
		Msg("battery cycles preprocessed")
	return writePair(filepath.Join(outDir, subset), train, test)
}

// cycleFiles lists the data files the battery metadata records for one
// cycle type.
func cycleFiles(metaPath, subset string) ([]string, error) {
	file, err := os.Open(metaPath)
	if err != nil {
		return nil, errors.Wrap(err, "preprocess: opening battery metadata")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "preprocess: reading battery metadata header")
	}
	sel, err := selectColumns(header, []string{"type", "filename"})
	if err != nil {
		return nil, err
	}
	var files []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "preprocess: reading battery metadata")
		}
		if sel[0] >= len(record) || sel[1] >= len(record) {
			continue
		}
		if strings.TrimSpace(record[sel[0]]) == subset {
			files = append(files, strings.TrimSpace(record[sel[1]]))
		}
	}
	return files, nil
}

// resampleCycle loads one cycle file and linearly resamples each channel to
// the common length. Cycles with fewer than two usable rows are skipped.
func resampleCycle(path string, channels []string) ([]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "preprocess: opening %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "preprocess: reading %s header", path)
	}
	sel, err := selectColumns(header, channels)
	if err != nil {
		return nil, errors.Wrapf(err, "preprocess: %s", path)
	}

	var rows [][]float32
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "preprocess: reading %s", path)
		}
		row, ok := parseRow(record, sel)
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 {
		return nil, nil
	}

	n := len(rows)
	seq := make([]float32, NASACycleLen*len(channels))
	step := float64(n-1) / float64(NASACycleLen-1)
	for t := 0; t < NASACycleLen; t++ {
		pos := float64(t) * step
		lo := int(pos)
		if lo >= n-1 {
			lo = n - 2
		}
		frac := float32(pos - float64(lo))
		for c := range channels {
			seq[t*len(channels)+c] = (1-frac)*rows[lo][c] + frac*rows[lo+1][c]
		}
	}
	return seq, nil
}
