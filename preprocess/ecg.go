package preprocess

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

// ECGSeqLen is the heartbeat sequence length.
const ECGSeqLen = 187

// ecgColumns is the mitbih row width: the signal values plus a class label.
const ecgColumns = ECGSeqLen + 1

// ECG reads the mitbih heartbeat CSVs under dir into single-channel
// blocks. The source ships pre-split, so no shuffling happens here; the
// trailing class label of each row becomes an int64 label.
func ECG(dir string) (train, test *series.Block, yTrain, yTest []int64, err error) {
	train, yTrain, err = readECGCSV(filepath.Join(dir, "mitbih_train.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	test, yTest, err = readECGCSV(filepath.Join(dir, "mitbih_test.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger.Info().Int("train", train.Samples).Int("test", test.Samples).Msg("heartbeats loaded")
	return train, test, yTrain, yTest, nil
}

// readECGCSV loads one headerless mitbih file into a single-channel block
// plus the per-row class labels.
func readECGCSV(path string) (*series.Block, []int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "preprocess: opening heartbeat file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = ecgColumns
	var seqs [][]float32
	var labels []int64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "preprocess: reading %s", path)
		}
		seq := make([]float32, ECGSeqLen)
		for i := range seq {
			v, err := parseFloat32(record[i])
			if err != nil {
				return nil, nil, errors.Wrapf(err, "preprocess: %s row %d", path, len(seqs)+1)
			}
			seq[i] = v
		}
		label, err := parseFloat32(record[ECGSeqLen])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "preprocess: %s row %d", path, len(seqs)+1)
		}
		seqs = append(seqs, seq)
		labels = append(labels, int64(label))
	}
	block, err := series.FromSequences(seqs, 1)
	if err != nil {
		return nil, nil, err
	}
	return block, labels, nil
}
