package preprocess

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KudanLabo/freqdiff/series"
)

// Raw file names the synthetic generator writes and the reader expects.
const (
	SyntheticTrainCSV = "train.csv"
	SyntheticTestCSV  = "test.csv"
)

// GenerateSynthetic writes 2·samples sinusoids of the given length under
// dir, split evenly between the train and test CSVs. Each sequence is
// sin(t·freq + phase) with phase drawn from Normal(0, 1) and freq from
// Beta(2, 2), the data-generating process of the Fourier flows benchmark.
func GenerateSynthetic(dir string, samples, length int, seed int64) error {
	src := rand.NewPCG(uint64(seed), 0)
	phase := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	frequency := distuv.Beta{Alpha: 2, Beta: 2, Src: src}

	rows := make([][]float32, 2*samples)
	for i := range rows {
		p := phase.Rand()
		f := frequency.Rand()
		row := make([]float32, length)
		for t := range row {
			row[t] = float32(math.Sin(float64(t)*f + p))
		}
		rows[i] = row
	}
	if err := writeSignalCSV(filepath.Join(dir, SyntheticTrainCSV), rows[:samples]); err != nil {
		return err
	}
	if err := writeSignalCSV(filepath.Join(dir, SyntheticTestCSV), rows[samples:]); err != nil {
		return err
	}
	logger.Info().Int("train", samples).Int("test", samples).Int("len", length).Msg("sinusoids generated")
	return nil
}

// Synthetic reads the generated sinusoid CSVs under dir back into the
// tensor pair. Rows are headerless, one sequence per line.
func Synthetic(dir string) (train, test *series.Block, err error) {
	train, err = readSignalCSV(filepath.Join(dir, SyntheticTrainCSV))
	if err != nil {
		return nil, nil, err
	}
	test, err = readSignalCSV(filepath.Join(dir, SyntheticTestCSV))
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func readSignalCSV(path string) (*series.Block, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "preprocess: opening signal file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var seqs [][]float32
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "preprocess: reading %s", path)
		}
		seq := make([]float32, len(record))
		for i, field := range record {
			v, err := parseFloat32(field)
			if err != nil {
				return nil, errors.Wrapf(err, "preprocess: %s row %d", path, len(seqs)+1)
			}
			seq[i] = v
		}
		seqs = append(seqs, seq)
	}
	return series.FromSequences(seqs, 1)
}

func writeSignalCSV(path string, rows [][]float32) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "preprocess: creating %s", path)
	}
	w := bufio.NewWriter(file)
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, "%g", v)
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return errors.Wrapf(err, "preprocess: writing %s", path)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "preprocess: writing %s", path)
	}
	return nil
}
