package preprocess

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

// NASDAQWindow is one trading year of daily rows.
const NASDAQWindow = 252

var nasdaqColumns = []string{"open", "high", "low", "close", "adj close", "volume"}

// NASDAQ builds the stock tensor pair from the raw price history archive:
// every symbol with at least one full trading year contributes its most
// recent window of the six numeric columns.
func NASDAQ(rawDir, outDir string, seed int64) error {
	var files []string
	for _, sub := range []string{"stocks", "etfs"} {
		matches, err := filepath.Glob(filepath.Join(rawDir, sub, "*.csv"))
		if err != nil {
			return errors.Wrapf(err, "preprocess: listing %s", sub)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return errors.Newf("preprocess: no price files under %s", rawDir)
	}
	sort.Strings(files)

	var seqs [][]float32
	for _, path := range files {
		seq, err := lastPriceWindow(path)
		if err != nil {
			return err
		}
		if seq != nil {
			seqs = append(seqs, seq)
		}
	}
	if len(seqs) == 0 {
		return errors.Newf("preprocess: no symbol under %s has %d days of history", rawDir, NASDAQWindow)
	}
	block, err := series.FromSequences(seqs, len(nasdaqColumns))
	if err != nil {
		return err
	}
	train, test := splitSamples(block, trainFraction, seed)
	logger.Info().
		Int("symbols", block.Samples).
		Int("train", train.Samples).
		Int("test", test.Samples).
		Msg("stock windows preprocessed")
	return writePair(outDir, train, test)
}

// lastPriceWindow reads one symbol's history and returns its final trading
// year flattened row-major, or nil when the history is too short. Rows with
// unparsable fields are skipped.
func lastPriceWindow(path string) ([]float32, error) {
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
	sel, err := selectColumns(header, nasdaqColumns)
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
	if len(rows) < NASDAQWindow {
		return nil, nil
	}
	rows = rows[len(rows)-NASDAQWindow:]
	seq := make([]float32, 0, NASDAQWindow*len(nasdaqColumns))
	for _, row := range rows {
		seq = append(seq, row...)
	}
	return seq, nil
}
