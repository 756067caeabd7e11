package preprocess

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

// MIMICWindow is the number of leading hourly steps kept per ICU stay.
const MIMICWindow = 24

// MIMICSource is the manually exported wide vitals table the routine
// consumes. Access to the underlying database is credentialed, so the file
// cannot be fetched automatically.
const MIMICSource = "vitals_labs_mean.csv"

// vitalsRow is one hourly record of an ICU stay; NaN marks a gap.
type vitalsRow struct {
	hour   float64
	values []float32
}

// MIMIC builds the tensor pair from the exported hourly vitals table. Stays
// shorter than the window are dropped; gaps are forward filled and leading
// gaps zeroed.
func MIMIC(rawDir, outDir string, seed int64) error {
	path := filepath.Join(rawDir, MIMICSource)
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "preprocess: opening vitals table")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return errors.Wrap(err, "preprocess: reading vitals header")
	}
	sel, err := selectColumns(header, []string{"icustay_id", "hours_in"})
	if err != nil {
		return err
	}
	stayIdx, hourIdx := sel[0], sel[1]
	featCols := featureColumns(header)
	if len(featCols) == 0 {
		return errors.Newf("preprocess: %s has no feature columns", path)
	}

	nan := float32(math.NaN())
	stays := make(map[string][]vitalsRow)
	var order []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "preprocess: reading vitals table")
		}
		if stayIdx >= len(record) || hourIdx >= len(record) {
			continue
		}
		hour, err := strconv.ParseFloat(strings.TrimSpace(record[hourIdx]), 64)
		if err != nil {
			continue
		}
		values := make([]float32, len(featCols))
		for i, pos := range featCols {
			values[i] = nan
			if pos < len(record) {
				if v, err := parseFloat32(record[pos]); err == nil {
					values[i] = v
				}
			}
		}
		id := strings.TrimSpace(record[stayIdx])
		if _, seen := stays[id]; !seen {
			order = append(order, id)
		}
		stays[id] = append(stays[id], vitalsRow{hour: hour, values: values})
	}

	var seqs [][]float32
	for _, id := range order {
		rows := stays[id]
		if len(rows) < MIMICWindow {
			continue
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].hour < rows[j].hour })
		rows = rows[:MIMICWindow]
		fillGaps(rows)
		seq := make([]float32, 0, MIMICWindow*len(featCols))
		for _, row := range rows {
			seq = append(seq, row.values...)
		}
		seqs = append(seqs, seq)
	}
	if len(seqs) == 0 {
		return errors.Newf("preprocess: no stay in %s spans %d hours", path, MIMICWindow)
	}
	block, err := series.FromSequences(seqs, len(featCols))
	if err != nil {
		return err
	}
	train, test := splitSamples(block, trainFraction, seed)
	logger.Info().
		Int("stays", block.Samples).
		Int("channels", len(featCols)).
		Int("train", train.Samples).
		Int("test", test.Samples).
		Msg("vitals preprocessed")
	return writePair(outDir, train, test)
}

// featureColumns returns the positions of every column that is not one of
// the identifier columns leading the table.
func featureColumns(header []string) []int {
	ids := map[string]bool{
		"subject_id": true, "hadm_id": true, "icustay_id": true, "hours_in": true,
	}
	var cols []int
	for i, col := range header {
		if !ids[strings.TrimSpace(strings.ToLower(col))] {
			cols = append(cols, i)
		}
	}
	return cols
}

// fillGaps forward fills each channel from the previous hour and zeroes any
// gap with no prior value.
func fillGaps(rows []vitalsRow) {
	if len(rows) == 0 {
		return
	}
	for c := range rows[0].values {
		last := float32(math.NaN())
		for t := range rows {
			v := rows[t].values[c]
			if math.IsNaN(float64(v)) {
				rows[t].values[c] = last
			} else {
				last = v
			}
		}
	}
	for t := range rows {
		for c, v := range rows[t].values {
			if math.IsNaN(float64(v)) {
				rows[t].values[c] = 0
			}
		}
	}
}
