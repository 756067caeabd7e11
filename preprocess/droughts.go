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

// DroughtSeason is the window length in days; every cached sequence covers
// whole years.
const DroughtSeason = 365

// droughtChannels are the daily meteorological indicator columns, in file
// order.
var droughtChannels = []string{
	"prectot", "ps", "qv2m", "t2m", "t2mdew", "t2mwet", "t2m_max", "t2m_min",
	"t2m_range", "ts", "ws10m", "ws10m_max", "ws10m_min", "ws10m_range",
	"ws50m", "ws50m_max", "ws50m_min", "ws50m_range",
}

// Droughts builds the tensor pair from the county-level drought records:
// each county's day-ordered history is cut into non-overlapping one-year
// windows of the meteorological indicators.
func Droughts(rawDir, outDir string, seed int64) error {
	path, err := droughtSource(rawDir)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "preprocess: opening %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(err, "preprocess: reading %s header", path)
	}
	fipsSel, err := selectColumns(header, []string{"fips"})
	if err != nil {
		return err
	}
	sel, err := selectColumns(header, droughtChannels)
	if err != nil {
		return err
	}

	counties := make(map[string][][]float32)
	var order []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "preprocess: reading %s", path)
		}
		if fipsSel[0] >= len(record) {
			continue
		}
		row, ok := parseRow(record, sel)
		if !ok {
			continue
		}
		fips := strings.TrimSpace(record[fipsSel[0]])
		if _, seen := counties[fips]; !seen {
			order = append(order, fips)
		}
		counties[fips] = append(counties[fips], row)
	}

	var seqs [][]float32
	for _, fips := range order {
		rows := counties[fips]
		for w := 0; (w+1)*DroughtSeason <= len(rows); w++ {
			seq := make([]float32, 0, DroughtSeason*len(droughtChannels))
			for _, row := range rows[w*DroughtSeason : (w+1)*DroughtSeason] {
				seq = append(seq, row...)
			}
			seqs = append(seqs, seq)
		}
	}
	if len(seqs) == 0 {
		return errors.Newf("preprocess: no county in %s has a full year of records", path)
	}
	block, err := series.FromSequences(seqs, len(droughtChannels))
	if err != nil {
		return err
	}
	train, test := splitSamples(block, trainFraction, seed)
	logger.Info().
		Int("counties", len(order)).
		Int("windows", block.Samples).
		Int("train", train.Samples).
		Int("test", test.Samples).
		Msg("drought windows preprocessed")
	return writePair(outDir, train, test)
}

func droughtSource(rawDir string) (string, error) {
	candidates := []string{
		filepath.Join(rawDir, "train_timeseries", "train_timeseries.csv"),
		filepath.Join(rawDir, "train_timeseries.csv"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Newf("preprocess: no drought series file under %s", rawDir)
}
