package preprocess

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

func parseFloat32(s string) (float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty string")
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return idx
}

// selectColumns resolves the positions of the named columns, failing on the
// first one missing.
func selectColumns(header []string, names []string) ([]int, error) {
	idx := headerIndex(header)
	sel := make([]int, len(names))
	for i, name := range names {
		pos, ok := idx[name]
		if !ok {
			return nil, errors.Newf("preprocess: column %q not found", name)
		}
		sel[i] = pos
	}
	return sel, nil
}

// parseRow extracts the selected fields of one record, reporting false when
// any of them is missing or not numeric.
func parseRow(record []string, sel []int) ([]float32, bool) {
	row := make([]float32, len(sel))
	for i, pos := range sel {
		if pos >= len(record) {
			return nil, false
		}
		v, err := parseFloat32(record[pos])
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
