package datasets

import (
	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

var (
	// ErrManualSetup means the dataset cannot be fetched automatically
	// and the user must supply files by hand; the error's hints say how.
	ErrManualSetup = errors.New("datasets: manual data acquisition required")
	// ErrNotSetup means tensors were requested before Setup ran.
	ErrNotSetup = errors.New("datasets: module not set up")
)

// shapeErrf reports a violated tensor invariant. The error tests true
// against series.ErrBadShape so callers need only one sentinel for shape
// failures anywhere in the pipeline.
func shapeErrf(format string, args ...any) error {
	return errors.Mark(errors.Newf("datasets: "+format, args...), series.ErrBadShape)
}
