package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KudanLabo/freqdiff/preprocess"
)

// writeBeatCSV writes n mitbih-layout rows built by gen, labeled per
// index.
func writeBeatCSV(t *testing.T, path string, n int, gen func(i, step int) float32, labels []int) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fields := make([]string, preprocess.ECGSeqLen+1)
		for s := 0; s < preprocess.ECGSeqLen; s++ {
			fields[s] = fmt.Sprintf("%g", gen(i, s))
		}
		fields[preprocess.ECGSeqLen] = fmt.Sprintf("%d.0", labels[i])
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// seedECG writes a raw heartbeat directory with two impulse rows followed
// by two constant rows in the training file.
func seedECG(t *testing.T, e *ECG) {
	t.Helper()
	if err := os.MkdirAll(e.Dir(), 0o755); err != nil {
		t.Fatalf("creating %s: %v", e.Dir(), err)
	}
	gen := func(i, step int) float32 {
		if i < 2 {
			if step == 90 {
				return 5
			}
			return 0
		}
		return 1
	}
	writeBeatCSV(t, filepath.Join(e.Dir(), "mitbih_train.csv"), 4, gen, []int{7, 8, 1, 2})
	flat := func(i, step int) float32 { return float32(step % 3) }
	writeBeatCSV(t, filepath.Join(e.Dir(), "mitbih_test.csv"), 2, flat, []int{0, 0})
}

// TestECGSetup checks the plain read path with labels attached.
func TestECGSetup(t *testing.T) {
	e := NewECG(Config{DataDir: t.TempDir()})
	seedECG(t, e)
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if e.SeqLen() != preprocess.ECGSeqLen || e.Channels() != 1 {
		t.Fatalf("shape (%d, %d), want (%d, 1)", e.SeqLen(), e.Channels(), preprocess.ECGSeqLen)
	}
	if e.XTrain.Samples != 4 || e.XTest.Samples != 2 {
		t.Fatalf("samples (%d, %d), want (4, 2)", e.XTrain.Samples, e.XTest.Samples)
	}
	if len(e.YTrain) != 4 || len(e.YTest) != 2 {
		t.Fatalf("labels (%d, %d), want (4, 2)", len(e.YTrain), len(e.YTest))
	}
	if e.YTrain[0] != 7 || e.YTrain[3] != 2 {
		t.Fatalf("train labels %v, want [7 8 1 2]", e.YTrain)
	}
}

// TestECGSubsample checks that subsampling keeps the most time-localized
// training sequences with their labels and never touches the test split.
func TestECGSubsample(t *testing.T) {
	e := NewECG(Config{DataDir: t.TempDir(), ECGSubsample: 2})
	seedECG(t, e)
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if e.XTrain.Samples != 2 {
		t.Fatalf("train samples = %d, want 2", e.XTrain.Samples)
	}
	if got := e.XTrain.At(0, 90, 0); got != 5 {
		t.Fatalf("kept sequence is not an impulse row: value %v at the peak", got)
	}
	if len(e.YTrain) != 2 || e.YTrain[0] != 7 || e.YTrain[1] != 8 {
		t.Fatalf("kept labels %v, want [7 8]", e.YTrain)
	}
	if e.XTest.Samples != 2 {
		t.Fatalf("test samples = %d, want 2", e.XTest.Samples)
	}
}

// TestECGSmoothing checks that spectral smoothing preserves shapes and
// flattens the impulse peak.
func TestECGSmoothing(t *testing.T) {
	e := NewECG(Config{DataDir: t.TempDir(), ECGSmootherWidth: 2})
	seedECG(t, e)
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if e.SeqLen() != preprocess.ECGSeqLen || e.Channels() != 1 {
		t.Fatalf("shape (%d, %d), want (%d, 1)", e.SeqLen(), e.Channels(), preprocess.ECGSeqLen)
	}
	if got := e.XTrain.At(0, 90, 0); got >= 5 {
		t.Fatalf("impulse peak %v not reduced by smoothing", got)
	}
}

// TestECGMissingSource checks that an absent raw directory propagates as
// an I/O error.
func TestECGMissingSource(t *testing.T) {
	e := NewECG(Config{DataDir: t.TempDir()})
	if err := e.Setup(); err == nil {
		t.Fatal("Setup succeeded without raw data")
	}
}
