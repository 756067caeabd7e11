package datasets

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/series"
)

// variedBlock builds a block whose channel c varies with amplitude c+1
// across samples, so variance ranking is ascending in channel index.
func variedBlock(samples, length, channels int) *series.Block {
	b := series.New(samples, length, channels)
	for i := 0; i < samples; i++ {
		for t := 0; t < length; t++ {
			for c := 0; c < channels; c++ {
				b.Set(i, t, c, float32((c+1)*i))
			}
		}
	}
	return b
}

// TestMIMICSetupFromCache checks top-variance channel selection in
// descending order, served from a cache without the raw export present.
func TestMIMICSetupFromCache(t *testing.T) {
	m := NewMIMIC(Config{DataDir: t.TempDir(), MIMICChannels: 2})
	writeCachePair(t, m.Dir(), variedBlock(4, 3, 3), variedBlock(2, 3, 3))

	if err := m.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if m.Channels() != 2 || m.SeqLen() != 3 {
		t.Fatalf("shape (%d, %d), want (2, 3)", m.Channels(), m.SeqLen())
	}
	if got := m.XTrain.At(1, 0, 0); got != 3 {
		t.Fatalf("first kept channel value = %v, want 3 (old channel 2)", got)
	}
	if got := m.XTrain.At(1, 0, 1); got != 2 {
		t.Fatalf("second kept channel value = %v, want 2 (old channel 1)", got)
	}
	if got := m.XTest.At(1, 0, 0); got != 3 {
		t.Fatalf("test selection diverged from train: %v, want 3", got)
	}
}

// TestMIMICKeepAllChannels checks the clamp when fewer channels exist
// than requested.
func TestMIMICKeepAllChannels(t *testing.T) {
	m := NewMIMIC(Config{DataDir: t.TempDir(), MIMICChannels: 10})
	writeCachePair(t, m.Dir(), variedBlock(4, 3, 3), variedBlock(2, 3, 3))
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if m.Channels() != 3 {
		t.Fatalf("channels = %d, want all 3", m.Channels())
	}
}

// TestMIMICManualSetup checks the precondition error and its remediation
// hints when neither cache nor export exists.
func TestMIMICManualSetup(t *testing.T) {
	m := NewMIMIC(Config{DataDir: t.TempDir()})
	err := m.PrepareData()
	if !errors.Is(err, ErrManualSetup) {
		t.Fatalf("PrepareData: got %v, want ErrManualSetup", err)
	}
	if hints := errors.FlattenHints(err); !strings.Contains(hints, "physionet.org") {
		t.Fatalf("hints %q do not mention the access instructions", hints)
	}
	if err := m.Setup(); !errors.Is(err, ErrManualSetup) {
		t.Fatalf("Setup: got %v, want ErrManualSetup", err)
	}
}
