package series

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/KudanLabo/freqdiff/logging"
)

// cacheVersion tags the on-disk block format.
const cacheVersion = 1

var logger = logging.New("series")

// blockCache is the on-disk representation of a preprocessed block. It
// records the dimensions alongside the data so loads can be validated.
type blockCache struct {
	Version   int
	Samples   int
	Len       int
	Channels  int
	CreatedAt int64
	Data      []float32
}

// Save writes the block to path using encoding/gob. The write is atomic:
// data goes to a temp file in the target directory first, then is renamed
// over path.
func (b *Block) Save(path string) error {
	if path == "" {
		return errors.New("series: empty cache path")
	}
	if err := b.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "mkdir %s", dir)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		// if something failed before the rename, drop the temp file.
		_ = os.Remove(tmpName)
	}()

	enc := gob.NewEncoder(tmpFile)
	bc := blockCache{
		Version:   cacheVersion,
		Samples:   b.Samples,
		Len:       b.Len,
		Channels:  b.Channels,
		CreatedAt: time.Now().Unix(),
		Data:      b.Data,
	}
	if err := enc.Encode(&bc); err != nil {
		return errors.Wrap(err, "encode cache to temp file")
	}
	if err := tmpFile.Sync(); err != nil {
		logger.Warn().Err(err).Msg("sync temp cache file")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "close temp cache file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "rename temp cache to target")
	}
	return nil
}

// Load reads a block written by Save, validating the format version and the
// dimension/data agreement before returning it.
func Load(path string) (*Block, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open cache file %s", path)
	}
	defer fh.Close()

	dec := gob.NewDecoder(fh)
	var bc blockCache
	if err := dec.Decode(&bc); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode cache %s", path), ErrBadShape)
	}
	if bc.Version != cacheVersion {
		return nil, badShapef("cache %s version mismatch: cache=%d expected=%d", path, bc.Version, cacheVersion)
	}
	b := &Block{Data: bc.Data, Samples: bc.Samples, Len: bc.Len, Channels: bc.Channels}
	if err := b.Validate(); err != nil {
		return nil, errors.Wrapf(err, "cache %s", path)
	}
	return b, nil
}
