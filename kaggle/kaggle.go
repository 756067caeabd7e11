// Package kaggle is a minimal client for the public Kaggle dataset API,
// covering the one operation the pipeline needs: download a dataset archive
// and unpack it into a directory.
package kaggle

import (
	"archive/zip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/KudanLabo/freqdiff/logging"
)

var logger = logging.New("kaggle")

// ErrNoCredentials reports that no API token could be located.
var ErrNoCredentials = errors.New("kaggle: no API credentials")

const defaultBaseURL = "https://www.kaggle.com/api/v1"

// Client talks to the Kaggle API using basic auth. BaseURL and HTTP exist
// so tests can point the client at a local server; zero values select the
// real API.
type Client struct {
	Username string
	Key      string
	BaseURL  string
	HTTP     *http.Client
}

// NewClient builds a client from the KAGGLE_USERNAME and KAGGLE_KEY
// environment variables, falling back to the token file the official CLI
// writes at ~/.kaggle/kaggle.json.
func NewClient() (*Client, error) {
	user, key := os.Getenv("KAGGLE_USERNAME"), os.Getenv("KAGGLE_KEY")
	if user == "" || key == "" {
		user, key = credentialsFromFile()
	}
	if user == "" || key == "" {
		err := errors.Mark(errors.New("kaggle: no API credentials found"), ErrNoCredentials)
		err = errors.WithHint(err, "set KAGGLE_USERNAME and KAGGLE_KEY in the environment")
		err = errors.WithHint(err, "or create an API token under kaggle.com account settings and save it to ~/.kaggle/kaggle.json")
		return nil, err
	}
	return &Client{Username: user, Key: key}, nil
}

func credentialsFromFile() (user, key string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	raw, err := os.ReadFile(filepath.Join(home, ".kaggle", "kaggle.json"))
	if err != nil {
		return "", ""
	}
	var tok struct {
		Username string `json:"username"`
		Key      string `json:"key"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", ""
	}
	return tok.Username, tok.Key
}

// Download fetches the dataset archive for ref, an "owner/name" pair, and
// unpacks it into dest. The archive itself is deleted after extraction.
func (c *Client) Download(ref, dest string) error {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpc := c.HTTP
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Minute}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Wrapf(err, "kaggle: creating %s", dest)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/datasets/download/"+ref, nil)
	if err != nil {
		return errors.Wrapf(err, "kaggle: building request for %s", ref)
	}
	req.SetBasicAuth(c.Username, c.Key)
	logger.Info().Str("dataset", ref).Msg("downloading")
	resp, err := httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "kaggle: downloading %s", ref)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("kaggle: downloading %s: %s", ref, resp.Status)
	}

	archive := filepath.Join(dest, "dataset.zip")
	f, err := os.Create(archive)
	if err != nil {
		return errors.Wrapf(err, "kaggle: creating %s", archive)
	}
	var body io.Reader = resp.Body
	var bar *pb.ProgressBar
	if resp.ContentLength > 0 {
		bar = pb.Full.Start64(resp.ContentLength)
		bar.Set(pb.Bytes, true)
		body = bar.NewProxyReader(resp.Body)
	}
	n, err := io.Copy(f, body)
	if bar != nil {
		bar.Finish()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(archive)
		return errors.Wrapf(err, "kaggle: writing %s", archive)
	}
	logger.Info().Str("dataset", ref).Str("size", humanize.Bytes(uint64(n))).Msg("download complete")

	if err := unzip(archive, dest); err != nil {
		return err
	}
	return os.Remove(archive)
}

// unzip extracts archive into dest, rejecting entries that would land
// outside it.
func unzip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrapf(err, "kaggle: opening %s", archive)
	}
	defer zr.Close()
	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, zf := range zr.File {
		target := filepath.Join(dest, filepath.Clean(zf.Name))
		if !strings.HasPrefix(target, root) {
			return errors.Newf("kaggle: archive entry %q escapes %s", zf.Name, dest)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "kaggle: creating %s", target)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "kaggle: creating %s", filepath.Dir(target))
		}
		if err := extractFile(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return errors.Wrapf(err, "kaggle: reading archive entry %s", zf.Name)
	}
	defer rc.Close()
	out, err := os.Create(target)
	if err != nil {
		return errors.Wrapf(err, "kaggle: creating %s", target)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return errors.Wrapf(err, "kaggle: extracting %s", zf.Name)
	}
	return out.Close()
}
