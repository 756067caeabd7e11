package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KudanLabo/freqdiff/datasets"
	"github.com/KudanLabo/freqdiff/logging"

	"github.com/akamensky/argparse"
	"github.com/cockroachdb/errors"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var logger = logging.New("freqdiff")

func main() {
	parser := argparse.NewParser("freqdiff", "time series dataset preparation for frequency-domain diffusion")

	name := parser.Selector("d", "dataset", datasets.Names(), &argparse.Options{Required: true, Help: "Dataset to operate on"})
	dataDir := parser.String("", "data-dir", &argparse.Options{Default: "data", Help: "Root directory holding raw files and cached tensors"})
	batchSize := parser.Int("b", "batch-size", &argparse.Options{Default: 32, Help: "Sequences per yielded batch"})
	seed := parser.Int("s", "seed", &argparse.Options{Default: 42, Help: "Seed for splits, shuffling and synthetic generation"})
	fourier := parser.Flag("f", "fourier", &argparse.Options{Help: "Serve frequency-domain representations"})
	standardize := parser.Flag("", "standardize", &argparse.Options{Help: "Standardize train and validation batches with training statistics"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})

	ecgSubsample := parser.Int("", "ecg-subsample", &argparse.Options{Help: "Keep only the N most time-localized training heartbeats"})
	ecgSmoother := parser.Float("", "ecg-smoother", &argparse.Options{Help: "Gaussian width for spectral smoothing of the heartbeats"})
	mimicChannels := parser.Int("", "mimic-channels", &argparse.Options{Default: 40, Help: "Highest-variance vitals channels to keep"})
	nasaKeepOutlier := parser.Flag("", "nasa-keep-outlier", &argparse.Options{Help: "Serve charge cycles unpruned, temperature channel included"})
	synSamples := parser.Int("", "synthetic-samples", &argparse.Options{Default: 1000, Help: "Sinusoids per synthetic split"})
	synLen := parser.Int("", "synthetic-len", &argparse.Options{Default: 100, Help: "Steps per synthetic sinusoid"})

	prepareCmd := parser.NewCommand("prepare", "Download or generate the raw dataset files")
	infoCmd := parser.NewCommand("info", "Print dataset dimensions and training statistics")
	previewCmd := parser.NewCommand("preview", "Render test sequences to a PNG")
	previewOut := previewCmd.String("o", "out", &argparse.Options{Default: "preview.png", Help: "Output image path"})
	previewN := previewCmd.Int("n", "samples", &argparse.Options{Default: 8, Help: "Sequences to draw"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	logging.SetVerbose(*verbose)

	cfg := datasets.Config{
		DataDir:          *dataDir,
		Seed:             int64(*seed),
		BatchSize:        *batchSize,
		Fourier:          *fourier,
		Standardize:      *standardize,
		ECGSubsample:     *ecgSubsample,
		ECGSmootherWidth: *ecgSmoother,
		MIMICChannels:    *mimicChannels,

		NASAKeepOutlierFeature: *nasaKeepOutlier,
		SyntheticSamples:       *synSamples,
		SyntheticLen:           *synLen,
	}

	dm, err := datasets.Open(*name, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening dataset")
	}

	switch {
	case prepareCmd.Happened():
		err = runPrepare(dm)
	case infoCmd.Happened():
		err = runInfo(dm)
	case previewCmd.Happened():
		err = runPreview(dm, *previewOut, *previewN, *fourier)
	default:
		fmt.Print(parser.Usage(nil))
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("dataset", dm.Name()).Msg("command failed")
	}
}

func runPrepare(dm datasets.DataModule) error {
	if err := dm.PrepareData(); err != nil {
		return err
	}
	logger.Info().Str("dataset", dm.Name()).Msg("raw data ready")
	return nil
}

func runInfo(dm datasets.DataModule) error {
	if err := dm.PrepareData(); err != nil {
		return err
	}
	if err := dm.Setup(); err != nil {
		return err
	}
	train, err := dm.Train()
	if err != nil {
		return err
	}
	test, err := dm.Test()
	if err != nil {
		return err
	}
	mean, std, err := dm.TrainStats()
	if err != nil {
		return err
	}

	fmt.Printf("dataset: %s\n", dm.Name())
	fmt.Printf("  channels:          %d\n", dm.Channels())
	fmt.Printf("  sequence length:   %d\n", dm.SeqLen())
	fmt.Printf("  train samples:     %d\n", train.Len())
	fmt.Printf("  test samples:      %d\n", test.Len())
	fmt.Printf("  steps per epoch:   %d\n", dm.TrainingSteps())
	fmt.Printf("  train feature avg: mean %.4f, std %.4f\n", featureAverage(mean), featureAverage(std))
	return nil
}

// runPreview draws channel 0 of the first batch of test sequences. With
// the fourier flag on, the pipeline already served spectra, so the plot
// shows frequency bins instead of time steps.
func runPreview(dm datasets.DataModule, out string, n int, fourier bool) error {
	if err := dm.PrepareData(); err != nil {
		return err
	}
	if err := dm.Setup(); err != nil {
		return err
	}
	loader, err := dm.Test()
	if err != nil {
		return err
	}
	_, inputs, _, err := loader.Yield()
	if err != nil {
		return errors.Wrap(err, "freqdiff: reading the first test batch")
	}
	xs := inputs[0].Value().([][][]float32)
	if n > len(xs) {
		n = len(xs)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s test sequences (channel 0)", dm.Name())
	p.X.Label.Text = "step"
	p.Y.Label.Text = "value"
	if fourier {
		p.Title.Text = fmt.Sprintf("%s test spectra (channel 0)", dm.Name())
		p.X.Label.Text = "bin"
		p.Y.Label.Text = "coefficient"
	}

	args := make([]interface{}, 0, 2*n)
	for i := 0; i < n; i++ {
		xys := make(plotter.XYs, len(xs[i]))
		for t := range xs[i] {
			xys[t] = plotter.XY{X: float64(t), Y: float64(xs[i][t][0])}
		}
		args = append(args, fmt.Sprintf("seq %d", i), xys)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return errors.Wrap(err, "freqdiff: adding sequences to the plot")
	}

	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "freqdiff: creating %s", dir)
		}
	}
	if err := p.Save(10*vg.Inch, 4*vg.Inch, out); err != nil {
		return errors.Wrapf(err, "freqdiff: saving %s", out)
	}
	logger.Info().Str("path", out).Int("sequences", n).Msg("preview written")
	return nil
}

func featureAverage(xs []float32) float64 {
	vals := make([]float64, len(xs))
	for i, v := range xs {
		vals[i] = float64(v)
	}
	return stat.Mean(vals, nil)
}
