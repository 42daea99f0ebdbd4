// Package quality compares a processed image against its source.
package quality

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
)

var (
	// ErrDimensionMismatch is returned when the two images differ in size.
	ErrDimensionMismatch = errors.New("image dimensions mismatch")

	// ErrUnknownMetric is returned for names no metric is registered under.
	ErrUnknownMetric = errors.New("metric not found")
)

// Names of the built-in metrics.
const (
	MetricPSNR = "psnr"
	MetricMSE  = "mse"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *imaging.Buffer) (float64, error)

	// Name returns the display name
	Name() string

	// HigherIsBetter returns true if higher values indicate better quality
	HigherIsBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with PSNR and MSE registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{metrics: make(map[string]Metric)}
	e.Register(MetricPSNR, &PSNR{})
	e.Register(MetricMSE, &MSE{})
	return e
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *imaging.Buffer) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric in name order and stops
// at the first failure.
func (e *Evaluator) CalculateAll(original, processed *imaging.Buffer) (map[string]float64, error) {
	results := make(map[string]float64, len(e.metrics))
	for _, name := range e.Names() {
		value, err := e.metrics[name].Calculate(original, processed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		results[name] = value
	}
	return results, nil
}

// Report is the readout shown next to the preview.
type Report struct {
	PSNR float64
	MSE  float64
}

// Compare computes the registered metrics of processed against original
// and returns the PSNR/MSE readout.
func (e *Evaluator) Compare(original, processed *imaging.Buffer) (Report, error) {
	values, err := e.CalculateAll(original, processed)
	if err != nil {
		return Report{}, err
	}
	return Report{PSNR: values[MetricPSNR], MSE: values[MetricMSE]}, nil
}

func (r Report) String() string {
	if math.IsInf(r.PSNR, 1) {
		return fmt.Sprintf("PSNR: inf | MSE: %.2f", r.MSE)
	}
	return fmt.Sprintf("PSNR: %.2f dB | MSE: %.2f", r.PSNR, r.MSE)
}

// PSNR implements Peak Signal-to-Noise Ratio on the luma plane.
type PSNR struct{}

func (p *PSNR) Calculate(original, processed *imaging.Buffer) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	return psnrFromMSE(mse), nil
}

func (p *PSNR) Name() string { return "PSNR" }

func (p *PSNR) HigherIsBetter() bool { return true }

// MSE implements mean squared error on the luma plane.
type MSE struct{}

func (m *MSE) Calculate(original, processed *imaging.Buffer) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) Name() string { return "MSE" }

func (m *MSE) HigherIsBetter() bool { return false }

func psnrFromMSE(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1) // perfect match
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse))
}

// meanSquaredError compares the luma planes of both images.
func meanSquaredError(original, processed *imaging.Buffer) (float64, error) {
	if original == nil || processed == nil {
		return 0, imaging.ErrNoInput
	}
	if original.Width() != processed.Width() || original.Height() != processed.Height() {
		return 0, fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, original, processed)
	}

	gray1, err := imaging.Intensity(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()

	gray2, err := imaging.Intensity(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray1.Mat(), gray2.Mat(), &diff)

	wide := gocv.NewMat()
	defer wide.Close()
	diff.ConvertTo(&wide, gocv.MatTypeCV32F)

	squared := gocv.NewMat()
	defer squared.Close()
	gocv.Multiply(wide, wide, &squared)

	total := float64(original.Width() * original.Height())
	return squared.Sum().Val1 / total, nil
}
