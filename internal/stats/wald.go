package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seqspace/clipwin/internal/dataset"
)

// SizeFactors estimates one normalization scalar per sample by the
// median-of-ratios method: each count is divided by its window's
// geometric mean across samples, and the per-sample median of those
// ratios is the factor. Windows with a zero count in any sample are
// skipped, as they have no geometric mean.
func SizeFactors(ds *dataset.Dataset) ([]float64, error) {
	n := ds.NSamples()
	ratios := make([][]float64, n)

	for _, row := range ds.Counts {
		logSum := 0.0
		zero := false
		for _, c := range row {
			if c == 0 {
				zero = true
				break
			}
			logSum += math.Log(float64(c))
		}
		if zero {
			continue
		}
		geoMean := math.Exp(logSum / float64(n))
		for j, c := range row {
			ratios[j] = append(ratios[j], float64(c)/geoMean)
		}
	}

	if len(ratios[0]) == 0 {
		return nil, fmt.Errorf("size factors: no window has nonzero counts in every sample")
	}

	factors := make([]float64, n)
	for j := range factors {
		factors[j] = median(ratios[j])
	}
	return factors, nil
}

func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return (s[m-1] + s[m]) / 2
}

// WaldApprox is a self-contained engine that approximates the external
// negative-binomial fit with a z test on log2 normalized means. It
// exists so the pipeline can run end to end without an external fit;
// for publication-grade results use FileEngine with a proper fit.
type WaldApprox struct {
	// SizeFactors overrides the median-of-ratios estimate when set.
	SizeFactors []float64

	// Pseudocount added to normalized means before taking logs.
	// Defaults to 0.5 when zero.
	Pseudocount float64
}

// Fit computes one result per window, in dataset row order. Windows
// where the statistic is undefined (zero variance in both groups and
// identical means) get NaN.
func (e *WaldApprox) Fit(_ context.Context, ds *dataset.Dataset, design Design) ([]EngineResult, error) {
	treat := ds.GroupColumns(design.Treatment)
	ctrl := ds.GroupColumns(design.Control)
	if len(treat) == 0 {
		return nil, fmt.Errorf("wald fit: no samples in treatment group %q", design.Treatment)
	}
	if len(ctrl) == 0 {
		return nil, fmt.Errorf("wald fit: no samples in control group %q", design.Control)
	}

	factors := e.SizeFactors
	if factors == nil {
		var err error
		if factors, err = SizeFactors(ds); err != nil {
			return nil, err
		}
	}
	if len(factors) != ds.NSamples() {
		return nil, fmt.Errorf("wald fit: %d size factors for %d samples", len(factors), ds.NSamples())
	}

	pseudo := e.Pseudocount
	if pseudo == 0 {
		pseudo = 0.5
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	results := make([]EngineResult, ds.NWindows())

	for i, row := range ds.Counts {
		normed := make([]float64, len(row))
		for j, c := range row {
			normed[j] = float64(c) / factors[j]
		}

		tMean, tVar := logMeanVar(normed, treat, pseudo)
		cMean, cVar := logMeanVar(normed, ctrl, pseudo)

		lfc := tMean - cMean
		se := math.Sqrt(tVar/float64(len(treat)) + cVar/float64(len(ctrl)))

		r := EngineResult{WindowID: ds.Windows[i].ID, Log2FC: lfc}
		for _, v := range normed {
			r.BaseMean += v
		}
		r.BaseMean /= float64(len(normed))

		if se == 0 {
			r.Stat = math.NaN()
			r.PValue = math.NaN()
		} else {
			r.Stat = lfc / se
			r.PValue = 2 * norm.Survival(math.Abs(r.Stat))
		}
		results[i] = r
	}
	return results, nil
}

// logMeanVar returns the mean and sample variance of log2(x+pseudo)
// over the given columns.
func logMeanVar(xs []float64, cols []int, pseudo float64) (mean, variance float64) {
	for _, j := range cols {
		mean += math.Log2(xs[j] + pseudo)
	}
	mean /= float64(len(cols))

	if len(cols) < 2 {
		return mean, 0
	}
	for _, j := range cols {
		d := math.Log2(xs[j]+pseudo) - mean
		variance += d * d
	}
	variance /= float64(len(cols) - 1)
	return mean, variance
}
