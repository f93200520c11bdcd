// Package stats holds the window-level statistics: the regression
// engine contract, the one-sided enrichment test, the overlap-scaled
// multiple-testing correction, and the global FDR step.
package stats

import (
	"context"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/seqspace/clipwin/internal/dataset"
	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/tabio"
)

// Design names the contrast a fit should estimate.
type Design struct {
	Treatment string
	Control   string
}

// EngineResult is one window's regression output. PValue is two-sided;
// a window the engine could not fit carries NaN statistics.
type EngineResult struct {
	WindowID string
	BaseMean float64
	Log2FC   float64
	Stat     float64
	PValue   float64
}

// Engine fits a negative-binomial (or approximating) model and returns
// one result per dataset window, in dataset row order. The fit itself
// is outside this package's scope; engines only have to honor the
// row-alignment contract.
type Engine interface {
	Fit(ctx context.Context, ds *dataset.Dataset, design Design) ([]EngineResult, error)
}

// Result file column names, matching DESeq2-style output.
const (
	colBaseMean = "baseMean"
	colLog2FC   = "log2FoldChange"
	colStat     = "stat"
	colPValue   = "pvalue"
)

// FileEngine serves regression results from a precomputed TSV keyed by
// window identifier. This is the production path: the model is fitted
// externally and its result table handed to the pipeline.
type FileEngine struct {
	Path   string
	logger *zap.Logger
}

// NewFileEngine returns an engine reading results from path.
func NewFileEngine(path string) *FileEngine {
	return &FileEngine{Path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger used for undefined-statistic warnings.
func (e *FileEngine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Fit reads results for every dataset window. Windows absent from the
// file get NaN statistics and a warning; if no window is present at
// all, the file cannot belong to this dataset and the fit fails.
func (e *FileEngine) Fit(_ context.Context, ds *dataset.Dataset, _ Design) ([]EngineResult, error) {
	t, err := tabio.ReadTable(e.Path)
	if err != nil {
		return nil, err
	}
	if missing := t.MissingColumns([]string{colBaseMean, colLog2FC, colStat, colPValue}); len(missing) > 0 {
		return nil, &errdefs.SchemaError{Source: e.Path, Missing: missing}
	}

	baseMean := t.Col(colBaseMean)
	log2fc := t.Col(colLog2FC)
	stat := t.Col(colStat)
	pvalue := t.Col(colPValue)

	byID := make(map[string][]string, len(t.Rows))
	for _, row := range t.Rows {
		byID[row[0]] = row
	}

	results := make([]EngineResult, ds.NWindows())
	found := 0
	for i, w := range ds.Windows {
		r := EngineResult{
			WindowID: w.ID,
			BaseMean: math.NaN(),
			Log2FC:   math.NaN(),
			Stat:     math.NaN(),
			PValue:   math.NaN(),
		}
		if row, ok := byID[w.ID]; ok {
			found++
			r.BaseMean = parseStat(row[baseMean])
			r.Log2FC = parseStat(row[log2fc])
			r.Stat = parseStat(row[stat])
			r.PValue = parseStat(row[pvalue])
			if math.IsNaN(r.PValue) {
				e.logger.Warn("undefined statistic from regression engine",
					zap.String("window", w.ID))
			}
		} else {
			e.logger.Warn("window missing from regression results",
				zap.String("window", w.ID))
		}
		results[i] = r
	}

	if found == 0 {
		return nil, &errdefs.EmptyIntersectionError{Left: "dataset", Right: e.Path}
	}
	return results, nil
}

// parseStat parses a numeric field, mapping NA and empty to NaN.
func parseStat(s string) float64 {
	if s == "" || s == "NA" || s == "nan" || s == "NaN" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
