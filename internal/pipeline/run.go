// Package pipeline wires the analysis stages into a single run: load,
// assemble, prefilter, fit, correct, extract.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seqspace/clipwin/internal/annot"
	"github.com/seqspace/clipwin/internal/dataset"
	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
	"github.com/seqspace/clipwin/internal/tabio"
)

// Config collects everything one analysis run needs.
type Config struct {
	AnnotationPath string
	CountsPath     string
	SamplesPath    string

	// HeightsPath enables the max-height prefilter when set.
	HeightsPath      string
	MinHeight        float64
	MinHeightSamples int

	// MinSum enables the sum prefilter when positive.
	MinSum int64

	// Engine selects the regression backend: "file" reads a
	// precomputed results table from ResultsPath, "wald" runs the
	// built-in normal approximation.
	Engine      string
	ResultsPath string

	// KeepIDs restricts the analysis to these window ids when non-empty.
	KeepIDs []string

	OneBased  bool
	Treatment string
	Control   string
	Alpha     float64
	MinLFC    float64
	Workers   int
}

// Output is one finished run.
type Output struct {
	Dataset *dataset.Dataset
	Results []stats.WindowResult
	Regions []region.Region
}

// Run executes the full pipeline: load, assemble, prefilter, fit,
// one-sided test, overlap correction, FDR, significance, region
// extraction. Every stage consumes the previous stage's output and
// nothing is mutated after it is returned.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Output, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	windows, err := annot.Load(cfg.AnnotationPath, annot.Options{OneBased: cfg.OneBased})
	if err != nil {
		return nil, fmt.Errorf("load annotation: %w", err)
	}
	logger.Info("annotation loaded", zap.Int("windows", len(windows)))

	if len(cfg.KeepIDs) > 0 {
		if windows, err = annot.Subset(windows, cfg.KeepIDs); err != nil {
			return nil, fmt.Errorf("restrict annotation: %w", err)
		}
		logger.Info("annotation restricted to id subset", zap.Int("windows", len(windows)))
	}

	counts, err := tabio.ReadTable(cfg.CountsPath)
	if err != nil {
		return nil, fmt.Errorf("load counts: %w", err)
	}
	samples, err := dataset.ReadSampleTable(cfg.SamplesPath)
	if err != nil {
		return nil, fmt.Errorf("load sample table: %w", err)
	}

	assembler := dataset.NewAssembler()
	assembler.SetLogger(logger)
	ds, err := assembler.Assemble(windows, counts, samples)
	if err != nil {
		return nil, fmt.Errorf("assemble dataset: %w", err)
	}
	logger.Info("dataset assembled",
		zap.Int("windows", ds.NWindows()),
		zap.Int("samples", ds.NSamples()))

	if cfg.MinSum > 0 {
		if ds, err = ds.FilterBySum(cfg.MinSum); err != nil {
			return nil, fmt.Errorf("sum prefilter: %w", err)
		}
		logger.Info("sum prefilter applied",
			zap.Int64("min_sum", cfg.MinSum),
			zap.Int("windows", ds.NWindows()))
	}

	if cfg.HeightsPath != "" {
		hm, err := dataset.ReadHeightMatrix(cfg.HeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load height matrix: %w", err)
		}
		if ds, err = ds.FilterByHeight(hm, cfg.MinHeight, cfg.MinHeightSamples); err != nil {
			return nil, fmt.Errorf("height prefilter: %w", err)
		}
		logger.Info("height prefilter applied",
			zap.Float64("min_height", cfg.MinHeight),
			zap.Int("min_samples", cfg.MinHeightSamples),
			zap.Int("windows", ds.NWindows()))
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	design := stats.Design{Treatment: cfg.Treatment, Control: cfg.Control}
	fit, err := engine.Fit(ctx, ds, design)
	if err != nil {
		return nil, fmt.Errorf("regression fit: %w", err)
	}

	results, err := stats.BuildResults(ds, fit)
	if err != nil {
		return nil, err
	}

	stats.OneSided(results)

	corrector := stats.NewCorrector()
	corrector.SetLogger(logger)
	corrector.SetWorkers(cfg.Workers)
	corrector.Correct(results)

	stats.AdjustFDR(results)
	stats.MarkSignificant(results, cfg.Alpha, cfg.MinLFC)

	regions := region.Extract(results)
	logger.Info("regions extracted",
		zap.Int("tested", len(results)),
		zap.Int("significant", countSignificant(results)),
		zap.Int("regions", len(regions)))

	return &Output{Dataset: ds, Results: results, Regions: regions}, nil
}

func buildEngine(cfg Config, logger *zap.Logger) (stats.Engine, error) {
	switch cfg.Engine {
	case "", "file":
		if cfg.ResultsPath == "" {
			return nil, &errdefs.ParameterError{Name: "engine", Reason: "engine \"file\" needs a regression results path"}
		}
		e := stats.NewFileEngine(cfg.ResultsPath)
		e.SetLogger(logger)
		return e, nil
	case "wald":
		return &stats.WaldApprox{}, nil
	default:
		return nil, &errdefs.ParameterError{Name: "engine", Reason: fmt.Sprintf("unknown engine %q, want file or wald", cfg.Engine)}
	}
}

func countSignificant(results []stats.WindowResult) int {
	n := 0
	for i := range results {
		if results[i].Significant {
			n++
		}
	}
	return n
}
