package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seqspace/clipwin/internal/output"
	"github.com/seqspace/clipwin/internal/pipeline"
	"github.com/seqspace/clipwin/internal/store"
)

func newTestCmd() *cobra.Command {
	var (
		cfg        pipeline.Config
		windowsOut string
		regionsOut string
		bedOut     string
		dbPath     string
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the window-level enrichment test and extract regions",
		Example: `  # Test against a DESeq2-style results table
  clipwin test --annotation windows.txt.gz --counts counts.txt.gz \
    --samples samples.txt --results deseq.txt --treatment IP --control SMI \
    --windows-out results.txt --regions-out regions.txt

  # Self-contained run with the built-in Wald approximation
  clipwin test --annotation windows.txt.gz --counts counts.txt.gz \
    --samples samples.txt --engine wald --treatment IP --control SMI`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AnnotationPath == "" || cfg.CountsPath == "" || cfg.SamplesPath == "" {
				return fmt.Errorf("--annotation, --counts and --samples are required")
			}
			if cfg.Treatment == "" || cfg.Control == "" {
				return fmt.Errorf("--treatment and --control are required")
			}

			out, err := pipeline.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			if err := writeTable(windowsOut, func(f *os.File) error {
				return output.NewWindowWriter(f).WriteAll(out.Results)
			}); err != nil {
				return fmt.Errorf("write window table: %w", err)
			}
			if regionsOut != "" {
				if err := writeTable(regionsOut, func(f *os.File) error {
					return output.NewRegionWriter(f).WriteAll(out.Regions)
				}); err != nil {
					return fmt.Errorf("write region table: %w", err)
				}
			}
			if bedOut != "" {
				if err := writeTable(bedOut, func(f *os.File) error {
					return output.WriteRegionBED(f, out.Regions)
				}); err != nil {
					return fmt.Errorf("write BED track: %w", err)
				}
			}

			if dbPath != "" {
				if runID == "" {
					runID = time.Now().UTC().Format("20060102-150405")
				}
				s, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.BeginRun(runID, cfg.Treatment, cfg.Control, cfg.Alpha, cfg.MinLFC); err != nil {
					return err
				}
				if err := s.WriteWindowResults(runID, out.Results); err != nil {
					return err
				}
				if err := s.WriteRegions(runID, out.Regions); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Stored run %s in %s\n", runID, dbPath)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.AnnotationPath, "annotation", "", "window annotation table (TSV, may be gzipped)")
	fl.StringVar(&cfg.CountsPath, "counts", "", "window-by-sample count matrix (TSV, may be gzipped)")
	fl.StringVar(&cfg.SamplesPath, "samples", "", "sample table: name<TAB>group")
	fl.StringVar(&cfg.HeightsPath, "heights", "", "max-height matrix for the height prefilter")
	fl.Float64Var(&cfg.MinHeight, "min-height", viper.GetFloat64("min_height"), "height threshold for the height prefilter")
	fl.IntVar(&cfg.MinHeightSamples, "min-height-samples", 1, "samples that must reach --min-height")
	fl.Int64Var(&cfg.MinSum, "min-sum", 0, "keep windows with total count >= this (0 disables)")
	fl.BoolVar(&cfg.OneBased, "one-based", false, "annotation begin column is 1-based inclusive")
	fl.StringSliceVar(&cfg.KeepIDs, "keep-ids", nil, "restrict the analysis to these window ids")
	fl.StringVar(&cfg.Engine, "engine", viper.GetString("engine"), "regression backend: file or wald")
	fl.StringVar(&cfg.ResultsPath, "results", "", "precomputed regression results table (engine=file)")
	fl.StringVar(&cfg.Treatment, "treatment", "", "treatment group name")
	fl.StringVar(&cfg.Control, "control", "", "control group name")
	fl.Float64Var(&cfg.Alpha, "alpha", defaultFloat("alpha", 0.05), "adjusted p-value threshold")
	fl.Float64Var(&cfg.MinLFC, "lfc", defaultFloat("lfc", 0), "log2 fold-change threshold")
	fl.IntVar(&cfg.Workers, "workers", 0, "gene-group workers (0 = one per CPU)")
	fl.StringVar(&windowsOut, "windows-out", "-", "window result table output ('-' for stdout)")
	fl.StringVar(&regionsOut, "regions-out", "", "region table output")
	fl.StringVar(&bedOut, "bed-out", "", "region BED6 track output")
	fl.StringVar(&dbPath, "db", viper.GetString("db"), "DuckDB results database to append this run to")
	fl.StringVar(&runID, "run-id", "", "run identifier for --db (default: UTC timestamp)")

	return cmd
}

// writeTable writes to path via fn, with "-" meaning stdout.
func writeTable(path string, fn func(*os.File) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// defaultFloat reads a config default, falling back when unset.
func defaultFloat(key string, fallback float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return fallback
}
