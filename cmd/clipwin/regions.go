package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seqspace/clipwin/internal/output"
	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
	"github.com/seqspace/clipwin/internal/store"
)

func newRegionsCmd() *cobra.Command {
	var (
		dbPath      string
		runID       string
		alpha       float64
		minLFC      float64
		regionsOut  string
		bedOut      string
		rethreshold bool
	)

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Re-extract regions from a stored run",
		Long: `Re-extract binding regions from a run stored with 'clipwin test --db'.
With --rethreshold the stored significance flags are recomputed from
--alpha and --lfc first, so regions can be tightened or loosened
without refitting anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}

			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if runID == "" {
				runID, err = latestRun(s)
				if err != nil {
					return err
				}
			}

			results, err := s.LoadWindowResults(runID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("run %q has no stored window results", runID)
			}

			if rethreshold {
				stats.MarkSignificant(results, alpha, minLFC)
			}
			regions := region.Extract(results)

			if err := writeTable(regionsOut, func(f *os.File) error {
				return output.NewRegionWriter(f).WriteAll(regions)
			}); err != nil {
				return err
			}
			if bedOut != "" {
				return writeTable(bedOut, func(f *os.File) error {
					return output.WriteRegionBED(f, regions)
				})
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&dbPath, "db", viper.GetString("db"), "DuckDB results database")
	fl.StringVar(&runID, "run-id", "", "run to extract from (default: most recent)")
	fl.BoolVar(&rethreshold, "rethreshold", false, "recompute significance flags from --alpha and --lfc")
	fl.Float64Var(&alpha, "alpha", defaultFloat("alpha", 0.05), "adjusted p-value threshold (with --rethreshold)")
	fl.Float64Var(&minLFC, "lfc", defaultFloat("lfc", 0), "log2 fold-change threshold (with --rethreshold)")
	fl.StringVar(&regionsOut, "out", "-", "region table output ('-' for stdout)")
	fl.StringVar(&bedOut, "bed-out", "", "region BED6 track output")

	return cmd
}

func latestRun(s *store.Store) (string, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("results database has no stored runs")
	}
	return runs[len(runs)-1], nil
}
