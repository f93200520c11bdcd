package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seqspace/clipwin/internal/output"
	"github.com/seqspace/clipwin/internal/store"
)

func newExportCmd() *cobra.Command {
	var (
		dbPath string
		runID  string
		what   string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored run as a BED6 track",
		Example: `  clipwin export --db results.duckdb --what regions --out regions.bed
  clipwin export --db results.duckdb --what windows --run-id 20260828-101502`,
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

			switch what {
			case "regions":
				regions, err := s.LoadRegions(runID)
				if err != nil {
					return err
				}
				if len(regions) == 0 {
					return fmt.Errorf("run %q has no stored regions", runID)
				}
				return writeTable(out, func(f *os.File) error {
					return output.WriteRegionBED(f, regions)
				})
			case "windows":
				results, err := s.LoadWindowResults(runID)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					return fmt.Errorf("run %q has no stored window results", runID)
				}
				return writeTable(out, func(f *os.File) error {
					return output.WriteWindowBED(f, results)
				})
			default:
				return fmt.Errorf("unknown --what %q, want regions or windows", what)
			}
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&dbPath, "db", viper.GetString("db"), "DuckDB results database")
	fl.StringVar(&runID, "run-id", "", "run to export (default: most recent)")
	fl.StringVar(&what, "what", "regions", "track to export: regions or windows")
	fl.StringVar(&out, "out", "-", "BED output ('-' for stdout)")

	return cmd
}
