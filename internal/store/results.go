package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/seqspace/clipwin/internal/interval"
	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
)

// WriteWindowResults batch-inserts one run's window results using the
// DuckDB Appender API.
func (s *Store) WriteWindowResults(runID string, results []stats.WindowResult) error {
	if len(results) == 0 {
		return nil
	}

	appender, closeAppender, err := s.newAppender("window_results")
	if err != nil {
		return err
	}
	defer closeAppender()

	for i := range results {
		r := &results[i]
		w := r.Window
		if err := appender.AppendRow(
			runID, w.Chrom, w.ID, w.Start, w.End, string(w.Strand),
			w.GeneID, w.GeneName, w.GeneType, w.GeneRegion,
			nullable(r.BaseMean), nullable(r.Log2FC), nullable(r.Stat), nullable(r.PValue),
			nullable(r.POneSided), int32(r.OverlapCount), nullable(r.PCorrected), nullable(r.PAdj),
			r.Significant,
		); err != nil {
			return fmt.Errorf("append window result: %w", err)
		}
	}
	return appender.Flush()
}

// WriteRegions batch-inserts one run's regions.
func (s *Store) WriteRegions(runID string, regions []region.Region) error {
	if len(regions) == 0 {
		return nil
	}

	appender, closeAppender, err := s.newAppender("regions")
	if err != nil {
		return err
	}
	defer closeAppender()

	for i := range regions {
		r := &regions[i]
		if err := appender.AppendRow(
			runID, r.Chrom, r.Start, r.End, string(r.Strand),
			r.GeneID, r.GeneName, r.GeneType,
			int32(r.WindowCount),
			nullable(r.PAdjMin), nullable(r.PAdjMax), nullable(r.PAdjMean),
			nullable(r.Log2FCMin), nullable(r.Log2FCMax),
		); err != nil {
			return fmt.Errorf("append region: %w", err)
		}
	}
	return appender.Flush()
}

// LoadRegions reads one run's regions back, in genome order.
func (s *Store) LoadRegions(runID string) ([]region.Region, error) {
	rows, err := s.db.Query(`SELECT
		chrom, win_start, win_end, strand, gene_id, gene_name, gene_type,
		n_windows, padj_min, padj_max, padj_mean, log2fc_min, log2fc_max
		FROM regions WHERE run_id=? ORDER BY chrom, win_start`, runID)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var regions []region.Region
	for rows.Next() {
		var r region.Region
		var strand string
		var padjMin, padjMax, padjMean, lfcMin, lfcMax sql.NullFloat64
		if err := rows.Scan(
			&r.Chrom, &r.Start, &r.End, &strand, &r.GeneID, &r.GeneName, &r.GeneType,
			&r.WindowCount, &padjMin, &padjMax, &padjMean, &lfcMin, &lfcMax,
		); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		r.Strand = strandByte(strand)
		r.PAdjMin = fromNull(padjMin)
		r.PAdjMax = fromNull(padjMax)
		r.PAdjMean = fromNull(padjMean)
		r.Log2FCMin = fromNull(lfcMin)
		r.Log2FCMax = fromNull(lfcMax)
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// LoadWindowResults reads one run's window results back, in genome order.
func (s *Store) LoadWindowResults(runID string) ([]stats.WindowResult, error) {
	rows, err := s.db.Query(`SELECT
		chrom, window_id, win_start, win_end, strand, gene_id, gene_name, gene_type, gene_region,
		base_mean, log2fc, stat, pvalue, pvalue_onesided, overlap_count,
		pvalue_corrected, padj, significant
		FROM window_results WHERE run_id=? ORDER BY chrom, win_start`, runID)
	if err != nil {
		return nil, fmt.Errorf("query window results: %w", err)
	}
	defer rows.Close()

	var results []stats.WindowResult
	for rows.Next() {
		var r stats.WindowResult
		var w interval.Window
		var strand string
		var baseMean, lfc, stat, pval, pOne, pCorr, padj sql.NullFloat64
		if err := rows.Scan(
			&w.Chrom, &w.ID, &w.Start, &w.End, &strand,
			&w.GeneID, &w.GeneName, &w.GeneType, &w.GeneRegion,
			&baseMean, &lfc, &stat, &pval, &pOne, &r.OverlapCount,
			&pCorr, &padj, &r.Significant,
		); err != nil {
			return nil, fmt.Errorf("scan window result: %w", err)
		}
		w.Strand = strandByte(strand)
		r.Window = w
		r.BaseMean = fromNull(baseMean)
		r.Log2FC = fromNull(lfc)
		r.Stat = fromNull(stat)
		r.PValue = fromNull(pval)
		r.POneSided = fromNull(pOne)
		r.PCorrected = fromNull(pCorr)
		r.PAdj = fromNull(padj)
		results = append(results, r)
	}
	return results, rows.Err()
}

// newAppender opens a DuckDB appender on a dedicated connection. The
// returned func closes both.
func (s *Store) newAppender(table string) (*goduckdb.Appender, func(), error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender: %w", err)
	}

	return appender, func() {
		appender.Close()
		conn.Close()
	}, nil
}

// nullable maps NaN to SQL NULL; DuckDB would take the NaN, but NULL
// keeps aggregate queries honest.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func strandByte(s string) byte {
	if s == "-" {
		return '-'
	}
	return '+'
}
