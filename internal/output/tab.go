// Package output renders window results and regions as TAB-separated
// tables and BED6 tracks.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
)

// WindowWriter writes the per-window result table: the annotation
// columns followed by every derived statistic.
type WindowWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewWindowWriter creates a window-result writer.
func NewWindowWriter(w io.Writer) *WindowWriter {
	return &WindowWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"chromosome",
			"unique_id",
			"begin",
			"end",
			"strand",
			"gene_id",
			"gene_name",
			"gene_type",
			"gene_region",
			"Nr_of_region",
			"Total_nr_of_region",
			"window_number",
			"baseMean",
			"log2FoldChange",
			"stat",
			"pvalue",
			"pvalue_onesided",
			"overlap_count",
			"pvalue_corrected",
			"padj",
			"significant",
		},
	}
}

// WriteHeader writes the header line.
func (ww *WindowWriter) WriteHeader() error {
	_, err := ww.w.WriteString(strings.Join(ww.columns, "\t") + "\n")
	return err
}

// Write writes one result row.
func (ww *WindowWriter) Write(r *stats.WindowResult) error {
	w := r.Window

	sig := "FALSE"
	if r.Significant {
		sig = "TRUE"
	}

	values := []string{
		w.Chrom,
		w.ID,
		strconv.FormatInt(w.Start, 10),
		strconv.FormatInt(w.End, 10),
		string(w.Strand),
		w.GeneID,
		w.GeneName,
		w.GeneType,
		w.GeneRegion,
		strconv.Itoa(w.RegionNr),
		strconv.Itoa(w.TotalNr),
		strconv.Itoa(w.WindowNr),
		formatStat(r.BaseMean),
		formatStat(r.Log2FC),
		formatStat(r.Stat),
		formatStat(r.PValue),
		formatStat(r.POneSided),
		strconv.Itoa(r.OverlapCount),
		formatStat(r.PCorrected),
		formatStat(r.PAdj),
		sig,
	}

	_, err := ww.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every row, then flushes.
func (ww *WindowWriter) WriteAll(results []stats.WindowResult) error {
	if err := ww.WriteHeader(); err != nil {
		return err
	}
	for i := range results {
		if err := ww.Write(&results[i]); err != nil {
			return err
		}
	}
	return ww.Flush()
}

// Flush flushes buffered output.
func (ww *WindowWriter) Flush() error {
	return ww.w.Flush()
}

// RegionWriter writes the merged-region table.
type RegionWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewRegionWriter creates a region-table writer.
func NewRegionWriter(w io.Writer) *RegionWriter {
	return &RegionWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"chromosome",
			"begin",
			"end",
			"strand",
			"gene_id",
			"gene_name",
			"gene_type",
			"n_windows",
			"padj_min",
			"padj_max",
			"padj_mean",
			"log2FoldChange_min",
			"log2FoldChange_max",
		},
	}
}

// WriteHeader writes the header line.
func (rw *RegionWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	return err
}

// Write writes one region row.
func (rw *RegionWriter) Write(r *region.Region) error {
	values := []string{
		r.Chrom,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		string(r.Strand),
		r.GeneID,
		r.GeneName,
		r.GeneType,
		strconv.Itoa(r.WindowCount),
		formatStat(r.PAdjMin),
		formatStat(r.PAdjMax),
		formatStat(r.PAdjMean),
		formatStat(r.Log2FCMin),
		formatStat(r.Log2FCMax),
	}
	_, err := rw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every region, then flushes.
func (rw *RegionWriter) WriteAll(regions []region.Region) error {
	if err := rw.WriteHeader(); err != nil {
		return err
	}
	for i := range regions {
		if err := rw.Write(&regions[i]); err != nil {
			return err
		}
	}
	return rw.Flush()
}

// Flush flushes buffered output.
func (rw *RegionWriter) Flush() error {
	return rw.w.Flush()
}

// formatStat renders a statistic, mapping NaN to NA as R would.
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
