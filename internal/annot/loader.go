// Package annot loads and validates the window annotation table that
// defines the genomic interval store.
package annot

import (
	"fmt"
	"strconv"

	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/interval"
	"github.com/seqspace/clipwin/internal/tabio"
)

// Annotation column names.
const (
	ColChrom      = "chromosome"
	ColUniqueID   = "unique_id"
	ColBegin      = "begin"
	ColEnd        = "end"
	ColStrand     = "strand"
	ColGeneID     = "gene_id"
	ColGeneName   = "gene_name"
	ColGeneType   = "gene_type"
	ColGeneRegion = "gene_region"
	ColRegionNr   = "Nr_of_region"
	ColTotalNr    = "Total_nr_of_region"
	ColWindowNr   = "window_number" // optional
)

var requiredColumns = []string{
	ColChrom, ColUniqueID, ColBegin, ColEnd, ColStrand,
	ColGeneID, ColGeneName, ColGeneType, ColGeneRegion,
	ColRegionNr, ColTotalNr,
}

// Options controls annotation ingestion.
type Options struct {
	// OneBased marks the begin column as 1-based inclusive. Coordinates
	// are shifted to the internal 0-based half-open convention at load.
	OneBased bool
}

// Load reads, validates and genome-sorts a window annotation table.
// The returned windows are sorted by chromosome label, then start.
func Load(path string, opts Options) ([]interval.Window, error) {
	t, err := tabio.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return FromTable(t, opts)
}

// FromTable validates an already-read table and converts it into
// windows. Schema violations are reported all at once.
func FromTable(t *tabio.Table, opts Options) ([]interval.Window, error) {
	if missing := t.MissingColumns(requiredColumns); len(missing) > 0 {
		return nil, &errdefs.SchemaError{Source: t.Source, Missing: missing}
	}

	chrom := t.Col(ColChrom)
	uid := t.Col(ColUniqueID)
	begin := t.Col(ColBegin)
	end := t.Col(ColEnd)
	strand := t.Col(ColStrand)
	geneID := t.Col(ColGeneID)
	geneName := t.Col(ColGeneName)
	geneType := t.Col(ColGeneType)
	geneRegion := t.Col(ColGeneRegion)
	regionNr := t.Col(ColRegionNr)
	totalNr := t.Col(ColTotalNr)
	windowNr := t.Col(ColWindowNr)

	windows := make([]interval.Window, 0, len(t.Rows))
	seen := make(map[string]int, len(t.Rows))

	for i, row := range t.Rows {
		w := interval.Window{
			ID:         row[uid],
			Chrom:      row[chrom],
			GeneID:     row[geneID],
			GeneName:   row[geneName],
			GeneType:   row[geneType],
			GeneRegion: row[geneRegion],
		}

		if prev, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate unique_id %q (rows %d and %d)", t.Source, w.ID, prev+1, i+1)
		}
		seen[w.ID] = i

		start, err := strconv.ParseInt(row[begin], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad begin %q: %w", t.Source, i+1, row[begin], err)
		}
		stop, err := strconv.ParseInt(row[end], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad end %q: %w", t.Source, i+1, row[end], err)
		}
		if opts.OneBased {
			start--
		}
		if start >= stop {
			return nil, fmt.Errorf("%s row %d: window %s has start %d >= end %d", t.Source, i+1, w.ID, start, stop)
		}
		w.Start, w.End = start, stop

		switch row[strand] {
		case "+":
			w.Strand = '+'
		case "-":
			w.Strand = '-'
		default:
			return nil, fmt.Errorf("%s row %d: bad strand %q", t.Source, i+1, row[strand])
		}

		if w.RegionNr, err = strconv.Atoi(row[regionNr]); err != nil {
			return nil, fmt.Errorf("%s row %d: bad %s %q: %w", t.Source, i+1, ColRegionNr, row[regionNr], err)
		}
		if w.TotalNr, err = strconv.Atoi(row[totalNr]); err != nil {
			return nil, fmt.Errorf("%s row %d: bad %s %q: %w", t.Source, i+1, ColTotalNr, row[totalNr], err)
		}
		if windowNr >= 0 {
			if w.WindowNr, err = strconv.Atoi(row[windowNr]); err != nil {
				return nil, fmt.Errorf("%s row %d: bad %s %q: %w", t.Source, i+1, ColWindowNr, row[windowNr], err)
			}
		}

		windows = append(windows, w)
	}

	interval.GenomeSort(windows)
	return windows, nil
}

// Subset filters windows to those whose id is in keep, preserving
// order. An empty intersection is a configuration error.
func Subset(windows []interval.Window, keep []string) ([]interval.Window, error) {
	want := make(map[string]bool, len(keep))
	for _, id := range keep {
		want[id] = true
	}

	var out []interval.Window
	for _, w := range windows {
		if want[w.ID] {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil, &errdefs.EmptyIntersectionError{Left: "annotation", Right: "identifier subset"}
	}
	return out, nil
}
