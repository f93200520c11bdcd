// Package dataset assembles the window-by-sample count matrix and the
// sample table into one consistent, immutable dataset, and provides the
// low-count prefilters applied before model fitting.
package dataset

import (
	"fmt"
	"strconv"

	"github.com/seqspace/clipwin/internal/interval"
	"github.com/seqspace/clipwin/internal/tabio"
)

// Sample is one sequencing library and its experimental group.
type Sample struct {
	Name  string
	Group string
}

// Dataset is a genome-sorted count matrix aligned to its windows.
// Counts[i][j] is the count of window Windows[i] in sample Samples[j].
// Datasets are never mutated: every filtering step returns a new one.
type Dataset struct {
	Windows []interval.Window
	Samples []Sample
	Counts  [][]int64
}

// NSamples returns the number of samples.
func (ds *Dataset) NSamples() int { return len(ds.Samples) }

// NWindows returns the number of windows.
func (ds *Dataset) NWindows() int { return len(ds.Windows) }

// SampleNames returns the sample names in column order.
func (ds *Dataset) SampleNames() []string {
	names := make([]string, len(ds.Samples))
	for i, s := range ds.Samples {
		names[i] = s.Name
	}
	return names
}

// GroupColumns returns the column indices belonging to group.
func (ds *Dataset) GroupColumns(group string) []int {
	var cols []int
	for j, s := range ds.Samples {
		if s.Group == group {
			cols = append(cols, j)
		}
	}
	return cols
}

// subset returns a new dataset holding the rows at keep, in order.
// Rows are shared, not copied; datasets are read-only by convention.
func (ds *Dataset) subset(keep []int) *Dataset {
	out := &Dataset{
		Windows: make([]interval.Window, len(keep)),
		Samples: ds.Samples,
		Counts:  make([][]int64, len(keep)),
	}
	for i, idx := range keep {
		out.Windows[i] = ds.Windows[idx]
		out.Counts[i] = ds.Counts[idx]
	}
	return out
}

// ReadSampleTable reads a two-column TSV mapping sample name to group.
// Row order defines the expected count-matrix column order.
func ReadSampleTable(path string) ([]Sample, error) {
	t, err := tabio.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.Header) < 2 {
		return nil, fmt.Errorf("%s: sample table needs name and group columns", path)
	}

	samples := make([]Sample, 0, len(t.Rows))
	seen := make(map[string]bool, len(t.Rows))
	for i, row := range t.Rows {
		if seen[row[0]] {
			return nil, fmt.Errorf("%s row %d: duplicate sample %q", path, i+1, row[0])
		}
		seen[row[0]] = true
		samples = append(samples, Sample{Name: row[0], Group: row[1]})
	}
	return samples, nil
}

// readCountRow parses the numeric fields of one count-matrix row.
func readCountRow(source string, rowNr int, fields []string) ([]int64, error) {
	counts := make([]int64, len(fields))
	for j, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad count %q: %w", source, rowNr, f, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s row %d: negative count %d", source, rowNr, v)
		}
		counts[j] = v
	}
	return counts, nil
}
