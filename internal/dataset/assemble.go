package dataset

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/interval"
	"github.com/seqspace/clipwin/internal/tabio"
)

// Assembler aligns a raw count table to a validated annotation.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler returns an assembler that logs nowhere.
func NewAssembler() *Assembler {
	return &Assembler{logger: zap.NewNop()}
}

// SetLogger sets the logger used for intersection warnings.
func (a *Assembler) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Assemble builds a Dataset from windows, a count table whose first
// column is the window identifier, and a sample table.
//
// Rows are matched by identifier intersection. A strict-subset
// intersection is tolerated with a warning; an empty one is fatal.
// Count-matrix columns and sample-table rows must agree exactly: a
// permutation of the same names is ambiguous and rejected, any other
// difference is a plain mismatch.
//
// The output row order is genome order, inherited from the annotation.
func (a *Assembler) Assemble(windows []interval.Window, counts *tabio.Table, samples []Sample) (*Dataset, error) {
	if err := checkSampleOrder(counts.Header[1:], samples); err != nil {
		return nil, err
	}

	rowByID := make(map[string]int, len(counts.Rows))
	for i, row := range counts.Rows {
		rowByID[row[0]] = i
	}

	ds := &Dataset{Samples: samples}
	for _, w := range windows {
		i, ok := rowByID[w.ID]
		if !ok {
			continue
		}
		row, err := readCountRow(counts.Source, i+1, counts.Rows[i][1:])
		if err != nil {
			return nil, err
		}
		ds.Windows = append(ds.Windows, w)
		ds.Counts = append(ds.Counts, row)
	}

	if len(ds.Windows) == 0 {
		return nil, &errdefs.EmptyIntersectionError{Left: "annotation", Right: counts.Source}
	}

	if dropped := len(windows) - len(ds.Windows); dropped > 0 {
		a.logger.Warn("annotation windows missing from count matrix",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(ds.Windows)))
	}
	if dropped := len(counts.Rows) - len(ds.Windows); dropped > 0 {
		a.logger.Warn("count matrix rows missing from annotation",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(ds.Windows)))
	}

	return ds, nil
}

// checkSampleOrder verifies that count columns and sample-table rows
// name the same samples in the same order.
func checkSampleOrder(cols []string, samples []Sample) error {
	names := make([]string, len(samples))
	for i, s := range samples {
		names[i] = s.Name
	}

	if equalStrings(cols, names) {
		return nil
	}
	if samePermutation(cols, names) {
		return &errdefs.OrderMismatchError{Expected: cols, Got: names}
	}
	return fmt.Errorf("count matrix columns %v do not name the samples in the sample table %v", cols, names)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	return equalStrings(as, bs)
}
