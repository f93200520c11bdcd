package dataset

import (
	"fmt"
	"strconv"

	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/tabio"
)

// FilterBySum returns a new dataset keeping only windows whose total
// count across all samples is at least minSum.
func (ds *Dataset) FilterBySum(minSum int64) (*Dataset, error) {
	if minSum < 0 {
		return nil, &errdefs.ParameterError{Name: "minSum", Reason: fmt.Sprintf("must be >= 0, got %d", minSum)}
	}

	var keep []int
	for i, row := range ds.Counts {
		var sum int64
		for _, c := range row {
			sum += c
		}
		if sum >= minSum {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, &errdefs.EmptyResultError{Stage: "sum prefilter"}
	}
	return ds.subset(keep), nil
}

// HeightMatrix is the auxiliary per-window, per-sample maximum local
// coverage height table used by the height prefilter.
type HeightMatrix struct {
	Samples []string
	Heights map[string][]float64 // window id -> per-sample heights
}

// ReadHeightMatrix reads a height matrix keyed by window identifier in
// its first column.
func ReadHeightMatrix(path string) (*HeightMatrix, error) {
	t, err := tabio.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.Header) < 2 {
		return nil, fmt.Errorf("%s: height matrix needs an id column and at least one sample column", path)
	}

	hm := &HeightMatrix{
		Samples: t.Header[1:],
		Heights: make(map[string][]float64, len(t.Rows)),
	}
	for i, row := range t.Rows {
		heights := make([]float64, len(row)-1)
		for j, f := range row[1:] {
			h, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: bad height %q: %w", path, i+1, f, err)
			}
			heights[j] = h
		}
		hm.Heights[row[0]] = heights
	}
	return hm, nil
}

// FilterByHeight returns a new dataset keeping only windows whose
// height is at least minHeight in at least nSamples of the height
// matrix's samples. Windows absent from the height matrix are dropped.
func (ds *Dataset) FilterByHeight(hm *HeightMatrix, minHeight float64, nSamples int) (*Dataset, error) {
	if nSamples < 1 {
		return nil, &errdefs.ParameterError{Name: "nSamples", Reason: fmt.Sprintf("must be >= 1, got %d", nSamples)}
	}
	if nSamples > len(hm.Samples) {
		return nil, &errdefs.ParameterError{
			Name:   "nSamples",
			Reason: fmt.Sprintf("%d exceeds the %d samples in the height matrix", nSamples, len(hm.Samples)),
		}
	}

	var keep []int
	for i, w := range ds.Windows {
		heights, ok := hm.Heights[w.ID]
		if !ok {
			continue
		}
		passing := 0
		for _, h := range heights {
			if h >= minHeight {
				passing++
			}
		}
		if passing >= nSamples {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, &errdefs.EmptyResultError{Stage: "height prefilter"}
	}
	return ds.subset(keep), nil
}
