package stats

import (
	"fmt"
	"math"

	"github.com/seqspace/clipwin/internal/dataset"
	"github.com/seqspace/clipwin/internal/interval"
)

// WindowResult is one tested window with every derived p-value.
// Undefined values are NaN throughout.
type WindowResult struct {
	Window interval.Window

	BaseMean float64
	Log2FC   float64
	Stat     float64
	PValue   float64 // two-sided, from the engine

	POneSided    float64
	OverlapCount int
	PCorrected   float64
	PAdj         float64
	Significant  bool
}

// BuildResults pairs engine output with its windows. Engines must
// return rows in dataset order; a length or id mismatch is a contract
// violation, not a recoverable condition.
func BuildResults(ds *dataset.Dataset, fit []EngineResult) ([]WindowResult, error) {
	if len(fit) != ds.NWindows() {
		return nil, fmt.Errorf("engine returned %d rows for %d windows", len(fit), ds.NWindows())
	}

	results := make([]WindowResult, len(fit))
	for i, r := range fit {
		if r.WindowID != ds.Windows[i].ID {
			return nil, fmt.Errorf("engine row %d is window %q, dataset has %q", i, r.WindowID, ds.Windows[i].ID)
		}
		results[i] = WindowResult{
			Window:     ds.Windows[i],
			BaseMean:   r.BaseMean,
			Log2FC:     r.Log2FC,
			Stat:       r.Stat,
			PValue:     r.PValue,
			POneSided:  math.NaN(),
			PCorrected: math.NaN(),
			PAdj:       math.NaN(),
		}
	}
	return results, nil
}

// OneSided fills in the right-tailed p-value for every result, in
// place, preserving row count and order.
//
// Depleted windows (log2 fold change <= 0) are not candidates for
// enrichment: they keep their row but are assigned p = 1. Enriched
// windows get half the two-sided p-value, which equals the upper-tail
// probability because the test statistic is symmetric about zero under
// the null.
func OneSided(results []WindowResult) {
	for i := range results {
		r := &results[i]
		switch {
		case math.IsNaN(r.PValue) || math.IsNaN(r.Log2FC):
			r.POneSided = math.NaN()
		case r.Log2FC <= 0:
			r.POneSided = 1
		default:
			r.POneSided = r.PValue / 2
		}
	}
}

// MarkSignificant sets the significance flag: adjusted p below alpha
// and log2 fold change above minLFC. NaN never passes.
func MarkSignificant(results []WindowResult, alpha, minLFC float64) {
	for i := range results {
		r := &results[i]
		r.Significant = !math.IsNaN(r.PAdj) && r.PAdj < alpha && r.Log2FC > minLFC
	}
}
