// Package region merges runs of significant, mutually overlapping
// windows into binding regions.
package region

import (
	"math"
	"sort"

	"github.com/seqspace/clipwin/internal/stats"
)

// Region is a maximal run of consecutive, mutually overlapping
// significant windows within one gene group.
type Region struct {
	Chrom    string
	Start    int64
	End      int64
	Strand   byte
	GeneID   string
	GeneName string
	GeneType string

	WindowCount int
	PAdjMin     float64
	PAdjMax     float64
	PAdjMean    float64
	Log2FCMin   float64
	Log2FCMax   float64
}

// Extract scans each gene group in genome order and merges runs of
// significant windows into regions. A region is extended only while
// the immediately preceding window in sort order is itself significant
// and overlaps the current one; any gap, even a single non-significant
// window between two significant ones, starts a new region. Genes
// without significant windows contribute nothing.
//
// Results must already carry their significance flags (see
// stats.MarkSignificant) and be genome-sorted. The returned regions
// are in genome order.
func Extract(results []stats.WindowResult) []Region {
	type groupKey struct {
		geneID string
		chrom  string
		strand byte
	}
	byGroup := make(map[groupKey][]int)
	var order []groupKey
	for i, r := range results {
		k := groupKey{r.Window.GeneID, r.Window.Chrom, r.Window.Strand}
		if _, seen := byGroup[k]; !seen {
			order = append(order, k)
		}
		byGroup[k] = append(byGroup[k], i)
	}

	var regions []Region
	for _, k := range order {
		regions = append(regions, extractGroup(results, byGroup[k])...)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Chrom != regions[j].Chrom {
			return regions[i].Chrom < regions[j].Chrom
		}
		return regions[i].Start < regions[j].Start
	})
	return regions
}

// extractGroup merges one gene group's windows, given as genome-sorted
// indices into results.
func extractGroup(results []stats.WindowResult, indices []int) []Region {
	var regions []Region
	var cur *builder

	for pos, idx := range indices {
		r := &results[idx]
		if !r.Significant {
			continue
		}

		// Extend only when the window immediately before this one in
		// sort order is a significant member that overlaps it.
		if cur != nil && pos > 0 {
			prev := &results[indices[pos-1]]
			if prev.Significant && prev.Window.Overlaps(r.Window) {
				cur.add(r)
				continue
			}
		}

		if cur != nil {
			regions = append(regions, cur.finish())
		}
		cur = newBuilder(r)
	}
	if cur != nil {
		regions = append(regions, cur.finish())
	}
	return regions
}

// builder accumulates one region's member statistics.
type builder struct {
	region  Region
	padjSum float64
}

func newBuilder(r *stats.WindowResult) *builder {
	w := r.Window
	return &builder{
		region: Region{
			Chrom:       w.Chrom,
			Start:       w.Start,
			End:         w.End,
			Strand:      w.Strand,
			GeneID:      w.GeneID,
			GeneName:    w.GeneName,
			GeneType:    w.GeneType,
			WindowCount: 1,
			PAdjMin:     r.PAdj,
			PAdjMax:     r.PAdj,
			Log2FCMin:   r.Log2FC,
			Log2FCMax:   r.Log2FC,
		},
		padjSum: r.PAdj,
	}
}

func (b *builder) add(r *stats.WindowResult) {
	w := r.Window
	if w.Start < b.region.Start {
		b.region.Start = w.Start
	}
	if w.End > b.region.End {
		b.region.End = w.End
	}
	b.region.WindowCount++
	b.region.PAdjMin = math.Min(b.region.PAdjMin, r.PAdj)
	b.region.PAdjMax = math.Max(b.region.PAdjMax, r.PAdj)
	b.region.Log2FCMin = math.Min(b.region.Log2FCMin, r.Log2FC)
	b.region.Log2FCMax = math.Max(b.region.Log2FCMax, r.Log2FC)
	b.padjSum += r.PAdj
}

func (b *builder) finish() Region {
	b.region.PAdjMean = b.padjSum / float64(b.region.WindowCount)
	return b.region
}
