// Package interval holds the genomic window model and the overlap
// arithmetic the correction and region stages are built on. Coordinates
// are 0-based, half-open [Start, End) everywhere inside the module;
// conversion from 1-based inputs happens at ingest, never here.
package interval

import "sort"

// Window is the smallest analysis unit: one sliding window of one gene.
type Window struct {
	ID         string
	Chrom      string
	Start      int64
	End        int64
	Strand     byte // '+' or '-'
	GeneID     string
	GeneName   string
	GeneType   string
	GeneRegion string
	RegionNr   int
	TotalNr    int
	WindowNr   int // 0 when the annotation has no window_number column
}

// Overlaps reports whether w and o intersect as half-open intervals.
// Windows on different chromosomes or strands never overlap.
func (w Window) Overlaps(o Window) bool {
	if w.Chrom != o.Chrom || w.Strand != o.Strand {
		return false
	}
	return w.Start < o.End && o.Start < w.End
}

// GroupKey identifies a comparison group. Windows are only compared to
// windows of the same gene on the same chromosome and strand, so a gene
// annotated on two chromosomes forms two groups.
type GroupKey struct {
	GeneID string
	Chrom  string
	Strand byte
}

// Key returns the comparison-group key for w.
func (w Window) Key() GroupKey {
	return GroupKey{GeneID: w.GeneID, Chrom: w.Chrom, Strand: w.Strand}
}

// GenomeSort sorts windows in place by chromosome label (lexicographic),
// then start, then end. This is the canonical row order of every table
// the pipeline produces.
func GenomeSort(ws []Window) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Chrom != ws[j].Chrom {
			return ws[i].Chrom < ws[j].Chrom
		}
		if ws[i].Start != ws[j].Start {
			return ws[i].Start < ws[j].Start
		}
		return ws[i].End < ws[j].End
	})
}

// GroupByGene partitions indices into ws by gene id and strand. Within
// each group the indices keep the slice order, so a genome-sorted input
// yields start-sorted groups. The returned key slice is deterministic:
// groups appear in order of their first member.
func GroupByGene(ws []Window) ([]GroupKey, map[GroupKey][]int) {
	groups := make(map[GroupKey][]int)
	var keys []GroupKey
	for i, w := range ws {
		k := w.Key()
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	return keys, groups
}
