package output

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
)

// bedScore maps an adjusted p-value onto the BED 0-1000 score range.
// padj 1 maps to 0 and padj <= 1e-8 saturates at 1000, so genome
// browsers shade darker for stronger regions.
func bedScore(padj float64) int {
	if math.IsNaN(padj) || padj >= 1 {
		return 0
	}
	score := int(math.Round(-125 * math.Log10(padj)))
	if score > 1000 {
		score = 1000
	}
	if score < 0 {
		score = 0
	}
	return score
}

// WriteRegionBED writes regions as a BED6 track. The name field is
// gene_id@n, n counting that gene's regions in genome order.
func WriteRegionBED(w io.Writer, regions []region.Region) error {
	bw := bufio.NewWriter(w)
	nth := make(map[string]int)
	for i := range regions {
		r := &regions[i]
		nth[r.GeneID]++
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s@%d\t%d\t%c\n",
			r.Chrom, r.Start, r.End, r.GeneID, nth[r.GeneID], bedScore(r.PAdjMin), r.Strand); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteWindowBED writes the significant windows as a BED6 track, one
// line per significant window, named by window id.
func WriteWindowBED(w io.Writer, results []stats.WindowResult) error {
	bw := bufio.NewWriter(w)
	for i := range results {
		r := &results[i]
		if !r.Significant {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%d\t%c\n",
			r.Window.Chrom, r.Window.Start, r.Window.End, r.Window.ID, bedScore(r.PAdj), r.Window.Strand); err != nil {
			return err
		}
	}
	return bw.Flush()
}
