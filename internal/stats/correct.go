package stats

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/seqspace/clipwin/internal/interval"
)

// Corrector applies the overlap-scaled Bonferroni correction. Sliding
// windows over the same gene share truncation-site signal, so their
// tests are not independent; scaling each p-value by the number of
// windows it overlaps bounds the family-wise error within that
// neighborhood without modeling the correlation structure.
type Corrector struct {
	logger  *zap.Logger
	workers int
}

// NewCorrector returns a corrector using one worker per CPU.
func NewCorrector() *Corrector {
	return &Corrector{logger: zap.NewNop()}
}

// SetLogger sets the logger for undefined-statistic warnings.
func (c *Corrector) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetWorkers sets the worker count; 0 or less means one per CPU.
func (c *Corrector) SetWorkers(n int) {
	c.workers = n
}

// Correct fills OverlapCount and PCorrected for every result, in
// place. Results must be genome-sorted. Gene groups are independent
// and processed by a worker pool.
func (c *Corrector) Correct(results []WindowResult) {
	windows := make([]interval.Window, len(results))
	for i, r := range results {
		windows[i] = r.Window
	}
	keys, groups := interval.GroupByGene(windows)

	jobs := make([]groupJob, len(keys))
	for g, k := range keys {
		jobs[g] = groupJob{indices: groups[k]}
	}

	runGroups(jobs, c.workers, func(job groupJob) {
		members := make([]interval.Window, len(job.indices))
		for i, idx := range job.indices {
			members[i] = windows[idx]
		}
		counts := interval.OverlapCounts(members)
		for i, idx := range job.indices {
			r := &results[idx]
			r.OverlapCount = counts[i]
			if math.IsNaN(r.POneSided) {
				r.PCorrected = math.NaN()
				continue
			}
			r.PCorrected = math.Min(1, r.POneSided*float64(counts[i]))
		}
	})

	undefined := 0
	for i := range results {
		if math.IsNaN(results[i].PCorrected) {
			undefined++
		}
	}
	if undefined > 0 {
		c.logger.Warn("windows excluded from FDR ranking",
			zap.Int("undefined", undefined),
			zap.Int("total", len(results)))
	}
}

// AdjustFDR fills PAdj with Benjamini-Hochberg adjusted values over
// every defined corrected p-value. Undefined rows are excluded from
// the ranking but keep their place in the table with PAdj = NaN.
// Ties are ranked by genomic position so reruns are bit-identical.
func AdjustFDR(results []WindowResult) {
	var ranked []int
	for i := range results {
		if !math.IsNaN(results[i].PCorrected) {
			ranked = append(ranked, i)
		}
	}
	if len(ranked) == 0 {
		return
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := results[ranked[a]], results[ranked[b]]
		if ra.PCorrected != rb.PCorrected {
			return ra.PCorrected < rb.PCorrected
		}
		if ra.Window.Chrom != rb.Window.Chrom {
			return ra.Window.Chrom < rb.Window.Chrom
		}
		return ra.Window.Start < rb.Window.Start
	})

	m := float64(len(ranked))
	running := 1.0
	for i := len(ranked) - 1; i >= 0; i-- {
		p := results[ranked[i]].PCorrected * m / float64(i+1)
		if p < running {
			running = p
		}
		results[ranked[i]].PAdj = running
	}
}
