package interval

import "sort"

// OverlapCounts returns, for each window of one comparison group, the
// number of group members whose interval intersects it, itself included.
//
// The count is computed from two sorted coordinate arrays rather than an
// all-pairs scan: a member j overlaps window i exactly when
// start_j < end_i and end_j > start_i, so
//
//	k(i) = #{starts < end_i} - #{ends <= start_i}
//
// which is two binary searches per window. Every window whose end is at
// or before start_i necessarily also started before end_i, so the
// subtraction never undercounts.
func OverlapCounts(ws []Window) []int {
	n := len(ws)
	if n == 0 {
		return nil
	}

	starts := make([]int64, n)
	ends := make([]int64, n)
	for i, w := range ws {
		starts[i] = w.Start
		ends[i] = w.End
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	sort.Slice(ends, func(i, j int) bool { return ends[i] < ends[j] })

	counts := make([]int, n)
	for i, w := range ws {
		sLess := sort.Search(n, func(j int) bool { return starts[j] >= w.End })
		eLessEq := sort.Search(n, func(j int) bool { return ends[j] > w.Start })
		counts[i] = sLess - eLessEq
	}
	return counts
}
