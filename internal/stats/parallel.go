package stats

import (
	"runtime"
	"sync"
)

// groupJob is one gene group's worth of work: the result indices that
// belong to the group, in genome order.
type groupJob struct {
	indices []int
}

// runGroups fans jobs out over a pool of workers and blocks until all
// are done. Jobs touch disjoint result rows, so workers need no
// synchronization beyond the channel. If workers is 0 or less,
// runtime.NumCPU() is used.
func runGroups(jobs []groupJob, workers int, fn func(groupJob)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers <= 1 {
		for _, job := range jobs {
			fn(job)
		}
		return
	}

	ch := make(chan groupJob, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range ch {
				fn(job)
			}
		}()
	}

	for _, job := range jobs {
		ch <- job
	}
	close(ch)
	wg.Wait()
}
