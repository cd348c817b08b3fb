package trace

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Job is a per-unit span that has begun and not yet ended.
type Job struct {
	Snapshot uint64
	Stage    string
	Unit     string
	Ordinal  int
	Started  time.Time
}

func (j Job) String() string {
	return fmt.Sprintf("%s %s#%d", j.Stage, j.Unit, j.Ordinal)
}

type registry struct {
	mu   sync.Mutex
	next uint64
	open map[uint64]Job
}

var jobs = &registry{open: make(map[uint64]Job)}

func (r *registry) add(j Job) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.open[r.next] = j
	return r.next
}

func (r *registry) remove(key uint64) {
	r.mu.Lock()
	delete(r.open, key)
	r.mu.Unlock()
}

// InFlight lists unit jobs that are running now, oldest first.
// Only jobs started under an enabled tracer are tracked.
func InFlight() []Job {
	jobs.mu.Lock()
	out := make([]Job, 0, len(jobs.open))
	for _, j := range jobs.open {
		out = append(out, j)
	}
	jobs.mu.Unlock()
	slices.SortFunc(out, func(a, b Job) int {
		return cmp.Or(
			a.Started.Compare(b.Started),
			cmp.Compare(a.Snapshot, b.Snapshot),
			cmp.Compare(a.Ordinal, b.Ordinal),
		)
	})
	return out
}
