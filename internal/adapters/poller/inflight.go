package poller

import "sync"

// inflightRegistry tracks jobs currently being processed by this process,
// globally and per installation. It is the only process-local mutable state
// the poller shares with handler goroutines; all job-table coordination goes
// through the store's atomic claim.
type inflightRegistry struct {
	mu        sync.Mutex
	cond      *sync.Cond
	total     int
	perTenant map[int64]int
}

func newInflightRegistry() *inflightRegistry {
	r := &inflightRegistry{perTenant: make(map[int64]int)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Add records the start of a job for the given installation.
func (r *inflightRegistry) Add(installationID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.perTenant[installationID]++
}

// Done records the completion of a job for the given installation and wakes
// any drain waiters when the registry empties.
func (r *inflightRegistry) Done(installationID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total--
	if n := r.perTenant[installationID] - 1; n > 0 {
		r.perTenant[installationID] = n
	} else {
		delete(r.perTenant, installationID)
	}
	if r.total == 0 {
		r.cond.Broadcast()
	}
}

// Total returns the number of jobs currently in flight in this process.
func (r *inflightRegistry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// AtCapacity returns the installations whose in-flight count has reached the
// per-tenant ceiling. The slice is recomputed every tick, so an installation
// drops out of the exclusion set as soon as its job finishes.
func (r *inflightRegistry) AtCapacity(perTenantLimit int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var excluded []int64
	for installation, count := range r.perTenant {
		if count >= perTenantLimit {
			excluded = append(excluded, installation)
		}
	}
	return excluded
}

// Wait blocks until no jobs are in flight.
func (r *inflightRegistry) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.total > 0 {
		r.cond.Wait()
	}
}
