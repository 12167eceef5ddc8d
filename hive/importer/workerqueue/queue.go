// Package workerqueue is a bounded registry of reachable worker nodes with
// blocking, cancellable acquisition. Release is not idempotent: every call
// puts the node back into the pool.
package workerqueue

import (
	"context"

	"github.com/shardloader/hiveimport/hive"
)

// Queue hands out hive.Node worker handles to callers, blocking when none
// are free. Every successful Acquire must be paired with exactly one
// Release.
type Queue struct {
	free chan hive.Node
}

// New returns a Queue seeded with the given workers.
func New(workers []hive.Node) *Queue {
	q := &Queue{
		free: make(chan hive.Node, len(workers)),
	}
	for _, w := range workers {
		q.free <- w
	}
	return q
}

// Acquire blocks until a worker is available or ctx is done. On
// cancellation it returns ctx.Err() and holds no worker.
func (q *Queue) Acquire(ctx context.Context) (hive.Node, error) {
	select {
	case w := <-q.free:
		return w, nil
	case <-ctx.Done():
		return hive.Node{}, ctx.Err()
	}
}

// Release returns a worker to the pool. It does not track checkouts, so a
// second Release of the same checkout adds the node to the pool again (or
// blocks if the pool is already full); call it exactly once per successful
// Acquire.
func (q *Queue) Release(w hive.Node) {
	q.free <- w
}

// Len returns the number of workers currently free. Intended for tests and
// metrics, not for synchronization.
func (q *Queue) Len() int {
	return len(q.free)
}
