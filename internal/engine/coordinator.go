package engine

import (
	"sync/atomic"
)

// Coordinator tracks the global order count and the one-way stop flag.
// All methods are safe for concurrent use.
type Coordinator struct {
	quota     uint64
	completed atomic.Uint64
	stopped   atomic.Bool
	done      chan struct{}
}

// NewCoordinator creates a coordinator that stops once quota orders are recorded.
func NewCoordinator(quota uint64) *Coordinator {
	return &Coordinator{quota: quota, done: make(chan struct{})}
}

// RecordOrder counts one emitted order and returns the new total.
func (c *Coordinator) RecordOrder() uint64 {
	return c.completed.Add(1)
}

// QuotaReached reports whether count meets the quota.
func (c *Coordinator) QuotaReached(count uint64) bool {
	return count >= c.quota
}

// RequestStop sets the stop flag. Only the first call returns true.
func (c *Coordinator) RequestStop() bool {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.done)
		return true
	}
	return false
}

// ShouldStop reports whether stop has been requested.
func (c *Coordinator) ShouldStop() bool {
	return c.stopped.Load()
}

// Completed returns the number of orders recorded so far.
func (c *Coordinator) Completed() uint64 {
	return c.completed.Load()
}

// Quota returns the target order count.
func (c *Coordinator) Quota() uint64 {
	return c.quota
}

// Done is closed when stop is requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
