package cluster

import "sync"

// cleanup runs a teardown function at most once per invocation, whether
// triggered by signal-driven context cancellation, an error return or a
// normal exit.
type cleanup struct {
	once sync.Once
	fn   func()
}

func newCleanup(fn func()) *cleanup {
	return &cleanup{fn: fn}
}

// Run invokes the teardown function; repeated calls are suppressed.
func (c *cleanup) Run() {
	c.once.Do(c.fn)
}
