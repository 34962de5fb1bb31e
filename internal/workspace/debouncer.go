package workspace

import (
	"sync"
	"time"
)

// Debouncer keeps at most one deferred task per key. Scheduling a key again
// replaces its task.
//
// A task that lost a race with Cancel or Schedule may still be invoked by
// the scheduler; the callback must Claim its token before acting, and a
// stale token never claims.
type Debouncer struct {
	sched Scheduler

	mu    sync.Mutex
	seq   uint64
	tasks map[int64]debounced
}

type debounced struct {
	token uint64
	timer Timer
}

// NewDebouncer returns a Debouncer that arms its tasks on sched.
func NewDebouncer(sched Scheduler) *Debouncer {
	return &Debouncer{
		sched: sched,
		tasks: make(map[int64]debounced),
	}
}

// Schedule arms fn for key after delay, cancelling the previous task for key.
func (d *Debouncer) Schedule(key int64, delay time.Duration, fn func(token uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.tasks[key]; ok {
		prev.timer.Stop()
	}
	d.seq++
	token := d.seq
	// Schedulers never run fn synchronously, so arming under the lock is safe.
	timer := d.sched.AfterFunc(delay, func() { fn(token) })
	d.tasks[key] = debounced{token: token, timer: timer}
	return token
}

// Claim consumes the task for key if token is still current.
func (d *Debouncer) Claim(key int64, token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.tasks[key]
	if !ok || cur.token != token {
		return false
	}
	delete(d.tasks, key)
	return true
}

// Cancel stops the task for key. It reports whether one was outstanding.
func (d *Debouncer) Cancel(key int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.tasks[key]
	if !ok {
		return false
	}
	cur.timer.Stop()
	delete(d.tasks, key)
	return true
}

// CancelAll stops every outstanding task and returns how many there were.
func (d *Debouncer) CancelAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.tasks)
	for key, cur := range d.tasks {
		cur.timer.Stop()
		delete(d.tasks, key)
	}
	return n
}

// Pending reports whether key has an outstanding task.
func (d *Debouncer) Pending(key int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	return ok
}

// Len returns the number of outstanding tasks.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
