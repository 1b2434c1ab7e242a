package checksum

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

const unknown = -1

// Tracker counts the checksum tasks of one chunking pass and wakes
// the waiter once the number of completed tasks reaches the expected
// total.  Completion and SetExpected may happen in either order.
type Tracker struct {
	completed *atomic.Int64
	expected  *atomic.Int64
	done      chan struct{}
	once      sync.Once
	sem       *semaphore.Weighted
}

// NewTracker returns a Tracker that runs at most workers tasks at a
// time.  workers < 1 means runtime.NumCPU().
func NewTracker(workers int) *Tracker {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Tracker{
		completed: atomic.NewInt64(0),
		expected:  atomic.NewInt64(unknown),
		done:      make(chan struct{}),
		sem:       semaphore.NewWeighted(int64(workers)),
	}
}

// Go runs fn in its own goroutine and marks it done when fn returns.
// Go blocks while all worker slots are busy.
func (tr *Tracker) Go(ctx context.Context, fn func()) (err error) {
	err = tr.sem.Acquire(ctx, 1)
	if err != nil {
		return errors.Wrap(err, "waiting for a checksum worker")
	}
	go func() {
		defer tr.sem.Release(1)
		fn()
		tr.Done()
	}()
	return
}

// Done records the completion of one task.
func (tr *Tracker) Done() {
	tr.completed.Inc()
	tr.check()
}

// SetExpected records the total number of tasks.  It may be called
// only once.
func (tr *Tracker) SetExpected(n int64) {
	Assert(n >= 0, "negative expected count %d", n)
	ok := tr.expected.CompareAndSwap(unknown, n)
	Assert(ok, "expected count already set to %d", tr.expected.Load())
	tr.check()
}

// Completed returns the number of tasks done so far.
func (tr *Tracker) Completed() int64 {
	return tr.completed.Load()
}

// Finished reports whether every expected task is done.
func (tr *Tracker) Finished() bool {
	select {
	case <-tr.done:
		return true
	default:
		return false
	}
}

// Wait blocks until every expected task is done or ctx is cancelled.
// A cancelled wait returns ctx's error; results of the tasks must not
// be used in that case.
func (tr *Tracker) Wait(ctx context.Context) error {
	select {
	case <-tr.done:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for checksums (%d done)", tr.completed.Load())
	}
}

func (tr *Tracker) check() {
	exp := tr.expected.Load()
	if exp == unknown {
		return
	}
	if tr.completed.Load() == exp {
		tr.once.Do(func() { close(tr.done) })
	}
}
