package goctx

import (
	"time"

	"github.com/yusing/goctx/mockable"
)

// A timerCtx is a cancelCtx with a deadline and an owned timer. Its
// cancel stops the timer so it can never fire a late, spurious
// cancellation after the node is finalized for another reason.
type timerCtx struct {
	cancelCtx
	deadline time.Time

	timer *time.Timer // protected by cancelCtx.mu
}

// WithDeadline returns a copy of parent with its deadline adjusted to be
// no later than d. If the parent's deadline is already earlier than or
// equal to d, the new deadline is redundant (the ancestor's timer will
// cancel this subtree first regardless) and the result is equivalent to
// WithCancel(parent), with no timer scheduled.
//
// The returned context's Done channel is closed when the deadline
// expires, when the returned cancel function is called, or when the
// parent context's Done channel is closed, whichever happens first.
func WithDeadline(parent Context, d time.Time) (Context, CancelFunc) {
	if parent == nil {
		panic("goctx: cannot create context from nil parent")
	}
	if cur, ok := parent.Deadline(); ok && !cur.After(d) {
		return WithCancel(parent)
	}
	c := &timerCtx{
		cancelCtx: cancelCtx{parent: parent},
		deadline:  d,
	}
	dur := d.Sub(mockable.TimeNow())
	if dur <= 0 {
		// deadline already passed; self-cancel without ever linking
		// into the ancestor registry, so there is nothing to drain
		c.cancel(false, DeadlineExceeded, nil)
		return c, func() { c.cancel(false, Canceled, nil) }
	}
	propagateCancel(parent, c)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.timer = time.AfterFunc(dur, func() {
			c.cancel(true, DeadlineExceeded, nil)
		})
	}
	return c, func() { c.cancel(true, Canceled, nil) }
}

// WithTimeout returns WithDeadline(parent, now+timeout).
//
// Canceling this context releases resources associated with it, so code
// should call cancel as soon as the operations running in this Context
// complete.
func WithTimeout(parent Context, timeout time.Duration) (Context, CancelFunc) {
	return WithDeadline(parent, mockable.TimeNow().Add(timeout))
}

func (c *timerCtx) Deadline() (deadline time.Time, ok bool) {
	return c.deadline, true
}

func (c *timerCtx) cancel(removeFromParent bool, err, cause error) {
	// detachment happens once, at this layer, keyed by the timerCtx
	// itself rather than the embedded cancelCtx
	c.cancelCtx.cancel(false, err, cause)
	if removeFromParent {
		removeChild(c.cancelCtx.parent, c)
	}
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

func (c *timerCtx) String() string {
	return contextName(c.cancelCtx.parent) + ".WithDeadline(" +
		c.deadline.String() + " [" + time.Until(c.deadline).String() + "])"
}
