package goctx

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// A canceler is a node that can be canceled directly: *cancelCtx and
// *timerCtx. Cancelable nodes keep a registry of the cancelable
// descendants that chose them as nearest cancelable ancestor, so a
// cascade reaches them without walking the whole tree.
type canceler interface {
	cancel(removeFromParent bool, err, cause error)
	Done() <-chan struct{}
}

// A cancelCtx can be canceled. When canceled it cancels every registered
// child exactly once.
type cancelCtx struct {
	parent Context

	mu       sync.Mutex
	done     chan struct{}         // lazily created, closed by the first cancel
	children map[canceler]struct{} // drained and set to nil by the first cancel
	err      error                 // set once, first cancel wins
	cause    error                 // set together with err
}

// WithCancel returns a copy of parent with a new Done channel. The
// returned context's Done channel is closed when the returned cancel
// function is called or when the parent context's Done channel is
// closed, whichever happens first.
//
// Canceling this context releases resources associated with it, so code
// should call cancel as soon as the operations running in this Context
// complete.
func WithCancel(parent Context) (Context, CancelFunc) {
	c := newCancelCtx(parent)
	return c, func() { c.cancel(true, Canceled, nil) }
}

// WithCancelCause behaves like [WithCancel] but returns a
// [CancelCauseFunc] instead of a [CancelFunc]. Calling cancel with a
// non-nil error records that error as the cancellation cause, which
// [Cause] then returns for this context and its descendants. The cause
// does not replace the error returned by Err, which stays [Canceled].
func WithCancelCause(parent Context) (Context, CancelCauseFunc) {
	c := newCancelCtx(parent)
	return c, func(cause error) { c.cancel(true, Canceled, cause) }
}

func newCancelCtx(parent Context) *cancelCtx {
	if parent == nil {
		panic("goctx: cannot create context from nil parent")
	}
	c := &cancelCtx{parent: parent}
	propagateCancel(parent, c)
	return c
}

// Cause returns a non-nil error explaining why c was canceled: the cause
// recorded by the first cancellation to reach c's nearest cancelable
// node, or c.Err() when c is not backed by this package's tree. The
// result is nil if c has not been canceled yet.
func Cause(c Context) error {
	if p, ok := parentCancelCtx(c); ok {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.cause
	}
	return c.Err()
}

// propagateCancel links child into parent's cancellation chain so that
// canceling parent cancels child.
func propagateCancel(parent Context, child canceler) {
	done := parent.Done()
	if done == nil {
		// parent can never be canceled; child is only ever canceled
		// explicitly
		return
	}

	select {
	case <-done:
		// parent already canceled; cancel directly instead of
		// registering into a registry that will never be drained
		child.cancel(false, parent.Err(), Cause(parent))
		return
	default:
	}

	if p, ok := parentCancelCtx(parent); ok {
		p.mu.Lock()
		if p.err != nil {
			// lost the race with an in-flight cancellation
			err, cause := p.err, p.cause
			p.mu.Unlock()
			child.cancel(false, err, cause)
			return
		}
		if p.children == nil {
			p.children = make(map[canceler]struct{})
		}
		p.children[child] = struct{}{}
		p.mu.Unlock()
		return
	}

	// parent is a foreign Context with no registry to link into;
	// watch both done channels and stop at whichever fires first
	go func() {
		select {
		case <-parent.Done():
			child.cancel(false, parent.Err(), Cause(parent))
		case <-child.Done():
		}
	}()
}

// parentCancelCtx walks up the parent chain to the nearest cancelable
// node. It matches this package's concrete kinds directly and follows
// [Unwrapper] wrappers; any other Context kind ends the walk, in which
// case propagation falls back to a watcher goroutine.
func parentCancelCtx(parent Context) (*cancelCtx, bool) {
	for {
		switch p := parent.(type) {
		case *cancelCtx:
			return p, true
		case *timerCtx:
			return &p.cancelCtx, true
		case *valueCtx:
			parent = p.parent
		case Unwrapper:
			parent = p.Unwrap()
			if parent == nil {
				return nil, false
			}
		default:
			return nil, false
		}
	}
}

// removeChild detaches child from the registry of the nearest cancelable
// node above parent. Best effort: an absent ancestor or an
// already-drained registry is a no-op.
func removeChild(parent Context, child canceler) {
	p, ok := parentCancelCtx(parent)
	if !ok {
		return
	}
	p.mu.Lock()
	if p.children != nil {
		delete(p.children, child)
	}
	p.mu.Unlock()
}

// cancel closes c.done, records err and cause, and cancels each of c's
// children. Idempotent: only the first call has any effect. If
// removeFromParent is true, c detaches from its nearest cancelable
// ancestor's registry afterwards.
func (c *cancelCtx) cancel(removeFromParent bool, err, cause error) {
	if err == nil {
		panic("goctx: internal error: missing cancel error")
	}
	if cause == nil {
		cause = err
	}

	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	c.cause = cause
	if c.done == nil {
		c.done = closedCh
	} else {
		close(c.done)
	}
	// cascade while holding the lock so a concurrent attach either sees
	// err set or is drained here; children do not detach themselves
	// from a registry that is being cleared wholesale anyway
	for child := range c.children {
		child.cancel(false, err, cause)
	}
	c.children = nil
	c.mu.Unlock()

	if removeFromParent {
		removeChild(c.parent, c)
	}
}

func (c *cancelCtx) Deadline() (deadline time.Time, ok bool) {
	return c.parent.Deadline()
}

func (c *cancelCtx) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		c.done = make(chan struct{})
	}
	return c.done
}

func (c *cancelCtx) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *cancelCtx) Value(key any) any {
	return c.parent.Value(key)
}

func (c *cancelCtx) String() string {
	return contextName(c.parent) + ".WithCancel"
}

func contextName(c Context) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return reflect.TypeOf(c).String()
}
