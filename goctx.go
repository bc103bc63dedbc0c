// Package goctx implements cancellation and deadline propagation for
// tree-structured concurrent work.
//
// A Context is a handle passed from a parent unit of work to its children.
// It carries a cancellation signal that reaches every descendant once raised
// by any ancestor, an optional deadline that raises cancellation
// automatically, and an immutable chain of key/value pairs for small amounts
// of request-scoped metadata.
//
// Contexts form a tree: each With* constructor wraps a parent and returns a
// new node. Cancellation flows down the tree, value lookup flows up. The
// interface is structurally identical to the standard library's, so values
// of this package's Context satisfy code written against either.
package goctx

import (
	"time"
)

// Context carries a deadline, a cancellation signal, and values across
// API boundaries.
//
// A Context's methods may be called by multiple goroutines simultaneously.
type Context interface {
	// Deadline returns the time when work done on behalf of this context
	// should be canceled. ok is false when no deadline is set.
	Deadline() (deadline time.Time, ok bool)

	// Done returns a channel that's closed when work done on behalf of
	// this context should be canceled. Done may return nil if this
	// context can never be canceled.
	Done() <-chan struct{}

	// Err returns nil until Done is closed, after which it returns
	// Canceled if the context was canceled or DeadlineExceeded if the
	// context's deadline passed.
	Err() error

	// Value returns the value associated with this context for key, or
	// nil if no value is associated with key.
	Value(key any) any
}

// A CancelFunc tells an operation to abandon its work.
// A CancelFunc does not wait for the work to stop.
// A CancelFunc may be called by multiple goroutines simultaneously.
// After the first call, subsequent calls to a CancelFunc do nothing.
type CancelFunc func()

// A CancelCauseFunc behaves like a CancelFunc but additionally records
// cause as the cancellation cause, retrievable with Cause.
// A nil cause is recorded as Canceled.
type CancelCauseFunc func(cause error)

// Unwrapper may be implemented by a third-party Context that wraps a
// Context from this package without changing its cancellation behavior
// (it must delegate Deadline, Done and Err to the wrapped Context).
//
// Implementing it lets child contexts link into the wrapped chain's
// child registry instead of falling back to a watcher goroutine.
type Unwrapper interface {
	Unwrap() Context
}

// backgroundCtx and todoCtx are distinct types so the two process-wide
// roots keep distinct identities and print distinguishably.
type (
	emptyCtx      struct{}
	backgroundCtx struct{ emptyCtx }
	todoCtx       struct{ emptyCtx }
)

func (emptyCtx) Deadline() (deadline time.Time, ok bool) {
	return
}

func (emptyCtx) Done() <-chan struct{} {
	return nil
}

func (emptyCtx) Err() error {
	return nil
}

func (emptyCtx) Value(key any) any {
	return nil
}

func (backgroundCtx) String() string {
	return "goctx.Background"
}

func (todoCtx) String() string {
	return "goctx.TODO"
}

var (
	background = new(backgroundCtx)
	todo       = new(todoCtx)
)

// Background returns a non-nil, empty Context. It is never canceled, has
// no values, and has no deadline. It is typically used by the main
// function, initialization, and tests, and as the top-level root for
// incoming work.
func Background() Context {
	return background
}

// TODO returns a non-nil, empty Context. Code should use TODO when it's
// unclear which Context to use or it is not yet available. Background and
// TODO behave identically but have distinct identities so diagnostics can
// tell which convention a leaf context originated from.
func TODO() Context {
	return todo
}

// closedCh is a reusable already-closed channel for nodes canceled
// before anyone asked for their done channel.
var closedCh = make(chan struct{})

func init() {
	close(closedCh)
}
