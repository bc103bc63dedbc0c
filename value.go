package goctx

import (
	"fmt"
	"reflect"
	"time"
)

// A valueCtx carries exactly one key-value pair. It implements Value for
// that key and delegates every other call to its parent.
type valueCtx struct {
	parent   Context
	key, val any
}

// WithValue returns a copy of parent in which the value associated with
// key is val.
//
// Use context values only for request-scoped metadata, not for passing
// optional parameters to functions or for bulk data: each pair is its
// own node and lookup is a linear walk up the chain.
//
// The provided key must be comparable and should not be of type string
// or any other built-in type to avoid collisions between packages using
// this package; define an unexported key type instead.
func WithValue(parent Context, key, val any) Context {
	if parent == nil {
		panic("goctx: cannot create context from nil parent")
	}
	if key == nil {
		panic("goctx: nil key")
	}
	if !reflect.TypeOf(key).Comparable() {
		panic("goctx: key is not comparable")
	}
	return &valueCtx{parent, key, val}
}

func (c *valueCtx) Deadline() (deadline time.Time, ok bool) {
	return c.parent.Deadline()
}

func (c *valueCtx) Done() <-chan struct{} {
	return c.parent.Done()
}

func (c *valueCtx) Err() error {
	return c.parent.Err()
}

// Value walks the chain bottom-up. The nearest enclosing writer of key
// wins; older writers of the same key stay reachable from nodes below
// them in the tree.
func (c *valueCtx) Value(key any) any {
	if c.key == key {
		return c.val
	}
	return c.parent.Value(key)
}

func (c *valueCtx) String() string {
	return contextName(c.parent) + fmt.Sprintf(".WithValue(%v, %v)", c.key, c.val)
}
