package task

import (
	"time"

	"github.com/yusing/goctx"
)

// ctxWithValues overlays a task's value store onto its context.
// Cancellation and deadline behavior delegate to the wrapped context.
type ctxWithValues struct {
	task *Task
}

var (
	_ goctx.Context   = ctxWithValues{}
	_ goctx.Unwrapper = ctxWithValues{}
)

// SetValue associates key with value on the task. Subtasks created
// afterwards (and contexts already retrieved with Context) observe it.
func (t *Task) SetValue(key, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.values == nil {
		t.values = make(map[any]any)
	}
	t.values[key] = value
}

// GetValue returns the value associated with key on this task or any of
// its ancestors, or nil.
func (t *Task) GetValue(key any) any {
	return t.Context().Value(key)
}

func (t *Task) localValue(key any) any {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.values == nil {
		return nil
	}
	return t.values[key]
}

func (w ctxWithValues) Value(key any) any {
	if value := w.task.localValue(key); value != nil {
		return value
	}
	return w.task.ctx.Value(key)
}

func (w ctxWithValues) Deadline() (time.Time, bool) {
	return w.task.ctx.Deadline()
}

func (w ctxWithValues) Done() <-chan struct{} {
	return w.task.ctx.Done()
}

func (w ctxWithValues) Err() error {
	return w.task.ctx.Err()
}

// Unwrap exposes the wrapped context so contexts derived from a task
// link into the cancellation registry instead of each spawning a
// watcher goroutine.
func (w ctxWithValues) Unwrap() goctx.Context {
	return w.task.ctx
}
