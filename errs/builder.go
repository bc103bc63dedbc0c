package gperr

import (
	"sync"
)

// Builder accumulates errors and renders them as one. Safe for
// concurrent use. The zero value is ready to use and has no subject.
type Builder struct {
	about string
	mu    sync.RWMutex
	errs  []error
}

// NewBuilder creates a new Builder.
//
// If context is not provided, the Builder will not have a subject
// and a single added error is returned as-is from Error.
func NewBuilder(context ...string) Builder {
	if len(context) == 0 {
		return Builder{}
	}
	return Builder{about: context[0]}
}

func (b *Builder) About() string {
	return b.about
}

func (b *Builder) HasError() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.errs) > 0
}

func (b *Builder) Error() Error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.errs) == 0 {
		return nil
	}
	if len(b.errs) == 1 && b.about == "" {
		return Wrap(b.errs[0])
	}
	return &nestedError{Err: New(b.about), Extras: b.errs}
}

func (b *Builder) String() string {
	err := b.Error()
	if err == nil {
		return ""
	}
	return err.Error()
}

// Add adds an error to the Builder.
//
// Adding nil is a no-op.
func (b *Builder) Add(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
}

func (b *Builder) Adds(err string) {
	b.Add(New(err))
}

func (b *Builder) Addf(format string, args ...any) {
	b.Add(Errorf(format, args...))
}

func (b *Builder) AddRange(errs ...error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, err := range errs {
		if err != nil {
			b.errs = append(b.errs, err)
		}
	}
}

func (b *Builder) ForEach(fn func(error)) {
	b.mu.RLock()
	errs := b.errs
	b.mu.RUnlock()
	for _, err := range errs {
		fn(err)
	}
}
