package goctx

import "errors"

// Canceled is the error returned by [Context.Err] when the context is
// canceled for a reason other than its deadline passing.
var Canceled = errors.New("context canceled")

// DeadlineExceeded is the error returned by [Context.Err] when the
// context is canceled due to its deadline passing.
var DeadlineExceeded error = deadlineExceededError{}

type deadlineExceededError struct{}

func (deadlineExceededError) Error() string { return "context deadline exceeded" }

// Timeout and Temporary make DeadlineExceeded satisfy net.Error style
// checks without importing net.
func (deadlineExceededError) Timeout() bool   { return true }
func (deadlineExceededError) Temporary() bool { return true }
