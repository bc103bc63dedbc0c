// Package gperr provides structured errors: errors with subjects,
// nestable sub-errors, and a Builder for aggregating them.
package gperr

import (
	"errors"
	"fmt"
)

type Error interface {
	error

	// Is is a wrapper for errors.Is when there is no sub-error.
	//
	// When there are sub-errors, they will also be checked.
	Is(other error) bool
	// With appends a sub-error to the error.
	With(extra error) Error
	// Withf is a wrapper for With(Errorf(format, args...)).
	Withf(format string, args ...any) Error
	// Subject prepends the given subject with a colon and space to the
	// error message.
	//
	// If there is already a subject in the error message, the subject
	// will be prepended to the existing subject with " > ".
	//
	// Subject empty string is ignored.
	Subject(subject string) Error
	// Subjectf is a wrapper for Subject(fmt.Sprintf(format, args...)).
	Subjectf(format string, args ...any) Error
}

func New(message string) Error {
	if message == "" {
		return nil
	}
	return baseError{errors.New(message)}
}

func Errorf(format string, args ...any) Error {
	return baseError{fmt.Errorf(format, args...)}
}

// Wrap converts err into an Error, returning it unchanged when it
// already is one. Wrap(nil) is nil.
func Wrap(err error) Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(Error); ok {
		return err
	}
	return baseError{err}
}

// baseError is an immutable wrapper around an error.
type baseError struct {
	Err error
}

func (err baseError) Error() string {
	return err.Err.Error()
}

func (err baseError) Unwrap() error {
	return err.Err
}

func (err baseError) Is(other error) bool {
	if other, ok := other.(baseError); ok {
		return errors.Is(err.Err, other.Err)
	}
	return errors.Is(err.Err, other)
}

func (err baseError) With(extra error) Error {
	if extra == nil {
		return err
	}
	return &nestedError{Err: err, Extras: []error{extra}}
}

func (err baseError) Withf(format string, args ...any) Error {
	return err.With(Errorf(format, args...))
}

func (err baseError) Subject(subject string) Error {
	err.Err = PrependSubject(subject, err.Err)
	return err
}

func (err baseError) Subjectf(format string, args ...any) Error {
	if len(args) > 0 {
		return err.Subject(fmt.Sprintf(format, args...))
	}
	return err.Subject(format)
}
