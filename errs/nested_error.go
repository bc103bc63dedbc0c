package gperr

import (
	"errors"
	"fmt"
	"strings"
)

// nestedError is an error with a list of sub-errors, rendered as an
// indented bullet tree.
//
//nolint:recvcheck
type nestedError struct {
	Err    error   `json:"err"`
	Extras []error `json:"extras"`
}

func (err nestedError) Subject(subject string) Error {
	err.Err = PrependSubject(subject, err.Err)
	return &err
}

func (err *nestedError) Subjectf(format string, args ...any) Error {
	if len(args) > 0 {
		return err.Subject(fmt.Sprintf(format, args...))
	}
	return err.Subject(format)
}

func (err nestedError) With(extra error) Error {
	if extra != nil {
		err.Extras = append(err.Extras, extra)
	}
	return &err
}

func (err nestedError) Withf(format string, args ...any) Error {
	err.Extras = append(err.Extras, Errorf(format, args...))
	return &err
}

func (err *nestedError) Unwrap() []error {
	if err.Err == nil {
		if len(err.Extras) == 0 {
			return nil
		}
		return err.Extras
	}
	return append([]error{err.Err}, err.Extras...)
}

func (err *nestedError) Is(other error) bool {
	if errors.Is(err.Err, other) {
		return true
	}
	for _, extra := range err.Extras {
		if errors.Is(extra, other) {
			return true
		}
	}
	return false
}

func (err *nestedError) Error() string {
	var sb strings.Builder
	writeIndented(&sb, err, 0)
	return sb.String()
}

func writeIndented(sb *strings.Builder, err error, level int) {
	//nolint:errorlint
	if err, ok := err.(*nestedError); ok {
		writeLine(sb, errMessage(err.Err), level)
		for _, extra := range err.Extras {
			writeIndented(sb, extra, level+1)
		}
		return
	}
	writeLine(sb, err.Error(), level)
}

func writeLine(sb *strings.Builder, line string, level int) {
	for range level {
		sb.WriteString("  ")
	}
	if level > 0 {
		sb.WriteString("• ")
	}
	sb.WriteString(line)
	sb.WriteByte('\n')
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
