package gperr

import (
	"slices"
	"strings"
)

// withSubject tags an error with one or more subjects, innermost first.
//
//nolint:errname
type withSubject struct {
	Subjects []string
	Err      error
}

const subjectSep = " > "

// PrependSubject prepends subject to err's subject chain. The newest
// subject prints first: "outer > inner: message".
func PrependSubject(subject string, err error) error {
	if err == nil || subject == "" {
		return err
	}
	//nolint:errorlint
	if err, ok := err.(*withSubject); ok {
		return &withSubject{
			Subjects: append(slices.Clone(err.Subjects), subject),
			Err:      err.Err,
		}
	}
	return &withSubject{Subjects: []string{subject}, Err: err}
}

func (err *withSubject) Unwrap() error {
	return err.Err
}

func (err *withSubject) Error() string {
	var sb strings.Builder
	for i := len(err.Subjects) - 1; i >= 0; i-- {
		sb.WriteString(err.Subjects[i])
		if i > 0 {
			sb.WriteString(subjectSep)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(err.Err.Error())
	return sb.String()
}
