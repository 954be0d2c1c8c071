package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

// NoticeError reports an empty result (nothing to export, no matching student...).
// It is not a failure: callers show the notice and stop.
type NoticeError struct {
	Notice string
}

func NewNoticeError(notice string) error {
	return &NoticeError{Notice: notice}
}

func (n NoticeError) Error() string {
	return n.Notice
}

// IsNotice reports whether the cause of err is a NoticeError.
func IsNotice(err error) bool {
	_, ok := errors.Cause(err).(*NoticeError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
