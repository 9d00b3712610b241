// Package errext attaches user-facing context to errors without changing
// their identity for errors.Is and errors.As.
package errext

import "errors"

// HasHint is an error carrying a human-readable suggestion on how to fix it.
type HasHint interface {
	error
	Hint() string
}

// WithHint wraps err with hint. A nil err stays nil. When err already has a
// hint, the result reads "new hint (old hint)".
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return withHint{err, hint}
}

type withHint struct {
	error
	hint string
}

func (wh withHint) Unwrap() error {
	return wh.error
}

func (wh withHint) Hint() string {
	hint := wh.hint
	var old HasHint
	if errors.As(wh.error, &old) {
		hint = hint + " (" + old.Hint() + ")"
	}
	return hint
}

var _ HasHint = withHint{}
