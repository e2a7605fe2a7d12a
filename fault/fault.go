package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	UnknownCode   Code = "unknown"
	NotFoundCode  Code = "not_found"
	ClosedCode    Code = "closed"
	BadFilterCode Code = "bad_filter"
	BadInputCode  Code = "bad_input"
)

// Fault is a coded error value. The code tells callers how to react
// (skip the entry, abort, fix the config) without string matching.
type Fault struct {
	code     Code
	message  string
	original error
}

func New(code Code, message string) Fault {
	return Fault{
		code:    code,
		message: message,
	}
}

func (f Fault) WithOriginal(original error) Fault {
	e := f
	e.original = original
	return e
}

func (f Fault) Code() Code {
	return f.code
}

func (f Fault) Message() string {
	return f.message
}

func (f Fault) Original() error {
	return f.original
}

func (f Fault) Unwrap() error {
	return f.original
}

func (f Fault) Error() string {
	if f.original != nil {
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

// Has reports whether err is (or wraps) a Fault with the given code.
func Has(err error, code Code) bool {
	var f Fault
	if errors.As(err, &f) {
		return f.Code() == code
	}
	return false
}
