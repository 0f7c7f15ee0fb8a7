package domain

import (
	"errors"
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code error) bool {
	for err != nil {
		var ierr *Error
		if !errors.As(err, &ierr) {
			return false
		}
		if ierr.code == code {
			return true
		}
		err = ierr.orig
	}
	return false
}

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")

	// ErrResolution is returned when objects referenced by a route cannot be loaded
	ErrResolution = errors.New("route objects could not be resolved")
	// ErrPostprocessor is returned when one stage of the pipeline fails
	ErrPostprocessor = errors.New("route postprocessor failed")
	// ErrInternal is returned when the resolved set and the route disagree (object missing from the resolved set, bad node index)
	ErrInternal = errors.New("internal consistency violation")
)

var MessageInternalServerError string = "internal server error"
