package main

import (
	"errors"
	"fmt"
)

// errInternal marks internal consistency failures: an instruction kind the
// loop does not know, a bound constant colliding with a namespace binding, or
// a literal without a code generation rule. These are never recovered.
var errInternal = errors.New("internal error")

func internalErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInternal, fmt.Sprintf(format, args...))
}

// evalError is implemented by errors that are recovered at the boundary of a
// single evaluate instruction and reported as that instruction's result.
type evalError interface {
	error
	recoverable()
}

// nameError reports a reference to an identifier without a binding.
type nameError struct {
	name string
}

func (e *nameError) Error() string {
	return fmt.Sprintf("NameError: name '%s' is not defined", e.name)
}

func (e *nameError) recoverable() {}

// recursionError reports an identifier whose binding refers back to itself.
type recursionError struct {
	name string
}

func (e *recursionError) Error() string {
	return fmt.Sprintf("RecursionError: name '%s' is defined in terms of itself", e.name)
}

func (e *recursionError) recoverable() {}

type arithmeticError struct {
	msg string
}

func (e *arithmeticError) Error() string {
	return "ZeroDivisionError: " + e.msg
}

func (e *arithmeticError) recoverable() {}

var errDivisionByZero = &arithmeticError{msg: "division by zero"}

// isRecoverable reports whether err should become a diagnostic result rather
// than abort the run.
func isRecoverable(err error) bool {
	var ee evalError
	return errors.As(err, &ee) && !errors.Is(err, errInternal)
}
