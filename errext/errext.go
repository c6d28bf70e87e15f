/*
 *
 * ElementaryJS - a safety-restricted dialect for teaching introductory programming
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package errext contains interfaces and helpers for attaching extra,
// CLI-relevant information to Go errors: a user-facing hint, a process exit
// code, and (for errors that originate from a running elementaryjs program)
// a formatted stack trace and an abort reason.
package errext

import (
	"errors"
	"fmt"

	"go.k6.io/elementaryjs/errext/exitcodes"
)

// HasHint is implemented by errors that carry a short, user-facing
// suggestion for how to fix the underlying problem.
type HasHint interface {
	error
	Hint() string
}

// HasExitCode is implemented by errors that specify which process exit
// code should be used when the error reaches the top of the CLI.
type HasExitCode interface {
	error
	ExitCode() exitcodes.ExitCode
}

// AbortReason identifies why a running program was aborted, distinguishing
// e.g. a user-requested stop from a test timeout.
type AbortReason uint8

// Recognized abort reasons.
const (
	AbortedByUser AbortReason = iota + 1
	AbortedByTimeout
	AbortedByScriptError
)

// Exception is implemented by errors that originate from executing a
// rewritten ElementaryJS program and so carry a formatted stack trace in
// addition to the plain error message.
type Exception interface {
	error
	StackTrace() string
	AbortReason() AbortReason
}

type hintError struct {
	error
	hint string
}

func (e hintError) Hint() string {
	return e.hint
}

func (e hintError) Unwrap() error {
	return e.error
}

// WithHint wraps err so that it also satisfies HasHint. If err already
// carries a hint, the new hint is prefixed and the old one parenthesized,
// e.g. "better hint (older hint)", so hints accumulate as an error is
// wrapped repeatedly while climbing back up the call stack.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	var existing HasHint
	if errors.As(err, &existing) {
		hint = fmt.Sprintf("%s (%s)", hint, existing.Hint())
	}
	return hintError{error: err, hint: hint}
}

type exitCodeError struct {
	error
	exitCode exitcodes.ExitCode
}

func (e exitCodeError) ExitCode() exitcodes.ExitCode {
	return e.exitCode
}

func (e exitCodeError) Unwrap() error {
	return e.error
}

// WithExitCodeIfNone wraps err so that it satisfies HasExitCode, but only
// if it doesn't already carry a more specific exit code - the innermost
// (first-assigned) exit code always wins.
func WithExitCodeIfNone(err error, exitCode exitcodes.ExitCode) error {
	if err == nil {
		return nil
	}
	var existing HasExitCode
	if errors.As(err, &existing) {
		return err
	}
	return exitCodeError{error: err, exitCode: exitCode}
}
