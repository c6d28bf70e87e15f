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

package compiler

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Diagnostic is one compile-time error the rewriter or the definite-
// assignment tracker found.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
}

// ErrorAccumulator collects diagnostics across one walk of the program; a
// single call into error() never itself aborts anything; the walker
// decides node by node whether to keep descending.
type ErrorAccumulator struct {
	diagnostics []Diagnostic
	silent      bool
	logger      logrus.FieldLogger
}

// NewErrorAccumulator builds an accumulator. In silent mode, diagnostics
// are logged as they're added rather than being raised at the end of the
// walk.
func NewErrorAccumulator(silent bool, logger logrus.FieldLogger) *ErrorAccumulator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ErrorAccumulator{silent: silent, logger: logger}
}

// Error appends a diagnostic at line for message.
func (e *ErrorAccumulator) Error(line int, message string) {
	d := Diagnostic{Line: line, Message: message}
	if e.silent {
		e.logger.WithField("line", line).Warn(message)
		return
	}
	e.diagnostics = append(e.diagnostics, d)
}

// Empty reports whether no diagnostics were recorded (always true in
// silent mode, since nothing is accumulated there).
func (e *ErrorAccumulator) Empty() bool {
	return len(e.diagnostics) == 0
}

// Diagnostics returns the accumulated diagnostics in the order reported.
func (e *ErrorAccumulator) Diagnostics() []Diagnostic {
	return e.diagnostics
}

// String joins every diagnostic as "Line L: message", one per line - the
// format eval() uses to collapse a diagnostic list into a single exception
// value.
func (e *ErrorAccumulator) String() string {
	lines := make([]string, len(e.diagnostics))
	for i, d := range e.diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
