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

// Package compiler implements the static half of ElementaryJS: the error
// accumulator (C1), the definite-assignment tracker (C2), and the AST
// rewriter (C3) that together turn a restricted-dialect source file into
// plain JavaScript text safe to hand to goja, with every potentially-unsafe
// operation wrapped in a runtime check call.
//
// This mirrors the shape of k6's own js/compiler.Compiler - a thin wrapper
// around a single entry point that either returns compiled output or a
// list of diagnostics - but drops that package's Babel/source-map
// transform step entirely: ElementaryJS's target (goja) already executes
// the ES2015+ surface the dialect allows natively, so there's no older
// runtime to transpile down to.
package compiler

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"
)

// Options configures a Compiler. Silent makes the error accumulator log
// diagnostics instead of collecting them (see NewErrorAccumulator).
type Options struct {
	Silent bool
}

// Compiler turns ElementaryJS source into a goja program, or a list of
// diagnostics if the source violates the dialect's static rules.
type Compiler struct {
	logger logrus.FieldLogger
	opts   Options
}

// New returns a Compiler that logs through logger (falling back to
// logrus's standard logger if nil).
func New(logger logrus.FieldLogger) *Compiler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Compiler{logger: logger}
}

// SetOptions updates the compiler's options for subsequent calls.
func (c *Compiler) SetOptions(opts Options) {
	c.opts = opts
}

// Transform runs the rewriter over src and returns the equivalent plain
// JavaScript text plus any diagnostics. It does not compile that text -
// callers that just need the rewritten source (tests that assert on
// rewriter output) can stop here.
func (c *Compiler) Transform(src, filename string) (string, []Diagnostic, error) {
	errs := NewErrorAccumulator(c.opts.Silent, c.logger)
	out, err := Rewrite(src, filename, errs)
	if err != nil {
		return "", nil, err
	}
	return out, errs.Diagnostics(), nil
}

// Compile transforms src and, if no diagnostics were raised, parses the
// result with goja. A non-empty diagnostics slice means compilation
// failed; Program is nil in that case.
func (c *Compiler) Compile(src, filename string) (*goja.Program, []Diagnostic, error) {
	out, diags, err := c.Transform(src, filename)
	if err != nil {
		return nil, nil, err
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}
	prog, err := goja.Compile(filename, out, true)
	if err != nil {
		return nil, nil, fmt.Errorf("elementaryjs: internal rewriter produced invalid JavaScript: %w", err)
	}
	return prog, nil, nil
}
