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

// Package elementaryjs is the compile pipeline (C8): it wires the static
// compiler (C1-C3), the dynamic check library (C4), the cooperative
// scheduler (C5), the test harness (C6) and the sandbox binder (C7) into
// the single Compile entry point a host embedder calls.
package elementaryjs

import (
	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"go.k6.io/elementaryjs/compiler"
	"go.k6.io/elementaryjs/runtime"
	"go.k6.io/elementaryjs/sandbox"
	"go.k6.io/elementaryjs/scheduler"
	"go.k6.io/elementaryjs/testharness"
)

// Options configures one Compile call, mirroring §6's opts.* fields.
type Options struct {
	// ConsoleLog receives every console.log call's already-joined line.
	ConsoleLog func(line string)
	// Version, if set, is invoked by the runtime-visible version() hook a
	// host IDE can use to print a build identifier into student output.
	Version func()
	// WhitelistCode maps a module name to source text; require(name)
	// resolves only names present here, each evaluated once per Compile
	// and frozen before the student program runs.
	WhitelistCode map[string]string
	// EJSOff puts both the static compiler and the runtime check library in
	// silent mode: diagnostics and check failures are logged instead of
	// raised, and the program runs to completion regardless.
	EJSOff bool
	// Logger receives every silent-mode diagnostic and check failure.
	Logger logrus.FieldLogger
}

// Result is the { type, value, stack } payload run/eval produce.
type Result = scheduler.Result

// CompileError is returned when the static compiler (C1-C3) rejected the
// program; Errors mirrors §6's CompileError.errors.
type CompileError struct {
	Errors []compiler.Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Errors) == 0 {
		return "elementaryjs: compile failed"
	}
	return e.Errors[0].String()
}

// CompileOK is the live handle a host embedder drives a compiled program
// through: Run starts it from the top, Eval runs a further snippet against
// the same global environment, Stop requests cancellation, and G is the
// live global object.
type CompileOK struct {
	G *goja.Object

	sched   *scheduler.Scheduler
	compile *compiler.Compiler
	prog    *goja.Program
}

// Run executes the compiled program from the top and invokes onDone with
// its outcome once it (or the first uncaught exception) settles.
func (c *CompileOK) Run(onDone func(Result)) {
	onDone(c.sched.Run(c.prog))
}

// Eval compiles snippet through the same rewriter and global environment
// and runs it, invoking onDone with its outcome. A static-error diagnostic
// list collapses into a single exception result per §6/§7.
func (c *CompileOK) Eval(snippet string, onDone func(Result)) {
	result := c.sched.Eval(snippet, func(s string) (*goja.Program, []string, error) {
		prog, diags, err := c.compile.Compile(s, "eval")
		if err != nil {
			return nil, nil, err
		}
		if len(diags) > 0 {
			msgs := make([]string, len(diags))
			for i, d := range diags {
				msgs[i] = d.String()
			}
			return nil, msgs, nil
		}
		return prog, nil, nil
	})
	onDone(result)
}

// Stop requests the running program halt at its next suspension point;
// onStopped is invoked once it has.
func (c *CompileOK) Stop(onStopped func()) {
	c.sched.Stop(onStopped)
}

// Compile runs the full C8 pipeline over code: static compilation (C1-C3),
// then - if no diagnostics were raised - building the scheduler, the
// runtime check library, the test harness, and the sandbox binder around a
// fresh goja.Runtime, and finally parsing the rewritten program so it's
// ready for CompileOK.Run.
//
// ElementaryJS's target runtime (goja) natively executes the ES2015+
// surface this dialect allows, so step 3 of the pipeline ("apply
// downstream lowering [for] arrow-function and class lowering") has no
// work to do here: there is no older engine to lower for.
func Compile(code string, opts Options) (*CompileOK, *CompileError) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	comp := compiler.New(opts.Logger)
	comp.SetOptions(compiler.Options{Silent: opts.EJSOff})

	prog, diags, err := comp.Compile(code, "main")
	if err != nil {
		return nil, &CompileError{Errors: []compiler.Diagnostic{{Line: 0, Message: err.Error()}}}
	}
	if len(diags) > 0 {
		return nil, &CompileError{Errors: diags}
	}

	rt := goja.New()
	sched := scheduler.New(rt)

	lib := runtime.New(rt, sched, runtime.Options{Silent: opts.EJSOff, Logger: opts.Logger})

	modules := map[string]goja.Value{}
	for name, src := range opts.WhitelistCode {
		modPgm, mErr := goja.Compile(name, src, true)
		if mErr != nil {
			panic(rt.NewTypeError("Potential bug in ElementaryJS: whitelisted module " + name + " failed to compile"))
		}
		v, rErr := rt.RunProgram(modPgm)
		if rErr != nil {
			panic(rt.NewTypeError("Potential bug in ElementaryJS: whitelisted module " + name + " failed to run"))
		}
		modules[name] = v
	}

	sandbox.New(rt, lib, sandbox.ConsoleLog(opts.ConsoleLog), modules)

	harness := testharness.New(rt, sched)
	harness.Install(rt.GlobalObject())

	if opts.Version != nil {
		_ = rt.GlobalObject().Set("version", rt.ToValue(func(goja.FunctionCall) goja.Value {
			opts.Version()
			return goja.Undefined()
		}))
	}

	return &CompileOK{G: rt.GlobalObject(), sched: sched, compile: comp, prog: prog}, nil
}
