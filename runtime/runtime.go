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

// Package runtime is the library of dynamic checks the compiler splices
// calls to around every potentially-unsafe operation in a rewritten
// program: member access, indexing, assignment, arithmetic, boolean
// contexts, call arity and the require() whitelist. Every check either
// returns a value or panics with a *goja.Object carrying a human-readable
// message, which goja turns into a catchable JavaScript exception at the
// point the spliced call was made.
package runtime

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"
)

// Scheduler is the subset of the cooperative scheduler (see package
// scheduler) the runtime library needs: a suspension point that
// higher-order sequence operations call between elements so an
// infinite-looping callback can still be cancelled by a test timeout.
type Scheduler interface {
	Yield() error
}

// Options configures how check failures are surfaced.
type Options struct {
	// Silent logs check failures instead of raising them, returning a
	// best-effort sentinel so the program keeps running. Used to measure
	// how many programs would have been rejected without actually
	// rejecting them.
	Silent bool
	Logger logrus.FieldLogger
}

// Library is bound into a running program's global environment under the
// name "rts"; the rewriter emits calls like "rts.dot(o, \"x\", 12)" for
// every dynamic check a rewritten program needs.
type Library struct {
	rt    *goja.Runtime
	sched Scheduler
	opts  Options
}

// New builds a Library bound to rt. sched may be nil, in which case
// sequence operations do not yield (used by package-level unit tests that
// don't need cooperative cancellation).
func New(rt *goja.Runtime, sched Scheduler, opts Options) *Library {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Library{rt: rt, sched: sched, opts: opts}
}

// fail raises (or, in silent mode, logs) a runtime check failure with
// message, and returns the sentinel value the caller should use to keep
// going when silent.
func (l *Library) fail(sentinel goja.Value, format string, args ...interface{}) goja.Value {
	msg := fmt.Sprintf(format, args...)
	if l.opts.Silent {
		l.opts.Logger.WithField("check", "runtime").Warn(msg)
		return sentinel
	}
	panic(l.rt.NewTypeError(msg))
}

// bug raises the distinguished internal-invariant-violation message; it is
// never expected to fire from a correctly rewritten program and is not
// subject to silent mode.
func (l *Library) bug(detail string) {
	panic(l.rt.NewTypeError("Potential bug in ElementaryJS: " + detail))
}

// Install creates the object the sandbox binds as the global "rts" that
// rewritten programs call into, with every C4 operation as a method, plus
// the Array constructor stub.
func (l *Library) Install() *goja.Object {
	rts := l.rt.NewObject()
	must := func(name string, fn func(goja.FunctionCall) goja.Value) {
		if err := rts.Set(name, l.rt.ToValue(fn)); err != nil {
			l.bug("could not install rts." + name)
		}
	}

	must("dot", l.dot)
	must("arrayBoundsCheck", l.arrayBoundsCheck)
	must("checkMember", l.checkMember)
	must("checkArray", l.checkArray)
	must("checkUpdateOperand", l.checkUpdateOperand)
	must("updateOnlyNumbers", l.updateOnlyNumbers)
	must("applyNumOp", l.applyNumOp)
	must("applyNumOrStringOp", l.applyNumOrStringOp)
	must("checkIfBoolean", l.checkIfBoolean)
	must("arityCheck", l.arityCheck)
	must("checkCall", l.checkCall)
	must("seq", l.seq)

	if err := rts.Set("Array", l.arrayStub()); err != nil {
		l.bug("could not install rts.Array")
	}

	return rts
}

// BindRequire installs require(name) as a global, resolving names against
// the already-evaluated, frozen whitelist modules.
func BindRequire(rt *goja.Runtime, global *goja.Object, modules map[string]goja.Value) error {
	return global.Set("require", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		v, ok := modules[name]
		if !ok {
			panic(rt.NewTypeError(fmt.Sprintf("'%s' not found.", name)))
		}
		return v
	}))
}

func repr(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}

// isObjectShaped matches dot()'s contract: objects, strings, booleans,
// numbers and callables may all be the receiver of a member read.
func isObjectShaped(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	if _, ok := v.(*goja.Object); ok {
		return true
	}
	return isNumber(v) || isString(v) || isBoolean(v)
}

func isNumber(v goja.Value) bool {
	if v == nil {
		return false
	}
	switch v.Export().(type) {
	case int64, float64, int, int32:
		return true
	default:
		return false
	}
}

func isString(v goja.Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.Export().(string)
	return ok
}

func isBoolean(v goja.Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.Export().(bool)
	return ok
}
