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

package runtime

import (
	"github.com/dop251/goja"
)

// sequenceMarker is set on every array-like object elementaryjs produces
// (array literals, Array.create, split, JSON.parse results, ...) so the
// runtime can tell a "scheduler-aware sequence" apart from an arbitrary
// object and refuse indexing/member operations that don't apply to it.
const sequenceMarker = "__ejs_sequence__"

func isSequence(obj *goja.Object) bool {
	if obj == nil {
		return false
	}
	return obj.Get(sequenceMarker) != nil && !goja.IsUndefined(obj.Get(sequenceMarker))
}

func sequenceLength(obj *goja.Object) int {
	return int(obj.Get("length").ToInteger())
}

// wrapSequence builds a scheduler-aware array-like object out of vals: a
// plain JS array (so indexing, length and JSON.stringify all behave
// normally) with filter/map/reduce/forEach reimplemented to yield to the
// scheduler between elements, so a callback that loops forever inside one
// of them can still be cancelled by a test timeout.
func (l *Library) wrapSequence(vals []goja.Value) *goja.Object {
	arr := l.rt.NewArray(vals...)
	_ = arr.DefineDataProperty(sequenceMarker, l.rt.ToValue(true), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	_ = arr.Set("forEach", l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			l.bug("forEach called without a function")
		}
		vals := arrayLikeValues(arr)
		for i, v := range vals {
			if l.yield() != nil {
				return goja.Undefined()
			}
			if _, err := fn(goja.Undefined(), v, l.rt.ToValue(i), arr); err != nil {
				panic(err)
			}
		}
		return goja.Undefined()
	}))

	_ = arr.Set("map", l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			l.bug("map called without a function")
		}
		vals := arrayLikeValues(arr)
		out := make([]goja.Value, len(vals))
		for i, v := range vals {
			if l.yield() != nil {
				return l.wrapSequence(nil)
			}
			r, err := fn(goja.Undefined(), v, l.rt.ToValue(i), arr)
			if err != nil {
				panic(err)
			}
			out[i] = r
		}
		return l.wrapSequence(out)
	}))

	_ = arr.Set("filter", l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			l.bug("filter called without a function")
		}
		vals := arrayLikeValues(arr)
		var out []goja.Value
		for i, v := range vals {
			if l.yield() != nil {
				return l.wrapSequence(nil)
			}
			r, err := fn(goja.Undefined(), v, l.rt.ToValue(i), arr)
			if err != nil {
				panic(err)
			}
			if r.ToBoolean() {
				out = append(out, v)
			}
		}
		return l.wrapSequence(out)
	}))

	_ = arr.Set("reduce", l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			l.bug("reduce called without a function")
		}
		vals := arrayLikeValues(arr)
		var acc goja.Value
		start := 0
		if len(call.Arguments) > 1 {
			acc = call.Argument(1)
		} else {
			if len(vals) == 0 {
				panic(l.rt.NewTypeError("Reduce of empty array with no initial value"))
			}
			acc = vals[0]
			start = 1
		}
		for i := start; i < len(vals); i++ {
			if l.yield() != nil {
				return acc
			}
			r, err := fn(goja.Undefined(), acc, vals[i], l.rt.ToValue(i), arr)
			if err != nil {
				panic(err)
			}
			acc = r
		}
		return acc
	}))

	return arr
}

// WrapSequenceForJSON exposes wrapSequence to other packages (JSON.parse's
// array results must become scheduler-aware sequences too, per §6).
func (l *Library) WrapSequenceForJSON(vals []goja.Value) *goja.Object {
	return l.wrapSequence(vals)
}

// seq backs the rewriter's splice for every array literal: "[1, 2, 3]"
// becomes "rts.seq([1, 2, 3])" so literal arrays get the same scheduler-aware
// forEach/map/filter/reduce as Array.create and split() results.
func (l *Library) seq(call goja.FunctionCall) goja.Value {
	arg, ok := call.Argument(0).(*goja.Object)
	if !ok {
		l.bug("seq called with a non-array argument")
	}
	return l.wrapSequence(arrayLikeValues(arg))
}

func (l *Library) yield() error {
	if l.sched == nil {
		return nil
	}
	return l.sched.Yield()
}

// arrayStub implements the "Array" binding a program sees: it's a callable
// whose invocation (directly, or via "new Array(...)") always fails,
// steering students toward Array.create, with a "create" method that
// builds a sequence of length n filled with v.
func (l *Library) arrayStub() goja.Value {
	stub := l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		return l.fail(goja.Undefined(), "Use Array.create instead of the array constructor.")
	})
	obj := stub.ToObject(l.rt)
	_ = obj.Set("create", l.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		n := call.Argument(0)
		v := call.Argument(1)
		if !isNumber(n) || n.ToInteger() < 0 {
			return l.fail(goja.Undefined(), "Array.create requires a positive integer length.")
		}
		length := int(n.ToInteger())
		vals := make([]goja.Value, length)
		for i := range vals {
			vals[i] = v
		}
		return l.wrapSequence(vals)
	}))
	return stub
}
