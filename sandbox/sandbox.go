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

// Package sandbox builds the frozen global environment a compiled program
// runs against: console.log routed to a host sink, Math and the numeric
// parse helpers, JSON, the Array/Object stubs, and require() resolving only
// whitelisted modules (test()/assert()/summary() are installed separately by
// package testharness). Apart from require, the installed names are
// non-writable, non-configurable globals: under strict mode assigning to one
// fails with goja's own read-only-property TypeError, and reading a name
// that was never defined fails with goja's own ReferenceError; neither error
// carries an ElementaryJS-specific message. Assigning to an undeclared name
// fails as in any strict-mode script; program-level bindings come from
// declarations.
package sandbox

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dop251/goja"

	"go.k6.io/elementaryjs/runtime"
)

// ConsoleLog is the host-supplied sink for console.log output - one call
// per invocation, with each argument rendered as JSON where it can be (so
// strings appear quoted) and the results joined by single spaces.
type ConsoleLog func(line string)

// Binder installs the fixed global environment and enforces the
// read/write interception rules over it.
type Binder struct {
	rt      *goja.Runtime
	library *runtime.Library
	names   map[string]bool // the reserved, frozen binding names
}

// New builds a Binder for rt. consoleLog receives every console.log call;
// modules are the evaluated, already-frozen whitelisted require() targets.
func New(rt *goja.Runtime, library *runtime.Library, consoleLog ConsoleLog, modules map[string]goja.Value) *Binder {
	b := &Binder{rt: rt, library: library, names: map[string]bool{}}
	b.install(consoleLog, modules)
	return b
}

// reserve installs name as a non-writable, non-configurable property of the
// global object: under the "use strict" prologue every compiled program
// runs with, a later "name = ..." throws goja's native read-only-property
// TypeError instead of silently shadowing the binding, and "let name"
// instead fails as a redeclaration - either way the reserved binding can't
// be clobbered.
func (b *Binder) reserve(name string, value interface{}) {
	v := b.rt.ToValue(value)
	if err := b.rt.GlobalObject().DefineDataProperty(name, v, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		panic(b.rt.NewTypeError("Potential bug in ElementaryJS: could not install global " + name))
	}
	b.names[name] = true
}

func (b *Binder) install(consoleLog ConsoleLog, modules map[string]goja.Value) {
	b.reserve("undefined", goja.Undefined())
	b.reserve("Infinity", math.Inf(1))
	b.reserve("NaN", math.NaN())

	console := b.rt.NewObject()
	_ = console.Set("log", b.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = stringify(a)
		}
		line := ""
		for i, p := range parts {
			if i > 0 {
				line += " "
			}
			line += p
		}
		if consoleLog != nil {
			consoleLog(line)
		}
		return goja.Undefined()
	}))
	FreezeObject(b.rt, console)
	b.reserve("console", console)

	b.reserve("parseInt", b.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.rt.ToValue(call.Argument(0).ToInteger())
	}))
	b.reserve("parseFloat", b.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.rt.ToValue(call.Argument(0).ToFloat())
	}))

	mathObj := b.rt.NewObject()
	_ = mathObj.Set("PI", math.Pi)
	_ = mathObj.Set("E", math.E)
	_ = mathObj.Set("abs", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Abs(c.Argument(0).ToFloat())) }))
	_ = mathObj.Set("floor", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Floor(c.Argument(0).ToFloat())) }))
	_ = mathObj.Set("ceil", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Ceil(c.Argument(0).ToFloat())) }))
	_ = mathObj.Set("round", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Round(c.Argument(0).ToFloat())) }))
	_ = mathObj.Set("sqrt", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Sqrt(c.Argument(0).ToFloat())) }))
	_ = mathObj.Set("pow", b.rt.ToValue(func(c goja.FunctionCall) goja.Value {
		return b.rt.ToValue(math.Pow(c.Argument(0).ToFloat(), c.Argument(1).ToFloat()))
	}))
	_ = mathObj.Set("max", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Max(c.Argument(0).ToFloat(), c.Argument(1).ToFloat())) }))
	_ = mathObj.Set("min", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(math.Min(c.Argument(0).ToFloat(), c.Argument(1).ToFloat())) }))
	_ = mathObj.Set("random", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return b.rt.ToValue(pseudoRandom()) }))
	FreezeObject(b.rt, mathObj)
	b.reserve("Math", mathObj)

	objectCtor := b.rt.NewObject()
	_ = objectCtor.Set("keys", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return objectKeys(b.rt, c.Argument(0)) }))
	_ = objectCtor.Set("values", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return objectValues(b.rt, c.Argument(0)) }))
	_ = objectCtor.Set("entries", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return objectEntries(b.rt, c.Argument(0)) }))
	_ = objectCtor.Set("getOwnPropertyNames", b.rt.ToValue(func(c goja.FunctionCall) goja.Value { return objectKeys(b.rt, c.Argument(0)) }))
	_ = objectCtor.Set("freeze", b.rt.ToValue(func(c goja.FunctionCall) goja.Value {
		if obj, ok := c.Argument(0).(*goja.Object); ok {
			FreezeObject(b.rt, obj)
		}
		return c.Argument(0)
	}))
	FreezeObject(b.rt, objectCtor)
	b.reserve("Object", objectCtor)

	jsonObj := b.rt.NewObject()
	_ = jsonObj.Set("stringify", b.rt.ToValue(func(c goja.FunctionCall) goja.Value {
		v, err := json.Marshal(c.Argument(0).Export())
		if err != nil {
			panic(b.rt.NewTypeError(fmt.Sprintf("Could not stringify value: %s", err)))
		}
		return b.rt.ToValue(string(v))
	}))
	_ = jsonObj.Set("parse", b.rt.ToValue(func(c goja.FunctionCall) goja.Value {
		var decoded interface{}
		if err := json.Unmarshal([]byte(c.Argument(0).String()), &decoded); err != nil {
			panic(b.rt.NewTypeError(fmt.Sprintf("Could not parse JSON: %s", err)))
		}
		return jsonToSequences(b.rt, b.library, decoded)
	}))
	FreezeObject(b.rt, jsonObj)
	b.reserve("JSON", jsonObj)

	rts := b.library.Install()
	FreezeObject(b.rt, rts)
	b.reserve("rts", rts)
	// The rewriter replaces every bare reference to "Array" with rts.Array
	// directly, but the name is reserved here too so an unrewritten
	// reference (eval() of hand-written snippets, a rewriter bug) still
	// resolves to the stub instead of falling through to goja's own Array.
	if arrayStub := rts.Get("Array"); arrayStub != nil {
		b.reserve("Array", arrayStub)
	}

	for _, value := range modules {
		if obj, ok := value.(*goja.Object); ok {
			FreezeObject(b.rt, obj)
		}
	}
	if err := runtime.BindRequire(b.rt, b.rt.GlobalObject(), modules); err != nil {
		panic(b.rt.NewTypeError("Potential bug in ElementaryJS: could not install require"))
	}
	b.names["require"] = true
}

// jsonToSequences mirrors JSON.parse's array results as scheduler-aware
// sequences, recursively.
func jsonToSequences(rt *goja.Runtime, lib *runtime.Library, v interface{}) goja.Value {
	switch t := v.(type) {
	case []interface{}:
		vals := make([]goja.Value, len(t))
		for i, e := range t {
			vals[i] = jsonToSequences(rt, lib, e)
		}
		return lib.WrapSequenceForJSON(vals)
	case map[string]interface{}:
		obj := rt.NewObject()
		for k, e := range t {
			_ = obj.Set(k, jsonToSequences(rt, lib, e))
		}
		return obj
	default:
		return rt.ToValue(v)
	}
}

func objectKeys(rt *goja.Runtime, v goja.Value) goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return rt.NewArray()
	}
	keys := obj.Keys()
	vals := make([]goja.Value, len(keys))
	for i, k := range keys {
		vals[i] = rt.ToValue(k)
	}
	return rt.NewArray(vals...)
}

func objectValues(rt *goja.Runtime, v goja.Value) goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return rt.NewArray()
	}
	keys := obj.Keys()
	vals := make([]goja.Value, len(keys))
	for i, k := range keys {
		vals[i] = obj.Get(k)
	}
	return rt.NewArray(vals...)
}

func objectEntries(rt *goja.Runtime, v goja.Value) goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return rt.NewArray()
	}
	keys := obj.Keys()
	vals := make([]goja.Value, len(keys))
	for i, k := range keys {
		vals[i] = rt.NewArray(rt.ToValue(k), obj.Get(k))
	}
	return rt.NewArray(vals...)
}

func stringify(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if b, err := json.Marshal(v.Export()); err == nil {
		return string(b)
	}
	return v.String()
}

// pseudoRandom backs Math.random with a source that doesn't depend on
// wall-clock seeding so a silent-mode comparison run stays reproducible;
// real unpredictability isn't part of this dialect's contract.
var randState uint64 = 0x9e3779b97f4a7c15

func pseudoRandom() float64 {
	randState ^= randState << 13
	randState ^= randState >> 7
	randState ^= randState << 17
	return float64(randState%1_000_000) / 1_000_000
}
