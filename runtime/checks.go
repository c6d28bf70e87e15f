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
	"fmt"

	"github.com/dop251/goja"
)

// dot implements rts.dot(o, name, line): member reads on every object-shaped
// value, with a special case that wraps a string's "split" so the result
// is a scheduler-aware sequence rather than a bare array.
func (l *Library) dot(call goja.FunctionCall) goja.Value {
	o := call.Argument(0)
	name := call.Argument(1).String()

	if !isObjectShaped(o) {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}

	if isString(o) && name == "split" {
		s := o.String()
		return l.rt.ToValue(func(inner goja.FunctionCall) goja.Value {
			sep := inner.Argument(0).String()
			var parts []string
			if goja.IsUndefined(inner.Argument(0)) {
				parts = []string{s}
			} else {
				parts = splitString(s, sep)
			}
			vals := make([]goja.Value, len(parts))
			for i, p := range parts {
				vals[i] = l.rt.ToValue(p)
			}
			return l.wrapSequence(vals)
		})
	}

	obj, isObj := o.(*goja.Object)
	if !isObj {
		// strings/numbers/booleans: only split() and no other own
		// properties are reachable through dot() in this dialect.
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}
	if !hasOwn(obj, name) {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}
	return obj.Get(name)
}

func splitString(s, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	var out []string
	start := 0
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			out = append(out, s[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	out = append(out, s[start:])
	return out
}

func hasOwn(obj *goja.Object, name string) bool {
	for _, k := range obj.Keys() {
		if k == name {
			return true
		}
	}
	return false
}

// arrayBoundsCheck implements rts.arrayBoundsCheck(o, i, line): reads from a
// sequence with bounds checking.
func (l *Library) arrayBoundsCheck(call goja.FunctionCall) goja.Value {
	o := call.Argument(0)
	idx := call.Argument(1)

	obj, ok := o.(*goja.Object)
	if !ok || !isSequence(obj) {
		return l.fail(goja.Undefined(), "Indexing is only allowed on arrays.")
	}
	i := idx.ToInteger()
	length := sequenceLength(obj)
	if i < 0 || i >= int64(length) {
		return l.fail(goja.Undefined(), "Index '%d' is out of array bounds.", i)
	}
	return obj.Get(fmt.Sprintf("%d", i))
}

// checkMember implements rts.checkMember(o, name, v, line): writes to an
// existing own property of a non-sequence object.
func (l *Library) checkMember(call goja.FunctionCall) goja.Value {
	o := call.Argument(0)
	name := call.Argument(1).String()
	v := call.Argument(2)

	obj, ok := o.(*goja.Object)
	if !ok {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}
	if isSequence(obj) {
		l.bug("checkMember called on a sequence; checkArray should have been used")
	}
	if !hasOwn(obj, name) {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}
	if err := obj.Set(name, v); err != nil {
		l.bug("could not set member " + name + ": " + err.Error())
	}
	return v
}

// checkArray implements rts.checkArray(o, i, v, line): writes to an existing
// index of a sequence. Writing "length" directly is refused.
func (l *Library) checkArray(call goja.FunctionCall) goja.Value {
	o := call.Argument(0)
	idx := call.Argument(1)
	v := call.Argument(2)

	obj, ok := o.(*goja.Object)
	if !ok || !isSequence(obj) {
		return l.fail(goja.Undefined(), "Indexing is only allowed on arrays.")
	}
	if !isNumber(idx) {
		return l.fail(goja.Undefined(), "Index '%s' is out of array bounds.", repr(idx))
	}
	i := idx.ToInteger()
	length := sequenceLength(obj)
	if i < 0 || i >= int64(length) {
		return l.fail(goja.Undefined(), "Index '%d' is out of array bounds.", i)
	}
	if err := obj.Set(fmt.Sprintf("%d", i), v); err != nil {
		l.bug("could not set array index: " + err.Error())
	}
	return v
}

// checkUpdateOperand implements rts.checkUpdateOperand(op, o, m, line): the
// atomic existence/number check plus increment/decrement for a member or
// indexed update target.
func (l *Library) checkUpdateOperand(call goja.FunctionCall) goja.Value {
	op := call.Argument(0).String()
	o := call.Argument(1)
	member := call.Argument(2)

	obj, ok := o.(*goja.Object)
	if !ok {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", member.String())
	}

	if isSequence(obj) {
		i := member.ToInteger()
		length := sequenceLength(obj)
		if i < 0 || i >= int64(length) {
			return l.fail(goja.Undefined(), "Index '%d' is out of array bounds.", i)
		}
		key := fmt.Sprintf("%d", i)
		cur := obj.Get(key)
		if !isNumber(cur) {
			return l.fail(goja.Undefined(), "Cannot update a non-numeric value.")
		}
		next := applyUpdate(op, cur.ToFloat())
		_ = obj.Set(key, l.rt.ToValue(next))
		return l.rt.ToValue(next)
	}

	name := member.String()
	if !hasOwn(obj, name) {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", name)
	}
	cur := obj.Get(name)
	if !isNumber(cur) {
		return l.fail(goja.Undefined(), "Cannot update a non-numeric value.")
	}
	next := applyUpdate(op, cur.ToFloat())
	_ = obj.Set(name, l.rt.ToValue(next))
	return l.rt.ToValue(next)
}

func applyUpdate(op string, v float64) float64 {
	if op == "--" {
		return v - 1
	}
	return v + 1
}

// updateOnlyNumbers implements rts.updateOnlyNumbers(op, v, line): the
// side-effecting guard used before "++x"/"--x" on a plain identifier.
func (l *Library) updateOnlyNumbers(call goja.FunctionCall) goja.Value {
	v := call.Argument(1)
	if !isNumber(v) {
		return l.fail(goja.Undefined(), "Update operand must be a number, instead received '%s'.", repr(v))
	}
	return v
}

// applyNumOp implements rts.applyNumOp(op, l, r, line): arithmetic,
// bitwise and comparison operators that require two numeric operands.
func (l *Library) applyNumOp(call goja.FunctionCall) goja.Value {
	op := call.Argument(0).String()
	lhs := call.Argument(1)
	rhs := call.Argument(2)

	if !isNumber(lhs) || !isNumber(rhs) {
		return l.fail(goja.Undefined(), "Arguments of operator '%s' must both be numbers.", op)
	}
	a, b := lhs.ToFloat(), rhs.ToFloat()

	switch op {
	case "-":
		return l.rt.ToValue(a - b)
	case "*":
		return l.rt.ToValue(a * b)
	case "/":
		return l.rt.ToValue(a / b)
	case "%":
		return l.rt.ToValue(floatMod(a, b))
	case "<":
		return l.rt.ToValue(a < b)
	case "<=":
		return l.rt.ToValue(a <= b)
	case ">":
		return l.rt.ToValue(a > b)
	case ">=":
		return l.rt.ToValue(a >= b)
	case "===":
		return l.rt.ToValue(a == b)
	case "!==":
		return l.rt.ToValue(a != b)
	case "<<":
		return l.rt.ToValue(float64(int32(a) << uint32(int64(b)&31)))
	case ">>":
		return l.rt.ToValue(float64(int32(a) >> uint32(int64(b)&31)))
	case ">>>":
		return l.rt.ToValue(float64(uint32(int64(a)) >> uint32(int64(b)&31)))
	case "&":
		return l.rt.ToValue(float64(int32(a) & int32(b)))
	case "|":
		return l.rt.ToValue(float64(int32(a) | int32(b)))
	case "^":
		return l.rt.ToValue(float64(int32(a) ^ int32(b)))
	default:
		l.bug("applyNumOp called with unsupported operator " + op)
		return goja.Undefined()
	}
}

func floatMod(a, b float64) float64 {
	m := int64(a) % int64(b)
	return float64(m)
}

// applyNumOrStringOp implements rts.applyNumOrStringOp("+", l, r, line): "+"
// requires both operands to be numbers, or both to be strings.
func (l *Library) applyNumOrStringOp(call goja.FunctionCall) goja.Value {
	op := call.Argument(0).String()
	lhs := call.Argument(1)
	rhs := call.Argument(2)

	switch {
	case isNumber(lhs) && isNumber(rhs):
		return l.rt.ToValue(lhs.ToFloat() + rhs.ToFloat())
	case isString(lhs) && isString(rhs):
		return l.rt.ToValue(lhs.String() + rhs.String())
	default:
		return l.fail(goja.Undefined(), "Arguments of operator '%s' must both be numbers or strings.", op)
	}
}

// checkIfBoolean implements rts.checkIfBoolean(v, op|null, line): enforces
// that the operand of an if/while/do-while test, or of && / ||, is boolean.
func (l *Library) checkIfBoolean(call goja.FunctionCall) goja.Value {
	v := call.Argument(0)
	op := call.Argument(1)

	if isBoolean(v) {
		return v
	}
	if goja.IsUndefined(op) || goja.IsNull(op) {
		return l.fail(l.rt.ToValue(false), "Expected a boolean expression, instead received '%s'.", repr(v))
	}
	return l.fail(l.rt.ToValue(false), "Expected a boolean expression for operator '%s', instead received '%s'.", op.String(), repr(v))
}

// arityCheck implements rts.arityCheck(name, expected, actual, line).
func (l *Library) arityCheck(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	expected := call.Argument(1).ToInteger()
	actual := call.Argument(2).ToInteger()

	if expected == actual {
		return goja.Undefined()
	}
	return l.fail(goja.Undefined(),
		"Function %s expected %d argument%s but received %d argument%s.",
		name, expected, plural(expected), actual, plural(actual))
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// isArrayLike reports whether obj is a plain JS array (as opposed to some
// other object shape a user-defined split-like method might return).
func isArrayLike(obj *goja.Object) bool {
	return obj.ClassName() == "Array"
}

// checkCall implements rts.checkCall(o, field, args...): wraps the result of
// calling a handful of known sequence-producing idioms - a string's split,
// and Object.keys/values/entries/getOwnPropertyNames - so the result
// participates in the cooperative scheduler the way array literals and
// Array.create do. Per §9's split disambiguation, the receiver may be a
// primitive string (dot()'s own string-split wrapper) or an object whose
// own "split"-or-other named method returns either a sequence or a scalar;
// both shapes are handled, and a scalar result is passed through unwrapped.
func (l *Library) checkCall(call goja.FunctionCall) goja.Value {
	o := call.Argument(0)
	field := call.Argument(1).String()
	args := make([]goja.Value, 0, len(call.Arguments)-2)
	for _, a := range call.Arguments[2:] {
		args = append(args, a)
	}

	if isString(o) && field == "split" {
		wrapped := l.dot(goja.FunctionCall{Arguments: []goja.Value{o, l.rt.ToValue("split")}})
		fn, callable := goja.AssertFunction(wrapped)
		if !callable {
			l.bug("dot() did not return a callable split wrapper for a string receiver")
		}
		result, err := fn(goja.Undefined(), args...)
		if err != nil {
			panic(err)
		}
		return result
	}

	obj, ok := o.(*goja.Object)
	if !ok {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", field)
	}
	fnVal := obj.Get(field)
	fn, callable := goja.AssertFunction(fnVal)
	if !callable {
		return l.fail(goja.Undefined(), "Object does not have member '%s'.", field)
	}
	result, err := fn(o, args...)
	if err != nil {
		panic(err)
	}

	if arr, isArr := result.(*goja.Object); isArr && isSequence(arr) {
		return result
	}
	switch field {
	case "keys", "values", "entries", "getOwnPropertyNames":
		if arr, isArr := result.(*goja.Object); isArr {
			return l.wrapSequence(arrayLikeValues(arr))
		}
	default:
		if arr, isArr := result.(*goja.Object); isArr && isArrayLike(arr) {
			return l.wrapSequence(arrayLikeValues(arr))
		}
	}
	return result
}

// arrayLikeValues reads the numeric indices 0..length-1 off an array-like
// *goja.Object (what Object.keys/values/entries/getOwnPropertyNames return)
// into a plain slice.
func arrayLikeValues(obj *goja.Object) []goja.Value {
	length := sequenceLength(obj)
	vals := make([]goja.Value, length)
	for i := 0; i < length; i++ {
		vals[i] = obj.Get(fmt.Sprintf("%d", i))
	}
	return vals
}
