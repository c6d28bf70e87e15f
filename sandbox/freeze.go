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

package sandbox

import "github.com/dop251/goja"

// FreezeObject deeply freezes obj: every own property is made
// non-writable/non-configurable via goja's native Object.freeze, recursively
// for any property whose value is itself an object. A student program may
// still read through a frozen binding; the sandbox freezes rts, console,
// Math, Object, JSON and the whitelisted modules, the objects it installs
// before user code runs.
func FreezeObject(rt *goja.Runtime, obj *goja.Object) {
	// The native Object is reached through Object.prototype.constructor,
	// since the sandbox replaces the global Object binding with a stub whose
	// freeze calls back into FreezeObject.
	objectFreeze, ok := goja.AssertFunction(rt.NewObject().Get("constructor").ToObject(rt).Get("freeze"))
	if !ok {
		panic(rt.NewTypeError("Potential bug in ElementaryJS: Object.freeze is not callable"))
	}

	seen := map[*goja.Object]bool{}
	var freeze func(o *goja.Object)
	freeze = func(o *goja.Object) {
		if o == nil || seen[o] {
			return
		}
		seen[o] = true
		for _, k := range o.Keys() {
			if child, ok := o.Get(k).(*goja.Object); ok {
				freeze(child)
			}
		}
		if _, err := objectFreeze(goja.Undefined(), o); err != nil {
			panic(rt.NewTypeError("Potential bug in ElementaryJS: could not freeze object"))
		}
	}
	freeze(obj)
}
