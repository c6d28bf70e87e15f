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

// Package testharness implements the test(name, fn) / assert(v) / summary()
// framework a compiled program's sandbox exposes: each test() runs under
// the scheduler's PauseImmediate with a per-test deadline, so a body that
// loops forever still lets the run finish on schedule.
package testharness

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"go.k6.io/elementaryjs/scheduler"
)

type record struct {
	description string
	failed      bool
	errMessage  string
}

// Harness is bound into a program's global environment as test/assert/
// summary.
type Harness struct {
	rt      *goja.Runtime
	sched   *scheduler.Scheduler
	enabled bool
	timeout time.Duration
	records []record
}

// New builds a Harness. rt is the runtime test()/assert() are installed
// on; sched drives each test() body so it can be timed out.
func New(rt *goja.Runtime, sched *scheduler.Scheduler) *Harness {
	return &Harness{rt: rt, sched: sched}
}

// Install binds test, assert, summary and enableTests onto global.
func (h *Harness) Install(global *goja.Object) {
	_ = global.Set("test", h.rt.ToValue(h.test))
	_ = global.Set("assert", h.rt.ToValue(h.assert))
	_ = global.Set("summary", h.rt.ToValue(h.summary))
	_ = global.Set("enableTests", h.rt.ToValue(h.enableTests))
}

// enableTests(on, timeoutMs = 5000) resets the test record list, sets the
// enabled flag and the per-test deadline.
func (h *Harness) enableTests(call goja.FunctionCall) goja.Value {
	on := call.Argument(0).ToBoolean()
	timeoutMs := int64(5000)
	if len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1)) {
		timeoutMs = call.Argument(1).ToInteger()
	}
	h.enabled = on
	h.timeout = time.Duration(timeoutMs) * time.Millisecond
	h.records = nil
	return goja.Undefined()
}

// assert(v) - v must be boolean.
func (h *Harness) assert(call goja.FunctionCall) goja.Value {
	v := call.Argument(0)
	b, isBool := v.Export().(bool)
	if !isBool {
		panic(h.rt.NewTypeError("Assertion argument 'v' is not a boolean value."))
	}
	if !b {
		panic(h.rt.NewTypeError("Assertion failed."))
	}
	return goja.Undefined()
}

// test(description, thunk) runs thunk under the per-test deadline and
// records the outcome; it never lets an exception or a timed-out thunk
// propagate past the test() boundary.
func (h *Harness) test(call goja.FunctionCall) goja.Value {
	if !h.enabled {
		return goja.Undefined()
	}
	description := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(h.rt.NewTypeError("test() requires a function as its second argument"))
	}

	_, err, timedOut := h.sched.PauseImmediate(h.timeout, func() (goja.Value, error) {
		return fn(goja.Undefined())
	})

	switch {
	case timedOut:
		h.records = append(h.records, record{description: description, failed: true, errMessage: "Time limit exceeded."})
	case err != nil:
		h.records = append(h.records, record{description: description, failed: true, errMessage: err.Error()})
	default:
		h.records = append(h.records, record{description: description, failed: false})
	}
	return goja.Undefined()
}

// summary(hasStyles) renders and consumes the accumulated test records,
// then disables testing; a second call without an intervening enableTests
// reports that testing isn't enabled.
func (h *Harness) summary(call goja.FunctionCall) goja.Value {
	if !h.enabled {
		out := h.rt.NewObject()
		_ = out.Set("output", "Test framework is not enabled.")
		_ = out.Set("pass", true)
		return out
	}

	hasStyles := call.Argument(0).ToBoolean()
	records := h.records
	h.enabled = false
	h.records = nil

	out := h.rt.NewObject()
	if len(records) == 0 {
		_ = out.Set("output", "No tests ran. Use 'test' to add test cases that can be run.")
		_ = out.Set("pass", true)
		return out
	}

	var lines []string
	passed, failed := 0, 0
	for _, r := range records {
		if r.failed {
			failed++
			status := "FAILED"
			lines = append(lines, fmt.Sprintf(" %s  %s\n         %s", status, r.description, r.errMessage))
		} else {
			passed++
			status := "OK"
			lines = append(lines, fmt.Sprintf(" %s  %s", status, r.description))
		}
	}
	lines = append(lines, fmt.Sprintf("Tests:     %d failed, %d passed, %d total.", failed, passed, len(records)))

	_ = hasStyles // reserved: ANSI coloring of OK/FAILED lines is a CLI concern, not the harness's
	_ = out.Set("output", strings.Join(lines, "\n"))
	_ = out.Set("pass", failed == 0)
	return out
}
