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

package eventloop

import (
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Timers binds setTimeout/clearTimeout to a goja.Runtime via a Loop, so a
// fired timer's callback always runs serialized with the rest of the
// program instead of concurrently with it.
type Timers struct {
	rt   *goja.Runtime
	loop *Loop

	mu     sync.Mutex
	nextID int64
	active map[int64]pendingTimer
}

type pendingTimer struct {
	timer  *time.Timer
	resume func(func())
}

// NewTimers builds and binds setTimeout/clearTimeout on rt's global object.
func NewTimers(rt *goja.Runtime, loop *Loop) *Timers {
	t := &Timers{rt: rt, loop: loop, active: map[int64]pendingTimer{}}
	_ = rt.Set("setTimeout", t.setTimeout)
	_ = rt.Set("clearTimeout", t.clearTimeout)
	return t
}

func (t *Timers) setTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(t.rt.NewTypeError("setTimeout requires a function as its first argument"))
	}
	delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.mu.Unlock()

	resume := t.loop.RegisterCallback()
	timer := time.AfterFunc(delay, func() {
		resume(func() {
			t.mu.Lock()
			delete(t.active, id)
			t.mu.Unlock()
			_, _ = fn(goja.Undefined())
		})
	})

	t.mu.Lock()
	t.active[id] = pendingTimer{timer: timer, resume: resume}
	t.mu.Unlock()

	return t.rt.ToValue(id)
}

func (t *Timers) clearTimeout(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	t.mu.Lock()
	p, ok := t.active[id]
	if ok {
		delete(t.active, id)
	}
	t.mu.Unlock()
	if ok {
		// Stop may race a timer that already fired; if so the fired
		// callback settles the registration itself, Stop reports false,
		// and resume is not called a second time (Loop panics on that).
		if p.timer.Stop() {
			p.resume(func() {})
		}
	}
	return goja.Undefined()
}
