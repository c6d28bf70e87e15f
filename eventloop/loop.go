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

// Package eventloop serializes every touch of a *goja.Runtime onto a single
// goroutine. A goja.Runtime is not safe for concurrent use, so anything
// that needs to call back into it - a fired setTimeout, a background test()
// worker finishing - registers a callback and the loop runs it on the
// runtime's own goroutine the next time it's idle.
package eventloop

import (
	"sync"
	"sync/atomic"
)

// Loop runs an initial function and then drains any callbacks registered
// during its execution (including ones registered by callbacks themselves),
// one at a time, until none remain.
type Loop struct {
	registered sync.WaitGroup
	queue      chan func()
	stopped    atomic.Bool
}

// New returns an idle Loop.
func New() *Loop {
	return &Loop{queue: make(chan func(), 16)}
}

// RegisterCallback reserves a slot for a callback that will be delivered
// asynchronously (e.g. from a timer or a goroutine), and returns a function
// that enqueues it to run on the loop. Calling the returned function more
// than once panics, mirroring the "you already settled this" invariant of
// a promise resolver.
func (l *Loop) RegisterCallback() func(func()) {
	l.registered.Add(1)
	var used atomic.Bool
	return func(f func()) {
		if !used.CompareAndSwap(false, true) {
			panic("eventloop: callback registered twice")
		}
		defer l.registered.Done()
		if l.stopped.Load() {
			return
		}
		l.queue <- f
	}
}

// Start runs main on the calling goroutine, then serially drains the queue
// of registered callbacks until it's empty, returning main's error.
func (l *Loop) Start(main func() error) error {
	err := main()
	l.drain()
	return err
}

func (l *Loop) drain() {
	for {
		select {
		case f := <-l.queue:
			f()
		default:
			return
		}
	}
}

// WaitOnRegistered blocks until every callback registered so far has either
// run or been dropped because the loop was stopped, draining the queue as
// entries arrive.
func (l *Loop) WaitOnRegistered() {
	done := make(chan struct{})
	go func() {
		l.registered.Wait()
		close(done)
	}()
	for {
		select {
		case f := <-l.queue:
			f()
		case <-done:
			l.drain()
			return
		}
	}
}

// Stop marks the loop stopped: callbacks already queued before the call
// still run, but a callback delivered through a RegisterCallback function
// after Stop - whenever that function was obtained - is dropped.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	return l.stopped.Load()
}
