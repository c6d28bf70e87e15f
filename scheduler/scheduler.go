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

// Package scheduler is the cooperative scheduler a compiled program runs
// under: it drives the goja runtime through run/eval/stop, and gives
// runtime primitives a pauseImmediate escape hatch to suspend until an
// external callback resumes them - the mechanism test timeouts are built
// on.
package scheduler

import (
	"errors"
	"time"

	"github.com/dop251/goja"

	"go.k6.io/elementaryjs/eventloop"
)

// ErrStopped is returned by Yield/PauseImmediate once Stop has been called,
// so in-flight work can unwind to the nearest suspension point instead of
// resuming the program's normal continuation.
var ErrStopped = errors.New("scheduler: stopped")

// Result mirrors the { type: "normal" | "exception", ... } payload the
// programmatic API returns from run/eval.
type Result struct {
	Type  string // "normal" or "exception"
	Value goja.Value
	Stack []string
}

// Scheduler runs one compiled program's rewritten tree under a single
// goja.Runtime, single-threaded and cooperative: timer callbacks are
// serialized onto the runtime via the underlying event loop, and a test()
// body runs on its own goroutine while the goroutine that called test()
// waits for it (see PauseImmediate).
type Scheduler struct {
	rt     *goja.Runtime
	loop   *eventloop.Loop
	timers *eventloop.Timers
}

// New builds a Scheduler around rt. The caller is expected to have already
// installed the sandboxed global environment on rt.
func New(rt *goja.Runtime) *Scheduler {
	loop := eventloop.New()
	return &Scheduler{
		rt:     rt,
		loop:   loop,
		timers: eventloop.NewTimers(rt, loop),
	}
}

// Runtime returns the underlying goja.Runtime, e.g. so the sandbox and
// runtime-check library can be installed on it before the first Run.
func (s *Scheduler) Runtime() *goja.Runtime { return s.rt }

// Run executes pgm from the top and returns its outcome. A concurrent Stop
// is observed only where scheduler-aware primitives call Yield (the
// sequence operations in package runtime); nothing checks it between
// top-level statements, so a program that never reaches such a call runs
// to completion.
func (s *Scheduler) Run(pgm *goja.Program) Result {
	var result Result
	_ = s.loop.Start(func() error {
		v, err := s.rt.RunProgram(pgm)
		result = s.toResult(v, err)
		return nil
	})
	return result
}

// Eval compiles snippet through compile and runs it in the program's
// existing global environment. compile is injected by the caller (the root
// elementaryjs package) since only it knows how to run the snippet through
// the rewriter; a static-error diagnostic list is folded into a single
// exception result whose value is a newline-joined "Line L: message" list,
// per the eval() contract.
func (s *Scheduler) Eval(snippet string, compile func(string) (*goja.Program, []string, error)) Result {
	var result Result
	_ = s.loop.Start(func() error {
		pgm, diags, err := compile(snippet)
		if err != nil {
			result = Result{Type: "exception", Value: s.rt.ToValue(err.Error())}
			return nil
		}
		if len(diags) > 0 {
			msg := ""
			for i, d := range diags {
				if i > 0 {
					msg += "\n"
				}
				msg += d
			}
			result = Result{Type: "exception", Value: s.rt.ToValue(msg)}
			return nil
		}
		v, runErr := s.rt.RunProgram(pgm)
		result = s.toResult(v, runErr)
		return nil
	})
	return result
}

// Stop requests the program halt at the next suspension point. It always
// succeeds: onStopped is invoked once the loop's in-flight work has
// finished unwinding.
func (s *Scheduler) Stop(onStopped func()) {
	s.loop.Stop()
	go func() {
		s.loop.WaitOnRegistered()
		onStopped()
	}()
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	return s.loop.Stopped()
}

// Yield is the suspension-point check scheduler-aware primitives (the
// sequence operations in package runtime) consult between elements: once
// Stop has been called it returns ErrStopped so the caller can unwind
// instead of keep iterating.
func (s *Scheduler) Yield() error {
	if s.loop.Stopped() {
		return ErrStopped
	}
	return nil
}

// PauseImmediate suspends the calling goroutine until thunk completes (run
// on its own goroutine) or, if timeout > 0, the deadline fires first.
// thunk's result is handed straight back to the waiting caller over a
// channel; the loop only holds a registration for the pause, settled with a
// no-op once it ends, so WaitOnRegistered waits for it. The caller stays
// blocked while thunk runs, so the two never use the runtime at the same
// time. It's used both by test() timeouts and by
// any runtime primitive that needs to suspend on external I/O.
func (s *Scheduler) PauseImmediate(timeout time.Duration, thunk func() (goja.Value, error)) (goja.Value, error, bool) {
	type outcome struct {
		v   goja.Value
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := thunk()
		done <- outcome{v, err}
	}()

	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		timeoutCh = timer.C
	}

	resume := make(chan outcome, 1)
	timedOut := make(chan struct{}, 1)
	cb := s.loop.RegisterCallback()
	go func() {
		select {
		case o := <-done:
			if timer != nil {
				timer.Stop()
			}
			resume <- o
		case <-timeoutCh:
			// thunk is still running on its own goroutine against the same
			// goja.Runtime, which is not safe for concurrent use. Interrupt
			// forces it to unwind at its next VM instruction (e.g. out of an
			// infinite "while(true){}" test body) instead of leaving it
			// spinning forever; waiting on <-done before clearing the
			// interrupt guarantees it has actually stopped touching s.rt
			// before the scheduler resumes anything else on it.
			s.rt.Interrupt("test timed out")
			<-done
			s.rt.ClearInterrupt()
			close(timedOut)
		}
		cb(func() {})
	}()

	select {
	case o := <-resume:
		return o.v, o.err, false
	case <-timedOut:
		return nil, nil, true
	}
}

func (s *Scheduler) toResult(v goja.Value, err error) Result {
	if err == nil {
		return Result{Type: "normal", Value: v}
	}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return Result{Type: "exception", Value: exc.Value(), Stack: []string{exc.String()}}
	}
	return Result{Type: "exception", Value: s.rt.ToValue(err.Error())}
}
