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

package testharness

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.k6.io/elementaryjs/scheduler"
)

func newTestHarness(t *testing.T) (*goja.Runtime, *scheduler.Scheduler, *Harness) {
	t.Helper()
	rt := goja.New()
	sched := scheduler.New(rt)
	h := New(rt, sched)
	h.Install(rt.GlobalObject())
	return rt, sched, h
}

// TestInfiniteLoopTestTimesOutThenSummaryStillRuns pins the timeout half of
// end-to-end scenario 6: a test whose body loops forever is reported as
// failed with "Time limit exceeded." once its deadline passes, and a later
// summary() call still runs and reports it.
func TestInfiniteLoopTestTimesOutThenSummaryStillRuns(t *testing.T) {
	t.Parallel()
	rt, sched, _ := newTestHarness(t)

	result := sched.Run(goja.MustCompile("test.js", `
		enableTests(true, 50);
		test("loop", function() { while (true) {} });
	`, false))
	require.Equal(t, "normal", result.Type)

	result = sched.Run(goja.MustCompile("test.js", `summary(false);`, false))
	require.Equal(t, "normal", result.Type)
	summary, ok := result.Value.(*goja.Object)
	require.True(t, ok)

	output := summary.Get("output").String()
	assert.Contains(t, output, " FAILED  loop\n         Time limit exceeded.")
	assert.Contains(t, output, "Tests:     1 failed, 0 passed, 1 total.")
	assert.False(t, summary.Get("pass").ToBoolean())
}

func TestSummaryReportsNotEnabledWhenNeverStarted(t *testing.T) {
	t.Parallel()
	rt, sched, _ := newTestHarness(t)
	_ = rt

	result := sched.Run(goja.MustCompile("test.js", `summary(false);`, false))
	summary := result.Value.(*goja.Object)
	assert.Equal(t, "Test framework is not enabled.", summary.Get("output").String())
	assert.True(t, summary.Get("pass").ToBoolean())
}

func TestAssertFailureRejectsTheTest(t *testing.T) {
	t.Parallel()
	_, sched, _ := newTestHarness(t)

	sched.Run(goja.MustCompile("test.js", `enableTests(true, 1000);`, false))
	sched.Run(goja.MustCompile("test.js", `test("fails", function() { assert(1 === 2); });`, false))
	result := sched.Run(goja.MustCompile("test.js", `summary(false);`, false))
	summary := result.Value.(*goja.Object)
	assert.Contains(t, summary.Get("output").String(), "FAILED  fails")
	assert.False(t, summary.Get("pass").ToBoolean())
}
