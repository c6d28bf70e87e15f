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

package scheduler

import (
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsNormalResult(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	s := New(rt)
	pgm := goja.MustCompile("test.js", "1 + 2;", false)
	result := s.Run(pgm)
	require.Equal(t, "normal", result.Type)
	assert.Equal(t, int64(3), result.Value.ToInteger())
}

func TestRunReturnsExceptionResult(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	s := New(rt)
	pgm := goja.MustCompile("test.js", `throw new Error("boom");`, false)
	result := s.Run(pgm)
	require.Equal(t, "exception", result.Type)
	assert.Contains(t, result.Value.String(), "boom")
}

func TestStopUnblocksPauseImmediateAtNextYield(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	s := New(rt)

	done := make(chan struct{})
	go func() {
		_ = s.Run(goja.MustCompile("test.js", "1;", false))
		close(done)
	}()
	<-done

	assert.False(t, s.Stopped())
	stopped := make(chan struct{})
	s.Stop(func() { close(stopped) })
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop callback never fired")
	}
	assert.True(t, s.Stopped())
	assert.ErrorIs(t, s.Yield(), ErrStopped)
}

func TestPauseImmediateReturnsOnTimeout(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	s := New(rt)
	_, _, timedOut := s.PauseImmediate(10*time.Millisecond, func() (goja.Value, error) {
		time.Sleep(time.Second)
		return goja.Undefined(), nil
	})
	assert.True(t, timedOut)
}

func TestPauseImmediateReturnsThunkResultBeforeDeadline(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	s := New(rt)
	v, err, timedOut := s.PauseImmediate(time.Second, func() (goja.Value, error) {
		return rt.ToValue(42), nil
	})
	require.NoError(t, err)
	assert.False(t, timedOut)
	assert.Equal(t, int64(42), v.ToInteger())
}
