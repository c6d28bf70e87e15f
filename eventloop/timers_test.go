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
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTimeoutFiresOnTheLoop(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	loop := New()
	NewTimers(rt, loop)

	err := loop.Start(func() error {
		_, err := rt.RunProgram(goja.MustCompile("test.js", `
			var fired = false;
			setTimeout(function() { fired = true; }, 1);
		`, false))
		return err
	})
	require.NoError(t, err)
	loop.WaitOnRegistered()

	fired := rt.Get("fired")
	assert.True(t, fired.ToBoolean())
}

func TestClearTimeoutPreventsCallback(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	loop := New()
	NewTimers(rt, loop)

	err := loop.Start(func() error {
		_, err := rt.RunProgram(goja.MustCompile("test.js", `
			var fired = false;
			var id = setTimeout(function() { fired = true; }, 1000);
			clearTimeout(id);
		`, false))
		return err
	})
	require.NoError(t, err)
	loop.WaitOnRegistered()

	fired := rt.Get("fired")
	assert.False(t, fired.ToBoolean())
}
