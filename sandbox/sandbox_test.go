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

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.k6.io/elementaryjs/runtime"
)

func newTestSandbox(t *testing.T) *goja.Runtime {
	t.Helper()
	rt := goja.New()
	lib := runtime.New(rt, nil, runtime.Options{})
	var logged []string
	New(rt, lib, func(line string) { logged = append(logged, line) }, nil)
	return rt
}

func run(t *testing.T, rt *goja.Runtime, src string) (goja.Value, error) {
	t.Helper()
	prog, err := goja.Compile("test.js", src, false)
	require.NoError(t, err)
	return rt.RunProgram(prog)
}

func TestReservedGlobalsCannotBeReassigned(t *testing.T) {
	t.Parallel()
	rt := newTestSandbox(t)
	_, err := run(t, rt, `"use strict"; Math = 1;`)
	assert.Error(t, err)
}

func TestMathAndObjectAreFrozen(t *testing.T) {
	t.Parallel()
	rt := newTestSandbox(t)
	_, err := run(t, rt, `"use strict"; Math.PI = 0;`)
	assert.Error(t, err)
	_, err = run(t, rt, `"use strict"; Object.keys = 0;`)
	assert.Error(t, err)
	v, err := run(t, rt, `Math.PI;`)
	require.NoError(t, err)
	assert.InDelta(t, 3.14159, v.ToFloat(), 0.001)
}

func TestArrayConstructorStubRejectsDirectUse(t *testing.T) {
	t.Parallel()
	rt := newTestSandbox(t)
	_, err := run(t, rt, `Array(3);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Use Array.create instead of the array constructor.")
}

func TestArrayCreateBuildsASequence(t *testing.T) {
	t.Parallel()
	rt := newTestSandbox(t)
	v, err := run(t, rt, `Array.create(3, 0).length;`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.ToInteger())
}

func TestJSONRoundTripsObjectLiterals(t *testing.T) {
	t.Parallel()
	rt := newTestSandbox(t)
	v, err := run(t, rt, `JSON.parse(JSON.stringify({a: 1, b: [1, 2, 3]})).a;`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.ToInteger())
}

func TestRequireResolvesOnlyWhitelistedModules(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	lib := runtime.New(rt, nil, runtime.Options{})
	mod := rt.NewObject()
	_ = mod.Set("value", 42)
	New(rt, lib, nil, map[string]goja.Value{"mymodule": mod})

	v, err := run(t, rt, `require("mymodule").value;`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.ToInteger())

	_, err = run(t, rt, `require("missing");`)
	require.Error(t, err)
}

func TestConsoleLogRoutesToHostSink(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	lib := runtime.New(rt, nil, runtime.Options{})
	var logged []string
	New(rt, lib, func(line string) { logged = append(logged, line) }, nil)

	_, err := run(t, rt, `console.log("hi", 1);`)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, `"hi" 1`, logged[0])
}
