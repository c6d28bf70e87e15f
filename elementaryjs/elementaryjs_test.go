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

package elementaryjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStaticRejectionReturnsCompileError pins end-to-end scenario 1.
func TestStaticRejectionReturnsCompileError(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("var x = 10;", Options{})
	assert.Nil(t, ok)
	require.NotNil(t, compileErr)
	var msgs []string
	for _, d := range compileErr.Errors {
		msgs = append(msgs, d.Message)
	}
	assert.Contains(t, msgs, "Use 'let' or 'const' to declare a variable.")
}

// TestMemberCheckFailureSurfacesAsException pins scenario 2.
func TestMemberCheckFailureSurfacesAsException(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let o = {x: 500}; o.y;", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	require.Equal(t, "exception", result.Type)
	assert.Contains(t, result.Value.String(), "Object does not have member 'y'.")
}

// TestArrayBoundsFailureSurfacesAsException pins scenario 3.
func TestArrayBoundsFailureSurfacesAsException(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let a = Array.create(0, 0); a[0] = 0;", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	require.Equal(t, "exception", result.Type)
	assert.Contains(t, result.Value.String(), "Index '0' is out of array bounds.")
}

// TestArityFailureSurfacesAsException pins scenario 4.
func TestArityFailureSurfacesAsException(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("function F(x) { } F(1, 2, 3);", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	require.Equal(t, "exception", result.Type)
	assert.Contains(t, result.Value.String(), "Function F expected 1 argument but received 3 arguments.")
}

// TestBooleanContextFailureSurfacesAsException pins scenario 5.
func TestBooleanContextFailureSurfacesAsException(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("if (42) { }", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	require.Equal(t, "exception", result.Type)
	assert.Contains(t, result.Value.String(), "Expected a boolean expression, instead received '42'.")
}

func TestCleanProgramRunsNormally(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let x = 1 + 2;", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	assert.Equal(t, "normal", result.Type)
}

func TestEvalRunsAgainstTheSameGlobalEnvironment(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let x = 41;", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	ok.Run(func(Result) {})

	var result Result
	ok.Eval("x + 1;", func(r Result) { result = r })
	require.Equal(t, "normal", result.Type)
	assert.Equal(t, int64(42), result.Value.ToInteger())
}

func TestWhitelistedModuleIsReachableThroughRequire(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile(`require("greeter").hello;`, Options{
		WhitelistCode: map[string]string{"greeter": `({hello: "hi"})`},
	})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	require.Equal(t, "normal", result.Type)
	assert.Equal(t, "hi", result.Value.String())
}

func TestEJSOffRunsInsteadOfRejecting(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let o = {x: 500}; o.y;", Options{EJSOff: true})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	var result Result
	ok.Run(func(r Result) { result = r })
	assert.Equal(t, "normal", result.Type)
}

func TestStopHaltsARunningProgram(t *testing.T) {
	t.Parallel()
	ok, compileErr := Compile("let x = 1;", Options{})
	require.Nil(t, compileErr)
	require.NotNil(t, ok)

	stopped := make(chan struct{})
	ok.Stop(func() { close(stopped) })
	<-stopped
}
