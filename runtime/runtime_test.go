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

package runtime

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.k6.io/elementaryjs/lib/testutils"
)

func newTestLibrary(t *testing.T) (*goja.Runtime, *Library) {
	t.Helper()
	rt := goja.New()
	lib := New(rt, nil, Options{Logger: testutils.NewLogger(t)})
	rts := lib.Install()
	require.NoError(t, rt.Set("rts", rts))
	return rt, lib
}

func runAndExpectExceptionMessage(t *testing.T, rt *goja.Runtime, src, wantMsg string) {
	t.Helper()
	prog := goja.MustCompile("test.js", src, false)
	_, err := rt.RunProgram(prog)
	require.Error(t, err)
	var exc *goja.Exception
	require.ErrorAs(t, err, &exc)
	assert.Contains(t, exc.Value().String(), wantMsg)
}

// TestMemberCheckRejectsUnknownMember pins end-to-end scenario 2.
func TestMemberCheckRejectsUnknownMember(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	runAndExpectExceptionMessage(t, rt, `rts.dot({x: 500}, "y", 1);`, "Object does not have member 'y'.")
}

// TestArrayBoundsCheckRejectsOutOfRange pins end-to-end scenario 3.
func TestArrayBoundsCheckRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	rt, lib := newTestLibrary(t)
	empty := lib.wrapSequence(nil)
	require.NoError(t, rt.Set("a", empty))
	runAndExpectExceptionMessage(t, rt, `rts.arrayBoundsCheck(a, 0, 1);`, "Index '0' is out of array bounds.")
}

// TestArityCheckReportsExpectedAndReceived pins end-to-end scenario 4,
// including the "argument"/"arguments" pluralization.
func TestArityCheckReportsExpectedAndReceived(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	runAndExpectExceptionMessage(t, rt, `rts.arityCheck("F", 1, 3, 1);`,
		"Function F expected 1 argument but received 3 arguments.")
}

func TestArityCheckAcceptsMatchingCount(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	prog := goja.MustCompile("test.js", `rts.arityCheck("F", 2, 2, 1);`, false)
	_, err := rt.RunProgram(prog)
	assert.NoError(t, err)
}

// TestCheckIfBooleanRejectsNonBoolean pins end-to-end scenario 5.
func TestCheckIfBooleanRejectsNonBoolean(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	runAndExpectExceptionMessage(t, rt, `rts.checkIfBoolean(42, null, 1);`,
		"Expected a boolean expression, instead received '42'.")
}

func TestCheckIfBooleanPassesThroughBooleans(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	prog := goja.MustCompile("test.js", `rts.checkIfBoolean(true, null, 1);`, false)
	v, err := rt.RunProgram(prog)
	require.NoError(t, err)
	assert.Equal(t, true, v.Export())
}

func TestApplyNumOrStringOpAcceptsTwoNumbersOrTwoStrings(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)

	prog := goja.MustCompile("test.js", `rts.applyNumOrStringOp("+", 1, 2, 1);`, false)
	v, err := rt.RunProgram(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.ToInteger())

	prog = goja.MustCompile("test.js", `rts.applyNumOrStringOp("+", "a", "b", 1);`, false)
	v, err = rt.RunProgram(prog)
	require.NoError(t, err)
	assert.Equal(t, "ab", v.String())
}

func TestApplyNumOrStringOpRejectsMixedOperands(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	runAndExpectExceptionMessage(t, rt, `rts.applyNumOrStringOp("+", 1, "b", 1);`,
		"Arguments of operator '+' must both be numbers or strings.")
}

func TestSilentModeLogsInsteadOfPanicking(t *testing.T) {
	t.Parallel()
	rt := goja.New()
	lib := New(rt, nil, Options{Silent: true, Logger: testutils.NewLogger(t)})
	require.NoError(t, rt.Set("rts", lib.Install()))

	prog := goja.MustCompile("test.js", `rts.dot({x: 1}, "y", 1);`, false)
	v, err := rt.RunProgram(prog)
	require.NoError(t, err)
	assert.True(t, goja.IsUndefined(v))
}

func TestSeqWrapsPlainArraysForHigherOrderOperations(t *testing.T) {
	t.Parallel()
	rt, _ := newTestLibrary(t)
	prog := goja.MustCompile("test.js", `
		let s = rts.seq([1, 2, 3]);
		s.map(function(x) { return x * 2; });
	`, false)
	v, err := rt.RunProgram(prog)
	require.NoError(t, err)
	require.NotNil(t, v)
}
