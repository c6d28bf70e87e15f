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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDrainsCallbacksRegisteredDuringMain(t *testing.T) {
	t.Parallel()
	l := New()
	var ran []string

	err := l.Start(func() error {
		resume := l.RegisterCallback()
		go resume(func() { ran = append(ran, "first") })
		return nil
	})
	require.NoError(t, err)
	l.WaitOnRegistered()
	assert.Equal(t, []string{"first"}, ran)
}

func TestRegisteredCallbackRunsExactlyOnce(t *testing.T) {
	t.Parallel()
	l := New()
	resume := l.RegisterCallback()
	resume(func() {})
	assert.Panics(t, func() { resume(func() {}) })
}

func TestStopDropsCallbacksRegisteredAfterward(t *testing.T) {
	t.Parallel()
	l := New()
	l.Stop()
	assert.True(t, l.Stopped())

	ran := false
	resume := l.RegisterCallback()
	resume(func() { ran = true })
	l.WaitOnRegistered()
	assert.False(t, ran, "a callback registered after Stop must not run")
}

