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

package lib

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.k6.io/elementaryjs/lib/testutils"
)

func TestNewTestPreInitStateAssemblesFields(t *testing.T) {
	t.Parallel()
	logger := testutils.NewLogger(t)
	var out bytes.Buffer
	lookup := func(string) (string, bool) { return "", false }
	opts := RuntimeOptions{Timeout: 5 * time.Second, Silent: true}

	state := NewTestPreInitState(opts, logger, &out, lookup)

	assert.Equal(t, opts, state.RuntimeOptions)
	assert.Equal(t, logger, state.Logger)
	assert.Equal(t, &out, state.Stdout)
	_, ok := state.LookupEnv("anything")
	assert.False(t, ok)
}
