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

// Package lib contains the types shared between the elementaryjs CLI, the
// compiler and the runtime: the options a run was started with, and the
// state threaded through compilation and evaluation.
package lib

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// RuntimeOptions are the options a user can set on the command line or
// through environment variables that affect how a program is compiled and
// run, as opposed to the program's own source.
type RuntimeOptions struct {
	// Timeout bounds how long a single test() case, including any callbacks
	// still pending on the event loop, is allowed to run before it's
	// declared failed.
	Timeout time.Duration

	// Silent runs the program with its checks off (elementaryjs.Options
	// EJSOff): compile diagnostics and runtime check failures are logged
	// instead of rejecting the program.
	Silent bool

	// WhitelistCode is not read by any package: require() resolves only the
	// modules passed in elementaryjs.Options.WhitelistCode, whatever this
	// field holds.
	WhitelistCode bool

	// CompatibilityMode is reserved for future dialect variants; elementaryjs
	// currently only ever compiles in "elementaryjs" mode.
	CompatibilityMode string
}

// TestPreInitState contains all of the state that can be gathered and built
// before a program is compiled: the logger, the runtime options, and where
// the program's console.log output should be written. Source-level test
// results are NOT duplicated here - the test record list C6 accumulates and
// renders through summary() is the single source of truth (§4.6); the CLI
// reads it back through CompileOK.G rather than keeping a parallel Go-side
// tally.
type TestPreInitState struct {
	RuntimeOptions RuntimeOptions
	Logger         logrus.FieldLogger
	Stdout         io.Writer
	LookupEnv      func(key string) (val string, ok bool)
}

// NewTestPreInitState builds a TestPreInitState from the resolved runtime
// options and the host's logger/stdout/env-lookup, the way cmd/run.go
// assembles one before calling elementaryjs.Compile.
func NewTestPreInitState(
	opts RuntimeOptions, logger logrus.FieldLogger, stdout io.Writer, lookupEnv func(string) (string, bool),
) *TestPreInitState {
	return &TestPreInitState{RuntimeOptions: opts, Logger: logger, Stdout: stdout, LookupEnv: lookupEnv}
}
