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

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"go.k6.io/elementaryjs"
	"go.k6.io/elementaryjs/errext"
	"go.k6.io/elementaryjs/errext/exitcodes"
	"go.k6.io/elementaryjs/lib"
)

// defaultTestTimeout is used whenever --timeout was never passed; kept
// distinguishable from a user explicitly passing "--timeout 0s" by
// threading the flag through as a null.Int rather than a plain
// time.Duration (see nullflags.go).
const defaultTestTimeout = 5 * time.Second

func getRunCmd(gs *globalState) *cobra.Command {
	var timeoutFlag null.Int
	var silentFlag null.Bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an ElementaryJS program",
		Long:  "Compile and run a single ElementaryJS program file.",
		Example: `
  # Run a program.
  elementaryjs run program.js

  # Run with a 2-second per-test timeout.
  elementaryjs run --timeout 2s program.js

  # Log what would have been rejected without rejecting it.
  elementaryjs run --silent program.js`[1:],
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := durationOr(timeoutFlag, defaultTestTimeout)
			silent := boolOr(silentFlag, false)
			return runProgram(gs, args[0], timeout, silent)
		},
	}

	runCmd.Flags().AddFlagSet(runCmdFlagSet(&timeoutFlag, &silentFlag))
	return runCmd
}

func runCmdFlagSet(timeout *null.Int, silent *null.Bool) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.Var(nullDurationFlag{timeout}, "timeout", "per-test time limit (default 5s)")
	flags.Var(nullBoolFlag{silent}, "silent", "log compile/runtime check failures instead of rejecting the program")
	flags.Lookup("silent").NoOptDefVal = "true"
	return flags
}

func runProgram(gs *globalState, filename string, timeout time.Duration, silent bool) error {
	preInit := lib.NewTestPreInitState(
		lib.RuntimeOptions{Timeout: timeout, Silent: silent},
		gs.logger, gs.stdOut, os.LookupEnv,
	)

	src, err := afero.ReadFile(gs.fs, filename)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	ok, compileErr := elementaryjs.Compile(string(src), elementaryjs.Options{
		ConsoleLog: func(line string) { fmt.Fprintln(preInit.Stdout, line) },
		EJSOff:     preInit.RuntimeOptions.Silent,
		Logger:     preInit.Logger,
	})
	if compileErr != nil {
		for _, d := range compileErr.Errors {
			fmt.Fprintln(gs.stdErr, d.String())
		}
		return errext.WithExitCodeIfNone(fmt.Errorf("%s: compilation failed", filename), exitcodes.CompileFailure)
	}

	_ = enableTestTimeout(ok, timeout)

	var runResult elementaryjs.Result
	ok.Run(func(r elementaryjs.Result) { runResult = r })

	if runResult.Type == "exception" {
		msg := "uncaught exception"
		if runResult.Value != nil {
			msg = runResult.Value.String()
		}
		fmt.Fprintln(gs.stdErr, msg)
		return errext.WithExitCodeIfNone(fmt.Errorf("%s: runtime check failed", filename), exitcodes.RuntimeFailure)
	}

	return reportTestSummary(gs, ok)
}

// enableTestTimeout sets the default per-test deadline for a run by calling
// the program's own enableTests(true, timeoutMs) before it runs something
// registers tests with a different timeout, which overrides this one -
// exactly the enableTests/test/summary contract in §4.6.
func enableTestTimeout(ok *elementaryjs.CompileOK, timeout time.Duration) error {
	fn, callable := goja.AssertFunction(ok.G.Get("enableTests"))
	if !callable {
		return nil
	}
	_, err := fn(goja.Undefined(), ok.G.Runtime().ToValue(true), ok.G.Runtime().ToValue(timeout.Milliseconds()))
	return err
}

// reportTestSummary calls the program's summary() and prints its report if
// the test framework was ever enabled, mapping a failed test run to
// exitcodes.TestsFailed.
func reportTestSummary(gs *globalState, ok *elementaryjs.CompileOK) error {
	fn, callable := goja.AssertFunction(ok.G.Get("summary"))
	if !callable {
		return nil
	}
	rt := ok.G.Runtime()
	result, err := fn(goja.Undefined(), rt.ToValue(!gs.flags.noColor && gs.stdOut.isTTY))
	if err != nil {
		return err
	}
	obj, isObj := result.(*goja.Object)
	if !isObj {
		return nil
	}
	output := obj.Get("output")
	if output == nil || output.String() == "Test framework is not enabled." {
		return nil
	}
	fmt.Fprintln(gs.stdOut, output.String())

	pass := obj.Get("pass")
	if pass != nil && !pass.ToBoolean() {
		return errext.WithExitCodeIfNone(fmt.Errorf("one or more tests failed"), exitcodes.TestsFailed)
	}
	return nil
}
