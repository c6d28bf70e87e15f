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

// Package cmd implements the elementaryjs CLI: a single "run" subcommand
// plus "version", the trimmed-down shape of grafana-k6's cmd package once
// the load-testing VU/executor/output/REST-API/cloud machinery - none of
// which a single-process teaching-language core needs - is removed.
package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.k6.io/elementaryjs/errext"
)

// globalFlags holds the persistent, cross-subcommand CLI flags.
type globalFlags struct {
	logOutput string
	logFormat string
	noColor   bool
	verbose   bool
}

func getDefaultFlags() globalFlags {
	return globalFlags{logOutput: "stderr"}
}

// globalState groups the process-external state (args, env, std streams,
// logger) so the rest of the package never touches the os package
// directly, keeping the CLI's behavior fakeable in tests.
type globalState struct {
	ctx context.Context

	fs    afero.Fs
	args  []string
	flags globalFlags

	stdOut, stdErr *consoleWriter
	stdIn          io.Reader

	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)

	logger *logrus.Logger
}

type consoleWriter struct {
	rawOut    io.Writer
	out       io.Writer
	isTTY     bool
	outMu     *sync.Mutex
	prevLogLn bool
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	return w.out.Write(p)
}

func newGlobalState(ctx context.Context) *globalState {
	isDumbTerm := os.Getenv("TERM") == "dumb"
	stdoutTTY := !isDumbTerm && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	stderrTTY := !isDumbTerm && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	outMutex := &sync.Mutex{}
	stdOut := &consoleWriter{os.Stdout, colorable.NewColorable(os.Stdout), stdoutTTY, outMutex, false}
	stdErr := &consoleWriter{os.Stderr, colorable.NewColorable(os.Stderr), stderrTTY, outMutex, false}

	_, noColorSet := os.LookupEnv("NO_COLOR")
	logger := &logrus.Logger{
		Out: stdErr,
		Formatter: &logrus.TextFormatter{
			ForceColors:   stderrTTY,
			DisableColors: !stderrTTY || noColorSet,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}

	flags := getDefaultFlags()
	if noColorSet {
		flags.noColor = true
	}

	return &globalState{
		ctx:          ctx,
		fs:           afero.NewOsFs(),
		args:         append(make([]string, 0, len(os.Args)), os.Args...),
		flags:        flags,
		stdOut:       stdOut,
		stdErr:       stdErr,
		stdIn:        os.Stdin,
		signalNotify: signal.Notify,
		signalStop:   signal.Stop,
		logger:       logger,
	}
}

type rootCommand struct {
	globalState *globalState
	cmd         *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{globalState: gs}
	rootCmd := &cobra.Command{
		Use:               "elementaryjs",
		Short:             "a safety-restricted dialect for teaching introductory programming",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.SetArgs(gs.args[1:])
	rootCmd.SetOut(gs.stdOut)
	rootCmd.SetErr(gs.stdErr)
	rootCmd.SetIn(gs.stdIn)

	rootCmd.AddCommand(getRunCmd(gs), getVersionCmd(gs))

	c.cmd = rootCmd
	return c
}

func rootCmdPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&gs.flags.logOutput, "log-output", gs.flags.logOutput,
		"change the output for elementaryjs logs: stderr, stdout, none, or file=./path.log")
	flags.StringVar(&gs.flags.logFormat, "log-format", gs.flags.logFormat, "log output format: text or json")
	flags.BoolVar(&gs.flags.noColor, "no-color", gs.flags.noColor, "disable colored output")
	flags.BoolVarP(&gs.flags.verbose, "verbose", "v", gs.flags.verbose, "enable verbose logging")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	return c.setupLogger()
}

func (c *rootCommand) setupLogger() error {
	gs := c.globalState
	if gs.flags.verbose {
		gs.logger.SetLevel(logrus.DebugLevel)
	}

	forceColors := false
	switch out := gs.flags.logOutput; {
	case out == "stderr":
		forceColors = !gs.flags.noColor && gs.stdErr.isTTY
		gs.logger.SetOutput(gs.stdErr)
	case out == "stdout":
		forceColors = !gs.flags.noColor && gs.stdOut.isTTY
		gs.logger.SetOutput(gs.stdOut)
	case out == "none":
		gs.logger.SetOutput(io.Discard)
	default:
		hook, err := fileHookFromLogOutput(gs.ctx, gs.logger, out)
		if err != nil {
			return err
		}
		gs.logger.AddHook(hook)
		gs.logger.SetOutput(io.Discard)
	}

	switch gs.flags.logFormat {
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		gs.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors: forceColors, DisableColors: gs.flags.noColor,
		})
	}
	return nil
}

// Execute is the CLI's single entry point, called from main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gs := newGlobalState(ctx)
	root := newRootCommand(gs)

	if err := root.cmd.Execute(); err != nil {
		exitCode := 1
		var ecerr errext.HasExitCode
		if errors.As(err, &ecerr) {
			exitCode = int(ecerr.ExitCode())
		}
		gs.logger.Error(err.Error())
		os.Exit(exitCode) //nolint:gocritic
	}
}
