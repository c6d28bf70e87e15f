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

package log

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// fileHook is a logrus.Hook that hands formatted log entries to a
// background goroutine, which writes them to a file through a buffered
// writer. The hand-off channel is unbuffered, so Fire blocks until that
// goroutine is ready to take the next entry.
type fileHook struct {
	path     string
	levels   []logrus.Level
	w        io.WriteCloser
	bw       *bufio.Writer
	loglines chan []byte
}

// Levels implements logrus.Hook.
func (h *fileHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook.
func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	buf := make([]byte, len(line))
	copy(buf, line)
	h.loglines <- buf
	return nil
}

// loop drains loglines into the underlying file until ctx is done, then
// flushes and closes the file.
func (h *fileHook) loop(ctx context.Context) chan []byte {
	ch := make(chan []byte)
	go func() {
		defer func() {
			_ = h.bw.Flush()
			_ = h.w.Close()
		}()
		for {
			select {
			case line := <-ch:
				_, _ = h.bw.Write(line)
				_ = h.bw.Flush()
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// FileHookFromConfigLine parses a --log-output line of the form
// "file=/path/to/file.log[,level=info]" and returns a logrus.Hook that
// writes matching entries to that file until ctx is cancelled.
func FileHookFromConfigLine(ctx context.Context, fallback logrus.FieldLogger, line string) (logrus.Hook, error) {
	const prefix = "file="
	if line == "file" || !strings.HasPrefix(line, prefix) {
		return nil, fmt.Errorf("logfile configuration should be in the form `file=path-to-local-file` but is `%s`", line)
	}

	rest := line[len(prefix):]
	path, extra, _ := strings.Cut(rest, ",")
	if path == "" {
		return nil, errors.New("filepath must not be empty")
	}

	hook := &fileHook{levels: logrus.AllLevels}
	if extra != "" {
		for _, kv := range strings.Split(extra, ",") {
			key, value, hasEq := strings.Cut(kv, "=")
			if !hasEq || value == "" {
				return nil, fmt.Errorf("unknown logfile config key %s", kv)
			}
			switch key {
			case "level":
				levels, err := getLevels(value)
				if err != nil {
					return nil, fmt.Errorf("unknown log level %q", value)
				}
				hook.levels = levels
			default:
				return nil, fmt.Errorf("unknown logfile config key %s", key)
			}
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", path, err)
	}
	fallback.Debugf("logging to file %s", path)

	hook.path = path
	hook.w = f
	hook.bw = bufio.NewWriter(f)
	hook.loglines = hook.loop(ctx)

	return hook, nil
}
