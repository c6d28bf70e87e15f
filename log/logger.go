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

// Package log contains logging helpers shared by the elementaryjs CLI and
// core: building a *logrus.Logger from CLI flags, parsing "key=value,..."
// log-output configuration lines, and formatting the arguments a rewritten
// program's console.log passes through.
package log

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// getLevels returns every logrus.Level at or above the severity named by
// level (e.g. "info" also includes "warn", "error", "fatal", "panic").
func getLevels(level string) ([]logrus.Level, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		levels = append(levels, l)
		if l == lvl {
			break
		}
	}
	return levels, nil
}

// consoleLogFormatter wraps another logrus.Formatter and, when the entry
// carries an "objects" field (the arguments passed to the sandboxed
// program's console.log), renders each argument as compact JSON separated
// by spaces instead of Go's %v representation - matching how a browser or
// Node console stringifies logged values. An argument that can't be
// marshaled to JSON (e.g. a channel or function escaping the sandbox) is
// silently dropped from the line rather than failing the whole log call.
type consoleLogFormatter struct {
	fallback logrus.Formatter
}

func (f *consoleLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	objects, ok := entry.Data["objects"].([]interface{})
	if !ok {
		return f.fallback.Format(entry)
	}

	parts := make([]string, 0, len(objects))
	for _, obj := range objects {
		b, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		parts = append(parts, string(b))
	}
	return []byte(strings.Join(parts, " ")), nil
}

// New builds a *logrus.Logger writing to w with the requested format
// ("json" for logrus.JSONFormatter, anything else for logrus.TextFormatter)
// and minimum level.
func New(w io.Writer, format, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	return logger, nil
}
