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
	"strconv"
	"time"

	"gopkg.in/guregu/null.v3"
)

// nullDurationFlag adapts a null.Int (a time.Duration in nanoseconds) to
// pflag.Value, so a
// flag like --timeout can tell "never passed on the command line" apart
// from "passed as 0s" instead of collapsing both to the zero value the way
// a plain time.Duration flag would.
type nullDurationFlag struct{ dst *null.Int }

func (f nullDurationFlag) String() string {
	if f.dst == nil || !f.dst.Valid {
		return ""
	}
	return time.Duration(f.dst.Int64).String()
}

func (f nullDurationFlag) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*f.dst = null.IntFrom(int64(d))
	return nil
}

func (f nullDurationFlag) Type() string { return "duration" }

// nullBoolFlag is the same three-state trick for boolean flags such as
// --silent, which may be passed bare (true), passed with an explicit value,
// or never passed at all.
type nullBoolFlag struct{ dst *null.Bool }

func (f nullBoolFlag) String() string {
	if f.dst == nil || !f.dst.Valid {
		return ""
	}
	return strconv.FormatBool(f.dst.Bool)
}

func (f nullBoolFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f.dst = null.BoolFrom(b)
	return nil
}

func (f nullBoolFlag) Type() string { return "bool" }

// durationOr returns d's value in its configured unit, or def if d was
// never set on the command line.
func durationOr(d null.Int, def time.Duration) time.Duration {
	if !d.Valid {
		return def
	}
	return time.Duration(d.Int64)
}

// boolOr returns b's value, or def if b was never set on the command line.
func boolOr(b null.Bool, def bool) bool {
	if !b.Valid {
		return def
	}
	return b.Bool
}
