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

package errext

import "errors"

// Format extracts the best error message for err (its exception stack
// trace if it is an Exception, otherwise its plain Error() text) plus a
// set of structured fields (currently just "hint", if err carries one),
// suitable for passing to a logrus-style structured logger.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	errorText := err.Error()
	var exception Exception
	if errors.As(err, &exception) {
		errorText = exception.StackTrace()
	}

	fields := make(map[string]interface{})
	var hinter HasHint
	if errors.As(err, &hinter) {
		fields["hint"] = hinter.Hint()
	}

	return errorText, fields
}
