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

import "github.com/sirupsen/logrus"

// Fprint logs err (nil is a no-op) to logger at Error level, formatted via
// Format so the hint and exception-stack conventions are consistent
// wherever an error is surfaced to a user.
func Fprint(logger logrus.FieldLogger, err error) {
	if err == nil {
		return
	}
	errorText, fields := Format(err)
	logger.WithFields(fields).Error(errorText)
}
