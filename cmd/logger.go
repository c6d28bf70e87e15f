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
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"go.k6.io/elementaryjs/log"
)

// fileHookFromLogOutput adapts a "--log-output" value into a logrus.Hook,
// the same "file=./path" convention grafana-k6's --log-output flag uses.
func fileHookFromLogOutput(ctx context.Context, fallback logrus.FieldLogger, out string) (logrus.Hook, error) {
	if out == "file" || len(out) >= 5 && out[:5] == "file=" {
		return log.FileHookFromConfigLine(ctx, fallback, out)
	}
	return nil, fmt.Errorf("unsupported log output '%s'", out)
}
