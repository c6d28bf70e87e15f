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
	"fmt"
	"strings"
)

// token is one `key=value` (or `key=[a,b,c]`) pair out of a --log-output
// style configuration line.
type token struct {
	key, value string
	// inside is the opening bracket character ('[' ) if value came from a
	// bracketed list, or 0 for a plain value.
	inside byte
}

// tokenize splits a configuration line of the form
// "key1=value1,key2=[a,b,c],key3=value3" into its tokens. A bracketed value
// is not itself split on commas; only the commas separating top-level
// key=value pairs are.
func tokenize(s string) ([]token, error) {
	var tokens []token

	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq == -1 {
			return nil, fmt.Errorf("key `%s` with no value", s)
		}
		if comma := strings.IndexByte(s, ','); comma != -1 && comma < eq {
			return nil, fmt.Errorf("key `%s` with no value", s[:comma])
		}
		key := s[:eq]
		rest := s[eq+1:]

		if rest == "" || rest[0] == ',' {
			return nil, fmt.Errorf("key `%s=` with no value", key)
		}

		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return nil, fmt.Errorf("array value for key `%s` didn't end", key)
			}
			value := rest[1:end]
			after := rest[end+1:]
			if after != "" && after[0] != ',' {
				return nil, fmt.Errorf("there was no ',' after an array with key '%s'", key)
			}
			tokens = append(tokens, token{key: key, value: value, inside: '['})
			if after == "" {
				break
			}
			s = after[1:]
			continue
		}

		comma := strings.IndexByte(rest, ',')
		if comma == -1 {
			tokens = append(tokens, token{key: key, value: rest})
			break
		}
		tokens = append(tokens, token{key: key, value: rest[:comma]})
		s = rest[comma+1:]
	}

	return tokens, nil
}
