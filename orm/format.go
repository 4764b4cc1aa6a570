package orm

import (
	"strconv"
)

// FormatQuery returns the command text with placeholders replaced by
// argument literals. The result is meant for logs, not for execution.
func FormatQuery(d Dialect, cmd *Command) string {
	return string(AppendQuery(nil, d, cmd.Query, cmd.Args...))
}

// AppendQuery appends query to b inlining args in place of placeholders.
// Placeholders inside single quoted literals are left untouched.
func AppendQuery(b []byte, d Dialect, query string, args ...interface{}) []byte {
	var quoted bool
	var argIndex int
	numbered := d.Name() == Postgres.Name()

	for i := 0; i < len(query); i++ {
		c := query[i]

		if c == '\'' {
			quoted = !quoted
			b = append(b, c)
			continue
		}
		if quoted {
			b = append(b, c)
			continue
		}

		switch {
		case c == '?' && !numbered:
			if argIndex < len(args) {
				b = AppendValue(b, args[argIndex])
				argIndex++
				continue
			}
		case c == '$' && numbered:
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				n, err := strconv.Atoi(query[i+1 : j])
				if err == nil && n > 0 && n <= len(args) {
					b = AppendValue(b, args[n-1])
					i = j - 1
					continue
				}
			}
		}

		b = append(b, c)
	}

	return b
}
