package storage

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavor of the underlying database.
// Schema DDL is written to be portable across both dialects; the only
// runtime difference is placeholder style.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind converts ?-style placeholders to the dialect's native form.
// SQLite queries pass through unchanged; Postgres queries get $1, $2, ...
// Queries here never embed literal question marks, so no quoting-aware
// parsing is needed.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
