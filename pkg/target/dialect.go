package target

import (
	"fmt"
	"strings"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
	SQLServer
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	case SQLServer:
		return "sqlserver"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Placeholder returns the bind parameter for 1-based position n.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case Postgres:
		return fmt.Sprintf("$%d", n)
	case SQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

// Quote quotes a possibly schema-qualified identifier.
func (d Dialect) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if d == SQLServer {
			parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
		} else {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}

// UpsertSQL builds a statement inserting one row into table or, when a row
// with the same id exists, overwriting every other column. Arguments bind in
// column order. columns must include "id".
func (d Dialect) UpsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
		params[i] = d.Placeholder(i + 1)
	}

	var b strings.Builder
	if d == SQLServer {
		// MERGE needs HOLDLOCK to be safe against a concurrent insert of the same key.
		fmt.Fprintf(&b, "MERGE INTO %s WITH (HOLDLOCK) AS t USING (VALUES (%s)) AS s (%s) ON t.%s = s.%s",
			d.Quote(table), strings.Join(params, ", "), strings.Join(quoted, ", "), d.Quote("id"), d.Quote("id"))

		var sets []string
		for _, c := range quoted {
			if c != d.Quote("id") {
				sets = append(sets, fmt.Sprintf("t.%s = s.%s", c, c))
			}
		}
		if len(sets) > 0 {
			fmt.Fprintf(&b, " WHEN MATCHED THEN UPDATE SET %s", strings.Join(sets, ", "))
		}

		source := make([]string, len(quoted))
		for i, c := range quoted {
			source[i] = "s." + c
		}
		fmt.Fprintf(&b, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
			strings.Join(quoted, ", "), strings.Join(source, ", "))
		return b.String()
	}

	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s)",
		d.Quote(table), strings.Join(quoted, ", "), strings.Join(params, ", "), d.Quote("id"))

	var sets []string
	for _, c := range quoted {
		if c != d.Quote("id") {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	if len(sets) == 0 {
		b.WriteString(" DO NOTHING")
	} else {
		fmt.Fprintf(&b, " DO UPDATE SET %s", strings.Join(sets, ", "))
	}
	return b.String()
}

// Reference queries share one form across dialects. Ids are read back as
// lower-case text so they compare equal to derived identifiers.

func (d Dialect) IdentitiesSQL(identityTable string) string {
	return fmt.Sprintf("SELECT LOWER(CAST(id AS VARCHAR(36))), email FROM %s WHERE email IS NOT NULL",
		d.Quote(identityTable))
}

func (d Dialect) CategoriesSQL() string {
	return fmt.Sprintf("SELECT LOWER(CAST(id AS VARCHAR(36))), LOWER(CAST(store_id AS VARCHAR(36))), name FROM %s",
		d.Quote("categories"))
}

// StoresSQL returns store ids with their creation time rendered as ISO-8601
// UTC text, or '' when unset. Ordering happens in the reference index so that
// every dialect ranks stores the same way.
func (d Dialect) StoresSQL() string {
	var createdAt string
	switch d {
	case Postgres:
		createdAt = `to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.MS"Z"')`
	case SQLServer:
		createdAt = "CONVERT(VARCHAR(33), created_at, 127)"
	default:
		createdAt = "created_at"
	}
	return fmt.Sprintf("SELECT LOWER(CAST(id AS VARCHAR(36))), COALESCE(%s, '') FROM %s ORDER BY id",
		createdAt, d.Quote("stores"))
}
