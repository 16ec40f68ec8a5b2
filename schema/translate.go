package schema

import (
	"fmt"
	"strings"
)

// Translate rewrites one canonical table definition into dialect-correct
// DDL. The first statement is the CREATE TABLE; any secondary indexes the
// dialect requires as separate statements follow in declaration order.
// Translation is a pure function of its inputs: the same table, dialect and
// prefix always produce byte-identical output. Clauses a dialect cannot
// express are stripped, never rewritten into invalid syntax (SQLite simply
// loses non-unique secondary indexes).
func Translate(t Table, d Dialect, prefix string) []string {
	name := prefix + t.Name

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(name)
	b.WriteString(" (")

	var defs []string
	for _, col := range t.Columns {
		defs = append(defs, columnDef(col, d))
	}
	if pk := primaryKeyClause(t, d); pk != "" {
		defs = append(defs, pk)
	}

	// MySQL and MariaDB take secondary indexes inline; SQLite keeps only
	// unique keys, as inline table constraints.
	switch d {
	case MySQL, MariaDB:
		for _, ix := range t.Indexes {
			kw := "KEY"
			if ix.Unique {
				kw = "UNIQUE KEY"
			}
			defs = append(defs, fmt.Sprintf("%s %s (%s)", kw, ix.Name, strings.Join(ix.Columns, ", ")))
		}
	case SQLite:
		for _, ix := range t.Indexes {
			if ix.Unique {
				defs = append(defs, fmt.Sprintf("UNIQUE (%s)", strings.Join(ix.Columns, ", ")))
			}
		}
	}

	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(")")
	if d == MySQL || d == MariaDB {
		b.WriteString(" ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	}

	stmts := []string{b.String()}

	// Postgres and H2 want secondary indexes as follow-up statements.
	if d == Postgres || d == H2 {
		for _, ix := range t.Indexes {
			kw := "CREATE INDEX"
			if ix.Unique {
				kw = "CREATE UNIQUE INDEX"
			}
			stmts = append(stmts, fmt.Sprintf("%s IF NOT EXISTS %s%s ON %s (%s)",
				kw, prefix, ix.Name, name, strings.Join(ix.Columns, ", ")))
		}
	}

	return stmts
}

// TranslateAll translates every canonical table for the given dialect,
// preserving table order.
func TranslateAll(d Dialect, prefix string) []string {
	var stmts []string
	for _, t := range Tables {
		stmts = append(stmts, Translate(t, d, prefix)...)
	}
	return stmts
}

func columnDef(c Column, d Dialect) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(sqlType(c, d))

	if c.Type == TypeID {
		// Auto-increment columns carry their own constraints.
		switch d {
		case MySQL, MariaDB:
			b.WriteString(" NOT NULL AUTO_INCREMENT")
		case SQLite:
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		case H2:
			b.WriteString(" AUTO_INCREMENT")
		}
		return b.String()
	}

	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultLiteral(c, d))
	}
	return b.String()
}

func sqlType(c Column, d Dialect) string {
	switch c.Type {
	case TypeID:
		switch d {
		case Postgres:
			return "BIGSERIAL"
		case SQLite:
			return "INTEGER"
		default:
			return "BIGINT"
		}
	case TypeString:
		size := c.Size
		if size == 0 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size)
	case TypeText:
		return "TEXT"
	case TypeBool:
		switch d {
		case MySQL, MariaDB:
			return "TINYINT(1)"
		case SQLite:
			return "INTEGER"
		default:
			return "BOOLEAN"
		}
	case TypeInt:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		switch d {
		case Postgres:
			return "DOUBLE PRECISION"
		case SQLite:
			return "REAL"
		default:
			return "DOUBLE"
		}
	case TypeTimestamp:
		switch d {
		case MySQL, MariaDB:
			return "DATETIME"
		case Postgres, H2:
			return "TIMESTAMP"
		default:
			return "DATETIME"
		}
	case TypeJSON:
		switch d {
		case Postgres:
			return "JSONB"
		case MySQL, MariaDB:
			return "JSON"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func defaultLiteral(c Column, d Dialect) string {
	if c.Type == TypeBool {
		// Native-boolean dialects want TRUE/FALSE, integer-boolean
		// dialects keep 0/1.
		switch d {
		case Postgres, H2:
			if c.Default == "1" {
				return "TRUE"
			}
			return "FALSE"
		}
	}
	return c.Default
}

func primaryKeyClause(t Table, d Dialect) string {
	for _, c := range t.Columns {
		if c.Type == TypeID {
			// SQLite auto-increment requires the INTEGER PRIMARY KEY form
			// inline with the column, so it is handled here either way.
			if d == SQLite {
				return ""
			}
			return fmt.Sprintf("PRIMARY KEY (%s)", c.Name)
		}
		if c.PrimaryKey {
			return fmt.Sprintf("PRIMARY KEY (%s)", c.Name)
		}
	}
	return ""
}
