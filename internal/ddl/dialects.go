package ddl

import (
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
)

// SQLite renders DDL for SQLite.
var SQLite = &Dialect{
	name: "sqlite",
	types: map[string]string{
		domain.TypeInteger:  "INTEGER",
		domain.TypeBigInt:   "BIGINT",
		domain.TypeText:     "TEXT",
		domain.TypeString:   "VARCHAR(255)",
		domain.TypeBoolean:  "BOOLEAN",
		domain.TypeFloat:    "REAL",
		domain.TypeDateTime: "DATETIME",
		domain.TypeJSON:     "TEXT",
	},
	autoInc: func(domain.Column) string {
		// Only INTEGER PRIMARY KEY aliases the rowid.
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	},
	placeholder: func(int) string { return "?" },
}

// Postgres renders DDL for PostgreSQL.
var Postgres = &Dialect{
	name: "postgres",
	types: map[string]string{
		domain.TypeInteger:  "INTEGER",
		domain.TypeBigInt:   "BIGINT",
		domain.TypeText:     "TEXT",
		domain.TypeString:   "VARCHAR(255)",
		domain.TypeBoolean:  "BOOLEAN",
		domain.TypeFloat:    "DOUBLE PRECISION",
		domain.TypeDateTime: "TIMESTAMP",
		domain.TypeJSON:     "JSONB",
	},
	autoInc: func(c domain.Column) string {
		if c.Type == domain.TypeBigInt {
			return "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
		}
		return "INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	},
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// ByName returns the dialect registered under name.
func ByName(name string) (*Dialect, error) {
	switch name {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}
