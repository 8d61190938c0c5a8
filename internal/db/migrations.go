package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Array-valued fields are stored as JSON text.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id              TEXT    PRIMARY KEY,
		slug            TEXT    NOT NULL UNIQUE,
		title           TEXT    NOT NULL,
		description     TEXT    NOT NULL DEFAULT '',
		developer       TEXT    NOT NULL DEFAULT '',
		property_type   TEXT    NOT NULL DEFAULT '',
		location        TEXT    NOT NULL DEFAULT '',
		city            TEXT    NOT NULL DEFAULT '',
		state           TEXT    NOT NULL DEFAULT '',
		price           TEXT    NOT NULL DEFAULT '',
		area            TEXT    NOT NULL DEFAULT '',
		area_unit       TEXT    NOT NULL DEFAULT '',
		configuration   TEXT    NOT NULL DEFAULT '[]',
		configurations  TEXT    NOT NULL DEFAULT '[]',
		recommend       INTEGER NOT NULL DEFAULT 0,
		featured        INTEGER NOT NULL DEFAULT 0,
		new_property    INTEGER NOT NULL DEFAULT 0,
		resale          INTEGER NOT NULL DEFAULT 0,
		possession      TEXT    NOT NULL DEFAULT '',
		possession_date TEXT    NOT NULL DEFAULT '',
		images          TEXT    NOT NULL DEFAULT '[]',
		features        TEXT    NOT NULL DEFAULT '[]',
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_recommend ON properties (recommend)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"properties", "overview", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
