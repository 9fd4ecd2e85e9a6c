package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase opens the liturgy catalogue and creates its tables
func InitDatabase(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("Database initialized at: %s", dbPath)
	return database, nil
}

// createTables creates all necessary tables
func createTables(database *sql.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		{"liturgies", `
		CREATE TABLE IF NOT EXISTS liturgies (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`},
		{"liturgy_elements", `
		CREATE TABLE IF NOT EXISTS liturgy_elements (
			id TEXT PRIMARY KEY,
			liturgy_id TEXT NOT NULL REFERENCES liturgies(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT ''
		);`},
		{"slides", `
		CREATE TABLE IF NOT EXISTS slides (
			id TEXT PRIMARY KEY,
			liturgy_id TEXT NOT NULL REFERENCES liturgies(id) ON DELETE CASCADE,
			element_id TEXT NOT NULL REFERENCES liturgy_elements(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '{}',
			style TEXT NOT NULL DEFAULT ''
		);`},
		{"element position index", `CREATE INDEX IF NOT EXISTS idx_elements_liturgy ON liturgy_elements(liturgy_id, position);`},
		{"slide position index", `CREATE INDEX IF NOT EXISTS idx_slides_element ON slides(element_id, position);`},
	}

	for _, st := range statements {
		if _, err := database.Exec(st.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", st.name, err)
		}
	}

	log.Println("Database tables created successfully")
	return nil
}
