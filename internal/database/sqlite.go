package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the embedded SQLite store. WAL mode
// keeps readers unblocked while the sync engine writes; the busy timeout
// covers the brief window where two logical writers contend.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// SQLite allows a single writer; a pool of one avoids lock churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach local store: %w", err)
	}

	return db, nil
}

// OpenInMemory opens a throwaway store for tests.
func OpenInMemory() (*sql.DB, error) {
	return Open(":memory:")
}
