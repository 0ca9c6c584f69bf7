// Package postgres implements storage.Store against a PostgreSQL database
// via database/sql and lib/pq, using hand-written SQL rather than an ORM.
package postgres

import (
	"database/sql"
)

// Store is a PostgreSQL-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// New wraps an already-opened, already-migrated *sql.DB.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}
