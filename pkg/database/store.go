package database

import "database/sql"

// Store implements the persistence operations the services layer depends
// on, as plain SQL over the pgx pool.
type Store struct {
	db *sql.DB
}

// NewStore creates a store backed by the given pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
