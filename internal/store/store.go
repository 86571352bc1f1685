// Package store implements the Farmwatch repositories on Postgres.
package store

import (
	"database/sql"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Store provides all Farmwatch repositories backed by one database handle.
type Store struct {
	db *sql.DB
}

// New creates a Store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var (
	_ distress.DataSource      = (*Store)(nil)
	_ distress.FarmRepository  = (*Store)(nil)
	_ distress.OrderRepository = (*Store)(nil)
	_ distress.HistoryStore    = (*Store)(nil)
)
